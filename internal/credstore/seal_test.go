package credstore

import (
	"errors"
	"strings"
	"testing"
)

func TestSealOpenRoundTrip(t *testing.T) {
	s, err := NewSealer([]byte("0123456789abcdef0123456789abcdef"), "install-a")
	if err != nil {
		t.Fatalf("new sealer: %v", err)
	}

	sealed, err := s.Seal("eyJhbGciOi.token")
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if strings.Contains(sealed, "token") {
		t.Error("sealed value leaks plaintext")
	}

	plain, err := s.Open(sealed)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if plain != "eyJhbGciOi.token" {
		t.Errorf("open = %q", plain)
	}
}

func TestSealNonceVaries(t *testing.T) {
	s, _ := NewSealer([]byte("secret"), "ns")
	a, _ := s.Seal("same")
	b, _ := s.Seal("same")
	if a == b {
		t.Error("two seals of the same token should differ")
	}
}

func TestOpenWithOtherInstallationFails(t *testing.T) {
	a, _ := NewSealer([]byte("secret-a"), "ns")
	b, _ := NewSealer([]byte("secret-b"), "ns")
	otherNS, _ := NewSealer([]byte("secret-a"), "other")

	sealed, _ := a.Seal("T")
	if _, err := b.Open(sealed); !errors.Is(err, ErrUnseal) {
		t.Errorf("open with other secret: err = %v, want ErrUnseal", err)
	}
	if _, err := otherNS.Open(sealed); !errors.Is(err, ErrUnseal) {
		t.Errorf("open with other namespace: err = %v, want ErrUnseal", err)
	}
}

func TestOpenGarbage(t *testing.T) {
	s, _ := NewSealer([]byte("secret"), "ns")
	for _, in := range []string{"", "!!!", "AAAA"} {
		if _, err := s.Open(in); !errors.Is(err, ErrUnseal) {
			t.Errorf("open(%q): err = %v, want ErrUnseal", in, err)
		}
	}
}

func TestNewSealerEmptySecret(t *testing.T) {
	if _, err := NewSealer(nil, "ns"); err == nil {
		t.Fatal("expected error for empty secret")
	}
}
