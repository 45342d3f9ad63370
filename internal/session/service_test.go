package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dukerupert/supplyline/internal/api"
	"github.com/dukerupert/supplyline/internal/credstore"
	"github.com/dukerupert/supplyline/internal/logging"
	"github.com/dukerupert/supplyline/internal/model"
)

func setupService(t *testing.T, h http.HandlerFunc) (*Service, *credstore.Store) {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)

	creds := credstore.New(credstore.NewMemoryBackend(), credstore.WithLogger(logging.Discard()))
	client, err := api.New(server.URL, creds, api.WithLogger(logging.Discard()))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return NewService(client, creds, logging.Discard()), creds
}

func aliceHandler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req Credentials
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		switch r.URL.Path {
		case "/authentication/sign-in":
			if req.Username != "alice" || req.Password != "pw" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.Write([]byte(`{"id":7,"username":"alice","roleId":2,"subscription":1,"token":"T"}`))
		case "/authentication/sign-up":
			if req.RoleID != 2 {
				t.Errorf("roleId = %d, want 2", req.RoleID)
			}
			w.Write([]byte(`{"id":8,"username":"` + req.Username + `","roleId":2,"subscription":0,"token":"unexpected"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func TestSignInEstablishesSession(t *testing.T) {
	svc, creds := setupService(t, aliceHandler(t))

	user, err := svc.SignIn(context.Background(), "alice", "pw")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if user.ID != 7 || user.Username != "alice" {
		t.Errorf("user = %+v", user)
	}

	want := model.Session{Token: "T", UserID: 7, Username: "alice", RoleID: 2, SubscriptionTier: 1}
	if got := creds.Session(); got != want {
		t.Errorf("session = %+v, want %+v", got, want)
	}
	if !svc.IsLoggedIn() {
		t.Error("expected logged in")
	}
	if id, ok := svc.CurrentUserID(); !ok || id != 7 {
		t.Errorf("current user id = %d (%v), want 7", id, ok)
	}
}

func TestSignInOmitsRoleID(t *testing.T) {
	svc, _ := setupService(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if _, ok := body["roleId"]; ok {
			t.Errorf("sign-in body = %v, want no roleId", body)
		}
		if body["username"] != "alice" || body["password"] != "pw" {
			t.Errorf("sign-in body = %v", body)
		}
		w.Write([]byte(`{"id":7,"username":"alice","roleId":2,"subscription":1,"token":"T"}`))
	})

	if _, err := svc.SignIn(context.Background(), "alice", "pw"); err != nil {
		t.Fatalf("sign in: %v", err)
	}
}

func TestSignInFailureLeavesStoreUnchanged(t *testing.T) {
	svc, creds := setupService(t, aliceHandler(t))
	creds.Establish("previous", model.Identity{UserID: 3, Username: "bob", RoleID: 1, SubscriptionTier: 2})
	before := creds.Session()

	_, err := svc.SignIn(context.Background(), "alice", "wrong")
	if !api.IsStatus(err, http.StatusUnauthorized) {
		t.Fatalf("err = %v, want 401 status error", err)
	}
	if after := creds.Session(); after != before {
		t.Errorf("session changed on failure: %+v -> %+v", before, after)
	}
}

func TestSignInFromLoggedOutFailureStaysLoggedOut(t *testing.T) {
	svc, _ := setupService(t, aliceHandler(t))

	if _, err := svc.SignIn(context.Background(), "mallory", "x"); err == nil {
		t.Fatal("expected error")
	}
	if svc.IsLoggedIn() {
		t.Error("expected logged out")
	}
	if _, ok := svc.CurrentUserID(); ok {
		t.Error("expected no current user")
	}
}

func TestSignInMissingToken(t *testing.T) {
	svc, creds := setupService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":7,"username":"alice","roleId":2,"subscription":1}`))
	})

	_, err := svc.SignIn(context.Background(), "alice", "pw")
	if !errors.Is(err, ErrMissingToken) {
		t.Fatalf("err = %v, want ErrMissingToken", err)
	}
	if creds.IsLoggedIn() {
		t.Error("expected logged out")
	}
}

func TestSignInCancelledDoesNotWrite(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	svc, creds := setupService(t, func(w http.ResponseWriter, r *http.Request) {
		cancel()
		w.Write([]byte(`{"id":7,"username":"alice","roleId":2,"subscription":1,"token":"T"}`))
	})

	if _, err := svc.SignIn(ctx, "alice", "pw"); err == nil {
		t.Fatal("expected error for cancelled sign-in")
	}
	if creds.IsLoggedIn() {
		t.Error("cancelled sign-in must not establish a session")
	}
	if _, ok := creds.UserID(); ok {
		t.Error("cancelled sign-in must not write identity")
	}
}

func TestSignInTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	creds := credstore.New(credstore.NewMemoryBackend(), credstore.WithLogger(logging.Discard()))
	client, _ := api.New(server.URL, creds, api.WithLogger(logging.Discard()))
	server.Close()
	svc := NewService(client, creds, logging.Discard())

	if _, err := svc.SignIn(context.Background(), "alice", "pw"); err == nil {
		t.Fatal("expected error")
	}
	if svc.IsLoggedIn() {
		t.Error("expected logged out")
	}
}

func TestSignUpDoesNotSignIn(t *testing.T) {
	svc, creds := setupService(t, aliceHandler(t))

	user, err := svc.SignUp(context.Background(), "carol", "pw", model.RoleSupplier)
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}
	if user.ID != 8 || user.Username != "carol" {
		t.Errorf("user = %+v", user)
	}
	if creds.IsLoggedIn() {
		t.Error("sign-up must not store a token even if the response has one")
	}
	if got := creds.Session(); got != model.LoggedOut() {
		t.Errorf("session = %+v, want logged out", got)
	}
}

func TestSignUpConflict(t *testing.T) {
	svc, creds := setupService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"message":"username taken"}`))
	})

	_, err := svc.SignUp(context.Background(), "alice", "pw", model.RoleOwner)
	if !api.IsStatus(err, http.StatusConflict) {
		t.Fatalf("err = %v, want 409 status error", err)
	}
	if creds.IsLoggedIn() {
		t.Error("expected logged out")
	}
}

func TestMissingCredentials(t *testing.T) {
	svc, _ := setupService(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	if _, err := svc.SignIn(context.Background(), " ", "pw"); !errors.Is(err, ErrMissingCredentials) {
		t.Errorf("sign in err = %v", err)
	}
	if _, err := svc.SignUp(context.Background(), "alice", "", model.RoleOwner); !errors.Is(err, ErrMissingCredentials) {
		t.Errorf("sign up err = %v", err)
	}
}

func TestLogoutAlwaysLogsOut(t *testing.T) {
	svc, creds := setupService(t, aliceHandler(t))

	svc.Logout()
	if svc.IsLoggedIn() {
		t.Error("expected logged out from empty state")
	}

	if _, err := svc.SignIn(context.Background(), "alice", "pw"); err != nil {
		t.Fatalf("sign in: %v", err)
	}
	svc.Logout()
	if svc.IsLoggedIn() {
		t.Error("expected logged out after sign-in")
	}
	if got := creds.Session(); got != model.LoggedOut() {
		t.Errorf("session = %+v, want logged out", got)
	}
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
		Subject:   "7",
	}).SignedString([]byte("server-key"))
	if err != nil {
		t.Fatalf("sign jwt: %v", err)
	}

	svc, creds := setupService(t, aliceHandler(t))
	if _, ok := svc.TokenExpiry(); ok {
		t.Error("expected no expiry while logged out")
	}

	creds.Establish(signed, model.Identity{UserID: 7, Username: "alice", RoleID: 2})
	got, ok := svc.TokenExpiry()
	if !ok {
		t.Fatal("expected expiry for JWT token")
	}
	if !got.Equal(exp) {
		t.Errorf("expiry = %v, want %v", got, exp)
	}

	creds.Establish("opaque-token", model.Identity{UserID: 7, Username: "alice", RoleID: 2})
	if _, ok := svc.TokenExpiry(); ok {
		t.Error("expected no expiry for opaque token")
	}
}
