// Package install manages the per-installation identity: a random id that
// namespaces local credentials and a secret the credential store derives its
// sealing key from. Removing the data directory forgets both.
package install

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

const (
	fileName   = "install.json"
	secretSize = 32
)

type Identity struct {
	ID     string `json:"id"`
	Secret []byte `json:"secret"`
}

// Load reads the identity from dir, creating it on first use.
func Load(dir string) (Identity, error) {
	path := filepath.Join(dir, fileName)

	b, err := os.ReadFile(path)
	if err == nil {
		var id Identity
		if err := json.Unmarshal(b, &id); err != nil {
			return Identity{}, fmt.Errorf("decode %s: %w", fileName, err)
		}
		if _, err := uuid.Parse(id.ID); err != nil || len(id.Secret) != secretSize {
			return Identity{}, fmt.Errorf("%s is corrupt", path)
		}
		return id, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return Identity{}, fmt.Errorf("read %s: %w", fileName, err)
	}

	id, err := New()
	if err != nil {
		return Identity{}, err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return Identity{}, fmt.Errorf("create data dir: %w", err)
	}
	b, err = json.Marshal(id)
	if err != nil {
		return Identity{}, fmt.Errorf("encode %s: %w", fileName, err)
	}
	if err := os.WriteFile(path, b, 0o600); err != nil {
		return Identity{}, fmt.Errorf("write %s: %w", fileName, err)
	}
	return id, nil
}

// New generates a fresh identity without persisting it.
func New() (Identity, error) {
	secret := make([]byte, secretSize)
	if _, err := io.ReadFull(rand.Reader, secret); err != nil {
		return Identity{}, fmt.Errorf("generate secret: %w", err)
	}
	return Identity{ID: uuid.NewString(), Secret: secret}, nil
}
