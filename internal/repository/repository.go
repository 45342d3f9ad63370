// Package repository holds the feature repositories: thin wrappers that call
// one backend resource each and return domain types. They read the signed-in
// identity from the credential store but never write the token or identity.
package repository

import (
	"errors"
	"fmt"

	"github.com/dukerupert/supplyline/internal/credstore"
)

var ErrNotLoggedIn = errors.New("not logged in")

func currentUserID(creds credstore.Reader) (int64, error) {
	if !creds.IsLoggedIn() {
		return 0, ErrNotLoggedIn
	}
	id, ok := creds.UserID()
	if !ok {
		return 0, ErrNotLoggedIn
	}
	return id, nil
}

func userPath(userID int64, rest string) string {
	return fmt.Sprintf("users/%d/%s", userID, rest)
}
