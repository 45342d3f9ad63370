package repository

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dukerupert/supplyline/internal/api"
	"github.com/dukerupert/supplyline/internal/credstore"
	"github.com/dukerupert/supplyline/internal/model"
)

// Logouter ends the local session. session.Service implements it.
type Logouter interface {
	Logout()
}

type ProfileRepository struct {
	api    *api.Client
	creds  credstore.Reader
	logout Logouter
}

func NewProfileRepository(client *api.Client, creds credstore.Reader, logout Logouter) *ProfileRepository {
	return &ProfileRepository{api: client, creds: creds, logout: logout}
}

func (r *ProfileRepository) Get(ctx context.Context) (*model.Profile, error) {
	uid, err := currentUserID(r.creds)
	if err != nil {
		return nil, err
	}
	var p model.Profile
	if err := r.api.Do(ctx, http.MethodGet, fmt.Sprintf("profiles/%d", uid), nil, &p); err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &p, nil
}

func (r *ProfileRepository) Update(ctx context.Context, p model.Profile) (*model.Profile, error) {
	uid, err := currentUserID(r.creds)
	if err != nil {
		return nil, err
	}
	p.UserID = uid

	var out model.Profile
	if err := r.api.Do(ctx, http.MethodPut, fmt.Sprintf("profiles/%d", uid), p, &out); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return &out, nil
}

// Delete removes the account on the backend and then ends the local session.
func (r *ProfileRepository) Delete(ctx context.Context) error {
	uid, err := currentUserID(r.creds)
	if err != nil {
		return err
	}
	if err := r.api.Do(ctx, http.MethodDelete, fmt.Sprintf("users/%d", uid), nil, nil); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	r.logout.Logout()
	return nil
}
