package repository

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dukerupert/supplyline/internal/api"
	"github.com/dukerupert/supplyline/internal/credstore"
	"github.com/dukerupert/supplyline/internal/model"
)

// SubscriptionStore is what a subscription change may read and write.
type SubscriptionStore interface {
	credstore.Reader
	credstore.TierWriter
}

type SubscriptionRepository struct {
	api   *api.Client
	creds SubscriptionStore
}

func NewSubscriptionRepository(client *api.Client, creds SubscriptionStore) *SubscriptionRepository {
	return &SubscriptionRepository{api: client, creds: creds}
}

func (r *SubscriptionRepository) Plans(ctx context.Context) ([]model.Plan, error) {
	var plans []model.Plan
	if err := r.api.Do(ctx, http.MethodGet, "plans", nil, &plans); err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	return plans, nil
}

// Change moves the user to tier and, once the backend accepts, updates the
// stored tier. Token and identity are left alone.
func (r *SubscriptionRepository) Change(ctx context.Context, tier int) (*model.User, error) {
	uid, err := currentUserID(r.creds)
	if err != nil {
		return nil, err
	}
	if tier < model.TierNone || tier > model.TierPremium {
		return nil, fmt.Errorf("unknown subscription tier %d", tier)
	}

	var resp struct {
		ID           int64  `json:"id"`
		Username     string `json:"username"`
		RoleID       int64  `json:"roleId"`
		Subscription *int   `json:"subscription"`
	}
	body := map[string]int{"subscription": tier}
	if err := r.api.Do(ctx, http.MethodPut, userPath(uid, "subscription"), body, &resp); err != nil {
		return nil, fmt.Errorf("change subscription: %w", err)
	}

	// The backend may answer with no body or a user without the tier; the
	// requested tier stands unless it reports one.
	user := model.User{ID: uid, Username: resp.Username, RoleID: resp.RoleID, Subscription: tier}
	if resp.ID != 0 {
		user.ID = resp.ID
	}
	if user.Username == "" {
		user.Username, _ = r.creds.Username()
	}
	if user.RoleID == 0 {
		user.RoleID, _ = r.creds.RoleID()
	}
	if resp.Subscription != nil {
		user.Subscription = *resp.Subscription
	}
	r.creds.SetSubscriptionTier(user.Subscription)
	return &user, nil
}
