package repository

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/dukerupert/supplyline/internal/api"
	"github.com/dukerupert/supplyline/internal/credstore"
	"github.com/dukerupert/supplyline/internal/model"
	"github.com/dukerupert/supplyline/internal/store"
)

type InventoryRepository struct {
	api     *api.Client
	creds   credstore.Reader
	batches *store.BatchStore
	logger  *slog.Logger
}

func NewInventoryRepository(client *api.Client, creds credstore.Reader, batches *store.BatchStore, logger *slog.Logger) *InventoryRepository {
	return &InventoryRepository{api: client, creds: creds, batches: batches, logger: logger}
}

// --- Supplies ---

func (r *InventoryRepository) ListSupplies(ctx context.Context) ([]model.Supply, error) {
	var supplies []model.Supply
	if err := r.api.Do(ctx, http.MethodGet, "supplies", nil, &supplies); err != nil {
		return nil, fmt.Errorf("list supplies: %w", err)
	}
	return supplies, nil
}

func (r *InventoryRepository) ListCustomSupplies(ctx context.Context) ([]model.CustomSupply, error) {
	uid, err := currentUserID(r.creds)
	if err != nil {
		return nil, err
	}
	var supplies []model.CustomSupply
	if err := r.api.Do(ctx, http.MethodGet, userPath(uid, "custom-supplies"), nil, &supplies); err != nil {
		return nil, fmt.Errorf("list custom supplies: %w", err)
	}
	return supplies, nil
}

func (r *InventoryRepository) CreateCustomSupply(ctx context.Context, cs model.CustomSupply) (*model.CustomSupply, error) {
	uid, err := currentUserID(r.creds)
	if err != nil {
		return nil, err
	}
	if cs.MinStock < 0 || cs.MaxStock < cs.MinStock {
		return nil, fmt.Errorf("stock bounds %d..%d are invalid", cs.MinStock, cs.MaxStock)
	}
	cs.UserID = uid

	var out model.CustomSupply
	if err := r.api.Do(ctx, http.MethodPost, "custom-supplies", cs, &out); err != nil {
		return nil, fmt.Errorf("create custom supply: %w", err)
	}
	return &out, nil
}

func (r *InventoryRepository) DeleteCustomSupply(ctx context.Context, id int64) error {
	if _, err := currentUserID(r.creds); err != nil {
		return err
	}
	if err := r.api.Do(ctx, http.MethodDelete, fmt.Sprintf("custom-supplies/%d", id), nil, nil); err != nil {
		return fmt.Errorf("delete custom supply: %w", err)
	}
	return nil
}

// --- Batches ---

func (r *InventoryRepository) ListBatches(ctx context.Context) ([]model.Batch, error) {
	uid, err := currentUserID(r.creds)
	if err != nil {
		return nil, err
	}
	var batches []model.Batch
	if err := r.api.Do(ctx, http.MethodGet, userPath(uid, "batches"), nil, &batches); err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	return batches, nil
}

func (r *InventoryRepository) CreateBatch(ctx context.Context, b model.Batch) (*model.Batch, error) {
	uid, err := currentUserID(r.creds)
	if err != nil {
		return nil, err
	}
	b.UserID = uid

	var out model.Batch
	if err := r.api.Do(ctx, http.MethodPost, "batches", b, &out); err != nil {
		return nil, fmt.Errorf("create batch: %w", err)
	}
	return &out, nil
}

func (r *InventoryRepository) UpdateBatch(ctx context.Context, b model.Batch) (*model.Batch, error) {
	uid, err := currentUserID(r.creds)
	if err != nil {
		return nil, err
	}
	b.UserID = uid

	var out model.Batch
	if err := r.api.Do(ctx, http.MethodPut, fmt.Sprintf("batches/%d", b.ID), b, &out); err != nil {
		return nil, fmt.Errorf("update batch: %w", err)
	}
	return &out, nil
}

func (r *InventoryRepository) DeleteBatch(ctx context.Context, id int64) error {
	if _, err := currentUserID(r.creds); err != nil {
		return err
	}
	if err := r.api.Do(ctx, http.MethodDelete, fmt.Sprintf("batches/%d", id), nil, nil); err != nil {
		return fmt.Errorf("delete batch: %w", err)
	}
	return nil
}

// SyncBatches fetches the user's batches and replaces the local mirror with
// them.
func (r *InventoryRepository) SyncBatches(ctx context.Context) ([]model.Batch, error) {
	batches, err := r.ListBatches(ctx)
	if err != nil {
		return nil, err
	}
	uid, err := currentUserID(r.creds)
	if err != nil {
		return nil, err
	}
	if err := r.batches.ReplaceAll(uid, batches); err != nil {
		return nil, fmt.Errorf("mirror batches: %w", err)
	}
	r.logger.Debug("batches synced", "user_id", uid, "count", len(batches))
	return batches, nil
}

// LocalBatches reads the mirror without touching the network.
func (r *InventoryRepository) LocalBatches() ([]model.Batch, error) {
	uid, err := currentUserID(r.creds)
	if err != nil {
		return nil, err
	}
	return r.batches.List(uid)
}
