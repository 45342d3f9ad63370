package main

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/dukerupert/supplyline/internal/api"
	"github.com/dukerupert/supplyline/internal/config"
	"github.com/dukerupert/supplyline/internal/credstore"
	"github.com/dukerupert/supplyline/internal/database"
	"github.com/dukerupert/supplyline/internal/install"
	"github.com/dukerupert/supplyline/internal/repository"
	"github.com/dukerupert/supplyline/internal/session"
	"github.com/dukerupert/supplyline/internal/store"
)

// app holds every wired component for one CLI invocation.
type app struct {
	logger  *slog.Logger
	db      *sql.DB
	rdb     *redis.Client
	creds   *credstore.Store
	session *session.Service
	batches *store.BatchStore

	profiles      *repository.ProfileRepository
	inventory     *repository.InventoryRepository
	orders        *repository.OrderRepository
	recipes       *repository.RecipeRepository
	sales         *repository.SaleRepository
	subscriptions *repository.SubscriptionRepository
}

func newApp(cfg config.Config, logger *slog.Logger) (*app, error) {
	inst, err := install.Load(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("load installation: %w", err)
	}

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	a := &app{logger: logger, db: db, batches: store.NewBatchStore(db)}

	var backend credstore.Backend
	switch cfg.Credentials.Backend {
	case config.BackendRedis:
		a.rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Credentials.Redis.Addr,
			Password: cfg.Credentials.Redis.Password,
			DB:       cfg.Credentials.Redis.DB,
		})
		backend = credstore.NewRedisBackend(a.rdb, inst.ID)
	case config.BackendMemory:
		backend = credstore.NewMemoryBackend()
	default:
		backend = credstore.NewSQLiteBackend(db, inst.ID)
	}

	sealer, err := credstore.NewSealer(inst.Secret, inst.ID)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("create sealer: %w", err)
	}
	a.creds = credstore.New(backend,
		credstore.WithSealer(sealer),
		credstore.WithLogger(logger),
	)

	// Without a backend URL only local commands can run; the repositories
	// are still built but never called.
	var client *api.Client
	if cfg.API.BaseURL != "" {
		client, err = api.New(cfg.API.BaseURL, a.creds,
			api.WithTimeout(cfg.API.Timeout),
			api.WithLogger(logger),
		)
		if err != nil {
			a.Close()
			return nil, err
		}
	}

	a.session = session.NewService(client, a.creds, logger)
	a.profiles = repository.NewProfileRepository(client, a.creds, a.session)
	a.inventory = repository.NewInventoryRepository(client, a.creds, a.batches, logger)
	a.orders = repository.NewOrderRepository(client, a.creds)
	a.recipes = repository.NewRecipeRepository(client, a.creds)
	a.sales = repository.NewSaleRepository(client, a.creds, logger)
	a.subscriptions = repository.NewSubscriptionRepository(client, a.creds)
	return a, nil
}

// logout ends the session and drops the local batch mirror with it.
func (a *app) logout() error {
	a.session.Logout()
	if err := a.batches.Clear(); err != nil {
		return fmt.Errorf("clear local batches: %w", err)
	}
	return nil
}

func (a *app) Close() {
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Warn("close redis", "error", err)
		}
	}
	if err := a.db.Close(); err != nil {
		a.logger.Warn("close database", "error", err)
	}
}
