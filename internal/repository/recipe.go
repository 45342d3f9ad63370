package repository

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dukerupert/supplyline/internal/api"
	"github.com/dukerupert/supplyline/internal/credstore"
	"github.com/dukerupert/supplyline/internal/model"
)

var ErrInvalidRecipe = errors.New("invalid recipe")

type RecipeRepository struct {
	api   *api.Client
	creds credstore.Reader
}

func NewRecipeRepository(client *api.Client, creds credstore.Reader) *RecipeRepository {
	return &RecipeRepository{api: client, creds: creds}
}

func validateRecipe(rec model.Recipe) error {
	if strings.TrimSpace(rec.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidRecipe)
	}
	if len(rec.Ingredients) == 0 {
		return fmt.Errorf("%w: at least one ingredient is required", ErrInvalidRecipe)
	}
	for _, ing := range rec.Ingredients {
		if ing.Quantity <= 0 {
			return fmt.Errorf("%w: ingredient quantity must be positive", ErrInvalidRecipe)
		}
	}
	if rec.Price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidRecipe)
	}
	return nil
}

func (r *RecipeRepository) List(ctx context.Context) ([]model.Recipe, error) {
	uid, err := currentUserID(r.creds)
	if err != nil {
		return nil, err
	}
	var recipes []model.Recipe
	if err := r.api.Do(ctx, http.MethodGet, userPath(uid, "recipes"), nil, &recipes); err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	return recipes, nil
}

func (r *RecipeRepository) Get(ctx context.Context, id int64) (*model.Recipe, error) {
	if _, err := currentUserID(r.creds); err != nil {
		return nil, err
	}
	var rec model.Recipe
	if err := r.api.Do(ctx, http.MethodGet, fmt.Sprintf("recipes/%d", id), nil, &rec); err != nil {
		return nil, fmt.Errorf("get recipe: %w", err)
	}
	return &rec, nil
}

func (r *RecipeRepository) Create(ctx context.Context, rec model.Recipe) (*model.Recipe, error) {
	uid, err := currentUserID(r.creds)
	if err != nil {
		return nil, err
	}
	if err := validateRecipe(rec); err != nil {
		return nil, err
	}
	rec.UserID = uid

	var out model.Recipe
	if err := r.api.Do(ctx, http.MethodPost, "recipes", rec, &out); err != nil {
		return nil, fmt.Errorf("create recipe: %w", err)
	}
	return &out, nil
}

func (r *RecipeRepository) Update(ctx context.Context, rec model.Recipe) (*model.Recipe, error) {
	uid, err := currentUserID(r.creds)
	if err != nil {
		return nil, err
	}
	if err := validateRecipe(rec); err != nil {
		return nil, err
	}
	rec.UserID = uid

	var out model.Recipe
	if err := r.api.Do(ctx, http.MethodPut, fmt.Sprintf("recipes/%d", rec.ID), rec, &out); err != nil {
		return nil, fmt.Errorf("update recipe: %w", err)
	}
	return &out, nil
}

func (r *RecipeRepository) Delete(ctx context.Context, id int64) error {
	if _, err := currentUserID(r.creds); err != nil {
		return err
	}
	if err := r.api.Do(ctx, http.MethodDelete, fmt.Sprintf("recipes/%d", id), nil, nil); err != nil {
		return fmt.Errorf("delete recipe: %w", err)
	}
	return nil
}
