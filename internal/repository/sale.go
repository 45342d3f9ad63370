package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/dukerupert/supplyline/internal/api"
	"github.com/dukerupert/supplyline/internal/credstore"
	"github.com/dukerupert/supplyline/internal/model"
)

var ErrEmptySale = errors.New("sale has no lines")

type SaleRepository struct {
	api    *api.Client
	creds  credstore.Reader
	logger *slog.Logger
}

func NewSaleRepository(client *api.Client, creds credstore.Reader, logger *slog.Logger) *SaleRepository {
	return &SaleRepository{api: client, creds: creds, logger: logger}
}

func (r *SaleRepository) List(ctx context.Context) ([]model.Sale, error) {
	uid, err := currentUserID(r.creds)
	if err != nil {
		return nil, err
	}
	var sales []model.Sale
	if err := r.api.Do(ctx, http.MethodGet, userPath(uid, "sales"), nil, &sales); err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	return sales, nil
}

func (r *SaleRepository) Create(ctx context.Context, lines []model.SaleLine) (*model.Sale, error) {
	uid, err := currentUserID(r.creds)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrEmptySale
	}

	var out model.Sale
	if err := r.api.Do(ctx, http.MethodPost, "sales", model.Sale{UserID: uid, Lines: lines}, &out); err != nil {
		return nil, fmt.Errorf("create sale: %w", err)
	}
	return &out, nil
}

// Watch streams new sales from the backend's live feed and calls fn for each
// one until ctx is done, the server closes the feed, or fn returns an error.
func (r *SaleRepository) Watch(ctx context.Context, fn func(model.Sale) error) error {
	if _, err := currentUserID(r.creds); err != nil {
		return err
	}

	u := r.api.URL("sales/stream")
	if u.Scheme == "https" {
		u.Scheme = "wss"
	} else {
		u.Scheme = "ws"
	}

	conn, _, err := websocket.Dial(ctx, u.String(), &websocket.DialOptions{
		HTTPClient: r.api.HTTPClient(),
	})
	if err != nil {
		return fmt.Errorf("dial sales stream: %w", err)
	}
	defer conn.CloseNow()
	r.logger.Debug("sales stream connected")

	for {
		var sale model.Sale
		if err := wsjson.Read(ctx, conn, &sale); err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure {
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read sale: %w", err)
		}
		if err := fn(sale); err != nil {
			conn.Close(websocket.StatusNormalClosure, "")
			return err
		}
	}
}
