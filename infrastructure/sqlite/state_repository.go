package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"

	"stocksence/models"
)

// StateRepository keeps the serialized store state in one named row.
type StateRepository struct {
	db   *DB
	slot string
	now  func() time.Time
}

func NewStateRepository(db *DB, slot string) (*StateRepository, error) {
	if db == nil {
		return nil, errors.New("sqlite db is required")
	}
	slot = strings.TrimSpace(slot)
	if slot == "" {
		return nil, errors.New("state slot name is required")
	}
	return &StateRepository{db: db, slot: slot, now: time.Now}, nil
}

// Load returns found=false when the slot has never been written.
func (r *StateRepository) Load(ctx context.Context) (models.State, bool, error) {
	var row models.StateSlot
	err := r.db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewSelect().Model(&row).Where("name = ?", r.slot).Limit(1).Scan(ctx)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return models.NewState(), false, nil
	}
	if err != nil {
		return models.State{}, false, fmt.Errorf("load state slot %s: %w", r.slot, err)
	}

	state := models.NewState()
	if err := json.Unmarshal([]byte(row.Payload), &state); err != nil {
		return models.State{}, false, fmt.Errorf("decode state slot %s: %w", r.slot, err)
	}
	normalize(&state)
	return state, true, nil
}

// Save replaces the slot with a full snapshot in one write transaction.
func (r *StateRepository) Save(ctx context.Context, state models.State) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	row := &models.StateSlot{Name: r.slot, Payload: string(payload), UpdatedAt: r.now().UTC()}
	err = r.db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewInsert().
			Model(row).
			On("CONFLICT (name) DO UPDATE").
			Set("payload = EXCLUDED.payload").
			Set("updated_at = EXCLUDED.updated_at").
			Exec(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("save state slot %s: %w", r.slot, err)
	}
	return nil
}

// normalize replaces null collections from older payloads with empty slices.
func normalize(s *models.State) {
	if s.Products == nil {
		s.Products = []models.Product{}
	}
	if s.Sales == nil {
		s.Sales = []models.Sale{}
	}
	if s.DeletedSales == nil {
		s.DeletedSales = []models.DeletedSale{}
	}
	if s.Users == nil {
		s.Users = []models.User{}
	}
	if s.SerialNumbers == nil {
		s.SerialNumbers = []models.SerialNumber{}
	}
	if s.AuditLogs == nil {
		s.AuditLogs = []models.AuditLog{}
	}
}
