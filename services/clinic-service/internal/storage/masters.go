package storage

import (
	"context"
	"fmt"

	"github.com/carelane/hms/libs/db"
	"github.com/carelane/hms/services/clinic-service/internal/model"
	"github.com/google/uuid"
)

type MasterRepository struct {
	pool *db.Pool
}

func NewMasterRepository(pool *db.Pool) *MasterRepository {
	return &MasterRepository{pool: pool}
}

func scanState(row rowScanner) (model.State, error) {
	var s model.State
	err := row.Scan(&s.ID, &s.State, &s.Enabled, &s.CreatedOn)
	return s, err
}

func scanCity(row rowScanner) (model.City, error) {
	var c model.City
	err := row.Scan(&c.ID, &c.StateID, &c.City, &c.Enabled, &c.CreatedOn)
	return c, err
}

func (r *MasterRepository) CreateState(ctx context.Context, name string) (model.State, error) {
	s, err := scanState(r.pool.QueryRow(ctx, `
		INSERT INTO states (id, state) VALUES ($1, $2)
		RETURNING id, state, is_enable, created_on
	`, uuid.NewString(), name))
	if err != nil {
		return model.State{}, fmt.Errorf("insert state: %w", err)
	}
	return s, nil
}

func (r *MasterRepository) ListStates(ctx context.Context) ([]model.State, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, state, is_enable, created_on FROM states
		WHERE is_enable ORDER BY state
	`)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanState)
}

func (r *MasterRepository) CreateCity(ctx context.Context, stateID, name string) (model.City, error) {
	c, err := scanCity(r.pool.QueryRow(ctx, `
		INSERT INTO cities (id, state_id, city) VALUES ($1, $2, $3)
		RETURNING id, state_id, city, is_enable, created_on
	`, uuid.NewString(), stateID, name))
	if err != nil {
		return model.City{}, fmt.Errorf("insert city: %w", err)
	}
	return c, nil
}

func (r *MasterRepository) ListCities(ctx context.Context, stateID string) ([]model.City, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, state_id, city, is_enable, created_on FROM cities
		WHERE state_id = $1 AND is_enable ORDER BY city
	`, stateID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanCity)
}
