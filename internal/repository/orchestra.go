package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/forgo/txsandbox/internal/database"
	"github.com/forgo/txsandbox/internal/model"
)

// OrchestraRepository handles orchestra and instrument data access
type OrchestraRepository struct {
	src Source
}

// NewOrchestraRepository creates a new orchestra repository
func NewOrchestraRepository(src Source) *OrchestraRepository {
	return &OrchestraRepository{src: src}
}

// Create validates req and inserts a new orchestra
func (r *OrchestraRepository) Create(ctx context.Context, req *model.CreateOrchestraRequest) (*model.Orchestra, error) {
	if err := validate(req.Validate()); err != nil {
		return nil, err
	}

	o := &model.Orchestra{ID: uuid.NewString(), Name: req.Name}
	if _, err := r.src.Querier(ctx).ExecContext(ctx,
		`INSERT INTO orchestras (id, name) VALUES (?, ?)`, o.ID, o.Name); err != nil {
		return nil, fmt.Errorf("%w: create orchestra: %v", database.ErrQuery, err)
	}
	return o, nil
}

// AddInstrument validates req and attaches a new instrument to the orchestra
func (r *OrchestraRepository) AddInstrument(ctx context.Context, orchestraID string, req *model.AddInstrumentRequest) (*model.Instrument, error) {
	if err := validate(req.Validate()); err != nil {
		return nil, err
	}

	inst := &model.Instrument{
		ID:           uuid.NewString(),
		OrchestraID:  orchestraID,
		Type:         req.Type,
		PurchaseDate: req.PurchaseDate.UTC(),
	}
	if _, err := r.src.Querier(ctx).ExecContext(ctx,
		`INSERT INTO instruments (id, orchestra_id, type, purchase_date) VALUES (?, ?, ?, ?)`,
		inst.ID, inst.OrchestraID, string(inst.Type), inst.PurchaseDate); err != nil {
		return nil, fmt.Errorf("%w: add instrument: %v", database.ErrQuery, err)
	}
	return inst, nil
}

// Instruments returns the instruments of an orchestra ordered by purchase date
func (r *OrchestraRepository) Instruments(ctx context.Context, orchestraID string) ([]model.Instrument, error) {
	rows, err := r.src.Querier(ctx).QueryContext(ctx,
		`SELECT id, orchestra_id, type, purchase_date FROM instruments
		 WHERE orchestra_id = ? ORDER BY purchase_date, id`, orchestraID)
	if err != nil {
		return nil, fmt.Errorf("%w: list instruments: %v", database.ErrQuery, err)
	}
	defer rows.Close()

	var out []model.Instrument
	for rows.Next() {
		var (
			inst model.Instrument
			typ  string
		)
		if err := rows.Scan(&inst.ID, &inst.OrchestraID, &typ, &inst.PurchaseDate); err != nil {
			return nil, fmt.Errorf("%w: scan instrument: %v", database.ErrQuery, err)
		}
		inst.Type = model.InstrumentType(typ)
		out = append(out, inst)
	}
	return out, rows.Err()
}

// Count returns the number of orchestras visible to ctx
func (r *OrchestraRepository) Count(ctx context.Context) (int, error) {
	return countRows(ctx, r.src, "orchestras")
}

// CountInstruments returns the number of instruments visible to ctx
func (r *OrchestraRepository) CountInstruments(ctx context.Context) (int, error) {
	return countRows(ctx, r.src, "instruments")
}
