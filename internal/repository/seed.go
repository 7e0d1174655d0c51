package repository

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/forgo/txsandbox/internal/model"
)

var (
	SeedUsernames   = []string{"jack-sparrow", "white-beard", "black-beard", "brown-beard"}
	SeedOrchestras  = []string{"Jalisco Philharmonic", "Symphony No. 4", "Symphony No. 8"}
	InstrumentsEach = 10
)

// Seed fills the example database with dummy users, orchestras and
// instruments bought on random dates of the last decade.
func Seed(ctx context.Context, src Source, rng *rand.Rand) error {
	if rng == nil {
		rng = rand.New(rand.NewPCG(1, 2))
	}

	if _, err := NewUserRepository(src).BulkCreate(ctx, SeedUsernames...); err != nil {
		return err
	}

	orchestras := NewOrchestraRepository(src)
	now := time.Now()
	for _, name := range SeedOrchestras {
		o, err := orchestras.Create(ctx, &model.CreateOrchestraRequest{Name: name})
		if err != nil {
			return err
		}
		for i := 0; i < InstrumentsEach; i++ {
			req := &model.AddInstrumentRequest{
				Type:         model.InstrumentTypes[rng.IntN(len(model.InstrumentTypes))],
				PurchaseDate: now.Add(-time.Duration(rng.Int64N(int64(10 * 365 * 24 * time.Hour)))),
			}
			if _, err := orchestras.AddInstrument(ctx, o.ID, req); err != nil {
				return err
			}
		}
	}
	return nil
}
