// Package usecase implements the business logic for the instrument catalogue.
package usecase

import (
	"context"

	"stock_dashboard/internal/feature/instrument/domain/entity"
)

// InstrumentRepository abstracts the persistence layer for the instrument catalogue.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type InstrumentRepository interface {
	FindByCode(ctx context.Context, code string) (*entity.Instrument, error)
	ListActive(ctx context.Context) ([]entity.Instrument, error)
}

// InstrumentUsecase provides read access to the catalogue.
type InstrumentUsecase struct {
	repo InstrumentRepository
}

// NewInstrumentUsecase creates a new InstrumentUsecase with the given repository.
func NewInstrumentUsecase(r InstrumentRepository) *InstrumentUsecase {
	return &InstrumentUsecase{repo: r}
}

// ListActiveInstruments returns all active instruments ordered by sort key.
func (u *InstrumentUsecase) ListActiveInstruments(ctx context.Context) ([]entity.Instrument, error) {
	return u.repo.ListActive(ctx)
}

// GetInstrument returns the instrument for code, or domain.ErrInstrumentNotFound.
func (u *InstrumentUsecase) GetInstrument(ctx context.Context, code string) (*entity.Instrument, error) {
	return u.repo.FindByCode(ctx, code)
}
