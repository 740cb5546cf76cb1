// Package seed loads the instrument catalogue and the analysis watchlist from a YAML file.
//
// Example:
//
//	instruments:
//	  - code: "005930"
//	    name: Samsung Electronics
//	    market: KOSPI
//	watchlist:
//	  - code: "005930"
//	    priority: 1
package seed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	analysisentity "stock_dashboard/internal/feature/analysis/domain/entity"
	instrumententity "stock_dashboard/internal/feature/instrument/domain/entity"
)

// InstrumentUpserter は銘柄マスタをコードで登録・更新します。
type InstrumentUpserter interface {
	Upsert(ctx context.Context, instruments []instrumententity.Instrument) error
}

// WatchlistUpserter はウォッチリストをコードで登録・更新します。
type WatchlistUpserter interface {
	Upsert(ctx context.Context, items []analysisentity.Watchlist) error
}

// File is the document layout of a seed file.
type File struct {
	Instruments []Instrument `yaml:"instruments" validate:"dive"`
	Watchlist   []WatchItem  `yaml:"watchlist" validate:"dive"`
}

// Instrument is one catalogue entry. IsActive defaults to true and SortKey to its position in the file.
type Instrument struct {
	Code     string `yaml:"code" validate:"required,len=6,numeric"`
	Name     string `yaml:"name" validate:"required"`
	Market   string `yaml:"market" validate:"oneof=KOSPI KOSDAQ"`
	IsActive *bool  `yaml:"is_active"`
	SortKey  *int   `yaml:"sort_key"`
}

// WatchItem is one watchlist entry. IsActive defaults to true and Priority to DefaultPriority.
type WatchItem struct {
	Code     string `yaml:"code" validate:"required,len=6,numeric"`
	IsActive *bool  `yaml:"is_active"`
	Priority *int   `yaml:"priority" validate:"omitnil,gte=0"`
}

// Result reports how many rows were upserted.
type Result struct {
	Instruments int
	Watchlist   int
}

var validate = validator.New()

// Parse decodes and validates a seed document. Unknown keys are rejected.
func Parse(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, fmt.Errorf("seed: decode: %w", err)
	}
	if err := validate.Struct(&f); err != nil {
		return nil, fmt.Errorf("seed: %w", err)
	}
	return &f, nil
}

// LoadFile opens and parses the seed file at path.
func LoadFile(path string) (*File, error) {
	fp, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("seed: %w", err)
	}
	defer func() {
		if err := fp.Close(); err != nil {
			slog.Warn("failed to close seed file", "path", path, "error", err)
		}
	}()
	return Parse(fp)
}

// Apply upserts the catalogue first, then the watchlist.
func Apply(ctx context.Context, f *File, instruments InstrumentUpserter, watchlist WatchlistUpserter) (Result, error) {
	insts := make([]instrumententity.Instrument, len(f.Instruments))
	known := make(map[string]struct{}, len(f.Instruments))
	for i, in := range f.Instruments {
		insts[i] = instrumententity.Instrument{
			Code:     in.Code,
			Name:     in.Name,
			Market:   instrumententity.Market(in.Market),
			IsActive: boolOr(in.IsActive, true),
			SortKey:  intOr(in.SortKey, i),
		}
		known[in.Code] = struct{}{}
	}
	if err := instruments.Upsert(ctx, insts); err != nil {
		return Result{}, fmt.Errorf("seed instruments: %w", err)
	}

	items := make([]analysisentity.Watchlist, len(f.Watchlist))
	for i, w := range f.Watchlist {
		if _, ok := known[w.Code]; !ok {
			slog.Warn("watchlist code is not in this seed file's instruments", "code", w.Code)
		}
		items[i] = analysisentity.Watchlist{
			Code:     w.Code,
			IsActive: boolOr(w.IsActive, true),
			Priority: intOr(w.Priority, analysisentity.DefaultPriority),
		}
	}
	if err := watchlist.Upsert(ctx, items); err != nil {
		return Result{Instruments: len(insts)}, fmt.Errorf("seed watchlist: %w", err)
	}

	slog.Info("seed applied", "instruments", len(insts), "watchlist", len(items))
	return Result{Instruments: len(insts), Watchlist: len(items)}, nil
}

func boolOr(p *bool, fallback bool) bool {
	if p == nil {
		return fallback
	}
	return *p
}

func intOr(p *int, fallback int) int {
	if p == nil {
		return fallback
	}
	return *p
}
