package ingest

import "context"

// PeriodSource serves approved contributions back from persistent storage.
type PeriodSource interface {
	ContributionsForPeriod(ctx context.Context, initiativeID string, year, quarter int) ([]Contribution, error)
}

// StoreProvider adapts a PeriodSource into a Provider for one KPI-period.
type StoreProvider struct {
	Source       PeriodSource
	InitiativeID string
	Year         int
	Quarter      int
}

func (p *StoreProvider) Name() string { return "store" }

func (p *StoreProvider) Collect(ctx context.Context) ([]Contribution, error) {
	if p.Source == nil {
		return nil, nil
	}
	return p.Source.ContributionsForPeriod(ctx, p.InitiativeID, p.Year, p.Quarter)
}
