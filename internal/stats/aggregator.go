// Package stats derives dashboard counts from the book and lending tables.
// Nothing here writes.
package stats

import (
	"context"
	"time"

	"bookshelf/internal/apperr"
	"bookshelf/pkg/models"
)

type Aggregator struct {
	Repo *Repo
	Now  func() time.Time
}

func NewAggregator(repo *Repo) *Aggregator {
	return &Aggregator{Repo: repo, Now: time.Now}
}

func (a *Aggregator) BookStats(ctx context.Context) (models.BookStats, error) {
	counts, err := a.Repo.BookStatusCounts(ctx)
	if err != nil {
		return models.BookStats{}, apperr.Store("Failed to fetch dashboard statistics", err)
	}

	s := models.BookStats{
		Available: counts[models.BookAvailable],
		Lent:      counts[models.BookLent],
	}
	for _, n := range counts {
		s.Total += n
	}
	return s, nil
}

func (a *Aggregator) LendingStats(ctx context.Context) (models.LendingStats, error) {
	lendings, err := a.Repo.Lendings(ctx)
	if err != nil {
		return models.LendingStats{}, apperr.Store("Failed to fetch dashboard statistics", err)
	}
	return SummarizeLendings(lendings, a.Now().UTC()), nil
}

func (a *Aggregator) MonthlyHistogram(ctx context.Context, year int) ([12]int, error) {
	lendings, err := a.Repo.Lendings(ctx)
	if err != nil {
		return [12]int{}, apperr.Store("Failed to fetch dashboard statistics", err)
	}
	return Histogram(lendings, year), nil
}

// Dashboard assembles the stats payload. books.overdue mirrors the
// lending overdue count.
func (a *Aggregator) Dashboard(ctx context.Context, year int) (*models.DashboardStats, error) {
	books, err := a.BookStats(ctx)
	if err != nil {
		return nil, err
	}
	ls, err := a.LendingStats(ctx)
	if err != nil {
		return nil, err
	}
	values, err := a.MonthlyHistogram(ctx, year)
	if err != nil {
		return nil, err
	}
	books.Overdue = ls.Overdue

	return &models.DashboardStats{
		Books:    books,
		Lendings: ls,
		ChartData: models.ChartData{
			Labels: models.MonthLabels,
			Values: values,
		},
	}, nil
}

func SummarizeLendings(lendings []models.Lending, now time.Time) models.LendingStats {
	s := models.LendingStats{Total: len(lendings)}
	for _, l := range lendings {
		if l.Status == models.LendingActive {
			s.Active++
		}
		if l.IsOverdue(now) {
			s.Overdue++
		}
	}
	return s
}

// Histogram counts lendings per calendar month (UTC) of lendDate within
// year. Index 0 is January; empty months stay 0.
func Histogram(lendings []models.Lending, year int) [12]int {
	var out [12]int
	for _, l := range lendings {
		d := l.LendDate.UTC()
		if d.Year() != year {
			continue
		}
		out[d.Month()-1]++
	}
	return out
}
