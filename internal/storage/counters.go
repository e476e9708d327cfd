package storage

//go:generate mockgen -source=counters.go -destination=../../mocks/mock_counters.go -package=mocks

import (
	"context"

	"github.com/pribylovaa/school-site/internal/models"
)

// Counters хранит статистику просмотров.
type Counters interface {
	// IncrView учитывает один просмотр path за день day (YYYY-MM-DD).
	IncrView(ctx context.Context, path, day string) error
	ViewStats(ctx context.Context) (*models.ViewStats, error)
}
