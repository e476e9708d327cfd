package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/pribylovaa/school-site/internal/models"
	"github.com/pribylovaa/school-site/internal/pkg/log"
)

const maxTrackedPathLen = 512

// RecordView учитывает просмотр path за текущий день UTC.
// Query и фрагмент отбрасываются, чтобы число счётчиков оставалось ограниченным.
func (s *Service) RecordView(ctx context.Context, path string) error {
	const op = "service.analytics.RecordView"

	lg := log.From(ctx).With("op", op)

	path = strings.TrimSpace(path)
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}

	if !strings.HasPrefix(path, "/") || len(path) > maxTrackedPathLen {
		lg.Warn("invalid path")
		return fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	day := s.now().Format("2006-01-02")

	if err := s.counters.IncrView(ctx, path, day); err != nil {
		return fromStorage(lg, op, err)
	}

	return nil
}

func (s *Service) ViewStats(ctx context.Context) (*models.ViewStats, error) {
	const op = "service.analytics.ViewStats"

	lg := log.From(ctx).With("op", op)

	stats, err := s.counters.ViewStats(ctx)
	if err != nil {
		return nil, fromStorage(lg, op, err)
	}

	return stats, nil
}
