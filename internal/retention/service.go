package retention

import (
	"context"
	"log/slog"

	"github.com/jonboulle/clockwork"

	"healthmon/internal/db"
)

// Service prunes resolved alerts from the journal.
type Service struct {
	repo          *db.Repository
	retentionDays int
	log           *slog.Logger
	clock         clockwork.Clock
}

func NewService(repo *db.Repository, days int, logger *slog.Logger, clock clockwork.Clock) *Service {
	if days <= 0 {
		days = 14
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Service{repo: repo, retentionDays: days, log: logger, clock: clock}
}

func (s *Service) Run(ctx context.Context) {
	cutoff := s.clock.Now().UTC().AddDate(0, 0, -s.retentionDays)
	n, err := s.repo.DeleteResolvedBefore(ctx, cutoff)
	if err != nil {
		s.log.Error("retention cleanup failed", "err", err)
		return
	}
	s.log.Info("retention cleanup completed", "cutoff", cutoff, "deleted", n)
}
