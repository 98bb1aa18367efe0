// Package retrain runs the periodic model refresh that accompanies AI
// profiles. It shares nothing with the reporter beyond the output.
package retrain

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// DefaultInterval is the refresh period used when none is configured.
const DefaultInterval = 2 * time.Minute

type Trainer interface {
	Retrain(ctx context.Context) (accuracy float64, err error)
}

type Notifier interface {
	Notify(text string)
}

type Service struct {
	trainer Trainer
	out     Notifier
	timeout time.Duration
	log     *slog.Logger
}

func NewService(trainer Trainer, out Notifier, timeout time.Duration, logger *slog.Logger) *Service {
	if timeout <= 0 {
		timeout = DefaultInterval
	}
	return &Service{trainer: trainer, out: out, timeout: timeout, log: logger}
}

// Run performs one retraining pass and reports the outcome.
func (s *Service) Run(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	acc, err := s.trainer.Retrain(ctx)
	if err != nil {
		s.log.Warn("model retrain failed", "err", err)
		s.out.Notify("\nAI Model: Retraining failed, keeping previous model\n")
		return
	}
	s.log.Info("model retrained", "accuracy", acc)
	s.out.Notify(fmt.Sprintf("\nAI Model: Retraining on new data...\n   Training accuracy: %.1f%%\n   Model updated successfully\n", acc))
}
