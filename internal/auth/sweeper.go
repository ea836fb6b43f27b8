package auth

import (
	"context"
	"time"

	"teklip/marketplace/internal/metrics"
	"teklip/marketplace/internal/store"

	"go.uber.org/zap"
)

// Pruner drops in-process state that has aged out.
type Pruner interface {
	Prune()
}

// Sweeper periodically deletes expired auth codes. Reads never rely on it:
// every lookup re-checks expiresAt.
type Sweeper struct {
	codes    store.AuthCodeStore
	interval time.Duration
	pruners  []Pruner
	metrics  *metrics.Metrics
	log      *zap.Logger
	now      func() time.Time
}

func NewSweeper(codes store.AuthCodeStore, interval time.Duration, m *metrics.Metrics, log *zap.Logger, pruners ...Pruner) *Sweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Sweeper{
		codes:    codes,
		interval: interval,
		pruners:  pruners,
		metrics:  m,
		log:      log.Named("sweeper"),
		now:      time.Now,
	}
}

// Run sweeps once immediately and then on every tick until ctx is done.
func (s *Sweeper) Run(ctx context.Context) {
	s.runOnce(ctx)

	t := time.NewTicker(s.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Sweeper) runOnce(ctx context.Context) {
	if _, err := s.SweepOnce(ctx); err != nil {
		s.log.Warn("auth code sweep failed", zap.Error(err))
	}
}

func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	for _, p := range s.pruners {
		p.Prune()
	}

	before := s.now().UTC()
	ctxSweep, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	n, err := s.codes.DeleteExpiredAuthCodes(ctxSweep, before)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		if s.metrics != nil {
			s.metrics.AuthCodesSwept.Add(float64(n))
		}
		s.log.Info("expired auth codes removed",
			zap.Int("count", n),
			zap.Time("before", before),
		)
	}
	return n, nil
}
