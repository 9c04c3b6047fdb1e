package leave

import (
	"context"
	"sync"
	"time"

	"go-leave/internal/clock"
	"go-leave/internal/shared/apperror"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultSweepConcurrency = 4
	DefaultSweepBatchSize   = 500
)

// Expirer is the engine entry point the sweeper drives.
type Expirer interface {
	Expire(ctx context.Context, id string, now time.Time) (LeaveResponse, error)
}

type SweepResult struct {
	At           time.Time
	Scanned      int
	Cancelled    int
	Skipped      int
	Failed       int
	CancelledIDs []string
}

type SweeperOption func(*Sweeper)

func WithSweepConcurrency(n int) SweeperOption {
	return func(s *Sweeper) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

func WithSweepBatchSize(n int) SweeperOption {
	return func(s *Sweeper) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

func WithSweepThreshold(d time.Duration) SweeperOption {
	return func(s *Sweeper) {
		if d > 0 {
			s.threshold = d
		}
	}
}

func WithSweepClock(c clock.Clock) SweeperOption {
	return func(s *Sweeper) { s.clock = c }
}

func WithSweepLogger(l *zap.Logger) SweeperOption {
	return func(s *Sweeper) {
		if l != nil {
			s.logger = l.Named("leave.sweeper")
		}
	}
}

// Sweeper auto-cancels requests left pending longer than the threshold.
type Sweeper struct {
	repo        Repository
	engine      Expirer
	clock       clock.Clock
	threshold   time.Duration
	concurrency int
	batchSize   int
	logger      *zap.Logger
}

func NewSweeper(repo Repository, engine Expirer, opts ...SweeperOption) *Sweeper {
	s := &Sweeper{
		repo:        repo,
		engine:      engine,
		clock:       clock.System(),
		threshold:   DefaultExpirationThreshold,
		concurrency: DefaultSweepConcurrency,
		batchSize:   DefaultSweepBatchSize,
		logger:      zap.L().Named("leave.sweeper"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RunOnce expires every candidate stale at now, a page of batchSize at a time.
// A failure on one record is logged and counted; the rest still run.
func (s *Sweeper) RunOnce(ctx context.Context, now time.Time) (SweepResult, error) {
	result := SweepResult{At: now}
	cutoff := now.Add(-s.threshold)

	var after *ExpiryCursor
	for {
		page, err := s.repo.FindExpirable(ctx, cutoff, after, s.batchSize)
		if err != nil {
			s.logger.Error("sweep candidate query failed", zap.Error(err))
			return result, err
		}
		if len(page) == 0 {
			break
		}
		result.Scanned += len(page)
		s.expirePage(ctx, page, now, &result)

		if len(page) < s.batchSize || ctx.Err() != nil {
			break
		}
		last := page[len(page)-1]
		after = &ExpiryCursor{UpdatedAt: last.UpdatedAt, ID: last.ID}
	}

	s.logger.Info("sweep finished",
		zap.Time("at", now),
		zap.Int("scanned", result.Scanned),
		zap.Int("cancelled", result.Cancelled),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed),
	)
	return result, ctx.Err()
}

func (s *Sweeper) expirePage(ctx context.Context, page []LeaveRequest, now time.Time, result *SweepResult) {
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for _, l := range page {
		id := l.ID.String()
		g.Go(func() error {
			_, err := s.engine.Expire(gctx, id, now)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				result.Cancelled++
				result.CancelledIDs = append(result.CancelledIDs, id)
			case apperror.HasCode(err, apperror.CodeInvalidState):
				// moved on since the query, e.g. approved in the meantime
				result.Skipped++
				s.logger.Debug("sweep skipped leave", zap.String("leave_id", id), zap.Error(err))
			default:
				result.Failed++
				s.logger.Warn("sweep expire failed", zap.String("leave_id", id), zap.Error(err))
			}
			return nil
		})
	}
	_ = g.Wait()
}

// Run sweeps every interval until ctx is done.
func (s *Sweeper) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Hour
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("sweeper started", zap.Duration("interval", interval), zap.Duration("threshold", s.threshold))

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("sweeper stopped")
			return nil
		case <-ticker.C:
			if _, err := s.RunOnce(ctx, s.clock.Now()); err != nil && ctx.Err() == nil {
				s.logger.Error("sweep failed", zap.Error(err))
			}
		}
	}
}
