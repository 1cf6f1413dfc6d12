package worker

import (
	"context"
	"errors"
	"time"

	"medibook/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const sweepLockKey = "medibook:sweeper:lock"

// AbsenceSweeper is the part of the booking service the sweeper drives.
type AbsenceSweeper interface {
	SweepAbsent(ctx context.Context, scope models.BookingScope) (int, error)
}

// Sweeper periodically marks elapsed active bookings as absent.
// With a redis client only one instance sweeps per interval.
type Sweeper struct {
	target      AbsenceSweeper
	redis       *redis.Client
	retryPolicy RetryPolicy
	interval    time.Duration
	instanceID  string
	logger      zerolog.Logger
}

// NewSweeper builds a sweeper with sane defaults.
func NewSweeper(target AbsenceSweeper, redisClient *redis.Client, interval time.Duration, retry RetryPolicy, logger *zerolog.Logger) *Sweeper {
	if interval <= 0 {
		interval = models.DefaultSweepIntervalSeconds * time.Second
	}
	if retry.MaxRetries == 0 {
		retry = DefaultRetryPolicy()
	}
	l := zerolog.Nop()
	if logger != nil {
		l = logger.With().Str("component", "sweeper").Logger()
	}

	return &Sweeper{
		target:      target,
		redis:       redisClient,
		retryPolicy: retry,
		interval:    interval,
		instanceID:  uuid.NewString(),
		logger:      l,
	}
}

// Start runs one sweep immediately and then every interval until ctx is done.
func (s *Sweeper) Start(ctx context.Context) {
	s.logger.Info().Dur("interval", s.interval).Msg("sweeper started")
	defer s.logger.Info().Msg("sweeper stopped")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if _, err := s.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error().Err(err).Msg("sweep failed")
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// RunOnce performs a single guarded sweep with retries.
// Returns 0 without sweeping when another instance holds the lock.
func (s *Sweeper) RunOnce(ctx context.Context) (int, error) {
	acquired, err := s.acquire(ctx)
	if err != nil {
		// redis недоступен: обходим локально, статусы всё равно идемпотентны
		s.logger.Warn().Err(err).Msg("sweep lock unavailable, sweeping locally")
	} else if !acquired {
		s.logger.Debug().Msg("sweep skipped, lock held by another instance")
		return 0, nil
	}

	var swept int
	err = s.retryPolicy.Do(ctx, func(ctx context.Context) error {
		n, err := s.target.SweepAbsent(ctx, models.BookingScope{})
		if err != nil {
			s.logger.Warn().Err(err).Msg("sweep attempt failed")
			return err
		}
		swept = n
		return nil
	})
	if err != nil {
		return 0, err
	}

	if swept > 0 {
		s.logger.Info().Int("swept", swept).Msg("bookings marked absent")
	}
	return swept, nil
}

func (s *Sweeper) acquire(ctx context.Context) (bool, error) {
	if s.redis == nil {
		return true, nil
	}
	// lock живёт чуть меньше интервала, чтобы следующий тик мог его взять
	ttl := s.interval - s.interval/10
	if ttl <= 0 {
		ttl = s.interval
	}
	return s.redis.SetNX(ctx, sweepLockKey, s.instanceID, ttl).Result()
}
