package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"pricetracker/internal/config"
)

// Scheduler drives collection runs forever, picking the next interval from the
// liveness signal. A failed run is logged and followed by the failure cooldown;
// the loop only exits when its context is cancelled.
type Scheduler struct {
	Collector *CollectorService
	Liveness  *LivenessService
	Logger    *zap.Logger
	Config    config.SchedulerConfig
}

func (s *Scheduler) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		cycleStart := time.Now()

		freq, err := s.Liveness.Frequency(ctx)
		if err != nil {
			s.Logger.Error("frequency decision failed", zap.Error(err))
			if err := sleep(ctx, s.Config.FailureCooldown); err != nil {
				return err
			}
			continue
		}
		fields := []zap.Field{
			zap.Bool("high_frequency", freq.High),
			zap.String("reason", freq.Reason),
		}
		if freq.NextStart != nil {
			fields = append(fields, zap.Time("next_start", *freq.NextStart))
		}
		s.Logger.Info("liveness decision", fields...)

		summary, err := s.Collector.Run(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.Logger.Error("collection run failed",
				zap.String("run_id", summary.RunID),
				zap.Error(err),
			)
			if err := sleep(ctx, s.Config.FailureCooldown); err != nil {
				return err
			}
			continue
		}

		elapsed := time.Since(cycleStart)
		interval := s.Config.LowInterval
		if freq.High {
			interval = s.Config.HighInterval
		}
		wait := nextWait(interval, elapsed)
		s.Logger.Info("scheduler cycle complete",
			zap.String("run_id", summary.RunID),
			zap.Duration("elapsed", elapsed),
			zap.Duration("sleep", wait),
		)
		if err := sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// nextWait charges elapsed run time against the chosen interval so cycles keep
// their cadence; a run longer than the interval starts the next cycle at once.
func nextWait(interval, elapsed time.Duration) time.Duration {
	if elapsed >= interval {
		return 0
	}
	return interval - elapsed
}
