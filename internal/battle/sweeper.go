package battle

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/streamarena/pk-battle/internal/logger"
	"github.com/streamarena/pk-battle/internal/metrics"
	"github.com/streamarena/pk-battle/internal/repository"
)

// Sweeper periodically progresses battles whose timers expired while no
// client was polling. Timer expiry is applied lazily on each request, so the
// sweeper only covers battles every participant has abandoned.
type Sweeper struct {
	battleRepo repository.Battle
	service    Service
	interval   time.Duration
	scheduler  gocron.Scheduler
}

// NewSweeper creates a sweeper on its own scheduler
func NewSweeper(battleRepo repository.Battle, service Service, interval time.Duration) (*Sweeper, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	return &Sweeper{
		battleRepo: battleRepo,
		service:    service,
		interval:   interval,
		scheduler:  scheduler,
	}, nil
}

// Start schedules the sweep job and begins running it
func (s *Sweeper) Start() error {
	_, err := s.scheduler.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(s.Sweep),
	)
	if err != nil {
		return err
	}
	s.scheduler.Start()
	return nil
}

// Stop shuts the scheduler down, waiting for a running sweep to finish
func (s *Sweeper) Stop() error {
	return s.scheduler.Shutdown()
}

// Sweep progresses one batch of stalled battles
func (s *Sweeper) Sweep() {
	ctx := context.Background()
	now := time.Now().UTC()

	ids, err := s.battleRepo.ListTimedOut(ctx, now, SweepBatchLimit)
	if err != nil {
		logger.Error(LogMsgSweepProgressFailed, "error", err)
		return
	}
	if len(ids) == 0 {
		return
	}

	logger.Info(LogMsgSweepStarted, "stalled", len(ids))
	progressed := 0
	for _, id := range ids {
		if err := s.service.Progress(ctx, id); err != nil {
			logger.Warn(LogMsgSweepProgressFailed, "battle_id", id, "error", err)
			continue
		}
		progressed++
		metrics.SweeperBattlesProgressed.Inc()
	}
	logger.Info(LogMsgSweepFinished, "progressed", progressed)
}
