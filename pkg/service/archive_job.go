// Nightly scheduler for the archive service.
package service

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/nexora/nexora/pkg/utils"
)

// ArchiveJob runs the archiver once a day at a fixed local hour.
type ArchiveJob struct {
	service *ArchiveService
	locker  Locker
	logger  *slog.Logger
	hour    int
	running atomic.Bool

	now func() time.Time
}

// NewArchiveJob schedules archive runs at the given hour (0-23).
func NewArchiveJob(service *ArchiveService, locker Locker, hour int) *ArchiveJob {
	return &ArchiveJob{
		service: service,
		locker:  locker,
		logger:  utils.GetLogger(),
		hour:    hour,
		now:     time.Now,
	}
}

// Start launches the scheduler loop. It stops when ctx is cancelled.
func (j *ArchiveJob) Start(ctx context.Context) {
	go j.loop(ctx)
}

func (j *ArchiveJob) loop(ctx context.Context) {
	for {
		wait := j.untilNextRun()
		j.logger.Info("Next archive run scheduled", "in", wait.Round(time.Minute).String())

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			j.RunNow(ctx)
		}
	}
}

// untilNextRun returns the duration until the next occurrence of the
// configured hour.
func (j *ArchiveJob) untilNextRun() time.Duration {
	now := j.now()
	next := time.Date(now.Year(), now.Month(), now.Day(), j.hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}

// RunNow executes one archive run immediately, if no other run is in
// progress here or on another instance. Returns nil when skipped.
func (j *ArchiveJob) RunNow(ctx context.Context) *ArchiveResult {
	if !j.running.CompareAndSwap(false, true) {
		j.logger.Info("Archive run already in progress, skipping")
		return nil
	}
	defer j.running.Store(false)

	if !j.locker.TryLock(ctx) {
		j.logger.Info("Archive lock held elsewhere, skipping run")
		return nil
	}
	defer j.locker.Unlock(ctx)

	return j.service.Run(ctx)
}
