// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package scheduler runs the periodic housekeeping jobs: expired
// verification codes, finished rate-limit windows and stale sessions.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultSchedule runs the purge every ten minutes.
const DefaultSchedule = "*/10 * * * *"

// Purger drops expired entries and reports how many were removed.
type Purger interface {
	PurgeExpired(ctx context.Context) (int, error)
}

type task struct {
	name   string
	purger Purger
}

// Scheduler owns a cron instance and the purge tasks it drives.
type Scheduler struct {
	cron     *cron.Cron
	schedule string
	tasks    []task
	logger   *slog.Logger
}

// New creates a scheduler that runs its tasks on schedule. An empty schedule
// selects DefaultSchedule.
func New(schedule string, logger *slog.Logger) *Scheduler {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		cron:     cron.New(),
		schedule: schedule,
		logger:   logger,
	}
}

// Add registers a purge task under name. A nil purger is ignored.
func (s *Scheduler) Add(name string, p Purger) {
	if p == nil {
		return
	}
	s.tasks = append(s.tasks, task{name: name, purger: p})
}

// Start schedules the purge job and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.RunOnce); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("scheduler started", "schedule", s.schedule, "tasks", len(s.tasks))
	return nil
}

// Stop waits for a running job to finish and stops the cron loop.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// RunOnce executes every task immediately. Failures are logged and do not
// stop the remaining tasks.
func (s *Scheduler) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	for _, t := range s.tasks {
		n, err := t.purger.PurgeExpired(ctx)
		if err != nil {
			s.logger.Error("purge failed", "task", t.name, "error", err)
			continue
		}
		if n > 0 {
			s.logger.Info("purged expired entries", "task", t.name, "removed", n)
		}
	}
}
