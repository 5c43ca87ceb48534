// Copyright (c) 2025-2026 Reliant Windows Ltd.
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/nagasriramnani/Reliant-Windows-ERP-CRM-Prototype/internal/predictor"
)

// retrainTimeout bounds one retraining run.
const retrainTimeout = 5 * time.Minute

// Scheduler handles periodic background work, currently the nightly
// price model retrain.
type Scheduler struct {
	predictor *predictor.Service
	cron      *cron.Cron
	logger    *slog.Logger
	spec      string
}

// New creates a new scheduler instance. spec is a standard five-field
// cron expression for the retrain job.
func New(pred *predictor.Service, spec string, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		predictor: pred,
		cron:      cron.New(),
		logger:    logger,
		spec:      spec,
	}
}

// Start registers the retrain job and begins the scheduler.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.spec, s.retrain)
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "retrain_spec", s.spec, "jobs", len(s.cron.Entries()))
	return nil
}

// Stop gracefully stops the scheduler, waiting for a running job.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// retrain refits the price model from current quotation history. The
// old model keeps serving if the run fails.
func (s *Scheduler) retrain() {
	ctx, cancel := context.WithTimeout(context.Background(), retrainTimeout)
	defer cancel()

	start := time.Now()
	m, err := s.predictor.Retrain(ctx)
	if err != nil {
		s.logger.Error("scheduled retrain failed", "error", err)
		return
	}

	s.logger.Info("scheduled retrain complete",
		"rows", m.TrainingRows,
		"mae", m.MAE,
		"duration", time.Since(start),
	)
}
