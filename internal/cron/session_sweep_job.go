package cron

import (
	"context"
	"errors"

	"github.com/yassinehussein4-cyber/storefront/pkg/logger"
)

const sessionSweepJobName = "session_sweep"

// Sweeper closes idle sessions; *session.Registry satisfies it.
type Sweeper interface {
	Sweep(ctx context.Context) (int, error)
}

type sessionSweepJob struct {
	sweeper Sweeper
	logg    *logger.Logger
}

// NewSessionSweepJob closes sessions that have been idle past their TTL.
func NewSessionSweepJob(sweeper Sweeper, logg *logger.Logger) (Job, error) {
	if sweeper == nil {
		return nil, errors.New("session sweeper required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &sessionSweepJob{sweeper: sweeper, logg: logg}, nil
}

func (j *sessionSweepJob) Name() string { return sessionSweepJobName }

func (j *sessionSweepJob) Run(ctx context.Context) error {
	swept, err := j.sweeper.Sweep(ctx)
	j.logg.Debug(j.logg.WithField(ctx, "sessions", swept), "session sweep finished")
	return err
}
