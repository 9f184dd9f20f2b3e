package cron

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"standy/internal/repository"
)

// Scheduler runs the periodic maintenance jobs: downgrading lapsed
// subscriptions and pruning stale failed payment attempts.
type Scheduler struct {
	cron     *cron.Cron
	users    *repository.UserRepository
	payments *repository.PaymentRepository
	logger   *zap.Logger
}

func New(users *repository.UserRepository, payments *repository.PaymentRepository, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		users:    users,
		payments: payments,
		logger:   logger,
	}
}

// Start registers and starts all jobs.
func (s *Scheduler) Start() {
	s.logger.Info("Starting maintenance scheduler")

	// Downgrade lapsed subscriptions - every 15 minutes
	s.cron.AddFunc("*/15 * * * *", func() {
		s.expireSubscriptions()
	})

	// Prune failed payment attempts older than 90 days - daily at 03:00
	s.cron.AddFunc("0 3 * * *", func() {
		s.pruneFailedPayments()
	})

	s.cron.Start()
}

// Stop stops the scheduler and returns a context that is done once running
// jobs complete.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) expireSubscriptions() {
	users, err := s.users.FindExpiredSubscriptions(time.Now())
	if err != nil {
		s.logger.Error("Failed to query expired subscriptions", zap.Error(err))
		return
	}
	for _, u := range users {
		err := s.users.Update(u.ID, map[string]interface{}{
			"subscription":     "",
			"subscription_exp": nil,
		})
		if err != nil {
			s.logger.Error("Failed to downgrade subscription",
				zap.String("user_id", u.ID), zap.Error(err))
			continue
		}
		s.logger.Info("Subscription expired",
			zap.String("user_id", u.ID), zap.String("plan_id", u.Subscription))
	}
}

func (s *Scheduler) pruneFailedPayments() {
	cutoff := time.Now().AddDate(0, 0, -90)
	n, err := s.payments.DeleteStaleErrors(cutoff)
	if err != nil {
		s.logger.Error("Failed to prune payment history", zap.Error(err))
		return
	}
	if n > 0 {
		s.logger.Info("Pruned failed payment attempts", zap.Int64("count", n))
	}
}
