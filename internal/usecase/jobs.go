package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/platform/logger"
	"go.uber.org/zap"
)

// Jobs runs the periodic maintenance tasks.
type Jobs struct {
	coupons       *CouponService
	subscriptions *SubscriptionService
	noticeWindow  time.Duration
	onRun         func(error)
	logger        *logger.Logger
}

func NewJobs(coupons *CouponService, subscriptions *SubscriptionService, noticeWindow time.Duration, log *logger.Logger) *Jobs {
	return &Jobs{coupons: coupons, subscriptions: subscriptions, noticeWindow: noticeWindow, logger: log.Named("jobs")}
}

// OnRun registers f to be called with the result of every run.
func (j *Jobs) OnRun(f func(error)) { j.onRun = f }

// RunOnce runs every task once. A failing task does not stop the others.
func (j *Jobs) RunOnce(ctx context.Context) error {
	var errs []error

	if n, err := j.coupons.DeactivateExpired(ctx); err != nil {
		j.logger.Error("Coupon expiry failed", zap.Error(err))
		errs = append(errs, err)
	} else {
		j.logger.Info("Expired coupons deactivated", zap.Int64("count", n))
	}

	if n, err := j.subscriptions.NotifyExpiring(ctx, j.noticeWindow); err != nil {
		j.logger.Error("Expiry notices failed", zap.Error(err))
		errs = append(errs, err)
	} else {
		j.logger.Info("Expiry notices sent", zap.Int("count", n))
	}

	if n, err := j.subscriptions.ExpireDue(ctx); err != nil {
		j.logger.Error("Subscription expiry failed", zap.Error(err))
		errs = append(errs, err)
	} else {
		j.logger.Info("Subscriptions expired", zap.Int("count", n))
	}

	err := errors.Join(errs...)
	if j.onRun != nil {
		j.onRun(err)
	}
	return err
}

// Run calls RunOnce every interval until ctx is done.
func (j *Jobs) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if err := j.RunOnce(ctx); err != nil {
			j.logger.Warn("Maintenance run finished with errors", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
