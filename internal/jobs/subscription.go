// Package jobs runs the background sweeps that keep reporter access in
// sync with billing state.
package jobs

import (
	"context"
	"time"

	"github.com/prajanews/newsdesk/internal/models"
	internalsettings "github.com/prajanews/newsdesk/internal/settings"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SubscriptionPoller periodically reconciles reporter subscription flags
// with their confirmed paid periods and expires manual-login grace windows.
type SubscriptionPoller struct {
	conn  *gorm.DB
	nowFn func() time.Time
}

// NewSubscriptionPoller constructs a poller over the given database.
func NewSubscriptionPoller(conn *gorm.DB) *SubscriptionPoller {
	if conn == nil {
		return nil
	}
	return &SubscriptionPoller{conn: conn, nowFn: time.Now}
}

// Start launches the poll loop. The loop re-reads the configured interval
// each cycle so a settings change takes effect without a restart.
func (p *SubscriptionPoller) Start(ctx context.Context) {
	if p == nil {
		return
	}
	go func() {
		for {
			interval := p.interval()
			select {
			case <-ctx.Done():
				return
			case <-time.After(interval):
			}
			if err := p.RunOnce(ctx); err != nil {
				log.WithError(err).Warn("subscription sweep failed")
			}
		}
	}()
}

// interval resolves the poll interval from platform settings.
func (p *SubscriptionPoller) interval() time.Duration {
	seconds := internalsettings.IntValue(
		internalsettings.SubscriptionPollIntervalSecondsKey,
		internalsettings.DefaultSubscriptionPollIntervalSeconds,
	)
	if seconds <= 0 {
		seconds = internalsettings.DefaultSubscriptionPollIntervalSeconds
	}
	return time.Duration(seconds) * time.Second
}

// RunOnce performs one reconciliation sweep.
func (p *SubscriptionPoller) RunOnce(ctx context.Context) error {
	now := p.nowFn().UTC()

	activated := p.conn.WithContext(ctx).Model(&models.Reporter{}).
		Where("subscription_active = ?", false).
		Where("subscription_paid_from IS NOT NULL AND subscription_paid_from <= ?", now).
		Where("subscription_paid_until IS NULL OR subscription_paid_until > ?", now).
		Update("subscription_active", true)
	if activated.Error != nil {
		return activated.Error
	}

	deactivated := p.conn.WithContext(ctx).Model(&models.Reporter{}).
		Where("subscription_active = ?", true).
		Where("subscription_paid_until IS NOT NULL AND subscription_paid_until <= ?", now).
		Update("subscription_active", false)
	if deactivated.Error != nil {
		return deactivated.Error
	}

	expired := p.conn.WithContext(ctx).Model(&models.Reporter{}).
		Where("manual_login_enabled = ?", true).
		Where("manual_login_expires_at IS NOT NULL AND manual_login_expires_at <= ?", now).
		Update("manual_login_enabled", false)
	if expired.Error != nil {
		return expired.Error
	}

	if activated.RowsAffected > 0 || deactivated.RowsAffected > 0 || expired.RowsAffected > 0 {
		log.WithFields(log.Fields{
			"activated":           activated.RowsAffected,
			"deactivated":         deactivated.RowsAffected,
			"manualLoginsExpired": expired.RowsAffected,
		}).Info("subscription sweep applied changes")
	}
	return nil
}
