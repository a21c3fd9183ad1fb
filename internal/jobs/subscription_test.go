package jobs

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prajanews/newsdesk/internal/db"
	"github.com/prajanews/newsdesk/internal/models"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "newsdesk-test.db")
	conn, err := db.Open(dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	return conn
}

func seedReporter(t *testing.T, conn *gorm.DB, mutate func(r *models.Reporter)) *models.Reporter {
	t.Helper()
	stateID := uuid.NewString()
	row := models.Reporter{
		ID:            uuid.NewString(),
		TenantID:      uuid.NewString(),
		UserID:        uuid.NewString(),
		DesignationID: uuid.NewString(),
		Level:         models.LevelState,
		StateID:       &stateID,
		KYCStatus:     models.KYCStatusNone,
		Active:        true,
	}
	if mutate != nil {
		mutate(&row)
	}
	if errCreate := conn.Create(&row).Error; errCreate != nil {
		t.Fatalf("seed reporter: %v", errCreate)
	}
	return &row
}

func TestRunOnce_ActivatesStartedPaidPeriod(t *testing.T) {
	conn := newTestDB(t)
	now := time.Now().UTC()

	paidFrom := now.Add(-time.Hour)
	paidUntil := now.Add(24 * time.Hour)
	due := seedReporter(t, conn, func(r *models.Reporter) {
		r.SubscriptionPaidFrom = &paidFrom
		r.SubscriptionPaidUntil = &paidUntil
	})

	futureFrom := now.Add(time.Hour)
	notYet := seedReporter(t, conn, func(r *models.Reporter) {
		r.SubscriptionPaidFrom = &futureFrom
	})

	poller := NewSubscriptionPoller(conn)
	if err := poller.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}

	var got models.Reporter
	if errFind := conn.Take(&got, "id = ?", due.ID).Error; errFind != nil {
		t.Fatalf("find due reporter: %v", errFind)
	}
	if !got.SubscriptionActive {
		t.Fatalf("expected reporter with started paid period to be activated")
	}

	got = models.Reporter{}
	if errFind := conn.Take(&got, "id = ?", notYet.ID).Error; errFind != nil {
		t.Fatalf("find future reporter: %v", errFind)
	}
	if got.SubscriptionActive {
		t.Fatalf("expected reporter with future paid period to stay inactive")
	}
}

func TestRunOnce_DeactivatesLapsedPaidPeriod(t *testing.T) {
	conn := newTestDB(t)
	now := time.Now().UTC()

	paidFrom := now.Add(-48 * time.Hour)
	paidUntil := now.Add(-time.Hour)
	lapsed := seedReporter(t, conn, func(r *models.Reporter) {
		r.SubscriptionActive = true
		r.SubscriptionPaidFrom = &paidFrom
		r.SubscriptionPaidUntil = &paidUntil
	})

	openEnded := seedReporter(t, conn, func(r *models.Reporter) {
		r.SubscriptionActive = true
	})

	poller := NewSubscriptionPoller(conn)
	if err := poller.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}

	var got models.Reporter
	if errFind := conn.Take(&got, "id = ?", lapsed.ID).Error; errFind != nil {
		t.Fatalf("find lapsed reporter: %v", errFind)
	}
	if got.SubscriptionActive {
		t.Fatalf("expected lapsed subscription to be deactivated")
	}

	got = models.Reporter{}
	if errFind := conn.Take(&got, "id = ?", openEnded.ID).Error; errFind != nil {
		t.Fatalf("find open-ended reporter: %v", errFind)
	}
	if !got.SubscriptionActive {
		t.Fatalf("expected subscription without an end date to stay active")
	}
}

func TestRunOnce_ExpiresManualLogins(t *testing.T) {
	conn := newTestDB(t)
	now := time.Now().UTC()

	expiredAt := now.Add(-time.Minute)
	expired := seedReporter(t, conn, func(r *models.Reporter) {
		r.ManualLoginEnabled = true
		r.ManualLoginDays = 7
		r.ManualLoginExpiresAt = &expiredAt
	})

	validUntil := now.Add(48 * time.Hour)
	current := seedReporter(t, conn, func(r *models.Reporter) {
		r.ManualLoginEnabled = true
		r.ManualLoginDays = 7
		r.ManualLoginExpiresAt = &validUntil
	})

	poller := NewSubscriptionPoller(conn)
	if err := poller.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}

	var got models.Reporter
	if errFind := conn.Take(&got, "id = ?", expired.ID).Error; errFind != nil {
		t.Fatalf("find expired reporter: %v", errFind)
	}
	if got.ManualLoginEnabled {
		t.Fatalf("expected expired manual login to be disabled")
	}

	got = models.Reporter{}
	if errFind := conn.Take(&got, "id = ?", current.ID).Error; errFind != nil {
		t.Fatalf("find current reporter: %v", errFind)
	}
	if !got.ManualLoginEnabled {
		t.Fatalf("expected unexpired manual login to stay enabled")
	}
}
