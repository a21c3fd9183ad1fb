package db

import (
	"context"
	"database/sql"
	"errors"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	// pgSerializationFailure is the SQLSTATE for serialization conflicts.
	pgSerializationFailure = "40001"
	// pgDeadlockDetected is the SQLSTATE for deadlocks.
	pgDeadlockDetected = "40P01"

	retryBaseDelay   = 25 * time.Millisecond
	retryJitterDelay = 50 * time.Millisecond
)

// RunSerializable executes fn inside a serializable transaction. A
// serialization or deadlock failure is retried exactly once after a short
// jittered delay; the second failure is returned to the caller.
func RunSerializable(ctx context.Context, conn *gorm.DB, fn func(tx *gorm.DB) error) error {
	// SQLite transactions are serializable already; asking its driver for an
	// explicit isolation level is unnecessary.
	var opts []*sql.TxOptions
	if !IsSQLite(conn) {
		opts = append(opts, &sql.TxOptions{Isolation: sql.LevelSerializable})
	}

	errFirst := conn.WithContext(ctx).Transaction(fn, opts...)
	if errFirst == nil || !IsSerializationFailure(errFirst) {
		return errFirst
	}

	delay := retryBaseDelay + rand.N(retryJitterDelay)
	log.WithError(errFirst).Debugf("db: serialization conflict, retrying after %s", delay)
	select {
	case <-time.After(delay):
	case <-ctx.Done():
		return ctx.Err()
	}

	return conn.WithContext(ctx).Transaction(fn, opts...)
}

// IsSerializationFailure reports whether the error is a transaction
// serialization or deadlock failure for the active dialect.
func IsSerializationFailure(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgSerializationFailure || pgErr.Code == pgDeadlockDetected
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "sqlite_busy")
}
