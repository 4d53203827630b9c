package infra

import (
	"errors"
	"log/slog"

	"condo-booking/internal/pkg/errs"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type RepositoryErrorKind string

type RepositoryError struct {
	Kind       RepositoryErrorKind
	Constraint string
	msg        string
	err        error // wrapped low-level error
}

func (e RepositoryError) Error() string {
	if e.err != nil {
		return string(e.Kind) + ": " + e.msg + ": " + e.err.Error()
	}
	return string(e.Kind) + ": " + e.msg
}

func (e RepositoryError) Unwrap() error {
	return e.err
}

// WrapRepoErr classifies err from its pg error code unless kind is given explicitly.
func WrapRepoErr(msg string, err error, kind ...RepositoryErrorKind) error {
	k, constraint := classify(err)
	if len(kind) > 0 {
		k = kind[0]
	}

	if k == KindDBFailure {
		slog.Error("Repository error: "+msg, slog.String("kind", string(k)), slog.Any("error", err))
	} else {
		slog.Debug("Repository error: "+msg, slog.String("kind", string(k)), slog.String("constraint", constraint))
	}

	if err != nil {
		err = errs.Wrap(err, msg)
	}

	return RepositoryError{Kind: k, Constraint: constraint, msg: msg, err: err}
}

func classify(err error) (RepositoryErrorKind, string) {
	if errors.Is(err, pgx.ErrNoRows) {
		return KindNotFound, ""
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return KindDBFailure, ""
	}
	switch pgErr.Code {
	case pgErrCodeUniqueViolation:
		return KindDuplicateKey, pgErr.ConstraintName
	case pgErrCodeForeignKeyViolation:
		return KindForeignKeyViolated, pgErr.ConstraintName
	case pgErrCodeSerializationFailure, pgErrCodeDeadlockDetected:
		return KindSerialization, ""
	default:
		return KindDBFailure, ""
	}
}

func IsKind(err error, kind RepositoryErrorKind) bool {
	var e RepositoryError
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// IsConstraint reports a duplicate or foreign key failure on the named constraint.
func IsConstraint(err error, constraint string) bool {
	var e RepositoryError
	if errors.As(err, &e) {
		return e.Constraint == constraint
	}
	return false
}

const (
	pgErrCodeUniqueViolation      = "23505"
	pgErrCodeForeignKeyViolation  = "23503"
	pgErrCodeSerializationFailure = "40001"
	pgErrCodeDeadlockDetected     = "40P01"
)

// Infrastructure-specific error kinds
const (
	KindNotFound           RepositoryErrorKind = "NOT_FOUND"
	KindDBFailure          RepositoryErrorKind = "DB_FAILURE"
	KindDuplicateKey       RepositoryErrorKind = "DUPLICATE_KEY"
	KindForeignKeyViolated RepositoryErrorKind = "FOREIGN_KEY_VIOLATED"
	KindSerialization      RepositoryErrorKind = "SERIALIZATION"
)

// Constraint names from migrations/001_initial_schema.sql.
const (
	ConstraintExclusiveSlot     = "reservations_exclusive_slot_key"
	ConstraintProtocol          = "reservations_protocol_key"
	ConstraintInterestUnique    = "interest_entries_slot_resident_key"
	ConstraintIdempotencyKey    = "idempotency_keys_pkey"
	ConstraintNotificationDedup = "notification_jobs_dedup_key_key"
)
