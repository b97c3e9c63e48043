package infra

import (
	"context"
	"errors"
	"log/slog"

	"voucher-engine/internal/pkg/errs"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type RepositoryErrorKind string

type RepositoryError struct {
	Kind RepositoryErrorKind
	msg  string
	err  error // wrapped low-level error
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

// WrapRepoErr classifies err unless a kind is given explicitly. Transient
// kinds also carry the errs.ErrTransient mark so the use case layer can test
// for retryability without importing infra.
func WrapRepoErr(msg string, err error, kind ...RepositoryErrorKind) error {
	k := Classify(err)
	if len(kind) > 0 {
		k = kind[0]
	}

	logArgs := []any{
		slog.String("kind", string(k)),
	}
	if err != nil {
		logArgs = append(logArgs, slog.String("error", err.Error()))
	}
	switch k {
	case KindDBFailure:
		slog.Error("Repository error: "+msg, logArgs...)
	case KindTransient:
		slog.Warn("Repository error: "+msg, logArgs...)
	default:
		slog.Debug("Repository error: "+msg, logArgs...)
	}

	if err != nil {
		err = errs.Wrap(err, msg)
	}

	var out error = RepositoryError{Kind: k, msg: msg, err: err}
	if k == KindTransient {
		out = errs.Mark(out, errs.ErrTransient)
	}
	return out
}

func IsKind(err error, kind RepositoryErrorKind) bool {
	var e RepositoryError
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// Classify maps driver errors onto repository kinds.
func Classify(err error) RepositoryErrorKind {
	if err == nil {
		return KindDBFailure
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return KindNotFound
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return KindTransient
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return KindDBFailure
	}
	switch pgErr.Code {
	case PgErrCodeUniqueViolation:
		return KindDuplicateKey
	case PgErrCodeForeignKeyViolation:
		return KindForeignKeyViolated
	case PgErrCodeCheckViolation:
		return KindCheckViolated
	case PgErrCodeSerializationFailure, PgErrCodeDeadlockDetected,
		PgErrCodeLockNotAvailable, PgErrCodeQueryCanceled:
		return KindTransient
	default:
		return KindDBFailure
	}
}

// Infrastructure-specific error kinds
const (
	KindNotFound           RepositoryErrorKind = "NOT_FOUND"
	KindDBFailure          RepositoryErrorKind = "DB_FAILURE"
	KindDuplicateKey       RepositoryErrorKind = "DUPLICATE_KEY"
	KindForeignKeyViolated RepositoryErrorKind = "FOREIGN_KEY_VIOLATED"
	KindCheckViolated      RepositoryErrorKind = "CHECK_VIOLATED"
	KindTransient          RepositoryErrorKind = "TRANSIENT"
)

const (
	PgErrCodeUniqueViolation      = "23505"
	PgErrCodeForeignKeyViolation  = "23503"
	PgErrCodeCheckViolation       = "23514"
	PgErrCodeSerializationFailure = "40001"
	PgErrCodeDeadlockDetected     = "40P01"
	PgErrCodeLockNotAvailable     = "55P03"
	PgErrCodeQueryCanceled        = "57014"
)
