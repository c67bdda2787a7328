// Package store persists the mission lifecycle in PostgreSQL.
package store

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/lib/pq"

	"mission-workers/internal/common/database"
	"mission-workers/internal/common/errors"
	"mission-workers/internal/missions"
)

const uniqueViolation = "23505"

// Store implements missions.Store on a PostgreSQL pool.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// InTx runs fn in one transaction; rows locked through the Tx stay locked until it ends.
func (s *Store) InTx(ctx context.Context, fn func(tx missions.Tx) error) error {
	return database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		return fn(&pgTx{tx: tx})
	})
}

type pgTx struct {
	tx *sql.Tx
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return stderrors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

func queryError(operation string, err error) error {
	return errors.NewQueryExecutionFailedError(operation, err)
}

func mustAffectOne(res sql.Result, resource, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return queryError("rows affected", err)
	}
	if n == 0 {
		return errors.NewNotFoundError(resource, id)
	}
	return nil
}

var _ missions.Store = (*Store)(nil)
var _ missions.Tx = (*pgTx)(nil)
