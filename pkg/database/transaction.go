package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ConnFunc runs against a single connection checked out of the pool.
type ConnFunc func(*sql.Conn) error

// TxFunc runs inside a transaction bound to a single connection.
type TxFunc func(*sql.Tx) error

// WithConnection acquires one connection, runs fn and always releases it,
// including when fn returns an error or panics.
func WithConnection(ctx context.Context, db *sql.DB, fn ConnFunc) (err error) {
	conn, err := db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection: %w", err)
	}

	defer func() {
		if cerr := conn.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to release connection: %w", cerr)
		}
	}()

	return fn(conn)
}

// WithTransaction wraps fn in a transaction on a freshly acquired connection.
// Auto rollback on error or panic, auto commit on success.
func WithTransaction(ctx context.Context, db *sql.DB, fn TxFunc) error {
	return WithConnection(ctx, db, func(conn *sql.Conn) (err error) {
		tx, err := conn.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}

		defer func() {
			if p := recover(); p != nil {
				_ = tx.Rollback()
				panic(p)
			}
			if err != nil {
				if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
					err = errors.Join(err, fmt.Errorf("failed to rollback transaction: %w", rbErr))
				}
			}
		}()

		if err = fn(tx); err != nil {
			return err
		}

		if err = tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit transaction: %w", err)
		}
		return nil
	})
}

// WithTransactionResult is WithTransaction for functions that produce a value.
func WithTransactionResult[T any](ctx context.Context, db *sql.DB, fn func(*sql.Tx) (T, error)) (T, error) {
	var result T

	err := WithTransaction(ctx, db, func(tx *sql.Tx) error {
		var fnErr error
		result, fnErr = fn(tx)
		return fnErr
	})
	if err != nil {
		var zero T
		return zero, err
	}

	return result, nil
}
