package db

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"runtime/debug"

	"github.com/jmoiron/sqlx"
)

var snapshotTxOpts = &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}

// WithTx runs fn in a read-write transaction, committing when fn returns nil and
// rolling back otherwise. A panic in fn is returned as an error.
func WithTx(ctx context.Context, conn *sqlx.DB, op string, fn func(tx *sqlx.Tx) error) error {
	return runTx(ctx, conn, nil, op, fn)
}

// WithSnapshot runs fn in a read-only repeatable-read transaction so every query in
// fn sees the same rows. Listings use it to read a count and a window consistently.
func WithSnapshot(ctx context.Context, conn *sqlx.DB, op string, fn func(tx *sqlx.Tx) error) error {
	return runTx(ctx, conn, snapshotTxOpts, op, fn)
}

func runTx(ctx context.Context, conn *sqlx.DB, opts *sql.TxOptions, op string, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := conn.BeginTxx(ctx, opts)
	if err != nil {
		return fmt.Errorf("error starting %s transaction: %v", op, err)
	}

	done := false
	defer func() {
		if r := recover(); r != nil {
			log.Printf("panic in %s transaction: %v\n%s", op, r, debug.Stack())
			err = fmt.Errorf("panic in %s transaction: %v", op, r)
		}
		if done {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			log.Printf("Error rolling back %s transaction: %v\n", op, rbErr)
		}
	}()

	if err = fn(tx); err != nil {
		log.Printf("%s transaction failed, rolling back: %v\n", op, err)
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("error committing %s transaction: %v", op, err)
	}
	done = true

	return nil
}
