package db

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTx struct {
	pgx.Tx
	committed   bool
	rolledBack  bool
	rollbackErr error
	commitErr   error
}

func (f *fakeTx) Commit(context.Context) error {
	f.committed = true
	return f.commitErr
}

func (f *fakeTx) Rollback(context.Context) error {
	f.rolledBack = true
	return f.rollbackErr
}

type fakeBeginner struct {
	tx   *fakeTx
	opts pgx.TxOptions
	err  error
}

func (f *fakeBeginner) BeginTx(_ context.Context, opts pgx.TxOptions) (pgx.Tx, error) {
	f.opts = opts
	if f.err != nil {
		return nil, f.err
	}
	return f.tx, nil
}

func TestWithTxCommitsOnSuccess(t *testing.T) {
	b := &fakeBeginner{tx: &fakeTx{}}

	err := WithTx(context.Background(), b, WriteTx, func(pgx.Tx) error { return nil })
	require.NoError(t, err)
	assert.True(t, b.tx.committed)
	assert.False(t, b.tx.rolledBack)
	assert.Equal(t, pgx.ReadCommitted, b.opts.IsoLevel)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	b := &fakeBeginner{tx: &fakeTx{}}
	boom := errors.New("insert failed")

	err := WithTx(context.Background(), b, WriteTx, func(pgx.Tx) error { return boom })
	require.ErrorIs(t, err, boom)
	assert.True(t, b.tx.rolledBack)
	assert.False(t, b.tx.committed)
}

func TestWithTxJoinsRollbackFailure(t *testing.T) {
	b := &fakeBeginner{tx: &fakeTx{rollbackErr: errors.New("conn reset")}}
	boom := errors.New("insert failed")

	err := WithTx(context.Background(), b, WriteTx, func(pgx.Tx) error { return boom })
	require.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, "platform/db: rollback: conn reset")
}

func TestWithTxWrapsBeginAndCommitErrors(t *testing.T) {
	err := WithTx(context.Background(), &fakeBeginner{err: errors.New("pool closed")}, WriteTx, func(pgx.Tx) error {
		t.Fatal("fn must not run without a transaction")
		return nil
	})
	assert.ErrorContains(t, err, "platform/db: begin: pool closed")

	b := &fakeBeginner{tx: &fakeTx{commitErr: errors.New("serialization failure")}}
	err = WithTx(context.Background(), b, WriteTx, func(pgx.Tx) error { return nil })
	assert.ErrorContains(t, err, "platform/db: commit: serialization failure")
}
