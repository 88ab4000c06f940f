package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrStaleOrder means the order changed between read and conditional update.
	ErrStaleOrder = errors.New("order state changed concurrently")
	// ErrUnknownProduct is returned when a row references a missing product.
	ErrUnknownProduct = errors.New("unknown product")
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store groups the repositories of one persistence session.
type Store interface {
	Users() UserRepository
	Products() ProductRepository
	Cart() CartRepository
	Orders() OrderRepository
	// InTx runs fn in a single transaction. Repositories obtained from the
	// Store passed to fn share it; the transaction commits when fn returns nil.
	InTx(ctx context.Context, fn func(Store) error) error
}

type pgStore struct {
	pool *pgxpool.Pool
	db   DBTX
}

func NewStore(pool *pgxpool.Pool) Store {
	return &pgStore{pool: pool, db: pool}
}

func (s *pgStore) Users() UserRepository       { return &pgUserRepo{db: s.db} }
func (s *pgStore) Products() ProductRepository { return &pgProductRepo{db: s.db} }
func (s *pgStore) Cart() CartRepository        { return &pgCartRepo{db: s.db} }
func (s *pgStore) Orders() OrderRepository     { return &pgOrderRepo{db: s.db} }

func (s *pgStore) InTx(ctx context.Context, fn func(Store) error) error {
	if tx, ok := s.db.(pgx.Tx); ok {
		// Already inside a transaction: join it.
		return fn(&pgStore{pool: s.pool, db: tx})
	}
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(&pgStore{pool: s.pool, db: tx})
	})
	if err != nil {
		return fmt.Errorf("tx: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
