package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier is the slice of pgx shared by pgxpool.Pool and pgx.Tx, letting the
// same store code run inside or outside a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Stores is the pool-bound StoreProvider and the TxRunner.
type Stores struct {
	pool *pgxpool.Pool
	provider
}

var (
	_ StoreProvider = (*Stores)(nil)
	_ TxRunner      = (*Stores)(nil)
)

func New(pool *pgxpool.Pool) *Stores {
	return &Stores{pool: pool, provider: provider{q: pool}}
}

// WithTx runs fn with all stores bound to one transaction.
func (s *Stores) WithTx(ctx context.Context, fn func(stores StoreProvider) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	if err := fn(provider{q: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

type provider struct {
	q querier
}

func (p provider) Users() UserStore               { return &userStore{q: p.q} }
func (p provider) Workspaces() WorkspaceStore     { return &workspaceStore{q: p.q} }
func (p provider) Members() MemberStore           { return &memberStore{q: p.q} }
func (p provider) Integrations() IntegrationStore { return &integrationStore{q: p.q} }
func (p provider) Tokens() TokenStore             { return &tokenStore{q: p.q} }
func (p provider) Templates() TemplateStore       { return &templateStore{q: p.q} }
func (p provider) Agents() AgentStore             { return &agentStore{q: p.q} }
func (p provider) Audit() AuditStore              { return &auditStore{q: p.q} }
func (p provider) Sessions() SessionStore         { return &sessionStore{q: p.q} }
