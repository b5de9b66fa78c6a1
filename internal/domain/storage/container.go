package storage

import (
	"context"
	"fmt"

	"rolesapi/internal/domain/roles"
	"rolesapi/internal/domain/users"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Container struct {
	pool     *pgxpool.Pool
	roleRepo roles.Store
	userRepo users.Store
}

func NewContainer(db *pgxpool.Pool) *Container {
	return &Container{
		pool:     db,
		roleRepo: roles.NewRepository(db),
		userRepo: users.NewRepository(db),
	}
}

// Roles returns the pool-backed role repository.
func (c *Container) Roles() roles.Store { return c.roleRepo }

// Users returns the pool-backed user repository.
func (c *Container) Users() users.Store { return c.userRepo }

// Tx is a tx-scoped set of repos for one unit of work.
type Tx struct {
	Roles roles.Store
	Users users.Store
}

// WithTx runs fn atomically. The transaction is committed only when fn
// returns nil.
func (c *Container) WithTx(ctx context.Context, fn func(tx *Tx) error) error {
	tx, err := c.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		_ = tx.Rollback(ctx) // no-op after commit
	}()

	if err := fn(&Tx{
		Roles: roles.NewRepository(tx),
		Users: users.NewRepository(tx),
	}); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (c *Container) Ping(ctx context.Context) error {
	return c.pool.Ping(ctx)
}

// Stats is the pool snapshot published on /debug/vars.
func (c *Container) Stats() map[string]any {
	s := c.pool.Stat()
	return map[string]any{
		"total_conns":    s.TotalConns(),
		"idle_conns":     s.IdleConns(),
		"acquired_conns": s.AcquiredConns(),
		"max_conns":      s.MaxConns(),
	}
}
