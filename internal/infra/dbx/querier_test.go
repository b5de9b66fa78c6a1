package dbx

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsViolation(t *testing.T) {
	unique := &pgconn.PgError{Code: UniqueViolation, ConstraintName: "ix_roles_name"}

	assert.True(t, IsViolation(unique, UniqueViolation))
	assert.True(t, IsViolation(fmt.Errorf("insert role: %w", unique), UniqueViolation))
	assert.False(t, IsViolation(unique, ForeignKeyViolation))
	assert.False(t, IsViolation(errors.New("connection reset"), UniqueViolation))
	assert.False(t, IsViolation(nil, UniqueViolation))
}
