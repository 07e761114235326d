package repositories

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestConstraintViolationClassifiers(t *testing.T) {
	unique := fmt.Errorf("insert: %w", &pgconn.PgError{Code: pgUniqueViolation})
	foreignKey := fmt.Errorf("insert: %w", &pgconn.PgError{Code: pgForeignKeyViolation})
	other := errors.New("connection reset")

	assert.True(t, isUniqueViolation(unique))
	assert.False(t, isUniqueViolation(foreignKey))
	assert.False(t, isUniqueViolation(other))

	assert.True(t, isForeignKeyViolation(foreignKey))
	assert.False(t, isForeignKeyViolation(unique))
	assert.False(t, isForeignKeyViolation(other))
}
