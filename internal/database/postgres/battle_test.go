package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsActiveStreamConflict_UniqueViolation(t *testing.T) {
	// ARRANGE
	pgErr := &pgconn.PgError{
		Code:           uniqueViolationCode,
		ConstraintName: "idx_battles_active_challenger_stream",
	}

	// ACT / ASSERT
	assert.True(t, isActiveStreamConflict(pgErr))
	assert.True(t, isActiveStreamConflict(fmt.Errorf("exec failed: %w", pgErr)))
}

func TestIsActiveStreamConflict_OtherErrors(t *testing.T) {
	assert.False(t, isActiveStreamConflict(nil))
	assert.False(t, isActiveStreamConflict(errors.New("connection reset")))
	assert.False(t, isActiveStreamConflict(&pgconn.PgError{Code: "23503"}))
}
