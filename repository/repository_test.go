package repository

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
)

func TestTranslateNoRows(t *testing.T) {
	assert.ErrorIs(t, translateNoRows(pgx.ErrNoRows), ErrNotFound)
	assert.ErrorIs(t, translateNoRows(fmt.Errorf("scan: %w", pgx.ErrNoRows)), ErrNotFound)

	other := fmt.Errorf("connection reset")
	assert.Equal(t, other, translateNoRows(other))
}
