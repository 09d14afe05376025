// Package testutil opens throwaway in-memory stores for tests.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"magazine-catalog/internal/infrastructure/database"
)

// NewGateway returns a gateway over a private in-memory sqlite database
// with foreign keys enforced and the catalog schema applied.
func NewGateway(t testing.TB) *database.Gateway {
	t.Helper()

	cfg := &database.DBConfig{
		Driver:         database.DriverSQLite,
		SQLitePath:     fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString()),
		ConnectTimeout: 5 * time.Second,
	}

	gw, err := database.Open(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = gw.Close() })

	require.NoError(t, gw.EnsureSchema(context.Background()))
	return gw
}

// CountRows returns the number of rows in table.
func CountRows(t testing.TB, gw *database.Gateway, table string) int {
	t.Helper()

	var n int
	err := gw.DB().QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n)
	require.NoError(t, err)
	return n
}
