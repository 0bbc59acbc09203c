package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-registration-console/internal/repository"
	"github.com/noah-isme/sma-registration-console/pkg/config"
)

func TestOpenLayoutStoreDefaultsToMemory(t *testing.T) {
	cfg := &config.Config{Console: config.ConsoleConfig{ColumnStore: config.ColumnStoreMemory}}

	store, cleanup, err := openLayoutStore(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer cleanup()

	assert.IsType(t, &repository.MemoryColumnLayoutRepository{}, store)
	require.NoError(t, store.Set(context.Background(), "columns:t:u", `[]`))
	raw, err := store.Get(context.Background(), "columns:t:u")
	require.NoError(t, err)
	assert.Equal(t, `[]`, raw)
	assert.NoError(t, store.Ping(context.Background()))
}

func TestIssueTokenRefusedInProduction(t *testing.T) {
	cfg := &config.Config{Env: config.EnvProduction, JWT: config.JWTConfig{Secret: "s"}}
	assert.Error(t, issueToken(cfg, []string{"-user", "u-1"}))
}
