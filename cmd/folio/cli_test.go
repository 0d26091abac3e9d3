package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/folio/analytics"
	"github.com/hupe1980/folio/core"
	"github.com/hupe1980/folio/internal/config"
	"github.com/hupe1980/folio/logging"
	"github.com/hupe1980/folio/session"
)

const passages = "../../memory/testdata/portfolio.yaml"

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Addr:                ":0",
		Provider:            "mock",
		Storage:             "sqlite",
		DBPath:              filepath.Join(t.TempDir(), "folio.db"),
		PassagesPath:        passages,
		RetrievalTimeout:    time.Second,
		GenerationTimeout:   time.Second,
		NotificationTimeout: time.Second,
		AnalyticsTimeout:    time.Second,
		TopK:                4,
	}
}

func TestNewApp_SQLitePersistsStateAndConfessions(t *testing.T) {
	ctx := context.Background()
	a, err := newApp(ctx, testConfig(t), logging.NoOpLogger{})
	require.NoError(t, err)
	defer a.Close()

	res, err := a.folio.Chat(ctx, "s1", "Software Developer", "Show me the job queue code")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Answer)
	assert.Empty(t, res.Degraded)

	_, err = a.folio.Chat(ctx, "s2", "Confession", "I never read the docs")
	require.NoError(t, err)

	store, err := session.NewSQLiteStore(ctx, a.db)
	require.NoError(t, err)
	state, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, state.Turns, 1)

	sink, err := analytics.NewSQLiteSink(ctx, a.db)
	require.NoError(t, err)
	n, err := sink.ConfessionCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	counts, err := sink.RoleCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[core.RoleSoftwareDeveloper])
}

func TestNewApp_InvalidPolicyFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage = "memory"
	cfg.PoliciesPath = filepath.Join(t.TempDir(), "missing.yaml")

	_, err := newApp(context.Background(), cfg, logging.NoOpLogger{})
	require.Error(t, err)
}

func TestAskCommand(t *testing.T) {
	t.Setenv("FOLIO_PROVIDER", "mock")
	t.Setenv("FOLIO_STORAGE", "memory")
	t.Setenv("FOLIO_PASSAGES", passages)

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(strings.NewReader("What do you do for fun?\n\nDo you like espresso?\n"))
	rootCmd.SetArgs([]string{"ask", "--env-file", "", "--role", "Casual Visitor", "--session", "cli"})

	require.NoError(t, rootCmd.Execute())

	assert.Equal(t, 2, strings.Count(out.String(), "Mock response to:"))
	assert.Contains(t, out.String(), "  > ")
}
