package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/macro-eval/internal/evalset"
	"github.com/sells-group/macro-eval/internal/model"
)

func seedWarehouse(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	st, err := openStore(ctx)
	require.NoError(t, err)
	defer st.Close()
	require.NoError(t, st.Migrate(ctx))

	require.NoError(t, st.UpsertSeries(ctx, model.SeriesMeta{
		ID: "UNRATE", Title: "Unemployment Rate", Units: "Percent", Frequency: model.FrequencyMonthly,
	}))

	var obs []model.Observation
	for year := 2021; year <= 2023; year++ {
		for month := 1; month <= 12; month++ {
			obs = append(obs, model.Observation{
				SeriesID: "UNRATE",
				Date:     model.MustDate(fmt.Sprintf("%d-%02d-01", year, month)),
				Value:    model.Float64(3.5 + 0.1*float64(month)),
			})
		}
	}
	_, err = st.InsertObservations(ctx, obs)
	require.NoError(t, err)
}

func TestGoldenThenRun_OraclePasses(t *testing.T) {
	cfg = testConfig(t)
	seedWarehouse(t)

	dir := t.TempDir()
	goldenFlags.out = filepath.Join(dir, "golden.jsonl")
	goldenFlags.seed = 0
	goldenFlags.perSeries = 0
	goldenFlags.profile = ""

	goldenCmd.SetContext(context.Background())
	require.NoError(t, goldenCmd.RunE(goldenCmd, nil))

	cases, err := evalset.Load(goldenFlags.out)
	require.NoError(t, err)
	require.NotEmpty(t, cases)
	assert.LessOrEqual(t, len(cases), cfg.Sampler.PerSeries)
	for _, c := range cases {
		assert.True(t, strings.HasPrefix(c.ID, "unrate_"))
		assert.NotEmpty(t, c.Question)
		require.NotNil(t, c.TruthSpec)
		assert.True(t, c.Expect.ShouldHaveValue)
	}

	runFlags.evalset = goldenFlags.out
	runFlags.agentName = "oracle"
	runFlags.out = filepath.Join(dir, "report.md")
	runFlags.jsonOut = filepath.Join(dir, "report.json")

	runCmd.SetContext(context.Background())
	require.NoError(t, runCmd.RunE(runCmd, nil))

	md, err := os.ReadFile(runFlags.out)
	require.NoError(t, err)
	assert.Contains(t, string(md), "100.0%")
}

func TestGolden_Deterministic(t *testing.T) {
	cfg = testConfig(t)
	seedWarehouse(t)

	dir := t.TempDir()
	goldenCmd.SetContext(context.Background())

	goldenFlags.out = filepath.Join(dir, "a.jsonl")
	require.NoError(t, goldenCmd.RunE(goldenCmd, nil))

	goldenFlags.out = filepath.Join(dir, "b.jsonl")
	require.NoError(t, goldenCmd.RunE(goldenCmd, nil))

	a, err := os.ReadFile(filepath.Join(dir, "a.jsonl"))
	require.NoError(t, err)
	b, err := os.ReadFile(filepath.Join(dir, "b.jsonl"))
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestGolden_EmptyWarehouse(t *testing.T) {
	cfg = testConfig(t)

	ctx := context.Background()
	st, err := openStore(ctx)
	require.NoError(t, err)
	require.NoError(t, st.Migrate(ctx))
	st.Close()

	goldenFlags.out = filepath.Join(t.TempDir(), "golden.jsonl")
	goldenCmd.SetContext(ctx)
	err = goldenCmd.RunE(goldenCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "warehouse is empty")
}
