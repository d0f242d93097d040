package ledger_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/voltaic-labs/gridveil/ledger"
	"github.com/voltaic-labs/gridveil/testutil"
)

// TestE2E_ForecastReveal runs the full pipeline against the real BGV
// backend: submit two encrypted sessions, accumulate their deltas into a
// window, request a demand forecast, let the local oracle decrypt and
// deliver, and read the revealed result.
func TestE2E_ForecastReveal(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping E2E test in short mode")
	}

	ctx := context.Background()
	f := testutil.NewFixture(t)

	lg, err := ledger.New(&ledger.Config{
		Algebra: f.Algebra,
		Oracle:  f.Oracle,
	})
	require.NoError(t, err)
	f.Oracle.Bind(lg.Deliver)

	// Two charging sessions: 10 kWh and 15 kWh.
	for _, energy := range []uint64{10, 15} {
		id, err := lg.SubmitSession(
			f.EncryptNarrow(t, 42),     // station id
			f.EncryptNarrow(t, 7),      // start bucket
			f.EncryptNarrow(t, 3),      // duration bucket
			f.EncryptWide(t, energy),   // energy
		)
		require.NoError(t, err)
		require.NotZero(t, id)

		require.NoError(t, lg.Accumulate("2026-08-29T10",
			f.EncryptNarrow(t, 1), f.EncryptWide(t, energy)))
	}

	id, err := lg.RequestDemandForecast(ctx, "2026-08-29T10")
	require.NoError(t, err)

	// Pending until the oracle answers.
	_, _, revealed := lg.Result(id)
	require.False(t, revealed)

	require.NoError(t, f.Oracle.Flush(ctx))

	label, payload, revealed := lg.Result(id)
	require.True(t, revealed)
	require.Equal(t, "forecast", label)
	require.Equal(t, "demand=25kWh/2sessions", payload)
}

func TestE2E_LoadBalanceReveal(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping E2E test in short mode")
	}

	ctx := context.Background()
	f := testutil.NewFixture(t)

	lg, err := ledger.New(&ledger.Config{
		Algebra: f.Algebra,
		Oracle:  f.Oracle,
	})
	require.NoError(t, err)
	f.Oracle.Bind(lg.Deliver)

	require.NoError(t, lg.Accumulate("w1", f.EncryptNarrow(t, 3), f.EncryptWide(t, 120)))

	id, err := lg.RequestLoadBalance(ctx, "w1", f.EncryptWide(t, 9))
	require.NoError(t, err)
	require.NoError(t, f.Oracle.Flush(ctx))

	label, payload, revealed := lg.Result(id)
	require.True(t, revealed)
	require.Equal(t, "load-balance", label)
	require.Equal(t, "energy=120kWh sessions=3 priority=9", payload)
}

func TestE2E_SiteSuggestionReveal(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping E2E test in short mode")
	}

	ctx := context.Background()
	f := testutil.NewFixture(t)

	lg, err := ledger.New(&ledger.Config{
		Algebra: f.Algebra,
		Oracle:  f.Oracle,
		Policy:  ledger.NewAllowListPolicy("planner"),
	})
	require.NoError(t, err)
	f.Oracle.Bind(lg.Deliver)

	id, err := lg.RequestSiteSuggestion(ctx, "planner", "region-4",
		f.EncryptWide(t, 300), f.EncryptNarrow(t, 12))
	require.NoError(t, err)
	require.NoError(t, f.Oracle.Flush(ctx))

	label, payload, revealed := lg.Result(id)
	require.True(t, revealed)
	require.Equal(t, "site-suggestion", label)
	require.Equal(t, "demand=300 stations=12", payload)
}
