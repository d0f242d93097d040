package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/voltaic-labs/gridveil/ledger"
)

// plainAlgebra treats ciphertexts as decimal strings so handler tests can
// assert on aggregation without real encryption.
type plainAlgebra struct{}

func (plainAlgebra) add(a, b ledger.Ciphertext) (ledger.Ciphertext, error) {
	var x, y uint64
	if _, err := fmt.Sscanf(string(a), "%d", &x); err != nil {
		return nil, err
	}
	if _, err := fmt.Sscanf(string(b), "%d", &y); err != nil {
		return nil, err
	}
	return ledger.Ciphertext(fmt.Sprintf("%d", x+y)), nil
}

func (p plainAlgebra) AddNarrow(a, b ledger.Ciphertext) (ledger.Ciphertext, error) {
	return p.add(a, b)
}

func (p plainAlgebra) AddWide(a, b ledger.Ciphertext) (ledger.Ciphertext, error) {
	return p.add(a, b)
}

func (plainAlgebra) SerializeForOracle(ct ledger.Ciphertext) (ledger.OracleHandle, error) {
	return ledger.OracleHandle(ct.Clone()), nil
}

type scriptedOracle struct {
	next     int
	badProof []byte
}

func (o *scriptedOracle) RequestDecryption(ctx context.Context, handles []ledger.OracleHandle, callback ledger.CallbackRef) (ledger.RequestID, error) {
	o.next++
	return ledger.RequestID(fmt.Sprintf("req-%d", o.next)), nil
}

func (o *scriptedOracle) VerifyProof(ctx context.Context, id ledger.RequestID, cleartexts, proof []byte) error {
	if bytes.Equal(proof, o.badProof) {
		return fmt.Errorf("signature mismatch")
	}
	return nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	lg, err := ledger.New(&ledger.Config{
		Algebra: plainAlgebra{},
		Oracle:  &scriptedOracle{badProof: []byte("bad")},
		Policy:  ledger.NewAllowListPolicy("grid-operator"),
	})
	require.NoError(t, err)

	router := chi.NewRouter()
	NewHTTPLedger(lg, nil).RegisterRoutes(router)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func TestSubmitAndFetchSession(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/sessions", &SubmitSessionRequest{
		StationID:      []byte("7"),
		StartBucket:    []byte("3"),
		DurationBucket: []byte("2"),
		Energy:         []byte("40"),
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var submitted SubmitSessionResponse
	decodeJSON(t, resp, &submitted)
	require.Equal(t, ledger.SessionID(1), submitted.ID)

	resp, err := http.Get(srv.URL + "/sessions/1")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var session SessionResponse
	decodeJSON(t, resp, &session)
	require.Equal(t, []byte("40"), session.Energy)
	require.False(t, session.SubmittedAt.IsZero())
}

func TestFetchUnknownSession(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/sessions/99")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/sessions/not-a-number")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAccumulateAndFetchWindow(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/windows/2025-07-01T10/accumulate", &AccumulateRequest{
		CountDelta:  []byte("1"),
		EnergyDelta: []byte("40"),
	})
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = postJSON(t, srv.URL+"/windows/2025-07-01T10/accumulate", &AccumulateRequest{
		CountDelta:  []byte("1"),
		EnergyDelta: []byte("25"),
	})
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err := http.Get(srv.URL + "/windows/2025-07-01T10")
	require.NoError(t, err)

	var window WindowResponse
	decodeJSON(t, resp, &window)
	require.True(t, window.Initialized)
	require.Equal(t, []byte("65"), window.TotalEnergy)
	require.Equal(t, []byte("2"), window.SessionCount)
}

func TestFetchEmptyWindow(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/windows/never-touched")
	require.NoError(t, err)

	var window WindowResponse
	decodeJSON(t, resp, &window)
	require.False(t, window.Initialized)
	require.Empty(t, window.TotalEnergy)
}

func TestForecastOnEmptyWindowFails(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/windows/empty/forecast", "application/json", strings.NewReader("{}"))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestForecastAndCallbackRoundTrip(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/windows/w/accumulate", &AccumulateRequest{
		CountDelta:  []byte("2"),
		EnergyDelta: []byte("65"),
	})
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err := http.Post(srv.URL+"/windows/w/forecast", "application/json", strings.NewReader("{}"))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var reveal RevealResponse
	decodeJSON(t, resp, &reveal)
	require.Equal(t, ledger.RequestID("req-1"), reveal.RequestID)

	resp = postJSON(t, srv.URL+"/oracle/callback", &OracleCallbackRequest{
		RequestID:  reveal.RequestID,
		Cleartexts: ledger.EncodeCleartexts("forecast", "demand=65kWh/2sessions"),
		Proof:      []byte("signed"),
	})
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/results/" + string(reveal.RequestID))
	require.NoError(t, err)

	var result ResultResponse
	decodeJSON(t, resp, &result)
	require.True(t, result.Revealed)
	require.Equal(t, "forecast", result.Label)
	require.Equal(t, "demand=65kWh/2sessions", result.Payload)
}

func TestCallbackErrorsMapToStatusCodes(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/windows/w/accumulate", &AccumulateRequest{
		CountDelta:  []byte("1"),
		EnergyDelta: []byte("10"),
	})
	resp.Body.Close()

	resp, err := http.Post(srv.URL+"/windows/w/forecast", "application/json", strings.NewReader("{}"))
	require.NoError(t, err)
	var reveal RevealResponse
	decodeJSON(t, resp, &reveal)

	// Unknown request id.
	resp = postJSON(t, srv.URL+"/oracle/callback", &OracleCallbackRequest{
		RequestID:  "req-does-not-exist",
		Cleartexts: ledger.EncodeCleartexts("a", "b"),
		Proof:      []byte("signed"),
	})
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Bad proof.
	resp = postJSON(t, srv.URL+"/oracle/callback", &OracleCallbackRequest{
		RequestID:  reveal.RequestID,
		Cleartexts: ledger.EncodeCleartexts("a", "b"),
		Proof:      []byte("bad"),
	})
	resp.Body.Close()
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Malformed cleartexts.
	resp = postJSON(t, srv.URL+"/oracle/callback", &OracleCallbackRequest{
		RequestID:  reveal.RequestID,
		Cleartexts: []byte{0xff},
		Proof:      []byte("signed"),
	})
	resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSiteSuggestionRequiresAuthorizedCaller(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/regions/r1/site-suggestion", &SiteSuggestionRequest{
		Caller:       "random-party",
		Demand:       []byte("300"),
		StationCount: []byte("12"),
	})
	resp.Body.Close()
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = postJSON(t, srv.URL+"/regions/r1/site-suggestion", &SiteSuggestionRequest{
		Caller:       "grid-operator",
		Demand:       []byte("300"),
		StationCount: []byte("12"),
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var reveal RevealResponse
	decodeJSON(t, resp, &reveal)
	require.NotEmpty(t, reveal.RequestID)
}

func TestLoadBalanceReturnsRequestID(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/windows/w/accumulate", &AccumulateRequest{
		CountDelta:  []byte("3"),
		EnergyDelta: []byte("120"),
	})
	resp.Body.Close()

	resp = postJSON(t, srv.URL+"/windows/w/load-balance", &LoadBalanceRequest{
		Priority: []byte("9"),
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var reveal RevealResponse
	decodeJSON(t, resp, &reveal)
	require.NotEmpty(t, reveal.RequestID)
}
