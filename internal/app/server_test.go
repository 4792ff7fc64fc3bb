package app

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/specialistvlad/sheetcalc/internal/engine"
	"github.com/specialistvlad/sheetcalc/internal/evaluator"
	"github.com/specialistvlad/sheetcalc/internal/result"
	"github.com/specialistvlad/sheetcalc/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postEvaluate(t *testing.T, handler http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/evaluate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestEvaluateHandler(t *testing.T) {
	testApp, _, _ := SetupAppTest(t, Config{})
	handler := testApp.Handler()

	rec := postEvaluate(t, handler, `{"A1":"1874","B1":"+","C1":"2046","D1":"⇒","E1":"=A1+C1","F1":"=G1","G1":"=F1","H1":""}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got map[string]result.Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, map[string]result.Record{
		"A1": {Kind: result.KindNumber, Value: 1874.0},
		"B1": {Kind: result.KindText, Value: "+"},
		"C1": {Kind: result.KindNumber, Value: 2046.0},
		"D1": {Kind: result.KindText, Value: "⇒"},
		"E1": {Kind: result.KindNumber, Value: 3920.0},
		"F1": result.Failure("circular reference: F1 -> G1 -> F1"),
		"G1": result.Failure("circular reference: F1 -> G1 -> F1"),
		"H1": result.Empty(),
	}, got)
}

func TestEvaluateHandler_CellLogsCarryRequestID(t *testing.T) {
	testApp, _, logs := SetupAppTest(t, Config{})

	rec := postEvaluate(t, testApp.Handler(), `{"A":"=1+2"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resolved []string
	for _, line := range strings.Split(logs.String(), "\n") {
		if strings.Contains(line, "Formula resolved.") {
			resolved = append(resolved, line)
		}
	}
	require.Len(t, resolved, 1, logs.String())
	assert.Contains(t, resolved[0], "request_id=")
	assert.Contains(t, resolved[0], "coordinate=A")
}

func TestEvaluateHandler_Errors(t *testing.T) {
	testCases := []struct {
		name     string
		cfg      Config
		body     string
		status   int
		errorMsg string
	}{
		{name: "malformed body", body: `{"A1":`, status: http.StatusBadRequest, errorMsg: "invalid JSON snapshot"},
		{name: "nested value", body: `{"A1":{"x":1}}`, status: http.StatusBadRequest, errorMsg: "value must be a string"},
		{
			name:     "variable collides with coordinate",
			cfg:      Config{Vars: map[string]string{"A1": "1"}},
			body:     `{"A1":"2"}`,
			status:   http.StatusUnprocessableEntity,
			errorMsg: "cannot assign to reserved key A1",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			testApp, _, _ := SetupAppTest(t, tc.cfg)
			rec := postEvaluate(t, testApp.Handler(), tc.body)
			require.Equal(t, tc.status, rec.Code)

			var got errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Contains(t, got.Error, tc.errorMsg)
		})
	}
}

// blockingEvaluator never finishes until release is closed.
type blockingEvaluator struct {
	release chan struct{}
}

func (b *blockingEvaluator) Name() string { return "blocking" }

func (b *blockingEvaluator) Evaluate(string, evaluator.Environment) (value.Value, error) {
	<-b.release
	return value.Number(1), nil
}

func TestEvaluateHandler_Timeout(t *testing.T) {
	blocker := &blockingEvaluator{release: make(chan struct{})}
	t.Cleanup(func() { close(blocker.release) })

	testApp, _, logs := SetupAppTest(t, Config{EvalTimeout: 50 * time.Millisecond}, engine.WithEvaluator(blocker))

	rec := postEvaluate(t, testApp.Handler(), `{"A":"=slow"}`)
	require.Equal(t, http.StatusGatewayTimeout, rec.Code)
	assert.JSONEq(t, `{"error":"evaluation timed out"}`, rec.Body.String())
	assert.Contains(t, logs.String(), "Evaluate: timed out")
	assert.Contains(t, logs.String(), "request_id=")
}

func TestHealthAndMetrics(t *testing.T) {
	testApp, _, _ := SetupAppTest(t, Config{})
	handler := testApp.Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK\n", rec.Body.String())

	postEvaluate(t, handler, `{"A":"1","B":"=A*2","C":"=nope"}`)
	postEvaluate(t, handler, `not json`)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `sheetcalc_evaluations_total{outcome="ok"} 1`)
	assert.Contains(t, body, `sheetcalc_evaluations_total{outcome="bad_request"} 1`)
	assert.Contains(t, body, `sheetcalc_cells_total{kind="number"} 2`)
	assert.Contains(t, body, `sheetcalc_cells_total{kind="error"} 1`)
	assert.Contains(t, body, "sheetcalc_evaluation_duration_seconds_count 1")
}

func TestEvaluateHandler_MethodNotAllowed(t *testing.T) {
	testApp, _, _ := SetupAppTest(t, Config{})
	rec := httptest.NewRecorder()
	testApp.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/evaluate", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestServeListener(t *testing.T) {
	testApp, _, logs := SetupAppTest(t, Config{})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- testApp.ServeListener(ctx, ln) }()

	resp, err := http.Post("http://"+ln.Addr().String()+"/evaluate", "application/json", strings.NewReader(`{"A":"=1+2"}`))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.JSONEq(t, `{"A":{"kind":"number","value":3}}`, string(body))

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
	assert.Contains(t, logs.String(), "Evaluation server shut down gracefully.")
}
