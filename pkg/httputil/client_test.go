package httputil

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantlab-io/scorecast/pkg/config"
	"github.com/quantlab-io/scorecast/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	os.Clearenv()
	t.Setenv("LOG_LEVEL", "error")
	cfg, err := config.Load()
	require.NoError(t, err)
	return logger.New(cfg)
}

func TestClient_GetJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ticker":"AAPL","count":2}`))
	}))
	defer server.Close()

	client := New(testLogger(t), 5*time.Second)

	var body struct {
		Ticker string `json:"ticker"`
		Count  int    `json:"count"`
	}
	err := client.GetJSON(context.Background(), server.URL, &body)
	require.NoError(t, err)
	assert.Equal(t, "AAPL", body.Ticker)
	assert.Equal(t, 2, body.Count)
}

func TestClient_GetJSON_Non2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := New(testLogger(t), 5*time.Second).DisableRetry()

	var body map[string]interface{}
	err := client.GetJSON(context.Background(), server.URL, &body)
	assert.Error(t, err)
}

func TestClient_RetriesOn5xx(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := New(testLogger(t), 5*time.Second).WithRetry(3, time.Millisecond)

	resp, err := client.Get(context.Background(), server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

// closeTrackingBody flags when a response body is closed
type closeTrackingBody struct {
	io.Reader
	closed *atomic.Bool
}

func (b *closeTrackingBody) Close() error {
	b.closed.Store(true)
	return nil
}

// failingTransport serves 500s with close-tracked bodies until the
// final attempt
type failingTransport struct {
	failures int
	calls    int
	bodies   []*atomic.Bool
}

func (tr *failingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	tr.calls++
	closed := &atomic.Bool{}
	tr.bodies = append(tr.bodies, closed)

	status := http.StatusInternalServerError
	if tr.calls > tr.failures {
		status = http.StatusOK
	}
	return &http.Response{
		StatusCode: status,
		Body:       &closeTrackingBody{Reader: strings.NewReader(`{}`), closed: closed},
		Header:     make(http.Header),
		Request:    req,
	}, nil
}

func TestClient_ClosesFailedBodiesBetweenRetries(t *testing.T) {
	transport := &failingTransport{failures: 2}
	client := New(testLogger(t), 5*time.Second).WithRetry(3, time.Millisecond)
	client.httpClient.Transport = transport

	resp, err := client.Get(context.Background(), "http://upstream.test/bars")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, 3, transport.calls)
	assert.True(t, transport.bodies[0].Load(), "first failed body not closed")
	assert.True(t, transport.bodies[1].Load(), "second failed body not closed")
	assert.False(t, transport.bodies[2].Load(), "successful body must stay open for the caller")
}

func TestIsRetryableError(t *testing.T) {
	assert.True(t, IsRetryableError(500))
	assert.True(t, IsRetryableError(503))
	assert.True(t, IsRetryableError(429))
	assert.False(t, IsRetryableError(404))
	assert.False(t, IsRetryableError(200))
}
