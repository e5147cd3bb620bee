package cbhttp

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
	"pgregory.net/rapid"

	lhttp "github.com/schedyio/schedy/pkg/http"
	lhttptest "github.com/schedyio/schedy/pkg/http/test"
)

func testConfig(retries uint) *Config {
	return &Config{
		RetryAttempts: retries,
		RetryDelay:    time.Millisecond,
		RetryMaxDelay: 5 * time.Millisecond,
	}
}

func TestRetryTransientForEveryMethod(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		method := lhttptest.MethodGenerator().Draw(t, "method")
		failures := rapid.IntRange(0, 3).Draw(t, "failures")
		code := rapid.SampledFrom([]int{http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout}).Draw(t, "code")

		var calls int32
		var bodies []string
		var mu sync.Mutex
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			content, _ := io.ReadAll(r.Body)
			mu.Lock()
			bodies = append(bodies, string(content))
			mu.Unlock()
			if int(atomic.AddInt32(&calls, 1)) <= failures {
				w.WriteHeader(code)
				return
			}
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"ok":true}`))
		}))
		defer server.Close()

		instance, err := NewInstance(testConfig(5))
		require.NoError(t, err)

		var got map[string]bool
		req := NewRequest(context.Background(), method, server.URL, BodyObj(map[string]int{"x": 1}))
		resp, herr := instance.Do(req)
		require.Nil(t, herr)
		defer resp.Close()
		require.NoError(t, json.NewDecoder(resp).Decode(&got))

		assert.Equal(t, map[string]bool{"ok": true}, got)
		assert.Equal(t, int32(failures+1), atomic.LoadInt32(&calls))
		for _, body := range bodies {
			assert.JSONEq(t, `{"x":1}`, body)
		}
	})
}

func TestNoRetryOnClientErrors(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		code := rapid.SampledFrom([]int{400, 401, 403, 404, 409, 412, 500}).Draw(t, "code")

		var calls int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.Header().Set("X-Reason", "nope")
			w.WriteHeader(code)
			_, _ = w.Write([]byte("server says no"))
		}))
		defer server.Close()

		instance, err := NewInstance(testConfig(5))
		require.NoError(t, err)

		_, herr := instance.Do(NewRequest(context.Background(), http.MethodPut, server.URL))
		require.NotNil(t, herr)
		assert.Equal(t, code, herr.Code)
		assert.Equal(t, "server says no", herr.Message)
		assert.Equal(t, "nope", herr.Header.Get("X-Reason"))
		assert.False(t, herr.IsTransport())
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	})
}

func TestRetryBudgetExhausted(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	instance, err := NewInstance(testConfig(3))
	require.NoError(t, err)

	_, herr := instance.Do(NewRequest(context.Background(), http.MethodGet, server.URL))
	require.NotNil(t, herr)
	assert.Equal(t, http.StatusServiceUnavailable, herr.Code)
	assert.Equal(t, int32(4), atomic.LoadInt32(&calls))
}

func TestTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	instance, err := NewInstance(testConfig(2))
	require.NoError(t, err)

	var retries uint
	_, herr := instance.Do(NewRequest(context.Background(), http.MethodGet, url, OnRetry(func(n uint, err *lhttp.HttpError) {
		retries++
	})))
	require.NotNil(t, herr)
	assert.True(t, herr.IsTransport())
	assert.GreaterOrEqual(t, retries, uint(2))
}

func TestCanceledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	instance, err := NewInstance(testConfig(5))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, herr := instance.Do(NewRequest(ctx, http.MethodGet, server.URL))
	require.NotNil(t, herr)
	assert.True(t, herr.IsCanceled())
	assert.False(t, herr.IsTransient())
}

func TestRequestOptions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer abc", r.Header.Get("Authorization"))
		assert.Equal(t, `"v1"`, r.Header.Get("If-Match"))
		assert.Equal(t, "t1", r.URL.Query().Get("start"))
		assert.False(t, r.URL.Query().Has("limit"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	instance, err := NewInstance(testConfig(0))
	require.NoError(t, err)

	type page struct {
		Start string `json:"start,omitempty"`
		Limit int    `json:"limit,omitempty"`
	}
	resp, herr := instance.Do(NewRequest(context.Background(), http.MethodGet, server.URL,
		BearerToken("abc"), IfMatch(`"v1"`), QueryObj(page{Start: "t1"})))
	require.Nil(t, herr)
	defer resp.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestInFlightLimit(t *testing.T) {
	const limit = 2

	var current, peak int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&current, 1)
		defer atomic.AddInt32(&current, -1)
		for {
			old := atomic.LoadInt32(&peak)
			if n <= old || atomic.CompareAndSwapInt32(&peak, old, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := testConfig(0)
	cfg.MaxInFlight = limit
	instance, err := NewInstance(cfg)
	require.NoError(t, err)

	group, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < 8; i++ {
		group.Go(func() error {
			if herr := instance.DoNoResponse(NewRequest(ctx, http.MethodGet, server.URL)); herr != nil {
				return herr
			}
			return nil
		})
	}
	require.NoError(t, group.Wait())
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(limit))
}

func TestMiddlewareOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	instance, err := NewInstance(testConfig(0))
	require.NoError(t, err)

	var order []string
	mark := func(name string) MiddlewareFunc {
		return func(next RunnerFunc) RunnerFunc {
			return func(r *Request) (*Response, *lhttp.HttpError) {
				order = append(order, name)
				return next(r)
			}
		}
	}

	herr := instance.With(mark("a")).DoNoResponse(NewRequest(context.Background(), http.MethodGet, server.URL), mark("b"))
	require.Nil(t, herr)
	assert.Equal(t, []string{"b", "a"}, order)
}

// truncatingServer announces a longer body than it sends on the first
// truncated calls, then answers normally.
func truncatingServer(truncated int32, body string) (*httptest.Server, *int32) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) > truncated {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(body))
			return
		}
		conn, buf, err := w.(http.Hijacker).Hijack()
		if err != nil {
			return
		}
		defer conn.Close()
		_, _ = buf.WriteString("HTTP/1.1 200 OK\r\nContent-Type: application/json\r\nContent-Length: 200\r\n\r\n" + body[:10])
		_ = buf.Flush()
	}))
	return server, &calls
}

func TestTruncatedBodyIsRetried(t *testing.T) {
	server, calls := truncatingServer(2, `{"id":"p","name":"My project"}`)
	defer server.Close()

	instance, err := NewInstance(testConfig(3))
	require.NoError(t, err)

	resp, herr := instance.Do(NewRequest(context.Background(), http.MethodGet, server.URL))
	require.Nil(t, herr)
	defer resp.Close()

	var got map[string]string
	require.NoError(t, json.NewDecoder(resp).Decode(&got))
	assert.Equal(t, map[string]string{"id": "p", "name": "My project"}, got)
	assert.Equal(t, int32(3), atomic.LoadInt32(calls))
}

func TestTruncatedBodyIsTransportFailure(t *testing.T) {
	server, calls := truncatingServer(100, `{"id":"p","name":"My project"}`)
	defer server.Close()

	instance, err := NewInstance(testConfig(2))
	require.NoError(t, err)

	_, herr := instance.Do(NewRequest(context.Background(), http.MethodGet, server.URL))
	require.NotNil(t, herr)
	assert.True(t, herr.IsTransport())
	assert.ErrorIs(t, herr, io.ErrUnexpectedEOF)
	assert.Equal(t, int32(3), atomic.LoadInt32(calls))
}
