package schedy

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/require"

	"github.com/schedyio/schedy/pkg/clientbase"
	cbhttp "github.com/schedyio/schedy/pkg/clientbase/http"
	ltest "github.com/schedyio/schedy/pkg/test"
	ltime "github.com/schedyio/schedy/pkg/time"
)

const testRoot = "http://fake.schedy.io/"

var testNow = time.Unix(1536742235, 0)

type fixture struct {
	client    *Client
	routes    Routes
	watch     *ltime.TestingWatch
	transport *httpmock.MockTransport
	signins   int32
}

func newFixture(t ltest.T) *fixture {
	cfg, err := NewConfig(Config{Root: "http://fake.schedy.io", Email: "test@schedy.io", Token: "TOKEN"})
	require.NoError(t, err)

	instance, err := cbhttp.NewInstance(&cbhttp.Config{
		RetryAttempts: 1,
		RetryDelay:    time.Millisecond,
		RetryMaxDelay: 2 * time.Millisecond,
	})
	require.NoError(t, err)
	transport := httpmock.NewMockTransport()
	instance.Client.Transport = transport

	connections, err := clientbase.NewConnections(&clientbase.Config{UserAgent: "schedy-test"}, instance)
	require.NoError(t, err)

	watch := &ltime.TestingWatch{Current: testNow}
	return &fixture{
		client:    NewClient(cfg, connections, watch),
		routes:    NewRoutes(cfg.Root),
		watch:     watch,
		transport: transport,
	}
}

// signin accepts the test credentials and hands out tokens valid for an
// hour, numbered in order of issue.
func (f *fixture) signin(t ltest.T) {
	f.transport.RegisterResponder(http.MethodPost, f.routes.Signin(), func(req *http.Request) (*http.Response, error) {
		content, err := io.ReadAll(req.Body)
		require.NoError(t, err)
		require.JSONEq(t, `{"email":"test@schedy.io","token":"TOKEN","type":"apiToken"}`, string(content))
		n := atomic.AddInt32(&f.signins, 1)
		body := fmt.Sprintf(`{"token":"JWT-%d","expiresAt":%d}`, n, f.watch.Now().Add(time.Hour).Unix())
		return httpmock.NewStringResponse(http.StatusOK, body), nil
	})
}

func (f *fixture) signinCount() int {
	return int(atomic.LoadInt32(&f.signins))
}

func respond(status int, body string, header ...string) httpmock.Responder {
	return func(req *http.Request) (*http.Response, error) {
		resp := httpmock.NewStringResponse(status, body)
		if resp.Header == nil {
			resp.Header = make(http.Header)
		}
		for i := 0; i+1 < len(header); i += 2 {
			resp.Header.Set(header[i], header[i+1])
		}
		return resp, nil
	}
}

func readJSON(t ltest.T, req *http.Request) map[string]interface{} {
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(req.Body).Decode(&out))
	return out
}

func requireKind(t *testing.T, err error, kind error) *Error {
	t.Helper()
	require.ErrorIs(t, err, kind)
	var serr *Error
	require.ErrorAs(t, err, &serr)
	return serr
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}
