package cbhttp

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	log "github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogIO(t *testing.T) {
	hook := logtest.NewGlobal()
	level := log.GetLevel()
	log.SetLevel(log.DebugLevel)
	defer log.SetLevel(level)
	defer hook.Reset()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		content, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"name":"p"}`, string(content))
		w.Header().Set("ETag", `"1"`)
		_, _ = w.Write([]byte(`{"id":"p"}`))
	}))
	defer server.Close()

	instance, err := NewInstance(testConfig(0))
	require.NoError(t, err)

	resp, herr := instance.Do(NewRequest(context.Background(), http.MethodPost, server.URL,
		BearerToken("secret"), BodyObj(map[string]string{"name": "p"})))
	require.Nil(t, herr)
	defer resp.Close()

	content, err := io.ReadAll(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"p"}`, string(content))

	var messages []string
	for _, entry := range hook.AllEntries() {
		messages = append(messages, entry.Message)
	}
	require.Len(t, messages, 2)
	assert.Contains(t, messages[0], "> POST "+server.URL)
	assert.Contains(t, messages[0], "<redacted>")
	assert.NotContains(t, messages[0], "secret")
	assert.Contains(t, messages[0], `{"name":"p"}`)
	assert.Contains(t, messages[1], "< 200")
	assert.Contains(t, messages[1], `{"id":"p"}`)
}

func TestLogIODisabled(t *testing.T) {
	hook := logtest.NewGlobal()
	level := log.GetLevel()
	log.SetLevel(log.InfoLevel)
	defer log.SetLevel(level)
	defer hook.Reset()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	instance, err := NewInstance(testConfig(0))
	require.NoError(t, err)
	require.Nil(t, instance.DoNoResponse(NewRequest(context.Background(), http.MethodGet, server.URL)))
	assert.Empty(t, hook.AllEntries())
}
