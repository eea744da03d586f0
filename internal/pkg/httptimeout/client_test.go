package httptimeout

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDo_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasDeadline := r.Context().Deadline()
		if !hasDeadline {
			t.Error("expected request context to carry a deadline")
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	client := NewClient(server.Client(), time.Second)
	req, _ := http.NewRequest(http.MethodGet, server.URL, nil)

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, string(body))
}

func TestDo_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := NewClient(server.Client(), 50*time.Millisecond)
	req, _ := http.NewRequest(http.MethodGet, server.URL, nil)

	start := time.Now()
	_, err := client.Do(req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTimeout), "got %v", err)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestDo_ParentCancelIsNotTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(server.Client(), time.Second)
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, server.URL, nil)

	_, err := client.Do(req)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrTimeout))
}

type errDoer struct{ err error }

func (d errDoer) Do(*http.Request) (*http.Response, error) { return nil, d.err }

func TestDo_TransportErrorPassesThrough(t *testing.T) {
	boom := errors.New("connection refused")
	client := NewClient(errDoer{err: boom}, time.Second)
	req, _ := http.NewRequest(http.MethodGet, "http://example.invalid", nil)

	_, err := client.Do(req)
	assert.ErrorIs(t, err, boom)
}

func TestNewClientDefaults(t *testing.T) {
	client := NewClient(nil, 0)
	assert.Equal(t, DefaultTimeout, client.Timeout())
}
