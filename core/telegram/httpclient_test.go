package telegram

import (
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildHTTPClientOutlastsLongPoll(t *testing.T) {
	client := BuildHTTPClient(50 * time.Second)
	assert.Greater(t, client.Timeout, 50*time.Second)

	rt, ok := client.Transport.(*retryTransport)
	require.True(t, ok)
	tr, ok := rt.base.(*http.Transport)
	require.True(t, ok)
	assert.Greater(t, tr.ResponseHeaderTimeout, 50*time.Second)

	assert.Equal(t, defaultClientTimeout, BuildHTTPClient(0).Timeout)
}

type flakyTransport struct {
	calls atomic.Int32
	fails int32
}

func (f *flakyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if f.calls.Add(1) <= f.fails {
		return nil, &net.OpError{Op: "dial", Err: errors.New("connection refused")}
	}
	rec := httptest.NewRecorder()
	rec.WriteHeader(http.StatusOK)
	return rec.Result(), nil
}

func TestRetryTransportRetriesDialErrors(t *testing.T) {
	base := &flakyTransport{fails: 2}
	client := &http.Client{Transport: &retryTransport{base: base, maxRetries: 3, backoff: time.Millisecond}}

	resp, err := client.Post("http://telegram.invalid/bot/sendMessage", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, int32(3), base.calls.Load())
}
