package webhook

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/iCardioAI/encephalon-examples/pkg/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListenerHandleDelivery(t *testing.T) {
	api := &fakeResultApi{}
	listener := NewListener(&ListenerOptions{Address: "127.0.0.1:0"}, NewProcessor(api))
	defer CleanupQueue(listener.queue, listener.queueFile)

	server := httptest.NewServer(listener.Handler())
	defer server.Close()

	res, err := http.Post(server.URL+"/", "application/json", strings.NewReader(`{"scan_id":"scan-9","status":"STARTED"}`))
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusAccepted, res.StatusCode)
	assert.Equal(t, int64(1), listener.QueueDepth())
}

func TestListenerRejectsNonPost(t *testing.T) {
	api := &fakeResultApi{}
	listener := NewListener(&ListenerOptions{Address: "127.0.0.1:0"}, NewProcessor(api))
	defer CleanupQueue(listener.queue, listener.queueFile)

	server := httptest.NewServer(listener.Handler())
	defer server.Close()

	res, err := http.Get(server.URL + "/")
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, res.StatusCode)
	assert.Equal(t, int64(0), listener.QueueDepth())
}

func TestListenerHealthEndpoint(t *testing.T) {
	api := &fakeResultApi{}
	listener := NewListener(&ListenerOptions{Address: "127.0.0.1:0"}, NewProcessor(api))
	defer CleanupQueue(listener.queue, listener.queueFile)

	server := httptest.NewServer(listener.Handler())
	defer server.Close()

	res, err := http.Get(server.URL + "/healthz")
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	body := make([]byte, 256)
	n, _ := res.Body.Read(body)
	assert.Contains(t, string(body[:n]), `"status":"ok"`)
}

func TestListenerRunProcessesQueuedDeliveries(t *testing.T) {
	api := &fakeResultApi{report: &client.Report{UUID: "report-1"}}
	listener := NewListener(&ListenerOptions{Address: "127.0.0.1:0", MaxWorkers: 2}, NewProcessor(api))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- listener.Run(ctx)
	}()

	require.NoError(t, listener.queue.Put([]byte(completedDelivery)))

	require.Eventually(t, func() bool {
		return api.reportCallCount() == 1
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("listener did not shut down")
	}
}
