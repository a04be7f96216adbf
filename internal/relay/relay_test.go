package relay

import (
	"bufio"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribeReceivesPublishedData(t *testing.T) {
	r := New(":0", nil)
	server := httptest.NewServer(http.HandlerFunc(r.handle))
	defer server.Close()

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Eventually(t, func() bool {
		r.mu.RLock()
		defer r.mu.RUnlock()
		return len(r.subscribers) == 1
	}, time.Second, 10*time.Millisecond)

	r.Publish([]byte("$GPGGA,test*00\r\n"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Contains(t, line, "$GPGGA,test*00")
}

func TestSubscriberRemovedOnDisconnect(t *testing.T) {
	r := New(":0", nil)
	server := httptest.NewServer(http.HandlerFunc(r.handle))
	defer server.Close()

	resp, err := http.Get(server.URL)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		r.mu.RLock()
		defer r.mu.RUnlock()
		return len(r.subscribers) == 1
	}, time.Second, 10*time.Millisecond)

	resp.Body.Close()

	require.Eventually(t, func() bool {
		r.mu.RLock()
		defer r.mu.RUnlock()
		return len(r.subscribers) == 0
	}, time.Second, 10*time.Millisecond)
}

func TestPublishWithNoSubscribersDoesNotBlock(t *testing.T) {
	r := New(":0", nil)
	done := make(chan struct{})
	go func() {
		r.Publish([]byte("$GPGGA,test*00\r\n"))
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked with no subscribers")
	}
}
