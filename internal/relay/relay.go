// Package relay is an HTTP pull-based fan-out for a driver's sentence
// stream, adapted from the teacher's pkg/caster in-memory NTRIP
// source service: the same subscriber-channel/chunked-transfer shape,
// serving one implicit NMEA mount instead of named RTCM mountpoints.
package relay

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Relay fans a single stream of sentence lines out to any number of
// concurrent HTTP subscribers.
type Relay struct {
	mu          sync.RWMutex
	subscribers map[chan []byte]struct{}
	logger      logrus.FieldLogger

	http.Server
}

// New constructs a Relay listening on addr. Call ListenAndServe to
// start it, mirroring the teacher's Caster.
func New(addr string, logger logrus.FieldLogger) *Relay {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	r := &Relay{
		subscribers: make(map[chan []byte]struct{}),
		logger:      logger,
	}
	r.Server = http.Server{
		Addr:        addr,
		Handler:     http.HandlerFunc(r.handle),
		IdleTimeout: 10 * time.Second,
	}
	return r
}

// Publish sends data to every currently-connected subscriber, dropping
// it for any subscriber whose buffer is full rather than blocking the
// driver's worker loop.
func (r *Relay) Publish(data []byte) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for sub := range r.subscribers {
		select {
		case sub <- data:
		default:
		}
	}
}

func (r *Relay) subscribe(ctx context.Context) chan []byte {
	ch := make(chan []byte, 32)

	r.mu.Lock()
	r.subscribers[ch] = struct{}{}
	r.mu.Unlock()

	go func() {
		<-ctx.Done()
		r.mu.Lock()
		delete(r.subscribers, ch)
		r.mu.Unlock()
		close(ch)
	}()

	return ch
}

func (r *Relay) handle(w http.ResponseWriter, req *http.Request) {
	requestID := uuid.New().String()
	l := r.logger.WithFields(logrus.Fields{
		"request_id": requestID,
		"path":       req.URL.Path,
		"source_ip":  req.RemoteAddr,
	})
	l.Debug("relay connection opened")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	sub := r.subscribe(req.Context())

	w.Header().Set("Content-Type", "text/plain")
	w.Header().Set("Transfer-Encoding", "chunked")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for data := range sub {
		if _, err := w.Write(data); err != nil {
			l.WithError(err).Debug("relay write failed, subscriber disconnected")
			return
		}
		flusher.Flush()
	}
}
