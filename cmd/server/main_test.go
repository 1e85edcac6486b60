package main

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestServeWaitsForInFlightRequests checks that serve only returns once a request that was
// running when the context ended has completed, so work after serve sees all its events.
func TestServeWaitsForInFlightRequests(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	entered := make(chan struct{})
	release := make(chan struct{})
	server := &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		<-release
		w.WriteHeader(http.StatusOK)
	})}
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	served := make(chan struct{})
	go func() {
		serve(ctx, server, l, logger, 5*time.Second)
		close(served)
	}()

	respc := make(chan int, 1)
	go func() {
		resp, err := http.Get("http://" + l.Addr().String())
		if err != nil {
			respc <- 0
			return
		}
		resp.Body.Close()
		respc <- resp.StatusCode
	}()

	<-entered
	cancel()

	select {
	case <-served:
		t.Fatal("serve returned while a request was still running")
	case <-time.After(100 * time.Millisecond):
	}

	close(release)
	assert.Equal(t, http.StatusOK, <-respc)
	select {
	case <-served:
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after the request finished")
	}
}
