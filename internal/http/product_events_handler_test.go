package http_test

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/product-api/internal/config"
	producthttp "github.com/tuanvumaihuynh/product-api/internal/http"
	"github.com/tuanvumaihuynh/product-api/internal/http/metric"
	"github.com/tuanvumaihuynh/product-api/internal/model"
)

type sseFrame struct {
	id   string
	data string
}

// readFrame reads one server-sent event made of id and data lines.
func readFrame(t *testing.T, r *bufio.Reader) sseFrame {
	t.Helper()

	var frame sseFrame
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)

		line = strings.TrimRight(line, "\n")
		switch {
		case line == "":
			return frame
		case strings.HasPrefix(line, "id:"):
			frame.id = strings.TrimPrefix(line, "id:")
		case strings.HasPrefix(line, "data:"):
			frame.data = strings.TrimPrefix(line, "data:")
		}
	}
}

func TestStreamProductEvents(t *testing.T) {
	s := newTestServer(t, true)
	srv := httptest.NewServer(s.handler)
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/products/events", nil)
	require.NoError(t, err)

	started := time.Now()
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	assert.Equal(t, "no-cache", resp.Header.Get("Cache-Control"))

	reader := bufio.NewReader(resp.Body)
	for i := range 5 {
		frame := readFrame(t, reader)
		assert.Equal(t, strconv.Itoa(i), frame.id)

		var ev model.ProductEvent
		require.NoError(t, json.Unmarshal([]byte(frame.data), &ev))
		assert.Equal(t, model.ProductEvent{EventID: int64(i), EventType: "Product Event"}, ev)
	}
	assert.GreaterOrEqual(t, time.Since(started), 5*20*time.Millisecond)

	subscribers := metric.New().EventSubscribers
	assert.Equal(t, 1.0, testutil.ToFloat64(subscribers))

	cancel()

	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(subscribers) == 0
	}, time.Second, 10*time.Millisecond)
}

func freePort(t *testing.T) uint32 {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	//nolint:gosec
	return uint32(port)
}

func TestShutdownEndsProductEvents(t *testing.T) {
	s := newTestServer(t, false)
	port := freePort(t)

	svc := producthttp.New(config.HTTP{
		Port:                  port,
		ProductEventsInterval: 20 * time.Millisecond,
	}, slog.New(slog.DiscardHandler), nil, nil)

	cleanup, err := svc.RunWithServer(context.Background(), s.handler)
	require.NoError(t, err)

	resp, err := http.Get("http://127.0.0.1:" + strconv.Itoa(int(port)) + "/products/events")
	require.NoError(t, err)
	defer resp.Body.Close()

	reader := bufio.NewReader(resp.Body)
	assert.Equal(t, "0", readFrame(t, reader).id)

	started := time.Now()
	require.NoError(t, cleanup(context.Background()))
	assert.Less(t, time.Since(started), 2*time.Second)

	ended := make(chan struct{})
	go func() {
		defer close(ended)
		_, _ = io.Copy(io.Discard, reader)
	}()

	select {
	case <-ended:
	case <-time.After(time.Second):
		t.Fatal("product event stream still open after shutdown")
	}
}
