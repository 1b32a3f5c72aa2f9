package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// StreamProductEvents writes the product event stream as server-sent events until the client goes away.
func (h *productHandler) StreamProductEvents(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	rc := http.NewResponseController(w)

	// The stream outlives the server write timeout.
	if err := rc.SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		return fmt.Errorf("clear write deadline: %w", err)
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		h.logger.WarnContext(ctx, "flush product event stream", slog.Any("error", err))
		return nil
	}

	h.metrics.EventSubscribers.Inc()
	defer h.metrics.EventSubscribers.Dec()

	for ev := range h.events.Subscribe(ctx) {
		data, err := json.Marshal(ev)
		if err != nil {
			h.logger.ErrorContext(ctx, "marshal product event", slog.Any("error", err))
			return nil
		}

		if _, err := fmt.Fprintf(w, "id:%d\ndata:%s\n\n", ev.EventID, data); err != nil {
			h.logger.DebugContext(ctx, "product event stream closed", slog.Any("error", err))
			return nil
		}
		if err := rc.Flush(); err != nil {
			h.logger.DebugContext(ctx, "product event stream closed", slog.Any("error", err))
			return nil
		}
	}

	return nil
}
