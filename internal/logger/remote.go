package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

const (
	defaultQueueSize = 256
	defaultTimeout   = 5 * time.Second
)

type RemoteConfig struct {
	URL         string
	AccessToken string
	Level       slog.Leveler
	Timeout     time.Duration
	QueueSize   int
}

// logEntry is the collector's wire format.
type logEntry struct {
	Stack   string `json:"stack"`
	Level   string `json:"level"`
	Package string `json:"package"`
	Message string `json:"message"`
}

// RemoteHandler is a slog.Handler that ships records to a remote collector
// over HTTP. Shipping is fire-and-forget: records are queued to a background
// worker and dropped when the queue is full or the collector is unreachable.
// It never blocks or fails the logging call site.
type RemoteHandler struct {
	cfg   RemoteConfig
	queue chan logEntry
	attrs []slog.Attr
}

func NewRemoteHandler(cfg RemoteConfig) *RemoteHandler {
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.QueueSize == 0 {
		cfg.QueueSize = defaultQueueSize
	}
	if cfg.Level == nil {
		cfg.Level = slog.LevelInfo
	}

	h := &RemoteHandler{
		cfg:   cfg,
		queue: make(chan logEntry, cfg.QueueSize),
	}

	go h.worker()

	return h
}

func (h *RemoteHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.cfg.Level.Level()
}

func (h *RemoteHandler) Handle(_ context.Context, record slog.Record) error {
	component := "service"
	for _, attr := range h.attrs {
		if attr.Key == "component" {
			component = attr.Value.String()
		}
	}
	record.Attrs(func(attr slog.Attr) bool {
		if attr.Key == "component" {
			component = attr.Value.String()
			return false
		}
		return true
	})

	entry := logEntry{
		Stack:   "backend",
		Level:   levelName(record.Level),
		Package: component,
		Message: record.Message,
	}

	select {
	case h.queue <- entry:
	default:
		// queue full, drop
	}

	return nil
}

func (h *RemoteHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &clone
}

func (h *RemoteHandler) WithGroup(_ string) slog.Handler {
	return h
}

func (h *RemoteHandler) worker() {
	client := &http.Client{Timeout: h.cfg.Timeout}

	for entry := range h.queue {
		h.send(client, entry)
	}
}

func (h *RemoteHandler) send(client *http.Client, entry logEntry) {
	body, err := json.Marshal(entry)
	if err != nil {
		return
	}

	req, err := http.NewRequest(http.MethodPost, h.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return
	}

	req.Header.Set("Content-Type", "application/json")
	if h.cfg.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+h.cfg.AccessToken)
	}

	resp, err := client.Do(req)
	if err != nil {
		return
	}
	resp.Body.Close()
}

func levelName(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "error"
	case level >= slog.LevelWarn:
		return "warn"
	case level >= slog.LevelInfo:
		return "info"
	default:
		return "debug"
	}
}

// FanoutHandler duplicates records to every wrapped handler.
type FanoutHandler struct {
	handlers []slog.Handler
}

func NewFanoutHandler(handlers ...slog.Handler) *FanoutHandler {
	return &FanoutHandler{handlers: handlers}
}

func (f *FanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f *FanoutHandler) Handle(ctx context.Context, record slog.Record) error {
	var firstErr error
	for _, h := range f.handlers {
		if !h.Enabled(ctx, record.Level) {
			continue
		}
		if err := h.Handle(ctx, record.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (f *FanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(f.handlers))
	for i, h := range f.handlers {
		handlers[i] = h.WithAttrs(attrs)
	}
	return &FanoutHandler{handlers: handlers}
}

func (f *FanoutHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(f.handlers))
	for i, h := range f.handlers {
		handlers[i] = h.WithGroup(name)
	}
	return &FanoutHandler{handlers: handlers}
}
