package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/srcsetlab/pkg/observability"
)

// installHooks routes observability events to logger at debug level.
func installHooks(logger *log.Logger) {
	h := logHooks{logger: logger}
	observability.SetLookupHooks(h)
	observability.SetCacheHooks(h)
	observability.SetHTTPHooks(h)
}

type logHooks struct {
	logger *log.Logger
}

func (h logHooks) OnLookupStart(_ context.Context, mode, pageURL string) {
	h.logger.Debug("lookup", "mode", mode, "page", pageURL)
}

func (h logHooks) OnLookupComplete(_ context.Context, mode, pageURL string, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("lookup failed", "mode", mode, "page", pageURL, "duration", d.Round(time.Millisecond), "err", err)
		return
	}
	h.logger.Debug("lookup done", "mode", mode, "page", pageURL, "duration", d.Round(time.Millisecond))
}

func (h logHooks) OnLookupDiscarded(_ context.Context, pageURL string, generation uint64) {
	h.logger.Debug("stale lookup discarded", "page", pageURL, "generation", generation)
}

func (h logHooks) OnCacheHit(_ context.Context, key string) {
	h.logger.Debug("cache hit", "key", key)
}

func (h logHooks) OnCacheMiss(_ context.Context, key string) {
	h.logger.Debug("cache miss", "key", key)
}

func (h logHooks) OnCacheSet(_ context.Context, key string, size int) {
	h.logger.Debug("cache set", "key", key, "bytes", size)
}

func (h logHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("http request", "method", method, "host", host, "path", path)
}

func (h logHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("http response", "method", method, "host", host, "path", path, "status", status, "duration", d.Round(time.Millisecond))
}

func (h logHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Debug("http error", "method", method, "host", host, "path", path, "err", err)
}
