package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"article-service/internal/handler/http/respond"
)

// Timeout returns middleware that answers 504 when a handler has not
// responded within d. The handler's context is canceled at the deadline,
// which aborts in-flight store queries. Writes the handler makes after the
// deadline are discarded with http.ErrHandlerTimeout.
func Timeout(d time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		if d <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()

			tw := &timeoutWriter{w: w, h: make(http.Header), ctx: ctx}
			done := make(chan struct{})
			panicked := make(chan any, 1)

			go func() {
				defer func() {
					if p := recover(); p != nil {
						panicked <- p
					}
				}()
				next.ServeHTTP(tw, r.WithContext(ctx))
				close(done)
			}()

			select {
			case p := <-panicked:
				panic(p)
			case <-done:
			case <-ctx.Done():
			}

			tw.mu.Lock()
			defer tw.mu.Unlock()
			tw.closed = true
			if !tw.wroteHeader && ctx.Err() != nil {
				respond.Error(w, http.StatusGatewayTimeout, "request timeout")
			}
		})
	}
}

// timeoutWriter buffers headers until the handler writes, so a 504 written
// by Timeout never mixes with headers the handler had staged.
type timeoutWriter struct {
	w   http.ResponseWriter
	h   http.Header
	ctx context.Context

	mu sync.Mutex
	// closed is set once Timeout has returned; w must not be touched after.
	closed      bool
	wroteHeader bool
}

// expired reports whether the handler may no longer write. Checking the
// deadline here, not only closed, keeps a write racing the deadline from
// slipping in before Timeout takes the lock.
func (tw *timeoutWriter) expired() bool {
	return tw.closed || tw.ctx.Err() != nil
}

func (tw *timeoutWriter) Header() http.Header { return tw.h }

func (tw *timeoutWriter) WriteHeader(code int) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	tw.writeHeaderLocked(code)
}

func (tw *timeoutWriter) writeHeaderLocked(code int) {
	if tw.wroteHeader || tw.expired() {
		return
	}
	tw.wroteHeader = true
	dst := tw.w.Header()
	for k, v := range tw.h {
		dst[k] = v
	}
	tw.w.WriteHeader(code)
}

func (tw *timeoutWriter) Write(b []byte) (int, error) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.expired() {
		return 0, http.ErrHandlerTimeout
	}
	tw.writeHeaderLocked(http.StatusOK)
	return tw.w.Write(b)
}
