// Package httpserver builds the process's *http.Server.
package httpserver

import (
	"net/http"
	"time"

	"hiretrack/internal/platform/config"
)

const (
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 15 * time.Second
	idleTimeout       = 120 * time.Second

	// writeSlack leaves room to write the timeout response after the
	// request context expires.
	writeSlack = 5 * time.Second
)

// New builds a server for cfg.Addr. The write timeout follows the request
// timeout so handlers cut off by the context can still answer.
func New(cfg config.Server, handler http.Handler) *http.Server {
	write := 60 * time.Second
	if cfg.RequestTimeout > 0 {
		write = cfg.RequestTimeout + writeSlack
	}
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      write,
		IdleTimeout:       idleTimeout,
	}
}
