package httpserver

import (
	"net/http"
	"time"
)

// New builds the checkout HTTP server. Write timeouts stay generous because
// purchase requests wait on two upstream providers.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      90 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
