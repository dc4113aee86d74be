package httpserver

import (
	"net/http"
	"time"
)

// New builds an HTTP server with defaults sized for this project.
// Certificate submissions carry base64 document scans and the AI-backed
// endpoints retry with backoff before answering, so the read and write
// timeouts are generous compared to a typical JSON API.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       time.Minute,
	}
}
