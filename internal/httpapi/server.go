package httpapi

import (
	"net/http"
	"time"

	"surfsup-server/internal/config"
)

func NewServer(config config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              config.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
