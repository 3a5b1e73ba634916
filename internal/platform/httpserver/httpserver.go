package httpserver

import (
	"net/http"
	"time"
)

// New builds the API server. The write timeout leaves headroom for the
// flush-expired sweep, which walks every lifecycle record in one request.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
}
