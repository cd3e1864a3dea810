package article

import (
	"log/slog"
	"net/http"

	artUC "newsdigest/internal/usecase/article"
)

// Register mounts the /news routes on mux.
func Register(mux *http.ServeMux, svc *artUC.Service, logger *slog.Logger) {
	mux.Handle("POST /news", CreateHandler{Svc: svc})
	mux.Handle("GET /news", ListHandler{Svc: svc, Logger: logger})
	mux.Handle("GET /news/{id}", GetHandler{Svc: svc})
}
