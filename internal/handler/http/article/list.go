package article

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"newsdigest/internal/common/pagination"
	"newsdigest/internal/handler/http/respond"
	"newsdigest/internal/observability/logging"
	"newsdigest/internal/repository"
	artUC "newsdigest/internal/usecase/article"
)

type ListHandler struct {
	Svc    *artUC.Service
	Logger *slog.Logger
}

// ServeHTTP handles GET /news?topic=&q=&limit=&offset= and answers
// {"total": n, "items": [...]}.
func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	logger := logging.WithRequestID(ctx, h.Logger)

	params, err := pagination.ParseQueryParams(r, h.Svc.Pagination)
	if err != nil {
		logger.Warn("invalid pagination parameters", slog.Any("error", err))
		respond.SafeError(w, r, http.StatusBadRequest, err)
		return
	}

	filter := repository.ListFilter{
		Topic: r.URL.Query().Get("topic"),
		Query: r.URL.Query().Get("q"),
	}

	result, err := h.Svc.List(ctx, filter, params)
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, pagination.ErrInvalidParams) {
			code = http.StatusBadRequest
		}
		respond.SafeError(w, r, code, err)
		return
	}

	logger.Debug("news list served",
		slog.String("topic", filter.Topic),
		slog.String("q", filter.Query),
		slog.Int("limit", params.Limit),
		slog.Int("offset", params.Offset),
		slog.Int("returned", len(result.Items)),
		slog.Int64("total", result.Total),
		slog.Duration("duration", time.Since(start)))

	respond.JSON(w, http.StatusOK, pagination.NewResponse(toDTOs(result.Items), result.Total))
}
