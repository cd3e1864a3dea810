package article

import (
	"errors"
	"net/http"

	"newsdigest/internal/handler/http/pathutil"
	"newsdigest/internal/handler/http/respond"
	artUC "newsdigest/internal/usecase/article"
)

type GetHandler struct{ Svc *artUC.Service }

// ServeHTTP handles GET /news/{id}.
func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ParseID(r.PathValue("id"))
	if err != nil {
		respond.SafeError(w, r, http.StatusBadRequest, err)
		return
	}

	article, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		code := http.StatusInternalServerError
		switch {
		case errors.Is(err, artUC.ErrInvalidArticleID):
			code = http.StatusBadRequest
		case errors.Is(err, artUC.ErrArticleNotFound):
			code = http.StatusNotFound
		}
		respond.SafeError(w, r, code, err)
		return
	}

	respond.JSON(w, http.StatusOK, toDTO(article))
}
