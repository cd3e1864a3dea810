package article

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"newsdigest/internal/domain/entity"
	"newsdigest/internal/handler/http/respond"
	artUC "newsdigest/internal/usecase/article"
)

type CreateHandler struct{ Svc *artUC.Service }

type createRequest struct {
	Source      string `json:"source"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Content     string `json:"content"`
	PublishedAt string `json:"published_at"`
	ImageURL    string `json:"image_url"`
}

// ServeHTTP handles POST /news. 201 with the new record, 200 with the stored
// record when the URL already exists, 400 on invalid input.
func (h CreateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, r, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	var publishedAt *time.Time
	if req.PublishedAt != "" {
		t, err := time.Parse(time.RFC3339, req.PublishedAt)
		if err != nil {
			respond.SafeError(w, r, http.StatusBadRequest,
				errors.New("published_at must be in RFC3339 format"))
			return
		}
		publishedAt = &t
	}

	art, created, err := h.Svc.CreateOrGet(r.Context(), artUC.CreateInput{
		Source:      req.Source,
		Title:       req.Title,
		URL:         req.URL,
		Content:     req.Content,
		PublishedAt: publishedAt,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, entity.ErrValidationFailed) {
			code = http.StatusBadRequest
		}
		respond.SafeError(w, r, code, err)
		return
	}

	code := http.StatusOK
	if created {
		code = http.StatusCreated
	}
	respond.JSON(w, code, toDTO(art))
}
