package article

import (
	"net/http"

	"article-service/internal/handler/http/respond"
	artUC "article-service/internal/usecase/article"
)

type CreateHandler struct{ Svc *artUC.Service }

// ServeHTTP creates an article.
//
//	POST /articles
//	201 created article | 409 duplicate (title, author) | 422 invalid body
func (h CreateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := decodeJSON(r, &req); err != nil {
		respond.FromError(w, r, err)
		return
	}

	created, err := h.Svc.Create(r.Context(), req.draft())
	if err != nil {
		respond.FromError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, toDTO(created))
}
