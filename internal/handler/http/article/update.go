package article

import (
	"net/http"

	"article-service/internal/handler/http/pathutil"
	"article-service/internal/handler/http/respond"
	artUC "article-service/internal/usecase/article"
)

type UpdateHandler struct{ Svc *artUC.Service }

// ServeHTTP applies a partial update. Only keys present in the body change.
//
//	PUT /articles/{id}
//	200 updated article | 404 not found | 409 duplicate | 422 invalid
func (h UpdateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ParseID(r.PathValue("id"))
	if err != nil {
		respond.FromError(w, r, artUC.ErrInvalidArticleID)
		return
	}

	var req UpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		respond.FromError(w, r, err)
		return
	}

	updated, err := h.Svc.Update(r.Context(), id, req.patch())
	if err != nil {
		respond.FromError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTO(updated))
}
