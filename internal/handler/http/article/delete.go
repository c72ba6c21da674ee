package article

import (
	"net/http"

	"article-service/internal/handler/http/pathutil"
	"article-service/internal/handler/http/respond"
	artUC "article-service/internal/usecase/article"
)

type DeleteHandler struct{ Svc *artUC.Service }

// ServeHTTP deletes an article.
//
//	DELETE /articles/{id}
//	204 | 404 not found | 422 invalid id
func (h DeleteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ParseID(r.PathValue("id"))
	if err != nil {
		respond.FromError(w, r, artUC.ErrInvalidArticleID)
		return
	}

	if _, err := h.Svc.Delete(r.Context(), id); err != nil {
		respond.FromError(w, r, err)
		return
	}
	respond.NoContent(w, http.StatusNoContent)
}
