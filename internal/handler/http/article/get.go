package article

import (
	"net/http"

	"article-service/internal/handler/http/pathutil"
	"article-service/internal/handler/http/respond"
	artUC "article-service/internal/usecase/article"
)

type GetHandler struct{ Svc *artUC.Service }

// ServeHTTP returns one article, from the cache when it holds it.
//
//	GET /articles/{id}
//	200 article | 404 not found | 422 invalid id
func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ParseID(r.PathValue("id"))
	if err != nil {
		respond.FromError(w, r, artUC.ErrInvalidArticleID)
		return
	}

	found, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		respond.FromError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTO(found))
}
