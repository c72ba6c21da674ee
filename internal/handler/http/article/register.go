package article

import (
	"net/http"
	"strings"

	"article-service/internal/common/pagination"
	"article-service/internal/handler/http/auth"
	artUC "article-service/internal/usecase/article"
)

// RouteConfig controls where and how the article routes are mounted.
type RouteConfig struct {
	// Prefix is prepended to every route, e.g. "/api/v1". Empty mounts at the root.
	Prefix     string
	APIKey     string
	Pagination pagination.Config
}

// Register mounts the article routes on mux. Every route requires the API
// key when one is configured.
func Register(mux *http.ServeMux, svc *artUC.Service, cfg RouteConfig) {
	prefix := strings.TrimSuffix(cfg.Prefix, "/")
	protect := auth.APIKey(cfg.APIKey)

	mux.Handle("GET "+prefix+"/articles", protect(ListHandler{Svc: svc, PaginationCfg: cfg.Pagination}))
	mux.Handle("POST "+prefix+"/articles", protect(CreateHandler{Svc: svc}))
	mux.Handle("GET "+prefix+"/articles/{id}", protect(GetHandler{Svc: svc}))
	mux.Handle("PUT "+prefix+"/articles/{id}", protect(UpdateHandler{Svc: svc}))
	mux.Handle("DELETE "+prefix+"/articles/{id}", protect(DeleteHandler{Svc: svc}))
}
