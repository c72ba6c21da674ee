package article

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"article-service/internal/common/pagination"
	"article-service/internal/domain/entity"
	"article-service/internal/handler/http/respond"
	"article-service/internal/observability/logging"
	"article-service/internal/repository"
	artUC "article-service/internal/usecase/article"
)

// TotalCountHeader carries the size of the filtered set before pagination.
const TotalCountHeader = "X-Total-Count"

type ListHandler struct {
	Svc           *artUC.Service
	PaginationCfg pagination.Config
}

// ServeHTTP lists articles.
//
//	GET /articles?skip=&limit=&tag=&author=&search=&sort_order=asc|desc
//	200 array of articles, X-Total-Count header | 422 invalid parameter
func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	params, err := pagination.ParseQueryParams(query, h.PaginationCfg)
	if err != nil {
		respond.FromError(w, r, err)
		return
	}

	order, err := parseSortOrder(query.Get("sort_order"))
	if err != nil {
		respond.FromError(w, r, err)
		return
	}

	q := repository.ListQuery{
		Skip:      params.Skip,
		Limit:     params.Limit,
		Tag:       strings.TrimSpace(query.Get("tag")),
		Author:    strings.TrimSpace(query.Get("author")),
		Search:    strings.TrimSpace(query.Get("search")),
		SortOrder: order,
	}

	result, err := h.Svc.List(r.Context(), q)
	if err != nil {
		respond.FromError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Debug("articles listed",
		slog.Int("skip", q.Skip),
		slog.Int("limit", q.Limit),
		slog.Int("returned", len(result.Articles)),
		slog.Int64("total", result.Total))
	pagination.RecordReturned(len(result.Articles))

	out := make([]DTO, 0, len(result.Articles))
	for _, a := range result.Articles {
		out = append(out, toDTO(a))
	}

	w.Header().Set(TotalCountHeader, strconv.FormatInt(result.Total, 10))
	respond.JSON(w, http.StatusOK, out)
}

func parseSortOrder(s string) (repository.SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(repository.SortDesc):
		return repository.SortDesc, nil
	case string(repository.SortAsc):
		return repository.SortAsc, nil
	default:
		return "", &entity.ValidationError{Field: "sort_order", Message: "must be one of: asc, desc"}
	}
}
