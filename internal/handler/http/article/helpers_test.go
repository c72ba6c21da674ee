package article_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"article-service/internal/common/pagination"
	"article-service/internal/domain/entity"
	"article-service/internal/handler/http/article"
	"article-service/internal/repository"
	artUC "article-service/internal/usecase/article"
)

/* ───────── in-memory repository ───────── */

type memRepo struct {
	mu     sync.Mutex
	data   map[int64]*entity.Article
	nextID int64
	err    error
	lastQ  repository.ListQuery

	conflictOnUpdate bool
}

func newMemRepo() *memRepo {
	return &memRepo{data: map[int64]*entity.Article{}, nextID: 1}
}

func cloneArticle(a *entity.Article) *entity.Article {
	if a == nil {
		return nil
	}
	c := *a
	c.Tags = append([]string(nil), a.Tags...)
	return &c
}

func (m *memRepo) Get(_ context.Context, id int64) (*entity.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return cloneArticle(m.data[id]), nil
}

func (m *memRepo) GetByTitleAndAuthor(_ context.Context, title, author string) (*entity.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, a := range m.data {
		if a.Title == title && a.Author == author {
			return cloneArticle(a), nil
		}
	}
	return nil, nil
}

func (m *memRepo) List(_ context.Context, q repository.ListQuery) ([]*entity.Article, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastQ = q
	if m.err != nil {
		return nil, 0, m.err
	}
	var all []*entity.Article
	for _, a := range m.data {
		if q.Author != "" && a.Author != q.Author {
			continue
		}
		if q.Tag != "" && !strings.Contains(entity.JoinTags(a.Tags), q.Tag) {
			continue
		}
		all = append(all, cloneArticle(a))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	total := int64(len(all))
	if q.Skip >= len(all) {
		return nil, total, nil
	}
	return all[q.Skip:min(q.Skip+q.Limit, len(all))], total, nil
}

func (m *memRepo) Create(_ context.Context, d entity.Draft) (*entity.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	a := &entity.Article{
		ID: m.nextID, Title: d.Title, Author: d.Author, Body: d.Body,
		Tags: d.Tags, PublishedAt: d.PublishedAt, CreatedAt: now, UpdatedAt: now,
	}
	m.nextID++
	m.data[a.ID] = a
	return cloneArticle(a), nil
}

func (m *memRepo) Update(_ context.Context, existing *entity.Article, p entity.Patch) (*entity.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	cur, ok := m.data[existing.ID]
	if !ok {
		return nil, nil
	}
	if m.conflictOnUpdate && p.Title.Set {
		for id, a := range m.data {
			if id != cur.ID && a.Title == p.Title.Value && a.Author == cur.Author {
				return nil, repository.ErrConflict
			}
		}
	}
	next := cur.Apply(p, cur.UpdatedAt.Add(time.Minute))
	m.data[next.ID] = &next
	return cloneArticle(&next), nil
}

func (m *memRepo) Delete(_ context.Context, existing *entity.Article) (*entity.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	cur, ok := m.data[existing.ID]
	if !ok {
		return nil, nil
	}
	delete(m.data, existing.ID)
	return cloneArticle(cur), nil
}

func (m *memRepo) Ping(context.Context) error { return m.err }

func (m *memRepo) seed(t *testing.T, d entity.Draft) *entity.Article {
	t.Helper()
	a, err := m.Create(context.Background(), d)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return a
}

var errDBDown = errors.New("pq: connection refused to postgres://app:hunter2@db/articles")

/* ───────── server ───────── */

const testAPIKey = "test-key"

func newServer(repo repository.ArticleRepository, prefix string) http.Handler {
	mux := http.NewServeMux()
	article.Register(mux, &artUC.Service{Repo: repo}, article.RouteConfig{
		Prefix:     prefix,
		APIKey:     testAPIKey,
		Pagination: pagination.DefaultConfig(),
	})
	return mux
}

func do(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-API-Key", testAPIKey)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func newRequestWithoutKey(method, target, body string) *http.Request {
	if body == "" {
		return httptest.NewRequest(method, target, nil)
	}
	return httptest.NewRequest(method, target, strings.NewReader(body))
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}
