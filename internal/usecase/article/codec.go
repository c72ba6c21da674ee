package article

import (
	"time"

	"github.com/bytedance/sonic"

	"article-service/internal/domain/entity"
)

// cacheAPI encodes cache entries. Entries are internal, so HTML escaping is off.
var cacheAPI = sonic.Config{
	EscapeHTML:       false,
	CompactMarshaler: true,
	ValidateString:   true,
}.Froze()

// cachedArticle is the cache entry layout for an Article.
type cachedArticle struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Author      string     `json:"author"`
	Body        string     `json:"body"`
	Tags        []string   `json:"tags,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func encodeArticle(a *entity.Article) ([]byte, error) {
	return cacheAPI.Marshal(cachedArticle{
		ID:          a.ID,
		Title:       a.Title,
		Author:      a.Author,
		Body:        a.Body,
		Tags:        a.Tags,
		PublishedAt: a.PublishedAt,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	})
}

func decodeArticle(raw []byte) (*entity.Article, error) {
	var c cachedArticle
	if err := cacheAPI.Unmarshal(raw, &c); err != nil {
		return nil, err
	}
	return &entity.Article{
		ID:          c.ID,
		Title:       c.Title,
		Author:      c.Author,
		Body:        c.Body,
		Tags:        c.Tags,
		PublishedAt: c.PublishedAt,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}, nil
}
