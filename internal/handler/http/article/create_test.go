package article_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"article-service/internal/domain/entity"
	"article-service/internal/handler/http/article"
	"article-service/internal/handler/http/respond"
)

func TestCreateHandler_Success(t *testing.T) {
	repo := newMemRepo()
	srv := newServer(repo, "")

	rec := do(srv, http.MethodPost, "/articles",
		`{"title":"Go generics","body":"Type parameters in practice.","author":"Rob Pike","tags":["go","generics"],"published_at":"2026-01-01T09:00:00Z"}`)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var got article.DTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, int64(1), got.ID)
	assert.Equal(t, "Go generics", got.Title)
	assert.Equal(t, "Rob Pike", got.Author)
	assert.Equal(t, []string{"go", "generics"}, got.Tags)
	require.NotNil(t, got.PublishedAt)
	assert.True(t, got.PublishedAt.Equal(time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)))
	assert.Len(t, repo.data, 1)
}

func TestCreateHandler_EmptyTagsSerializeAsArray(t *testing.T) {
	srv := newServer(newMemRepo(), "")

	rec := do(srv, http.MethodPost, "/articles", `{"title":"No tags","body":"Body long enough.","author":"Ann"}`)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"tags":[]`)
	assert.Contains(t, rec.Body.String(), `"published_at":null`)
}

func TestCreateHandler_Duplicate(t *testing.T) {
	repo := newMemRepo()
	repo.seed(t, entity.Draft{Title: "Same title", Body: "Body long enough.", Author: "Ann"})
	srv := newServer(repo, "")

	rec := do(srv, http.MethodPost, "/articles", `{"title":"Same title","body":"Different body text.","author":"Ann"}`)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Len(t, repo.data, 1)
}

func TestCreateHandler_ValidationErrors(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantField string
	}{
		{name: "short title", body: `{"title":"Go","body":"Body long enough.","author":"Ann"}`, wantField: "title"},
		{name: "missing body", body: `{"title":"Title","author":"Ann"}`, wantField: "body"},
		{name: "short author", body: `{"title":"Title","body":"Body long enough.","author":"Al"}`, wantField: "author"},
		{name: "tag with separator", body: `{"title":"Title","body":"Body long enough.","author":"Ann","tags":["a;b"]}`, wantField: "tags[0]"},
		{name: "wrong type", body: `{"title":123,"body":"Body long enough.","author":"Ann"}`, wantField: "title"},
		{name: "bad timestamp", body: `{"title":"Title","body":"Body long enough.","author":"Ann","published_at":"yesterday"}`, wantField: "published_at"},
		{name: "malformed JSON", body: `{"title":`, wantField: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMemRepo()
			rec := do(newServer(repo, ""), http.MethodPost, "/articles", tt.body)

			require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
			var body respond.ErrorBody
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantField, body.Field)
			assert.NotEmpty(t, body.Error)
			assert.Empty(t, repo.data)
		})
	}
}

func TestCreateHandler_RepositoryFailureIsMasked(t *testing.T) {
	repo := newMemRepo()
	repo.err = errDBDown

	rec := do(newServer(repo, ""), http.MethodPost, "/articles", `{"title":"Title","body":"Body long enough.","author":"Ann"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
}

func TestCreateHandler_RequiresAPIKey(t *testing.T) {
	srv := newServer(newMemRepo(), "")
	req := newRequestWithoutKey(http.MethodPost, "/articles", `{"title":"Title","body":"Body long enough.","author":"Ann"}`)

	rec := serve(srv, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
