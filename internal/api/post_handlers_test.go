package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillhq/quill-server/internal/domain"
	"github.com/quillhq/quill-server/internal/service"
	"github.com/quillhq/quill-server/internal/store"
	"github.com/quillhq/quill-server/internal/store/sqlite"
)

type testServer struct {
	*Server
	api   humatest.TestAPI
	store *sqlite.Store
}

// setupTestServer builds a server over a fresh SQLite database seeded with
// users 1..5.
func setupTestServer(t *testing.T, opts Options) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	st, err := sqlite.Open(filepath.Join(t.TempDir(), "api.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	ctx := context.Background()
	for i := 1; i <= 5; i++ {
		require.NoError(t, st.CreateUser(ctx, &domain.User{Username: fmt.Sprintf("author%d", i)}))
	}

	services := &Services{Post: service.NewPostService(st, logger)}
	s := NewServer(st, services, opts, logger)
	t.Cleanup(s.Close)

	return &testServer{
		Server: s,
		api:    humatest.Wrap(t, s.API()),
		store:  st,
	}
}

// seedPost inserts a post with counters directly through the store.
func (ts *testServer) seedPost(t *testing.T, post domain.Post, authors ...int64) int64 {
	t.Helper()
	ctx := context.Background()
	err := ts.store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.CreatePost(ctx, &post); err != nil {
			return err
		}
		return tx.InsertLinks(ctx, post.ID, authors)
	})
	require.NoError(t, err)
	return post.ID
}

func asUser(id int64) string {
	return fmt.Sprintf("%s: %d", UserIDHeader, id)
}

func decode[T any](t *testing.T, body []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(body, &v), string(body))
	return v
}

func errorCode(t *testing.T, body []byte) string {
	t.Helper()
	return decode[APIError](t, body).Code
}

func TestCreatePost(t *testing.T) {
	ts := setupTestServer(t, Options{})

	resp := ts.api.Post("/api/posts", asUser(1), map[string]any{
		"text": "hello world",
		"tags": []string{"go", "sqlite"},
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	body := decode[PostEnvelope](t, resp.Body.Bytes())
	assert.Positive(t, body.Post.ID)
	assert.Equal(t, "hello world", body.Post.Text)
	assert.Equal(t, []string{"go", "sqlite"}, body.Post.Tags)

	links, err := ts.store.GetLinksByPostID(context.Background(), body.Post.ID)
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, int64(1), links[0].UserID)
}

func TestCreatePost_NoTagsRendersEmptyList(t *testing.T) {
	ts := setupTestServer(t, Options{})

	resp := ts.api.Post("/api/posts", asUser(2), map[string]any{"text": "bare"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var raw struct {
		Post map[string]any `json:"post"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &raw))
	assert.Equal(t, []any{}, raw.Post["tags"])
}

func TestCreatePost_Errors(t *testing.T) {
	ts := setupTestServer(t, Options{})

	tests := []struct {
		name       string
		args       []any
		wantStatus int
		wantCode   string
	}{
		{
			name:       "no identity",
			args:       []any{map[string]any{"text": "x"}},
			wantStatus: http.StatusUnauthorized,
			wantCode:   "UNAUTHORIZED",
		},
		{
			name:       "malformed identity",
			args:       []any{UserIDHeader + ": abc", map[string]any{"text": "x"}},
			wantStatus: http.StatusUnauthorized,
			wantCode:   "UNAUTHORIZED",
		},
		{
			name:       "missing text",
			args:       []any{asUser(1), map[string]any{"tags": []string{"a"}}},
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION",
		},
		{
			name:       "empty text",
			args:       []any{asUser(1), map[string]any{"text": ""}},
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION",
		},
		{
			name:       "tag with comma",
			args:       []any{asUser(1), map[string]any{"text": "x", "tags": []string{"a,b"}}},
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION",
		},
		{
			name:       "unknown requester",
			args:       []any{asUser(99), map[string]any{"text": "x"}},
			wantStatus: http.StatusInternalServerError,
			wantCode:   "STORE_FAILURE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.api.Post("/api/posts", tt.args...)
			assert.Equal(t, tt.wantStatus, resp.Code, resp.Body.String())
			assert.Equal(t, tt.wantCode, errorCode(t, resp.Body.Bytes()))
		})
	}

	// No failed create leaves a post behind.
	posts, err := ts.store.GetPostsByAuthorIDs(context.Background(), []int64{1, 99})
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestListPosts_SortAndDedupe(t *testing.T) {
	ts := setupTestServer(t, Options{})

	p1 := ts.seedPost(t, domain.Post{Text: "one", Likes: 5, Reads: 10, Popularity: 0.2}, 1)
	p2 := ts.seedPost(t, domain.Post{Text: "two", Likes: 1, Reads: 30, Popularity: 0.9}, 1, 2)
	p3 := ts.seedPost(t, domain.Post{Text: "three", Likes: 3, Reads: 20, Popularity: 0.5}, 2)
	ts.seedPost(t, domain.Post{Text: "other", Likes: 100}, 3)

	tests := []struct {
		query string
		want  []int64
	}{
		{"authorIds=1,2", []int64{p1, p2, p3}},
		{"authorIds=1,2&direction=desc", []int64{p3, p2, p1}},
		{"authorIds=1,2&sortBy=likes", []int64{p2, p3, p1}},
		{"authorIds=1,2&sortBy=likes&direction=desc", []int64{p1, p3, p2}},
		{"authorIds=2,1&sortBy=reads&direction=asc", []int64{p1, p3, p2}},
		{"authorIds=1,2&sortBy=popularity&direction=desc", []int64{p2, p3, p1}},
		{"authorIds=2", []int64{p2, p3}},
		{"authorIds=4", []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			resp := ts.api.Get("/api/posts?"+tt.query, asUser(1))
			require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

			body := decode[PostListEnvelope](t, resp.Body.Bytes())
			got := make([]int64, 0, len(body.Posts))
			for _, p := range body.Posts {
				got = append(got, p.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestListPosts_Errors(t *testing.T) {
	ts := setupTestServer(t, Options{})

	tests := []struct {
		name       string
		path       string
		headers    []any
		wantStatus int
		wantCode   string
	}{
		{"no identity", "/api/posts?authorIds=1", nil, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"missing authorIds", "/api/posts", []any{asUser(1)}, http.StatusBadRequest, "VALIDATION"},
		{"non-numeric authorIds", "/api/posts?authorIds=1,abc", []any{asUser(1)}, http.StatusBadRequest, "VALIDATION"},
		{"negative authorIds", "/api/posts?authorIds=-3", []any{asUser(1)}, http.StatusBadRequest, "VALIDATION"},
		{"bad sortBy", "/api/posts?authorIds=1&sortBy=title", []any{asUser(1)}, http.StatusBadRequest, "VALIDATION"},
		{"bad direction", "/api/posts?authorIds=1&direction=up", []any{asUser(1)}, http.StatusBadRequest, "VALIDATION"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.api.Get(tt.path, tt.headers...)
			assert.Equal(t, tt.wantStatus, resp.Code, resp.Body.String())
			assert.Equal(t, tt.wantCode, errorCode(t, resp.Body.Bytes()))
		})
	}
}

func TestUpdatePost(t *testing.T) {
	ts := setupTestServer(t, Options{})
	postID := ts.seedPost(t, domain.Post{Text: "draft", Tags: []string{"old"}, Likes: 4}, 1, 2)

	resp := ts.api.Patch(fmt.Sprintf("/api/posts/%d", postID), asUser(1), map[string]any{
		"text":      "final",
		"tags":      []string{"new", "tags"},
		"authorIds": []int64{1, 3},
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	body := decode[PostEnvelope](t, resp.Body.Bytes())
	assert.Equal(t, postID, body.Post.ID)
	assert.Equal(t, "final", body.Post.Text)
	assert.Equal(t, []string{"new", "tags"}, body.Post.Tags)
	assert.Equal(t, []int64{1, 3}, body.Post.AuthorIDs)
	assert.Equal(t, int64(4), body.Post.Likes)
}

func TestUpdatePost_TagsOnlyKeepsAuthors(t *testing.T) {
	ts := setupTestServer(t, Options{})
	postID := ts.seedPost(t, domain.Post{Text: "draft"}, 2)

	resp := ts.api.Patch(fmt.Sprintf("/api/posts/%d", postID), asUser(2), map[string]any{
		"tags": []string{"x"},
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	body := decode[PostEnvelope](t, resp.Body.Bytes())
	assert.Equal(t, "draft", body.Post.Text)
	assert.Equal(t, []string{"x"}, body.Post.Tags)
	assert.Equal(t, []int64{2}, body.Post.AuthorIDs)
}

func TestUpdatePost_Errors(t *testing.T) {
	ts := setupTestServer(t, Options{})
	postID := ts.seedPost(t, domain.Post{Text: "draft"}, 1)
	path := fmt.Sprintf("/api/posts/%d", postID)

	tests := []struct {
		name       string
		path       string
		args       []any
		wantStatus int
		wantCode   string
	}{
		{"no identity", path, []any{map[string]any{"text": "x"}}, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"non-numeric post id", "/api/posts/abc", []any{asUser(1), map[string]any{"text": "x"}}, http.StatusBadRequest, "VALIDATION"},
		{"negative post id", "/api/posts/-1", []any{asUser(1), map[string]any{"text": "x"}}, http.StatusBadRequest, "VALIDATION"},
		{"missing post", "/api/posts/999", []any{asUser(1), map[string]any{"text": "x"}}, http.StatusNotFound, "NOT_FOUND"},
		{"not an author", path, []any{asUser(2), map[string]any{"text": "x"}}, http.StatusForbidden, "FORBIDDEN"},
		{"empty text", path, []any{asUser(1), map[string]any{"text": ""}}, http.StatusBadRequest, "VALIDATION"},
		{"empty tags", path, []any{asUser(1), map[string]any{"tags": []string{}}}, http.StatusBadRequest, "VALIDATION"},
		{"empty author set", path, []any{asUser(1), map[string]any{"authorIds": []int64{}}}, http.StatusBadRequest, "VALIDATION"},
		{"zero author id", path, []any{asUser(1), map[string]any{"authorIds": []int64{0}}}, http.StatusBadRequest, "VALIDATION"},
		{"author ids not numbers", path, []any{asUser(1), map[string]any{"authorIds": []string{"a"}}}, http.StatusBadRequest, "VALIDATION"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.api.Patch(tt.path, tt.args...)
			assert.Equal(t, tt.wantStatus, resp.Code, resp.Body.String())
			assert.Equal(t, tt.wantCode, errorCode(t, resp.Body.Bytes()))
		})
	}

	post, err := ts.store.GetPost(context.Background(), postID)
	require.NoError(t, err)
	assert.Equal(t, "draft", post.Text)

	links, err := ts.store.GetLinksByPostID(context.Background(), postID)
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, int64(1), links[0].UserID)
}

func TestUpdatePost_SelfRemovalRevokesEditRights(t *testing.T) {
	ts := setupTestServer(t, Options{})
	postID := ts.seedPost(t, domain.Post{Text: "draft"}, 1)
	path := fmt.Sprintf("/api/posts/%d", postID)

	resp := ts.api.Patch(path, asUser(1), map[string]any{"authorIds": []int64{4}})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, []int64{4}, decode[PostEnvelope](t, resp.Body.Bytes()).Post.AuthorIDs)

	resp = ts.api.Patch(path, asUser(1), map[string]any{"text": "again"})
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = ts.api.Patch(path, asUser(4), map[string]any{"text": "again"})
	assert.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
}
