package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/quillhq/quill-server/internal/domain"
	"github.com/quillhq/quill-server/internal/service"
	"github.com/quillhq/quill-server/internal/validation"
)

func (s *Server) registerPostRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listPosts",
		Method:      http.MethodGet,
		Path:        "/api/posts",
		Summary:     "List posts by authors",
		Description: "Returns every post written by at least one of the given authors, each post once, sorted by the requested field",
		Tags:        []string{"Posts"},
	}, s.handleListPosts)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createPost",
		Method:        http.MethodPost,
		Path:          "/api/posts",
		Summary:       "Create post",
		Description:   "Creates a post authored by the requester",
		Tags:          []string{"Posts"},
		DefaultStatus: http.StatusOK,
	}, s.handleCreatePost)

	huma.Register(s.api, huma.Operation{
		OperationID: "updatePost",
		Method:      http.MethodPatch,
		Path:        "/api/posts/{postId}",
		Summary:     "Update post",
		Description: "Updates text, tags or the author set of a post. Only current authors may edit.",
		Tags:        []string{"Posts"},
	}, s.handleUpdatePost)
}

// PostResponse contains post data in API responses.
type PostResponse struct {
	ID         int64     `json:"id" doc:"Post ID"`
	Text       string    `json:"text" doc:"Post body"`
	Tags       []string  `json:"tags" doc:"Post tags"`
	Reads      int64     `json:"reads" doc:"Read count"`
	Likes      int64     `json:"likes" doc:"Like count"`
	Popularity float64   `json:"popularity" doc:"Popularity score"`
	CreatedAt  time.Time `json:"createdAt" doc:"Creation time"`
	UpdatedAt  time.Time `json:"updatedAt" doc:"Last update time"`
	AuthorIDs  []int64   `json:"authorIds,omitempty" doc:"Current authors (update responses only)"`
}

func toPostResponse(p *domain.Post) PostResponse {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return PostResponse{
		ID:         p.ID,
		Text:       p.Text,
		Tags:       tags,
		Reads:      p.Reads,
		Likes:      p.Likes,
		Popularity: p.Popularity,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

// PostEnvelope is the response body for single-post operations.
type PostEnvelope struct {
	Post PostResponse `json:"post" doc:"The created or updated post"`
}

// PostOutput wraps a single post.
type PostOutput struct {
	Body PostEnvelope
}

// ListPostsInput contains parameters for listing posts.
type ListPostsInput struct {
	AuthorIDs string `query:"authorIds" doc:"Comma separated author ids, e.g. 1,5"`
	SortBy    string `query:"sortBy" doc:"Sort field: id, reads, likes or popularity (default id)"`
	Direction string `query:"direction" doc:"Sort direction: asc or desc (default asc)"`
}

// PostListEnvelope is the response body for listing posts.
type PostListEnvelope struct {
	Posts []PostResponse `json:"posts" doc:"Matching posts, each once"`
}

// ListPostsOutput contains the matching posts.
type ListPostsOutput struct {
	Body PostListEnvelope
}

func (s *Server) handleListPosts(ctx context.Context, input *ListPostsInput) (*ListPostsOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	authorIDs, err := validation.ParseIDList("authorIds", input.AuthorIDs)
	if err != nil {
		return nil, toAPIError(err)
	}

	posts, err := s.services.Post.ListPosts(ctx, service.ListPostsRequest{
		AuthorIDs: authorIDs,
		SortBy:    input.SortBy,
		Direction: input.Direction,
	})
	if err != nil {
		return nil, s.fail(ctx, err)
	}

	out := &ListPostsOutput{}
	out.Body.Posts = make([]PostResponse, len(posts))
	for i := range posts {
		out.Body.Posts[i] = toPostResponse(&posts[i])
	}
	return out, nil
}

// CreatePostRequest is the request body for creating a post.
type CreatePostRequest struct {
	Text string   `json:"text" doc:"Post body"`
	Tags []string `json:"tags,omitempty" doc:"Post tags"`
}

// CreatePostInput wraps the create post request for Huma.
type CreatePostInput struct {
	Body CreatePostRequest
}

func (s *Server) handleCreatePost(ctx context.Context, input *CreatePostInput) (*PostOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	post, err := s.services.Post.CreatePost(ctx, service.CreatePostRequest{
		Text:     input.Body.Text,
		Tags:     input.Body.Tags,
		AuthorID: userID,
	})
	if err != nil {
		return nil, s.fail(ctx, err)
	}

	out := &PostOutput{}
	out.Body.Post = toPostResponse(post)
	return out, nil
}

// UpdatePostRequest is the request body for updating a post.
// Omitted fields are left unchanged.
type UpdatePostRequest struct {
	Text      *string   `json:"text,omitempty" doc:"New post body"`
	Tags      *[]string `json:"tags,omitempty" doc:"Replacement tag list"`
	AuthorIDs *[]int64  `json:"authorIds,omitempty" doc:"Replacement author set; must keep at least one author"`
}

// UpdatePostInput wraps the update post request for Huma.
type UpdatePostInput struct {
	PostID string `path:"postId" doc:"Post ID"`
	Body   UpdatePostRequest
}

func (s *Server) handleUpdatePost(ctx context.Context, input *UpdatePostInput) (*PostOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	ids, err := validation.ValidatePositiveIntegers("postId", []string{input.PostID})
	if err != nil {
		return nil, toAPIError(err)
	}

	post, err := s.services.Post.UpdatePost(ctx, ids[0], userID, domain.PostPatch{
		Text:      input.Body.Text,
		Tags:      input.Body.Tags,
		AuthorIDs: input.Body.AuthorIDs,
	})
	if err != nil {
		return nil, s.fail(ctx, err)
	}

	out := &PostOutput{}
	out.Body.Post = toPostResponse(&post.Post)
	out.Body.Post.AuthorIDs = post.AuthorIDs
	return out, nil
}

// fail logs server-side failures with their cause and converts err for huma.
// Client errors are returned without logging.
func (s *Server) fail(ctx context.Context, err error) error {
	apiErr := toAPIError(err)
	if se, ok := apiErr.(huma.StatusError); ok && se.GetStatus() >= http.StatusInternalServerError {
		s.logger.ErrorContext(ctx, "request failed", "error", err)
	}
	return apiErr
}
