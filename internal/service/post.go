package service

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"github.com/quillhq/quill-server/internal/domain"
	domainerrors "github.com/quillhq/quill-server/internal/errors"
	"github.com/quillhq/quill-server/internal/store"
	"github.com/quillhq/quill-server/internal/validation"
)

// PostService orchestrates post creation, listing and updates.
// Authorship lives in the store's link relation; every multi-row write runs
// inside one store transaction.
type PostService struct {
	store     store.Store
	validator *validation.Validator
	logger    *slog.Logger
}

// NewPostService creates a new post service.
func NewPostService(store store.Store, logger *slog.Logger) *PostService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostService{
		store:     store,
		validator: validation.New(),
		logger:    logger,
	}
}

// CreatePostRequest contains the fields for a new post.
type CreatePostRequest struct {
	Text     string   `json:"text" validate:"required"`
	Tags     []string `json:"tags" validate:"omitempty,dive,required"`
	AuthorID int64    `json:"authorId" validate:"gt=0"`
}

// ListPostsRequest selects and orders posts. Empty SortBy and Direction
// default to id and asc.
type ListPostsRequest struct {
	AuthorIDs []int64
	SortBy    string
	Direction string
}

// CreatePost creates a post and links it to its author in one transaction.
// If the link cannot be written the post is rolled back with it.
func (s *PostService) CreatePost(ctx context.Context, req CreatePostRequest) (*domain.Post, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	post := &domain.Post{
		Text: req.Text,
		Tags: slices.Clone(req.Tags),
	}

	err := s.store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.CreatePost(ctx, post); err != nil {
			return err
		}
		return tx.InsertLinks(ctx, post.ID, []int64{req.AuthorID})
	})
	if err != nil {
		return nil, mapStoreError(err, "failed to create post")
	}

	s.logger.Info("post created",
		"post_id", post.ID,
		"author_id", req.AuthorID,
		"tags", len(post.Tags),
	)

	return post, nil
}

// ListPosts returns every post linked to at least one of the requested
// authors, each post once, ordered by the requested field and direction.
// Input is validated before the store is touched.
func (s *PostService) ListPosts(ctx context.Context, req ListPostsRequest) ([]domain.Post, error) {
	if err := validation.ValidateIDs("authorIds", req.AuthorIDs); err != nil {
		return nil, err
	}

	sortBy := req.SortBy
	if sortBy == "" {
		sortBy = string(domain.SortByID)
	}
	if err := validation.ValidateEnum("sortBy", sortBy, domain.SortKeys...); err != nil {
		return nil, err
	}

	direction := req.Direction
	if direction == "" {
		direction = string(domain.Ascending)
	}
	if err := validation.ValidateEnum("direction", direction, domain.Directions...); err != nil {
		return nil, err
	}

	posts, err := s.store.GetPostsByAuthorIDs(ctx, req.AuthorIDs)
	if err != nil {
		return nil, mapStoreError(err, "failed to list posts")
	}

	posts = dedupePosts(posts)
	sortPosts(posts, domain.SortKey(sortBy), domain.Direction(direction))
	return posts, nil
}

// IsAuthor reports whether requesterID is currently an author of postID.
func (s *PostService) IsAuthor(ctx context.Context, requesterID, postID int64) (bool, error) {
	links, err := s.store.GetLinksByPostID(ctx, postID)
	if err != nil {
		return false, mapStoreError(err, "failed to check post authorship")
	}
	return slices.Contains(linkUserIDs(links), requesterID), nil
}

// UpdatePost applies patch to a post on behalf of requesterID.
//
// Flow (all inside one transaction):
//  1. Load the post (NOT_FOUND if missing).
//  2. Load its author set; only current authors may edit (FORBIDDEN).
//  3. Validate the whole patch and plan the author reconciliation, before any write.
//  4. Apply link additions and removals.
//  5. Save the post row only when text or tags were supplied.
//  6. Re-read the author set for the response.
//
// An acting author may remove themself as long as one author remains.
func (s *PostService) UpdatePost(ctx context.Context, postID, requesterID int64, patch domain.PostPatch) (*domain.PostWithAuthors, error) {
	var (
		result *domain.PostWithAuthors
		plan   ReconcilePlan
	)

	err := s.store.WithTx(ctx, func(tx store.Tx) error {
		post, err := tx.GetPost(ctx, postID)
		if errors.Is(err, store.ErrPostNotFound) {
			return domainerrors.NotFoundf("post %d not found", postID)
		}
		if err != nil {
			return err
		}

		links, err := tx.GetLinksByPostID(ctx, postID)
		if err != nil {
			return err
		}
		current := linkUserIDs(links)
		if !slices.Contains(current, requesterID) {
			return domainerrors.Forbidden("only authors of the post can edit it")
		}

		if err := validatePatch(patch); err != nil {
			return err
		}
		if patch.IsEmpty() {
			result = &domain.PostWithAuthors{Post: *post, AuthorIDs: current}
			return nil
		}
		if patch.AuthorIDs != nil {
			plan, err = Reconcile(current, *patch.AuthorIDs)
			if err != nil {
				return err
			}
		}

		if len(plan.ToAdd) > 0 {
			if err := tx.InsertLinks(ctx, postID, plan.ToAdd); err != nil {
				return err
			}
		}
		if len(plan.ToRemove) > 0 {
			if err := tx.DeleteLinks(ctx, postID, plan.ToRemove); err != nil {
				return err
			}
		}

		if patch.Text != nil {
			post.Text = *patch.Text
		}
		if patch.Tags != nil {
			post.Tags = slices.Clone(*patch.Tags)
		}
		if patch.Text != nil || patch.Tags != nil {
			if err := tx.SavePost(ctx, post); err != nil {
				return err
			}
		}

		links, err = tx.GetLinksByPostID(ctx, postID)
		if err != nil {
			return err
		}

		result = &domain.PostWithAuthors{
			Post:      *post,
			AuthorIDs: linkUserIDs(links),
		}
		return nil
	})
	if err != nil {
		return nil, mapStoreError(err, "failed to update post")
	}

	if patch.IsEmpty() {
		return result, nil
	}

	s.logger.Info("post updated",
		"post_id", postID,
		"user_id", requesterID,
		"authors_added", plan.ToAdd,
		"authors_removed", plan.ToRemove,
		"text_changed", patch.Text != nil,
		"tags_changed", patch.Tags != nil,
	)

	return result, nil
}

// validatePatch checks every supplied field of a patch.
// Absent fields are fine; present-but-empty ones are not.
func validatePatch(patch domain.PostPatch) error {
	if patch.AuthorIDs != nil {
		if err := validation.ValidateIDs("authorIds", *patch.AuthorIDs); err != nil {
			return err
		}
	}
	if patch.Text != nil && *patch.Text == "" {
		return domainerrors.Validation("text cannot be empty")
	}
	if patch.Tags != nil {
		if err := validation.ValidateNonEmptyStrings("tags", *patch.Tags); err != nil {
			return err
		}
	}
	return nil
}

// linkUserIDs extracts the author set from a post's links.
func linkUserIDs(links []domain.AuthorLink) []int64 {
	ids := make([]int64, len(links))
	for i, l := range links {
		ids[i] = l.UserID
	}
	return ids
}

// mapStoreError passes domain errors through and classifies everything else.
// Rejected input surfaces as VALIDATION, any other persistence error as STORE_FAILURE.
func mapStoreError(err error, msg string) error {
	var domainErr *domainerrors.Error
	if errors.As(err, &domainErr) {
		return err
	}
	if errors.Is(err, store.ErrInvalidInput) {
		var storeErr *store.Error
		errors.As(err, &storeErr)
		return domainerrors.Validation(storeErr.Message)
	}
	return domainerrors.StoreFailure(err, msg)
}
