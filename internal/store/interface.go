// Package store defines the persistence interface for the Quill server.
package store

import (
	"context"

	"github.com/quillhq/quill-server/internal/domain"
)

// Reader is the read side of the membership store. It is implemented both by
// the store itself (pool reads) and by Tx (reads inside a write scope).
type Reader interface {
	// GetPost returns ErrPostNotFound if id does not exist.
	GetPost(ctx context.Context, id int64) (*domain.Post, error)

	// GetLinksByPostID returns the links of a post ordered by user id.
	GetLinksByPostID(ctx context.Context, postID int64) ([]domain.AuthorLink, error)

	// GetPostsByAuthorIDs returns every post linked to at least one of
	// authorIDs, each post once, ordered by post id.
	GetPostsByAuthorIDs(ctx context.Context, authorIDs []int64) ([]domain.Post, error)
}

// Tx is a transactional write scope. All writes made through a Tx commit
// together or not at all.
type Tx interface {
	Reader

	// CreatePost inserts post and sets its generated ID and timestamps.
	CreatePost(ctx context.Context, post *domain.Post) error

	// SavePost overwrites the text, tags and updated_at of an existing post.
	SavePost(ctx context.Context, post *domain.Post) error

	// InsertLinks links every user in userIDs to postID.
	InsertLinks(ctx context.Context, postID int64, userIDs []int64) error

	// DeleteLinks removes the links between postID and every user in userIDs.
	DeleteLinks(ctx context.Context, postID int64, userIDs []int64) error
}

// Store defines the interface for all persistence operations.
type Store interface {
	Reader

	// WithTx runs fn inside a single serialized transaction. The transaction
	// commits if fn returns nil and rolls back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Users
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id int64) (*domain.User, error)

	// Lifecycle
	Ping(ctx context.Context) error
	Close() error
}
