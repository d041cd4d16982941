package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/quillhq/quill-server/internal/domain"
	"github.com/quillhq/quill-server/internal/store"
)

// tagSeparator joins a post's tags into the single posts.tags column.
const tagSeparator = ","

// ErrTagContainsSeparator is returned when a tag cannot be stored because it
// contains the column separator.
var ErrTagContainsSeparator = store.ErrInvalidInput.WithMessage("tags must not contain commas")

// postColumns is the ordered list of columns selected in post queries.
// Must match the scan order in scanPost.
const postColumns = `p.id, p.text, p.tags, p.reads, p.likes, p.popularity, p.created_at, p.updated_at`

// encodeTags joins tags for storage.
func encodeTags(tags []string) (string, error) {
	for _, t := range tags {
		if strings.Contains(t, tagSeparator) {
			return "", ErrTagContainsSeparator
		}
	}
	return strings.Join(tags, tagSeparator), nil
}

// decodeTags splits a stored tag column. An empty column is an empty list.
func decodeTags(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, tagSeparator)
}

// scanPost scans a sql.Row (or sql.Rows via its Scan method) into a domain.Post.
func scanPost(scanner interface{ Scan(dest ...any) error }) (*domain.Post, error) {
	var p domain.Post

	var (
		tags      string
		createdAt string
		updatedAt string
	)

	err := scanner.Scan(
		&p.ID,
		&p.Text,
		&tags,
		&p.Reads,
		&p.Likes,
		&p.Popularity,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.Tags = decodeTags(tags)

	p.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	p.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}

	return &p, nil
}

// GetPost retrieves a post by its ID.
// Returns store.ErrPostNotFound if the post does not exist.
func (r reader) GetPost(ctx context.Context, id int64) (*domain.Post, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM posts p WHERE p.id = ?`, id)

	p, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get post %d: %w", id, err)
	}
	return p, nil
}

// GetPostsByAuthorIDs returns the union of posts linked to any of authorIDs.
// A post linked to several of the requested authors is returned once.
func (r reader) GetPostsByAuthorIDs(ctx context.Context, authorIDs []int64) ([]domain.Post, error) {
	if len(authorIDs) == 0 {
		return []domain.Post{}, nil
	}

	placeholders, args := inClause(authorIDs)
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+postColumns+`
		FROM posts p
		WHERE p.id IN (
			SELECT up.post_id FROM user_posts up WHERE up.user_id IN (`+placeholders+`)
		)
		ORDER BY p.id ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("query posts by authors: %w", err)
	}
	defer rows.Close()

	posts := []domain.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return posts, nil
}

// CreatePost inserts a new post and fills in its generated ID and timestamps.
// Engagement counters are always stored as given; new posts start at zero.
func (t *tx) CreatePost(ctx context.Context, p *domain.Post) error {
	tags, err := encodeTags(p.Tags)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	res, err := t.tx.ExecContext(ctx, `
		INSERT INTO posts (text, tags, reads, likes, popularity, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.Text,
		tags,
		p.Reads,
		p.Likes,
		p.Popularity,
		formatTime(now),
		formatTime(now),
	)
	if err != nil {
		return fmt.Errorf("insert post: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("post id: %w", err)
	}

	p.ID = id
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.Tags == nil {
		p.Tags = []string{}
	}
	return nil
}

// SavePost writes the text and tags of an existing post.
// Reads, likes and popularity belong to other writers and are not touched.
func (t *tx) SavePost(ctx context.Context, p *domain.Post) error {
	tags, err := encodeTags(p.Tags)
	if err != nil {
		return err
	}

	p.Touch()
	res, err := t.tx.ExecContext(ctx, `
		UPDATE posts SET text = ?, tags = ?, updated_at = ?
		WHERE id = ?`,
		p.Text,
		tags,
		formatTime(p.UpdatedAt),
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("update post %d: %w", p.ID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrPostNotFound
	}
	return nil
}
