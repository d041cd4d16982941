package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/quillhq/quill-server/internal/domain"
	"github.com/quillhq/quill-server/internal/store"
)

// GetLinksByPostID returns the author links of a post ordered by user id.
func (r reader) GetLinksByPostID(ctx context.Context, postID int64) ([]domain.AuthorLink, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT user_id, post_id, created_at
		FROM user_posts
		WHERE post_id = ?
		ORDER BY user_id ASC`, postID)
	if err != nil {
		return nil, fmt.Errorf("query user_posts: %w", err)
	}
	defer rows.Close()

	links := []domain.AuthorLink{}
	for rows.Next() {
		var (
			l         domain.AuthorLink
			createdAt string
		)
		if err := rows.Scan(&l.UserID, &l.PostID, &createdAt); err != nil {
			return nil, fmt.Errorf("scan user_post: %w", err)
		}
		l.CreatedAt, err = parseTime(createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		links = append(links, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return links, nil
}

// InsertLinks links every user in userIDs to postID.
// Returns store.ErrAlreadyExists if any pair is already linked.
func (t *tx) InsertLinks(ctx context.Context, postID int64, userIDs []int64) error {
	now := formatTime(time.Now().UTC())
	for _, userID := range userIDs {
		_, err := t.tx.ExecContext(ctx, `
			INSERT INTO user_posts (user_id, post_id, created_at)
			VALUES (?, ?, ?)`,
			userID,
			postID,
			now,
		)
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists.WithMessage(
				fmt.Sprintf("user %d is already an author of post %d", userID, postID))
		}
		if err != nil {
			return fmt.Errorf("insert user_post (%d, %d): %w", userID, postID, err)
		}
	}
	return nil
}

// DeleteLinks removes the links between postID and every user in userIDs.
// Pairs that are not linked are ignored.
func (t *tx) DeleteLinks(ctx context.Context, postID int64, userIDs []int64) error {
	if len(userIDs) == 0 {
		return nil
	}

	placeholders, args := inClause(userIDs)
	args = append([]any{postID}, args...)
	if _, err := t.tx.ExecContext(ctx, `
		DELETE FROM user_posts
		WHERE post_id = ? AND user_id IN (`+placeholders+`)`, args...); err != nil {
		return fmt.Errorf("delete user_posts: %w", err)
	}
	return nil
}
