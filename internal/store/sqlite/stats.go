package sqlite

import (
	"context"
	"fmt"
)

// Stats summarizes table sizes and authorship health.
type Stats struct {
	Users       int64
	Posts       int64
	Links       int64
	OrphanPosts int64 // posts with no author link; always zero when writes go through the service
}

// Stats counts rows in every table.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM posts),
			(SELECT COUNT(*) FROM user_posts),
			(SELECT COUNT(*) FROM posts p
			 WHERE NOT EXISTS (SELECT 1 FROM user_posts up WHERE up.post_id = p.id))`,
	).Scan(&st.Users, &st.Posts, &st.Links, &st.OrphanPosts)
	if err != nil {
		return Stats{}, fmt.Errorf("stats: %w", err)
	}
	return st, nil
}

// OrphanPostIDs returns the ids of posts that have no author, ascending.
func (s *Store) OrphanPostIDs(ctx context.Context) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id FROM posts p
		WHERE NOT EXISTS (SELECT 1 FROM user_posts up WHERE up.post_id = p.id)
		ORDER BY p.id`)
	if err != nil {
		return nil, fmt.Errorf("orphan posts: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan orphan post: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
