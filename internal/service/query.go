package service

import (
	"slices"

	"github.com/quillhq/quill-server/internal/domain"
)

// dedupePosts keeps the first occurrence of every post id, preserving order.
func dedupePosts(posts []domain.Post) []domain.Post {
	seen := make(map[int64]struct{}, len(posts))
	out := make([]domain.Post, 0, len(posts))
	for _, p := range posts {
		if _, ok := seen[p.ID]; ok {
			continue
		}
		seen[p.ID] = struct{}{}
		out = append(out, p)
	}
	return out
}

// sortPosts orders posts in place by key. The comparator itself is inverted
// for Descending; the result is never sorted ascending and then reversed.
// The sort is stable, so posts with equal keys keep their incoming order
// (ascending id from the store). That tie order is deterministic but is not
// part of the listing contract.
func sortPosts(posts []domain.Post, key domain.SortKey, dir domain.Direction) {
	compare := func(a, b domain.Post) int {
		return domain.CompareBy(&a, &b, key)
	}
	if dir == domain.Descending {
		compare = func(a, b domain.Post) int {
			return domain.CompareBy(&b, &a, key)
		}
	}
	slices.SortStableFunc(posts, compare)
}
