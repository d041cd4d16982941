package domain

import (
	"cmp"
	"time"
)

// Post is a blog post. Its author set is not stored on the post; it is derived
// from the AuthorLink rows that reference it.
type Post struct {
	ID         int64     `json:"id"`
	Text       string    `json:"text"`
	Tags       []string  `json:"tags"`
	Reads      int64     `json:"reads"`
	Likes      int64     `json:"likes"`
	Popularity float64   `json:"popularity"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Touch updates the UpdatedAt timestamp.
func (p *Post) Touch() {
	p.UpdatedAt = time.Now()
}

// CompareBy orders a and b by the field selected by key, returning -1, 0 or +1.
// Integer fields are compared as int64, so large ids keep their order.
// Unknown keys compare by ID.
func CompareBy(a, b *Post, key SortKey) int {
	switch key {
	case SortByReads:
		return cmp.Compare(a.Reads, b.Reads)
	case SortByLikes:
		return cmp.Compare(a.Likes, b.Likes)
	case SortByPopularity:
		return cmp.Compare(a.Popularity, b.Popularity)
	default:
		return cmp.Compare(a.ID, b.ID)
	}
}

// PostWithAuthors is a post together with its current author set.
type PostWithAuthors struct {
	Post
	AuthorIDs []int64 `json:"authorIds"`
}

// AuthorLink records that user UserID co-owns post PostID.
// The (UserID, PostID) pair is unique.
type AuthorLink struct {
	UserID    int64     `json:"userId"`
	PostID    int64     `json:"postId"`
	CreatedAt time.Time `json:"createdAt"`
}

// PostPatch is a partial update to a post. Nil fields are left untouched.
// Tags and AuthorIDs replace the existing values wholesale when present.
// A pointer to an empty slice means "present but empty" and is rejected.
type PostPatch struct {
	Text      *string
	Tags      *[]string
	AuthorIDs *[]int64
}

// IsEmpty reports whether the patch changes nothing.
func (p PostPatch) IsEmpty() bool {
	return p.Text == nil && p.Tags == nil && p.AuthorIDs == nil
}

// SortKey selects the numeric field posts are ordered by.
type SortKey string

// Sort keys accepted by the list operation.
const (
	SortByID         SortKey = "id"
	SortByReads      SortKey = "reads"
	SortByLikes      SortKey = "likes"
	SortByPopularity SortKey = "popularity"
)

// SortKeys lists every valid SortKey.
var SortKeys = []string{
	string(SortByID),
	string(SortByReads),
	string(SortByLikes),
	string(SortByPopularity),
}

// Direction is the order of a sorted listing.
type Direction string

// Sort directions.
const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// Directions lists every valid Direction.
var Directions = []string{string(Ascending), string(Descending)}
