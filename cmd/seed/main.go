// Package main seeds the database with authors and sample posts.
//
// Users can only be created out of band, so this is how a fresh database gets
// authors that posts can be linked to.
//
// Usage:
//
//	DATA_PATH=~/Quill/data go run ./cmd/seed -users 5
//	DATA_PATH=~/Quill/data go run ./cmd/seed -users 5 -posts 20
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"path/filepath"

	"github.com/quillhq/quill-server/internal/config"
	"github.com/quillhq/quill-server/internal/domain"
	"github.com/quillhq/quill-server/internal/store"
	"github.com/quillhq/quill-server/internal/store/sqlite"
)

var (
	userCount = flag.Int("users", 5, "Number of users to ensure exist (author1..authorN)")
	postCount = flag.Int("posts", 0, "Number of sample posts to create")
)

var sampleTags = []string{"go", "sqlite", "design", "travel", "food", "tech", "health"}

func main() {
	flag.Parse()

	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/Quill/data")
	}
	if err := os.MkdirAll(dataPath, 0o750); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}
	dbPath := filepath.Join(dataPath, config.DatabaseFile)

	fmt.Printf("Opening database at: %s\n", dbPath)

	s, err := sqlite.Open(dbPath, nil)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()

	userIDs := ensureUsers(ctx, s, *userCount)
	fmt.Printf("%d users available\n", len(userIDs))

	if *postCount > 0 {
		if len(userIDs) == 0 {
			log.Fatal("No users to author posts. Use -users.")
		}
		createPosts(ctx, s, userIDs, *postCount)
	}
}

// ensureUsers creates author1..authorN, skipping names that already exist.
func ensureUsers(ctx context.Context, s *sqlite.Store, n int) []int64 {
	var ids []int64
	for i := 1; i <= n; i++ {
		u := &domain.User{Username: fmt.Sprintf("author%d", i)}
		err := s.CreateUser(ctx, u)
		switch {
		case err == nil:
			fmt.Printf("  created %s (id %d)\n", u.Username, u.ID)
			ids = append(ids, u.ID)
		case errors.Is(err, store.ErrAlreadyExists):
			existing, err := s.GetUserByUsername(ctx, u.Username)
			if err != nil {
				log.Fatalf("Failed to load user %s: %v", u.Username, err)
			}
			ids = append(ids, existing.ID)
		default:
			log.Fatalf("Failed to create user %s: %v", u.Username, err)
		}
	}
	return ids
}

// createPosts writes posts with random counters and one to three authors.
func createPosts(ctx context.Context, s *sqlite.Store, userIDs []int64, n int) {
	for i := 0; i < n; i++ {
		post := &domain.Post{
			Text:       fmt.Sprintf("Sample post %d", i+1),
			Tags:       pick(sampleTags, 1+rand.IntN(3)),
			Reads:      rand.Int64N(10_000),
			Likes:      rand.Int64N(1_000),
			Popularity: float64(rand.IntN(101)) / 100,
		}
		authors := pick(userIDs, 1+rand.IntN(min(3, len(userIDs))))

		err := s.WithTx(ctx, func(tx store.Tx) error {
			if err := tx.CreatePost(ctx, post); err != nil {
				return err
			}
			return tx.InsertLinks(ctx, post.ID, authors)
		})
		if err != nil {
			log.Fatalf("Failed to create post: %v", err)
		}
		fmt.Printf("  post %d by %v\n", post.ID, authors)
	}
}

// pick returns k distinct random elements of items.
func pick[T any](items []T, k int) []T {
	idx := rand.Perm(len(items))[:min(k, len(items))]
	out := make([]T, len(idx))
	for i, j := range idx {
		out[i] = items[j]
	}
	return out
}
