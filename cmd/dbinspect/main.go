// Package main prints a summary of the Quill database and flags posts that
// have lost every author.
//
// Usage:
//
//	DATA_PATH=~/Quill/data go run ./cmd/dbinspect
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/quillhq/quill-server/internal/config"
	"github.com/quillhq/quill-server/internal/store/sqlite"
)

// maxListed caps how many orphan ids are printed.
const maxListed = 20

func main() {
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/Quill/data")
	}
	dbPath := filepath.Join(dataPath, config.DatabaseFile)

	if _, err := os.Stat(dbPath); err != nil {
		log.Fatalf("Database not found at %s: %v", dbPath, err)
	}

	s, err := sqlite.Open(dbPath, nil)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer s.Close()

	ctx := context.Background()

	fmt.Println("=== Database Inspection ===")
	fmt.Printf("Path: %s\n\n", dbPath)

	st, err := s.Stats(ctx)
	if err != nil {
		log.Fatalf("Failed to read stats: %v", err)
	}

	fmt.Println("=== Summary ===")
	fmt.Printf("Users: %d\n", st.Users)
	fmt.Printf("Posts: %d\n", st.Posts)
	fmt.Printf("Author links: %d\n", st.Links)
	if st.Posts > 0 {
		fmt.Printf("Average authors per post: %.2f\n", float64(st.Links)/float64(st.Posts))
	}

	if st.OrphanPosts == 0 {
		fmt.Println("Posts without authors: 0")
		return
	}

	ids, err := s.OrphanPostIDs(ctx)
	if err != nil {
		log.Fatalf("Failed to list orphan posts: %v", err)
	}
	fmt.Printf("Posts without authors: %d\n", st.OrphanPosts)
	for i, id := range ids {
		if i == maxListed {
			fmt.Printf("  ... and %d more\n", len(ids)-maxListed)
			break
		}
		fmt.Printf("  post %d\n", id)
	}
	s.Close()
	os.Exit(1)
}
