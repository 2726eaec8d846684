// Command seed fills the database with fixtures and fake content for local development.
package main

import (
	"context"
	"flag"
	"log"

	"craftnexus/internal/config"
	"craftnexus/internal/database"
	"craftnexus/internal/seed"
)

func main() {
	defaults := seed.DefaultOptions()
	users := flag.Int("users", defaults.Users, "Number of users to create")
	news := flag.Int("news", defaults.News, "Number of published articles")
	mods := flag.Int("mods", defaults.Mods, "Number of catalog mods")
	threads := flag.Int("threads", defaults.Threads, "Number of forum threads")
	replies := flag.Int("replies", defaults.RepliesPerThread, "Replies per thread")
	comments := flag.Int("comments", defaults.CommentsPerItem, "Top-level comments per article and mod")
	clean := flag.Bool("clean", false, "Delete all rows before seeding")
	fixtures := flag.String("fixtures", "", "Path to a seed.yml (defaults to the bundled one)")
	fixturesOnly := flag.Bool("fixtures-only", false, "Apply fixtures and skip fake content")
	randSeed := flag.Int64("seed", 0, "Random seed for reproducible content (0 = random)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	opts := seed.Options{
		Users:            *users,
		News:             *news,
		Mods:             *mods,
		Threads:          *threads,
		RepliesPerThread: *replies,
		CommentsPerItem:  *comments,
		Clean:            *clean,
		Seed:             *randSeed,
	}
	if *fixtures != "" {
		fx, err := seed.LoadFixtures(*fixtures)
		if err != nil {
			log.Fatalf("Failed to load fixtures: %v", err)
		}
		opts.Fixtures = fx
	}

	if *fixturesOnly {
		fx := opts.Fixtures
		if fx == nil {
			if fx, err = seed.DefaultFixtures(); err != nil {
				log.Fatalf("Failed to load fixtures: %v", err)
			}
		}
		if *clean {
			if err := seed.ClearAll(db); err != nil {
				log.Fatalf("Cleanup failed: %v", err)
			}
		}
		if err := seed.ApplyFixtures(db, fx); err != nil {
			log.Fatalf("Fixture seeding failed: %v", err)
		}
		log.Println("Fixtures applied")
		return
	}

	res, err := seed.Run(db, opts)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
	log.Printf("Seeded %d users, %d articles, %d mods, %d threads, %d comments",
		res.Users, res.News, res.Mods, res.Threads, res.Comments)
}
