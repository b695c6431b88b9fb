// Command seed fills the configured database with demo users, tweets and likes.
package main

import (
	"context"
	"flag"
	"log"

	"murmur/internal/config"
	"murmur/internal/database"
	"murmur/internal/seed"
)

func main() {
	defaults := seed.DefaultOptions()
	numUsers := flag.Int("users", defaults.Users, "Number of users to create")
	numTweets := flag.Int("tweets", defaults.Tweets, "Number of tweets to create")
	replyRatio := flag.Float64("replies", defaults.ReplyRatio, "Share of tweets posted as replies")
	maxLikes := flag.Int("likes", defaults.MaxLikes, "Maximum likes per tweet")
	password := flag.String("password", defaults.Password, "Password for every seeded account")
	shouldClean := flag.Bool("clean", false, "Delete existing data before seeding")
	randSeed := flag.Int64("seed", 0, "Random seed (0 = time based)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = database.Close(db) }()

	ctx := context.Background()
	if err := database.ApplySchema(ctx, db, cfg); err != nil {
		log.Fatalf("Failed to apply schema: %v", err)
	}

	s := seed.NewSeeder(db)
	if *shouldClean {
		if err := s.ClearAll(ctx); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	summary, err := s.Run(ctx, seed.Options{
		Users:      *numUsers,
		Tweets:     *numTweets,
		ReplyRatio: *replyRatio,
		MaxLikes:   *maxLikes,
		Password:   *password,
		MaxDays:    defaults.MaxDays,
		Seed:       *randSeed,
	})
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
	log.Printf("Seeded %d users, %d tweets, %d likes", summary.Users, summary.Tweets, summary.Likes)
}
