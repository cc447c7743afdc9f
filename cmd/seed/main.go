// Command seed populates the database with fake users, groups, posts,
// comments and follows.
package main

import (
	"context"
	"flag"
	"log"

	"yatube/internal/config"
	"yatube/internal/database"
	"yatube/internal/seed"
)

func main() {
	opts := seed.Options{}
	flag.IntVar(&opts.NumUsers, "users", 20, "Number of users to create")
	flag.IntVar(&opts.NumGroups, "groups", 0, "Number of extra random groups on top of the built-in ones")
	flag.IntVar(&opts.NumPosts, "posts", 200, "Number of posts to create")
	flag.IntVar(&opts.NumFollows, "follows", 60, "Number of follow edges to create")
	flag.IntVar(&opts.NumComments, "comments", 150, "Number of comments to create")
	flag.IntVar(&opts.MaxDays, "days", 90, "Spread post dates over this many past days")
	flag.Int64Var(&opts.RandSeed, "seed", 0, "Random seed (0 picks one)")
	flag.BoolVar(&opts.ShouldClean, "clean", true, "Clean database before seeding")
	flag.BoolVar(&opts.FastHash, "fast", false, "Hash the shared password with bcrypt.MinCost")
	flag.BoolVar(&opts.DryRun, "dry-run", false, "Build records without writing them")
	flag.Parse()

	log.Println("Database Seeder")
	log.Printf("Target: %d users, %d posts, %d follows, %d comments, clean=%v",
		opts.NumUsers, opts.NumPosts, opts.NumFollows, opts.NumComments, opts.ShouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	res, err := seed.NewSeeder(db, opts).Seed(context.Background())
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Seeded %d users, %d groups, %d posts, %d comments, %d follows",
		len(res.Users), len(res.Groups), res.Posts, res.Comments, res.Follows)
	log.Printf("All seeded users share the password: %s", seed.DefaultPassword)
}
