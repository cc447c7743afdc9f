package seed

import (
	"context"
	"fmt"
	"log"

	"yatube/internal/database"
	"yatube/internal/models"
	"yatube/internal/repository"

	"gorm.io/gorm"
)

// Options configures the seeder.
type Options struct {
	NumUsers    int
	NumPosts    int
	NumGroups   int
	NumFollows  int
	NumComments int
	ShouldClean bool
	// FastHash hashes the shared seed password at bcrypt.MinCost.
	FastHash  bool
	BatchSize int
	MaxDays   int
	RandSeed  int64
	DryRun    bool
}

// Result summarises what a Seed run created.
type Result struct {
	Users    []*models.User
	Groups   []*models.Group
	Posts    int
	Comments int
	Follows  int
}

// Seeder fills the database with demo data.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
	follows repository.FollowRepository
	opts    Options
}

func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	return &Seeder{
		db:      db,
		factory: NewFactory(db, opts),
		follows: repository.NewFollowRepository(db),
		opts:    opts,
	}
}

// Factory exposes the seeder's entity factory.
func (s *Seeder) Factory() *Factory {
	return s.factory
}

// Seed populates the database with demo data.
func (s *Seeder) Seed(ctx context.Context) (*Result, error) {
	log.Printf("🌱 Seeding %d users, %d groups, %d posts, %d follows, %d comments...",
		s.opts.NumUsers, s.opts.NumGroups, s.opts.NumPosts, s.opts.NumFollows, s.opts.NumComments)

	if s.opts.ShouldClean && !s.opts.DryRun {
		if err := ClearData(s.db); err != nil {
			return nil, fmt.Errorf("failed to clear data: %w", err)
		}
	}

	res := &Result{}

	if !s.opts.DryRun {
		builtIn, err := Groups(s.db)
		if err != nil {
			return nil, fmt.Errorf("failed to create built-in groups: %w", err)
		}
		for i := range builtIn {
			res.Groups = append(res.Groups, &builtIn[i])
		}
	}
	for i := 0; i < s.opts.NumGroups; i++ {
		g, err := s.factory.CreateGroup()
		if err != nil {
			return nil, fmt.Errorf("failed to create group: %w", err)
		}
		res.Groups = append(res.Groups, g)
	}
	log.Printf("✓ %d groups available", len(res.Groups))

	for i := 0; i < s.opts.NumUsers; i++ {
		u, err := s.factory.CreateUser()
		if err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		res.Users = append(res.Users, u)
	}
	log.Printf("✓ %d users created (password %q)", len(res.Users), DefaultPassword)

	if len(res.Users) == 0 {
		return res, nil
	}

	posts, err := s.seedPosts(res)
	if err != nil {
		return nil, err
	}
	res.Posts = len(posts)
	log.Printf("✓ %d posts created", res.Posts)

	if res.Follows, err = s.seedFollows(ctx, res.Users); err != nil {
		return nil, err
	}
	log.Printf("✓ %d follow edges created", res.Follows)

	if len(posts) > 0 {
		for i := 0; i < s.opts.NumComments; i++ {
			post := posts[s.factory.Pick(len(posts))]
			author := res.Users[s.factory.Pick(len(res.Users))]
			if _, err := s.factory.CreateComment(author, post); err != nil {
				return nil, fmt.Errorf("failed to create comment: %w", err)
			}
			res.Comments++
		}
	}
	log.Printf("✓ %d comments created", res.Comments)

	log.Println("🎉 Database seeding completed successfully!")
	return res, nil
}

func (s *Seeder) seedPosts(res *Result) ([]*models.Post, error) {
	posts := make([]*models.Post, 0, s.opts.NumPosts)
	for i := 0; i < s.opts.NumPosts; i++ {
		author := res.Users[s.factory.Pick(len(res.Users))]
		var group *models.Group
		// Roughly half the posts are published in a group.
		if len(res.Groups) > 0 && s.factory.Pick(2) == 0 {
			group = res.Groups[s.factory.Pick(len(res.Groups))]
		}
		posts = append(posts, s.factory.BuildPost(author, group))
	}
	if err := s.factory.CreatePostsBatch(posts); err != nil {
		return nil, fmt.Errorf("failed to create posts: %w", err)
	}
	return posts, nil
}

// seedFollows adds up to NumFollows distinct edges. Self pairs and
// duplicates are skipped, so fewer edges may be created for tiny user sets.
func (s *Seeder) seedFollows(ctx context.Context, users []*models.User) (int, error) {
	if len(users) < 2 {
		return 0, nil
	}
	maxEdges := len(users) * (len(users) - 1)
	target := s.opts.NumFollows
	if target > maxEdges {
		target = maxEdges
	}

	created := 0
	for attempts := 0; created < target && attempts < target*10; attempts++ {
		follower := users[s.factory.Pick(len(users))]
		author := users[s.factory.Pick(len(users))]
		if follower.ID == author.ID {
			continue
		}
		if s.opts.DryRun {
			created++
			continue
		}
		ok, err := s.follows.Create(ctx, follower.ID, author.ID)
		if err != nil {
			return created, fmt.Errorf("failed to create follow: %w", err)
		}
		if ok {
			created++
		}
	}
	return created, nil
}

// ClearData removes all rows from the application tables.
func ClearData(db *gorm.DB) error {
	log.Println("🗑️  Clearing existing data...")
	if database.IsPostgres(db) {
		return db.Exec(`TRUNCATE TABLE comments, follows, posts, groups, users RESTART IDENTITY CASCADE`).Error
	}
	return db.Transaction(func(tx *gorm.DB) error {
		for _, table := range []string{"comments", "follows", "posts", "groups", "users"} {
			if err := tx.Exec(`DELETE FROM "` + table + `"`).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
