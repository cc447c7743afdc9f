// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"yatube/internal/models"
	"yatube/internal/validation"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultPassword is the password of every seeded user.
const DefaultPassword = "Yatube-Seed-2024!"

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by the seeder and tests.
type Factory struct {
	db    *gorm.DB
	opts  Options
	faker *gofakeit.Faker

	hashOnce sync.Once
	hash     string
	hashErr  error

	// synthetic ID counter when running in DryRun mode
	nextID uint
	seq    int
}

// NewFactory creates a new Factory bound to the provided Gorm DB. A zero
// RandSeed seeds from the clock.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	seed := opts.RandSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Factory{db: db, opts: opts, faker: gofakeit.New(seed), nextID: 1000}
}

func (f *Factory) passwordHash() (string, error) {
	f.hashOnce.Do(func() {
		cost := bcrypt.DefaultCost
		if f.opts.FastHash {
			cost = bcrypt.MinCost
		}
		h, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), cost)
		f.hash, f.hashErr = string(h), err
	})
	return f.hash, f.hashErr
}

func (f *Factory) next() int {
	f.seq++
	return f.seq
}

// BuildUser constructs a user with a unique, URL-safe username.
func (f *Factory) BuildUser(overrides ...func(*models.User)) (*models.User, error) {
	hash, err := f.passwordHash()
	if err != nil {
		return nil, err
	}

	first, last := f.faker.FirstName(), f.faker.LastName()
	username := fmt.Sprintf("%s%d", strings.ToLower(f.faker.Username()), f.next())
	if validation.ValidateUsername(username) != nil {
		username = fmt.Sprintf("user%d", f.seq)
	}

	user := &models.User{
		Username:  username,
		Password:  hash,
		FirstName: first,
		LastName:  last,
	}
	for _, override := range overrides {
		override(user)
	}
	return user, nil
}

// CreateUser constructs and persists a sample user.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user, err := f.BuildUser(overrides...)
	if err != nil {
		return nil, err
	}
	if f.opts.DryRun {
		f.nextID++
		user.ID = f.nextID
		return user, nil
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// BuildGroup constructs a group with a unique, non-reserved slug.
func (f *Factory) BuildGroup(overrides ...func(*models.Group)) *models.Group {
	words := []string{f.faker.HipsterWord(), f.faker.Noun()}
	title := capitalize(strings.Join(words, " "))
	slug := fmt.Sprintf("%s-%d", strings.ToLower(strings.Join(words, "-")), f.next())
	if validation.ValidateGroupSlug(slug) != nil {
		slug = fmt.Sprintf("group-%d", f.seq)
	}

	group := &models.Group{
		Title:       title,
		Slug:        slug,
		Description: f.faker.Sentence(12),
	}
	for _, override := range overrides {
		override(group)
	}
	return group
}

// CreateGroup constructs and persists a sample group.
func (f *Factory) CreateGroup(overrides ...func(*models.Group)) (*models.Group, error) {
	group := f.BuildGroup(overrides...)
	if f.opts.DryRun {
		f.nextID++
		group.ID = f.nextID
		return group, nil
	}
	if err := f.db.Create(group).Error; err != nil {
		return nil, err
	}
	return group, nil
}

// BuildPost constructs a post by author with a created_at spread over the
// last MaxDays days. group may be nil.
func (f *Factory) BuildPost(author *models.User, group *models.Group, overrides ...func(*models.Post)) *models.Post {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	back := time.Duration(f.faker.Number(0, maxDays*24*60)) * time.Minute

	post := &models.Post{
		Text:      f.faker.Paragraph(1, f.faker.Number(1, 5), 12, "\n"),
		CreatedAt: time.Now().UTC().Add(-back),
	}
	if author != nil {
		post.AuthorID = &author.ID
	}
	if group != nil {
		post.GroupID = &group.ID
	}
	if f.faker.Number(1, 10) <= 3 {
		post.Image = fmt.Sprintf("posts/%s.jpg", f.faker.UUID())
	}

	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreatePostsBatch persists multiple posts in batches of BatchSize.
func (f *Factory) CreatePostsBatch(posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	if f.opts.DryRun {
		for _, p := range posts {
			f.nextID++
			p.ID = f.nextID
		}
		return nil
	}
	batch := f.opts.BatchSize
	if batch <= 0 {
		batch = 100
	}
	return f.db.Omit(clause.Associations).CreateInBatches(posts, batch).Error
}

// CreateComment constructs and persists a comment on post by author.
func (f *Factory) CreateComment(author *models.User, post *models.Post, overrides ...func(*models.Comment)) (*models.Comment, error) {
	comment := &models.Comment{
		PostID:    post.ID,
		AuthorID:  author.ID,
		Text:      f.faker.Sentence(f.faker.Number(3, 15)),
		CreatedAt: post.CreatedAt.Add(time.Duration(f.faker.Number(1, 48*60)) * time.Minute),
	}
	if comment.CreatedAt.After(time.Now().UTC()) {
		comment.CreatedAt = time.Now().UTC()
	}
	for _, override := range overrides {
		override(comment)
	}

	if f.opts.DryRun {
		f.nextID++
		comment.ID = f.nextID
		return comment, nil
	}
	if err := f.db.Omit(clause.Associations).Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// Pick returns a random index in [0, n).
func (f *Factory) Pick(n int) int {
	if n <= 1 {
		return 0
	}
	return f.faker.Number(0, n-1)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
