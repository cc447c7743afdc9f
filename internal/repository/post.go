package repository

import (
	"context"
	"errors"

	"yatube/internal/database"
	"yatube/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostFilter narrows a post listing. Zero values mean "no restriction".
type PostFilter struct {
	GroupID  *uint
	AuthorID *uint
	// AuthorIDs restricts the listing to a set of authors. nil means no
	// restriction; an empty non-nil set matches nothing.
	AuthorIDs []uint
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	Count(ctx context.Context, filter PostFilter) (int64, error)
	List(ctx context.Context, filter PostFilter, limit, offset int) ([]*models.Post, error)
	UpdateIfAuthor(ctx context.Context, id, userID uint, apply func(*models.Post)) (*models.Post, models.AccessResult, error)
	DeleteIfAuthor(ctx context.Context, id, userID uint) (models.AccessResult, error)
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := withRelations(r.db.WithContext(ctx)).First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

func (r *postRepository) Count(ctx context.Context, filter PostFilter) (int64, error) {
	var count int64
	if err := applyPostFilter(r.db.WithContext(ctx).Model(&models.Post{}), filter).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

// List returns posts newest first. Equal timestamps fall back to descending id
// so consecutive pages neither repeat nor skip rows.
func (r *postRepository) List(ctx context.Context, filter PostFilter, limit, offset int) ([]*models.Post, error) {
	posts := []*models.Post{}
	if limit <= 0 {
		return posts, nil
	}
	err := applyPostFilter(withRelations(r.db.WithContext(ctx)), filter).
		Order("posts.created_at DESC").
		Order("posts.id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// UpdateIfAuthor loads the post, checks that userID wrote it and saves the
// fields changed by apply, all in one transaction. The id, author and
// creation timestamp are never written.
func (r *postRepository) UpdateIfAuthor(ctx context.Context, id, userID uint, apply func(*models.Post)) (*models.Post, models.AccessResult, error) {
	var (
		updated models.Post
		result  models.AccessResult
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		post, res, err := lockForAuthor(tx, id, userID)
		if err != nil || res != models.AccessOK {
			result = res
			return err
		}

		apply(post)
		if err := tx.Model(post).Updates(map[string]interface{}{
			"text":     post.Text,
			"group_id": post.GroupID,
			"image":    post.Image,
		}).Error; err != nil {
			return models.NewInternalError(err)
		}

		if err := withRelations(tx).First(&updated, id).Error; err != nil {
			return models.NewInternalError(err)
		}
		result = models.AccessOK
		return nil
	})
	if err != nil {
		return nil, result, err
	}
	if result != models.AccessOK {
		return nil, result, nil
	}
	return &updated, result, nil
}

// DeleteIfAuthor removes the post and its comments when userID wrote it.
func (r *postRepository) DeleteIfAuthor(ctx context.Context, id, userID uint) (models.AccessResult, error) {
	var result models.AccessResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		post, res, err := lockForAuthor(tx, id, userID)
		if err != nil || res != models.AccessOK {
			result = res
			return err
		}

		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Comment{}).Error; err != nil {
			return models.NewInternalError(err)
		}
		if err := tx.Delete(post).Error; err != nil {
			return models.NewInternalError(err)
		}
		result = models.AccessOK
		return nil
	})
	return result, err
}

func lockForAuthor(tx *gorm.DB, id, userID uint) (*models.Post, models.AccessResult, error) {
	q := tx
	if database.IsPostgres(tx) {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var post models.Post
	if err := q.First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.AccessNotFound, nil
		}
		return nil, models.AccessNotFound, models.NewInternalError(err)
	}
	if !post.IsAuthoredBy(userID) {
		return nil, models.AccessForbidden, nil
	}
	return &post, models.AccessOK, nil
}

func withRelations(db *gorm.DB) *gorm.DB {
	return db.Preload("Author").Preload("Group")
}

func applyPostFilter(db *gorm.DB, f PostFilter) *gorm.DB {
	if f.GroupID != nil {
		db = db.Where("posts.group_id = ?", *f.GroupID)
	}
	if f.AuthorID != nil {
		db = db.Where("posts.author_id = ?", *f.AuthorID)
	}
	if f.AuthorIDs != nil {
		if len(f.AuthorIDs) == 0 {
			return db.Where("1 = 0")
		}
		db = db.Where("posts.author_id IN ?", f.AuthorIDs)
	}
	return db
}
