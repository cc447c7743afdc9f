package seed

import (
	"yatube/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BuiltInGroup is a group every environment starts with.
type BuiltInGroup struct {
	Title       string
	Slug        string
	Description string
}

// BuiltInGroups are upserted by Groups.
var BuiltInGroups = []BuiltInGroup{
	{Title: "Leo Tolstoy", Slug: "tolstoy", Description: "Notes on the novels, diaries and letters."},
	{Title: "Cats", Slug: "cats", Description: "Photos and stories about cats."},
	{Title: "Travel", Slug: "travel", Description: "Trip reports and itineraries."},
	{Title: "Books", Slug: "books", Description: "Reading lists and reviews."},
	{Title: "Programming", Slug: "programming", Description: "Code, tools and war stories."},
	{Title: "Music", Slug: "music", Description: "Albums, gigs and discoveries."},
	{Title: "Food", Slug: "food", Description: "Recipes and restaurant notes."},
}

// Groups upserts the built-in groups, keyed by slug, and returns them.
func Groups(db *gorm.DB) ([]models.Group, error) {
	out := make([]models.Group, 0, len(BuiltInGroups))
	err := db.Transaction(func(tx *gorm.DB) error {
		for _, item := range BuiltInGroups {
			group := models.Group{Title: item.Title, Slug: item.Slug, Description: item.Description}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "slug"}},
				DoUpdates: clause.AssignmentColumns([]string{"title", "description"}),
			}).Create(&group).Error; err != nil {
				return err
			}
			if err := tx.Where("slug = ?", item.Slug).First(&group).Error; err != nil {
				return err
			}
			out = append(out, group)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
