package repository

import (
	"context"
	"errors"

	"github.com/scriptbin/scriptbin/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TagRepositoryImpl implements TagRepository interface
type TagRepositoryImpl struct {
	*BaseRepository[models.Tag, models.TagFilter]
}

// NewTagRepository creates a new tag repository
func NewTagRepository(db *gorm.DB) TagRepository {
	return &TagRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Tag, models.TagFilter](db),
	}
}

// ByName retrieves a tag by name
func (r *TagRepositoryImpl) ByName(ctx context.Context, name string) (*models.Tag, error) {
	db := r.getDB(ctx)
	var row models.Tag
	if err := db.Where("name = ?", name).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// IncrementByName creates the tag with count=1 or bumps the existing counter.
// The upsert keeps concurrent first-use of a tag from failing either writer
// and runs against the transaction bound in ctx.
func (r *TagRepositoryImpl) IncrementByName(ctx context.Context, name string) error {
	db := r.getDB(ctx)
	row := models.Tag{Name: name, Count: 1}
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "name"}},
		DoUpdates: clause.Assignments(map[string]any{
			"count":      gorm.Expr("tags.count + 1"),
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP AT TIME ZONE 'UTC'"),
		}),
	}).Create(&row).Error
}

// ListByNames retrieves tags for a list of names
func (r *TagRepositoryImpl) ListByNames(ctx context.Context, names []string) ([]*models.Tag, error) {
	db := r.getDB(ctx)
	if len(names) == 0 {
		return []*models.Tag{}, nil
	}
	var rows []*models.Tag
	if err := db.Model(&models.Tag{}).Where("name IN ?", names).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// applyFilter applies filter criteria to a GORM query
func (r *TagRepositoryImpl) applyFilter(query *gorm.DB, filter models.TagFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.Name != nil {
		query = query.Where("name = ?", *filter.Name)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}
	return query
}

// ByFilter retrieves tags based on filter criteria
func (r *TagRepositoryImpl) ByFilter(ctx context.Context, filter models.TagFilter, orderBy string, limit, offset int) ([]*models.Tag, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Tag{})

	query = r.applyFilter(query, filter)

	if orderBy == "" {
		orderBy = "count DESC, name ASC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.Tag
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns the number of tags matching the filter
func (r *TagRepositoryImpl) Count(ctx context.Context, filter models.TagFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Tag{})
	query = r.applyFilter(query, filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any tag matching the filter exists
func (r *TagRepositoryImpl) Exists(ctx context.Context, filter models.TagFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
