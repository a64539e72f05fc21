package repository

import (
	"context"
	"errors"

	"github.com/scriptbin/scriptbin/models"
	"gorm.io/gorm"
)

// ScriptRepositoryImpl implements ScriptRepository interface
type ScriptRepositoryImpl struct {
	*BaseRepository[models.Script, models.ScriptFilter]
}

// NewScriptRepository creates a new script repository
func NewScriptRepository(db *gorm.DB) ScriptRepository {
	return &ScriptRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Script, models.ScriptFilter](db),
	}
}

// ByPermalink retrieves a script by its permalink, nil when absent
func (r *ScriptRepositoryImpl) ByPermalink(ctx context.Context, permalink string) (*models.Script, error) {
	db := r.getDB(ctx)
	var row models.Script
	if err := db.Where("permalink = ?", permalink).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// PermalinkExists reports whether any script already holds the permalink.
// Runs against the transaction bound in ctx so the submission flow's
// collision check and insert share one snapshot.
func (r *ScriptRepositoryImpl) PermalinkExists(ctx context.Context, permalink string) (bool, error) {
	db := r.getDB(ctx)
	var count int64
	if err := db.Model(&models.Script{}).Where("permalink = ?", permalink).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// DeleteCascade removes the script's comments and then the script itself.
// The caller is expected to hold a transaction in ctx.
func (r *ScriptRepositoryImpl) DeleteCascade(ctx context.Context, scriptID uint) error {
	db := r.getDB(ctx)
	if err := db.Where("script_id = ?", scriptID).Delete(&models.Comment{}).Error; err != nil {
		return err
	}
	return db.Delete(&models.Script{}, scriptID).Error
}

// ListAll retrieves every stored script, for admin exports
func (r *ScriptRepositoryImpl) ListAll(ctx context.Context, orderBy string) ([]*models.Script, error) {
	db := r.getDB(ctx)
	if orderBy == "" {
		orderBy = "id ASC"
	}
	var rows []*models.Script
	if err := db.Model(&models.Script{}).Order(orderBy).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// applyFilter applies filter criteria to a GORM query
func (r *ScriptRepositoryImpl) applyFilter(query *gorm.DB, filter models.ScriptFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.Permalink != nil {
		query = query.Where("permalink = ?", *filter.Permalink)
	}
	if filter.Author != nil {
		query = query.Where("author = ?", *filter.Author)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}
	return query
}

// ByFilter retrieves scripts based on filter criteria
func (r *ScriptRepositoryImpl) ByFilter(ctx context.Context, filter models.ScriptFilter, orderBy string, limit, offset int) ([]*models.Script, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Script{})

	query = r.applyFilter(query, filter)

	if orderBy == "" {
		orderBy = "id DESC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.Script
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns the number of scripts matching the filter
func (r *ScriptRepositoryImpl) Count(ctx context.Context, filter models.ScriptFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Script{})
	query = r.applyFilter(query, filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any script matching the filter exists
func (r *ScriptRepositoryImpl) Exists(ctx context.Context, filter models.ScriptFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
