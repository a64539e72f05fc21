package repository

import (
	"context"

	"github.com/scriptbin/scriptbin/models"
	"gorm.io/gorm"
)

// CommentRepositoryImpl implements CommentRepository interface
type CommentRepositoryImpl struct {
	*BaseRepository[models.Comment, models.CommentFilter]
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &CommentRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Comment, models.CommentFilter](db),
	}
}

// ListByScript retrieves all comments owned by a script, oldest first
func (r *CommentRepositoryImpl) ListByScript(ctx context.Context, scriptID uint) ([]*models.Comment, error) {
	db := r.getDB(ctx)
	var rows []*models.Comment
	if err := db.Model(&models.Comment{}).Where("script_id = ?", scriptID).Order("created_at ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// CountByScript returns the number of comments owned by a script
func (r *CommentRepositoryImpl) CountByScript(ctx context.Context, scriptID uint) (int64, error) {
	scriptIDCopy := scriptID
	return r.Count(ctx, models.CommentFilter{ScriptID: &scriptIDCopy})
}

// applyFilter applies filter criteria to a GORM query
func (r *CommentRepositoryImpl) applyFilter(query *gorm.DB, filter models.CommentFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.ScriptID != nil {
		query = query.Where("script_id = ?", *filter.ScriptID)
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

// ByFilter retrieves comments based on filter criteria
func (r *CommentRepositoryImpl) ByFilter(ctx context.Context, filter models.CommentFilter, orderBy string, limit, offset int) ([]*models.Comment, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Comment{})

	query = r.applyFilter(query, filter)

	if orderBy == "" {
		orderBy = "id ASC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.Comment
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns the number of comments matching the filter
func (r *CommentRepositoryImpl) Count(ctx context.Context, filter models.CommentFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Comment{})
	query = r.applyFilter(query, filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any comment matching the filter exists
func (r *CommentRepositoryImpl) Exists(ctx context.Context, filter models.CommentFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
