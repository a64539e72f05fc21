// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"

	"github.com/scriptbin/scriptbin/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// ScriptRepository defines operations for stored scripts
type ScriptRepository interface {
	Repository[models.Script, models.ScriptFilter]
	ByPermalink(ctx context.Context, permalink string) (*models.Script, error)
	PermalinkExists(ctx context.Context, permalink string) (bool, error)
	DeleteCascade(ctx context.Context, scriptID uint) error
	ListAll(ctx context.Context, orderBy string) ([]*models.Script, error)
}

// CommentRepository defines operations for script comments
type CommentRepository interface {
	Repository[models.Comment, models.CommentFilter]
	ListByScript(ctx context.Context, scriptID uint) ([]*models.Comment, error)
	CountByScript(ctx context.Context, scriptID uint) (int64, error)
}

// TagRepository defines operations for tag usage counters
type TagRepository interface {
	Repository[models.Tag, models.TagFilter]
	ByName(ctx context.Context, name string) (*models.Tag, error)
	IncrementByName(ctx context.Context, name string) error
	ListByNames(ctx context.Context, names []string) ([]*models.Tag, error)
}

// AdminRepository defines operations for administrators
type AdminRepository interface {
	Repository[models.Admin, models.AdminFilter]
	ByUsername(ctx context.Context, username string) (*models.Admin, error)
	UpdateLastLogin(ctx context.Context, adminID uint) error
}
