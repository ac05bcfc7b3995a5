package repository

import (
	"context"

	"github.com/taskhive/taskhive/internal/activity/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, entry *domain.Entry) error {
	if entry == nil {
		return nil
	}
	return db.WithContext(ctx).Create(entry).Error
}

func (r *repo) ListByProjectID(ctx context.Context, db *gorm.DB, projectID string, limit int) ([]domain.Entry, error) {
	var entries []domain.Entry
	stmt := db.WithContext(ctx).
		Model(&domain.Entry{}).
		Where(datatypes.JSONQuery("metadata").Equals(projectID, domain.MetadataProjectID)).
		Order("created_at desc, id desc")
	if limit > 0 {
		stmt = stmt.Limit(limit)
	}
	if err := stmt.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
