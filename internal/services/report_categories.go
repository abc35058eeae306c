package services

import (
	"context"

	"trackit-api/internal/apperror"
	"trackit-api/internal/models"

	"gorm.io/gorm"
)

// ReportCategoryService manages report categories.
type ReportCategoryService struct {
	db *gorm.DB
}

func NewReportCategoryService(db *gorm.DB) *ReportCategoryService {
	return &ReportCategoryService{db: db}
}

func (s *ReportCategoryService) Create(ctx context.Context, in CategoryInput, actor *models.User) (*models.ReportCategory, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	title, err := required(in.Title, "title")
	if err != nil {
		return nil, err
	}

	item := models.ReportCategory{Title: title, Description: in.Description, AuthorID: actor.ID}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureUnique(tx, &models.ReportCategory{}, "title", title, "", "report category"); err != nil {
			return err
		}
		return storeErr(tx.Create(&item).Error, "report category")
	})
	if err != nil {
		return nil, err
	}
	item.ReportIDs = []string{}
	return &item, nil
}

func (s *ReportCategoryService) List(ctx context.Context) ([]models.ReportCategory, error) {
	var items []models.ReportCategory
	if err := s.db.WithContext(ctx).Order(newestFirst).Find(&items).Error; err != nil {
		return nil, apperror.Internal(err)
	}
	if err := attachReportCategoryReports(ctx, s.db, items); err != nil {
		return nil, apperror.Internal(err)
	}
	return items, nil
}

func (s *ReportCategoryService) Get(ctx context.Context, id string) (*models.ReportCategory, error) {
	var item models.ReportCategory
	if err := exists(s.db.WithContext(ctx), &item, id, "report category"); err != nil {
		return nil, err
	}
	items := []models.ReportCategory{item}
	if err := attachReportCategoryReports(ctx, s.db, items); err != nil {
		return nil, apperror.Internal(err)
	}
	return &items[0], nil
}

func (s *ReportCategoryService) Update(ctx context.Context, id string, in CategoryUpdate) (*models.ReportCategory, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item models.ReportCategory
		if err := exists(tx, &item, id, "report category"); err != nil {
			return err
		}
		if in.Title != nil {
			title, err := required(*in.Title, "title")
			if err != nil {
				return err
			}
			if err := ensureUnique(tx, &models.ReportCategory{}, "title", title, id, "report category"); err != nil {
				return err
			}
			item.Title = title
		}
		if in.Description != nil {
			item.Description = *in.Description
		}
		return storeErr(tx.Save(&item).Error, "report category")
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *ReportCategoryService) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item models.ReportCategory
		if err := exists(tx, &item, id, "report category"); err != nil {
			return err
		}
		return storeErr(tx.Delete(&item).Error, "report category")
	})
}
