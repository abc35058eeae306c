package services

import (
	"context"

	"trackit-api/internal/apperror"
	"trackit-api/internal/models"

	"gorm.io/gorm"
)

// CategoryInput is used for categories, subcategories and report categories.
type CategoryInput struct {
	Title       string
	Description string
}

// CategoryUpdate changes only the fields that are set.
type CategoryUpdate struct {
	Title       *string
	Description *string
}

// CategoryService manages task categories.
type CategoryService struct {
	db *gorm.DB
}

func NewCategoryService(db *gorm.DB) *CategoryService {
	return &CategoryService{db: db}
}

func (s *CategoryService) Create(ctx context.Context, in CategoryInput, actor *models.User) (*models.Category, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	title, err := required(in.Title, "category")
	if err != nil {
		return nil, err
	}

	item := models.Category{Title: title, Description: in.Description, AuthorID: actor.ID}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureUnique(tx, &models.Category{}, "category", title, "", "category"); err != nil {
			return err
		}
		return storeErr(tx.Create(&item).Error, "category")
	})
	if err != nil {
		return nil, err
	}
	item.TaskIDs = []string{}
	return &item, nil
}

func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	var items []models.Category
	if err := s.db.WithContext(ctx).Order(newestFirst).Find(&items).Error; err != nil {
		return nil, apperror.Internal(err)
	}
	if err := attachCategoryTasks(ctx, s.db, items); err != nil {
		return nil, apperror.Internal(err)
	}
	return items, nil
}

func (s *CategoryService) Get(ctx context.Context, id string) (*models.Category, error) {
	var item models.Category
	if err := exists(s.db.WithContext(ctx), &item, id, "category"); err != nil {
		return nil, err
	}
	items := []models.Category{item}
	if err := attachCategoryTasks(ctx, s.db, items); err != nil {
		return nil, apperror.Internal(err)
	}
	return &items[0], nil
}

func (s *CategoryService) Update(ctx context.Context, id string, in CategoryUpdate) (*models.Category, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item models.Category
		if err := exists(tx, &item, id, "category"); err != nil {
			return err
		}
		if in.Title != nil {
			title, err := required(*in.Title, "category")
			if err != nil {
				return err
			}
			if err := ensureUnique(tx, &models.Category{}, "category", title, id, "category"); err != nil {
				return err
			}
			item.Title = title
		}
		if in.Description != nil {
			item.Description = *in.Description
		}
		return storeErr(tx.Save(&item).Error, "category")
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *CategoryService) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item models.Category
		if err := exists(tx, &item, id, "category"); err != nil {
			return err
		}
		return storeErr(tx.Delete(&item).Error, "category")
	})
}

// SubCategoryService manages task subcategories.
type SubCategoryService struct {
	db *gorm.DB
}

func NewSubCategoryService(db *gorm.DB) *SubCategoryService {
	return &SubCategoryService{db: db}
}

func (s *SubCategoryService) Create(ctx context.Context, in CategoryInput, actor *models.User) (*models.SubCategory, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	title, err := required(in.Title, "title")
	if err != nil {
		return nil, err
	}

	item := models.SubCategory{Title: title, Description: in.Description, AuthorID: actor.ID}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureUnique(tx, &models.SubCategory{}, "title", title, "", "subcategory"); err != nil {
			return err
		}
		return storeErr(tx.Create(&item).Error, "subcategory")
	})
	if err != nil {
		return nil, err
	}
	item.TaskIDs = []string{}
	return &item, nil
}

func (s *SubCategoryService) List(ctx context.Context) ([]models.SubCategory, error) {
	var items []models.SubCategory
	if err := s.db.WithContext(ctx).Order(newestFirst).Find(&items).Error; err != nil {
		return nil, apperror.Internal(err)
	}
	if err := attachSubCategoryTasks(ctx, s.db, items); err != nil {
		return nil, apperror.Internal(err)
	}
	return items, nil
}

func (s *SubCategoryService) Get(ctx context.Context, id string) (*models.SubCategory, error) {
	var item models.SubCategory
	if err := exists(s.db.WithContext(ctx), &item, id, "subcategory"); err != nil {
		return nil, err
	}
	items := []models.SubCategory{item}
	if err := attachSubCategoryTasks(ctx, s.db, items); err != nil {
		return nil, apperror.Internal(err)
	}
	return &items[0], nil
}

func (s *SubCategoryService) Update(ctx context.Context, id string, in CategoryUpdate) (*models.SubCategory, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item models.SubCategory
		if err := exists(tx, &item, id, "subcategory"); err != nil {
			return err
		}
		if in.Title != nil {
			title, err := required(*in.Title, "title")
			if err != nil {
				return err
			}
			if err := ensureUnique(tx, &models.SubCategory{}, "title", title, id, "subcategory"); err != nil {
				return err
			}
			item.Title = title
		}
		if in.Description != nil {
			item.Description = *in.Description
		}
		return storeErr(tx.Save(&item).Error, "subcategory")
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *SubCategoryService) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item models.SubCategory
		if err := exists(tx, &item, id, "subcategory"); err != nil {
			return err
		}
		return storeErr(tx.Delete(&item).Error, "subcategory")
	})
}
