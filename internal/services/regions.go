package services

import (
	"context"

	"trackit-api/internal/apperror"
	"trackit-api/internal/models"

	"gorm.io/gorm"
)

type RegionInput struct {
	Title      string
	RSS        string
	Supervisor string
}

type RegionUpdate struct {
	Title      *string
	RSS        *string
	Supervisor *string
}

// RegionService manages regions. Station and report lists are derived.
type RegionService struct {
	db *gorm.DB
}

func NewRegionService(db *gorm.DB) *RegionService {
	return &RegionService{db: db}
}

func (s *RegionService) Create(ctx context.Context, in RegionInput, actor *models.User) (*models.Region, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	title, err := required(in.Title, "title")
	if err != nil {
		return nil, err
	}

	item := models.Region{Title: title, RSS: in.RSS, Supervisor: in.Supervisor, AuthorID: actor.ID}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureUnique(tx, &models.Region{}, "title", title, "", "region"); err != nil {
			return err
		}
		return storeErr(tx.Create(&item).Error, "region")
	})
	if err != nil {
		return nil, err
	}
	item.StationIDs = []string{}
	item.ReportIDs = []string{}
	return &item, nil
}

// List returns every region with its stations populated.
func (s *RegionService) List(ctx context.Context) ([]models.Region, error) {
	var items []models.Region
	err := s.db.WithContext(ctx).
		Preload("Stations", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		Order(newestFirst).
		Find(&items).Error
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if err := attachRegionRefs(ctx, s.db, items); err != nil {
		return nil, apperror.Internal(err)
	}
	return items, nil
}

func (s *RegionService) Get(ctx context.Context, id string) (*models.Region, error) {
	var item models.Region
	db := s.db.WithContext(ctx).Preload("Stations", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") })
	if err := exists(db, &item, id, "region"); err != nil {
		return nil, err
	}
	items := []models.Region{item}
	if err := attachRegionRefs(ctx, s.db, items); err != nil {
		return nil, apperror.Internal(err)
	}
	return &items[0], nil
}

func (s *RegionService) Update(ctx context.Context, id string, in RegionUpdate) (*models.Region, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item models.Region
		if err := exists(tx, &item, id, "region"); err != nil {
			return err
		}
		if in.Title != nil {
			title, err := required(*in.Title, "title")
			if err != nil {
				return err
			}
			if err := ensureUnique(tx, &models.Region{}, "title", title, id, "region"); err != nil {
				return err
			}
			item.Title = title
		}
		if in.RSS != nil {
			item.RSS = *in.RSS
		}
		if in.Supervisor != nil {
			item.Supervisor = *in.Supervisor
		}
		return storeErr(tx.Omit("Stations").Save(&item).Error, "region")
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *RegionService) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item models.Region
		if err := exists(tx, &item, id, "region"); err != nil {
			return err
		}
		return storeErr(tx.Delete(&item).Error, "region")
	})
}
