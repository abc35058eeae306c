package services

import (
	"context"

	"trackit-api/internal/apperror"
	"trackit-api/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StationInput struct {
	Name         string
	RegionID     string
	ManagerName  string
	ManagerPhone string
}

type StationUpdate struct {
	Name         *string
	RegionID     *string
	ManagerName  *string
	ManagerPhone *string
}

// StationService manages stations. A station always belongs to an existing
// region; its region's station list follows RegionID.
type StationService struct {
	db *gorm.DB
}

func NewStationService(db *gorm.DB) *StationService {
	return &StationService{db: db}
}

func (s *StationService) Create(ctx context.Context, in StationInput, actor *models.User) (*models.Station, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	name, err := required(in.Name, "name")
	if err != nil {
		return nil, err
	}
	managerName, err := required(in.ManagerName, "managerName")
	if err != nil {
		return nil, err
	}
	managerPhone, err := required(in.ManagerPhone, "managerPhone")
	if err != nil {
		return nil, err
	}

	item := models.Station{
		Name:         name,
		RegionID:     in.RegionID,
		ManagerName:  managerName,
		ManagerPhone: managerPhone,
		AuthorID:     actor.ID,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var region models.Region
		if err := exists(tx, &region, in.RegionID, "region"); err != nil {
			return err
		}
		if err := ensureUnique(tx, &models.Station{}, "name", name, "", "station"); err != nil {
			return err
		}
		return storeErr(tx.Omit(clause.Associations).Create(&item).Error, "station")
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, item.ID)
}

// List returns every station with its region populated.
func (s *StationService) List(ctx context.Context) ([]models.Station, error) {
	var items []models.Station
	if err := s.db.WithContext(ctx).Preload("Region").Order(newestFirst).Find(&items).Error; err != nil {
		return nil, apperror.Internal(err)
	}
	if err := attachStationReports(ctx, s.db, items); err != nil {
		return nil, apperror.Internal(err)
	}
	return items, nil
}

func (s *StationService) Get(ctx context.Context, id string) (*models.Station, error) {
	var item models.Station
	if err := exists(s.db.WithContext(ctx).Preload("Region"), &item, id, "station"); err != nil {
		return nil, err
	}
	items := []models.Station{item}
	if err := attachStationReports(ctx, s.db, items); err != nil {
		return nil, apperror.Internal(err)
	}
	return &items[0], nil
}

// Update edits a station. Changing RegionID moves the station between
// region station lists in the same write.
func (s *StationService) Update(ctx context.Context, id string, in StationUpdate) (*models.Station, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item models.Station
		if err := exists(tx, &item, id, "station"); err != nil {
			return err
		}
		if in.Name != nil {
			name, err := required(*in.Name, "name")
			if err != nil {
				return err
			}
			if err := ensureUnique(tx, &models.Station{}, "name", name, id, "station"); err != nil {
				return err
			}
			item.Name = name
		}
		if in.RegionID != nil && *in.RegionID != item.RegionID {
			var region models.Region
			if err := exists(tx, &region, *in.RegionID, "region"); err != nil {
				return err
			}
			item.RegionID = region.ID
		}
		if in.ManagerName != nil {
			v, err := required(*in.ManagerName, "managerName")
			if err != nil {
				return err
			}
			item.ManagerName = v
		}
		if in.ManagerPhone != nil {
			v, err := required(*in.ManagerPhone, "managerPhone")
			if err != nil {
				return err
			}
			item.ManagerPhone = v
		}
		return storeErr(tx.Omit(clause.Associations).Save(&item).Error, "station")
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete removes the station and its report links.
func (s *StationService) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item models.Station
		if err := exists(tx, &item, id, "station"); err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM "+models.ReportStationsTable+" WHERE station_id = ?", id).Error; err != nil {
			return apperror.Internal(err)
		}
		return storeErr(tx.Delete(&item).Error, "station")
	})
}
