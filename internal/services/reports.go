package services

import (
	"context"
	"time"

	"trackit-api/internal/apperror"
	"trackit-api/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CreateReportInput struct {
	Title            string
	RegionID         string
	ReportCategoryID string
	StationID        string
	Description      string
	Pump             string
	Comment          string
	Status           models.ReportStatus
}

type UpdateReportInput struct {
	Status  *models.ReportStatus
	Comment *string
	Pump    *string
}

// ReportFilter narrows List. StartDate and EndDate bound createdAt, inclusive.
type ReportFilter struct {
	Region         string
	ReportCategory string
	Station        string
	Title          string
	Status         models.ReportStatus
	StartDate      *time.Time
	EndDate        *time.Time
}

// ReportService owns the field report lifecycle.
type ReportService struct {
	db *gorm.DB
}

func NewReportService(db *gorm.DB) *ReportService {
	return &ReportService{db: db}
}

func invalidStatus() error {
	return apperror.Validation("status must be one of Open, In Progress, Closed")
}

func (s *ReportService) Create(ctx context.Context, in CreateReportInput, actor *models.User) (*models.Report, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	title, err := required(in.Title, "title")
	if err != nil {
		return nil, err
	}
	status := in.Status
	if status == "" {
		status = models.ReportOpen
	}
	if !status.Valid() {
		return nil, invalidStatus()
	}

	var report models.Report
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var region models.Region
		if err := exists(tx, &region, in.RegionID, "region"); err != nil {
			return err
		}
		var category models.ReportCategory
		if err := exists(tx, &category, in.ReportCategoryID, "report category"); err != nil {
			return err
		}
		var station models.Station
		if err := exists(tx, &station, in.StationID, "station"); err != nil {
			return err
		}

		report = models.Report{
			Title:            title,
			RegionID:         region.ID,
			ReportCategoryID: category.ID,
			Description:      in.Description,
			Pump:             in.Pump,
			Comment:          in.Comment,
			Status:           status,
			AuthorID:         actor.ID,
			Stations:         []models.Station{station},
		}
		// Only the link row is written; the station itself is untouched.
		return storeErr(tx.Omit("Region", "ReportCategory", "Stations.*").Create(&report).Error, "report")
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, report.ID)
}

func (s *ReportService) populated(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Preload("Region").
		Preload("ReportCategory").
		Preload("Stations", func(db *gorm.DB) *gorm.DB { return db.Order("stations.id asc") })
}

// List returns matching reports, newest first.
func (s *ReportService) List(ctx context.Context, f ReportFilter) ([]models.Report, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, invalidStatus()
	}

	q := s.populated(ctx)
	if f.Region != "" {
		q = q.Where("region_id = ?", f.Region)
	}
	if f.ReportCategory != "" {
		q = q.Where("report_category_id = ?", f.ReportCategory)
	}
	if f.Station != "" {
		q = q.Where("id IN (?)", s.db.Table(models.ReportStationsTable).Select("report_id").Where("station_id = ?", f.Station))
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	q = titleLike(q, "title", f.Title)
	q = applyRange(q, "created_at", f.StartDate, f.EndDate)

	reports := make([]models.Report, 0)
	if err := q.Order(newestFirst).Find(&reports).Error; err != nil {
		return nil, apperror.Internal(err)
	}
	if err := attachReportStations(ctx, s.db, reports); err != nil {
		return nil, apperror.Internal(err)
	}
	return reports, nil
}

func (s *ReportService) Get(ctx context.Context, id string) (*models.Report, error) {
	var report models.Report
	if err := exists(s.populated(ctx), &report, id, "report"); err != nil {
		return nil, err
	}
	reports := []models.Report{report}
	if err := attachReportStations(ctx, s.db, reports); err != nil {
		return nil, apperror.Internal(err)
	}
	return &reports[0], nil
}

// Update changes status, comment or pump. Any authenticated user may update.
func (s *ReportService) Update(ctx context.Context, id string, in UpdateReportInput, actor *models.User) (*models.Report, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if in.Status != nil && !in.Status.Valid() {
		return nil, invalidStatus()
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var report models.Report
		if err := exists(tx, &report, id, "report"); err != nil {
			return err
		}
		if in.Status != nil {
			report.Status = *in.Status
		}
		if in.Comment != nil {
			report.Comment = *in.Comment
		}
		if in.Pump != nil {
			report.Pump = *in.Pump
		}
		return storeErr(tx.Omit(clause.Associations).Save(&report).Error, "report")
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete removes the report together with its station links.
func (s *ReportService) Delete(ctx context.Context, id string, actor *models.User) (*models.Report, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	var deleted models.Report
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := exists(tx, &deleted, id, "report"); err != nil {
			return err
		}
		if err := tx.Model(&deleted).Association("Stations").Clear(); err != nil {
			return apperror.Internal(err)
		}
		return storeErr(tx.Delete(&deleted).Error, "report")
	})
	if err != nil {
		return nil, err
	}
	return &deleted, nil
}
