package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"trackit-api/internal/apperror"
	"trackit-api/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CreateTaskInput struct {
	Title         string
	Description   string
	Vendor        string
	Amount        decimal.Decimal
	Approver      models.Approver
	CategoryID    string
	SubCategoryID string
}

// UpdateTaskInput lists the only fields a handler may change.
type UpdateTaskInput struct {
	IsApproved  *bool
	IsPaid      *bool
	Progress    *int
	IsCompleted *bool
	Remark      *string
}

// TaskFilter narrows List. Zero values do not filter.
type TaskFilter struct {
	Category    string
	SubCategory string
	Title       string
	IsApproved  *bool
	IsPaid      *bool
	IsCompleted *bool
	// StartDate and EndDate bound updatedAt, both inclusive.
	StartDate *time.Time
	EndDate   *time.Time
}

// TaskService owns the task lifecycle. Only a task's handler may change it.
type TaskService struct {
	db *gorm.DB
}

func NewTaskService(db *gorm.DB) *TaskService {
	return &TaskService{db: db}
}

func workflowErr(err error) error {
	if errors.Is(err, models.ErrCompletionRequiresProgress) || errors.Is(err, models.ErrProgressOutOfRange) {
		return apperror.Validation("%s", err.Error())
	}
	return storeErr(err, "task")
}

func (s *TaskService) Create(ctx context.Context, in CreateTaskInput, actor *models.User) (*models.Task, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	title, err := required(in.Title, "title")
	if err != nil {
		return nil, err
	}
	vendor, err := required(in.Vendor, "vendor")
	if err != nil {
		return nil, err
	}
	if in.Amount.IsNegative() {
		return nil, apperror.Validation("amount must not be negative")
	}
	if !in.Approver.Valid() {
		return nil, apperror.Validation("approver must be one of TES, AAB, VAS, TAA, IOS")
	}

	task := models.Task{
		Title:         title,
		Description:   in.Description,
		Vendor:        vendor,
		Amount:        in.Amount.Round(2),
		Approver:      in.Approver,
		CategoryID:    in.CategoryID,
		SubCategoryID: in.SubCategoryID,
		HandlerID:     actor.ID,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var category models.Category
		if err := exists(tx, &category, in.CategoryID, "category"); err != nil {
			return err
		}
		var subCategory models.SubCategory
		if err := exists(tx, &subCategory, in.SubCategoryID, "subcategory"); err != nil {
			return err
		}
		return workflowErr(tx.Omit(clause.Associations).Create(&task).Error)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, task.ID)
}

func (s *TaskService) populated(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Preload("Category").Preload("SubCategory")
}

// List returns matching tasks, most recently updated first.
func (s *TaskService) List(ctx context.Context, f TaskFilter) ([]models.Task, error) {
	q := s.populated(ctx)
	if f.Category != "" {
		q = q.Where("category_id = ?", f.Category)
	}
	if f.SubCategory != "" {
		q = q.Where("sub_category_id = ?", f.SubCategory)
	}
	q = titleLike(q, "title", f.Title)
	if f.IsApproved != nil {
		q = q.Where("is_approved = ?", *f.IsApproved)
	}
	if f.IsPaid != nil {
		q = q.Where("is_paid = ?", *f.IsPaid)
	}
	if f.IsCompleted != nil {
		q = q.Where("is_completed = ?", *f.IsCompleted)
	}
	q = applyRange(q, "updated_at", f.StartDate, f.EndDate)

	tasks := make([]models.Task, 0)
	if err := q.Order("updated_at desc, id desc").Find(&tasks).Error; err != nil {
		return nil, apperror.Internal(err)
	}
	return tasks, nil
}

func (s *TaskService) Get(ctx context.Context, id string) (*models.Task, error) {
	var task models.Task
	if err := exists(s.populated(ctx), &task, id, "task"); err != nil {
		return nil, err
	}
	return &task, nil
}

// loadOwned fetches the task inside tx and checks that actor handles it.
func loadOwned(tx *gorm.DB, id string, actor *models.User) (*models.Task, error) {
	var task models.Task
	if err := exists(tx, &task, id, "task"); err != nil {
		return nil, err
	}
	if task.HandlerID != actor.ID {
		return nil, apperror.Forbidden("Only the task handler can modify this task")
	}
	return &task, nil
}

func (s *TaskService) Update(ctx context.Context, id string, in UpdateTaskInput, actor *models.User) (*models.Task, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		task, err := loadOwned(tx, id, actor)
		if err != nil {
			return err
		}
		if in.IsApproved != nil {
			task.IsApproved = *in.IsApproved
		}
		if in.IsPaid != nil {
			task.IsPaid = *in.IsPaid
		}
		if in.Progress != nil {
			task.Progress = *in.Progress
		}
		if in.IsCompleted != nil {
			task.IsCompleted = *in.IsCompleted
		}
		if in.Remark != nil {
			task.Remark = strings.TrimSpace(*in.Remark)
		}
		if err := task.CheckWorkflow(); err != nil {
			return workflowErr(err)
		}
		return workflowErr(tx.Omit(clause.Associations).Save(task).Error)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete removes the task. Category, subcategory and handler task lists are
// derived, so nothing else needs to change.
func (s *TaskService) Delete(ctx context.Context, id string, actor *models.User) (*models.Task, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	var deleted models.Task
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		task, err := loadOwned(tx, id, actor)
		if err != nil {
			return err
		}
		deleted = *task
		return storeErr(tx.Delete(task).Error, "task")
	})
	if err != nil {
		return nil, err
	}
	return &deleted, nil
}
