package services

import (
	"errors"
	"strings"
	"time"

	"trackit-api/internal/apperror"
	"trackit-api/internal/models"

	"gorm.io/gorm"
)

// storeErr maps a storage error to the application taxonomy.
func storeErr(err error, what string) error {
	if err == nil {
		return nil
	}
	if _, ok := apperror.As(err); ok {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NotFound("%s not found", what)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperror.Duplicate("%s already exists", what)
	}
	return apperror.Internal(err)
}

func requireActor(actor *models.User) error {
	if actor == nil || actor.ID == "" {
		return apperror.Authentication("Not authenticated")
	}
	return nil
}

// ensureUnique fails with a duplicate error when another row of model
// already holds value in column. Comparison is exact and case-sensitive.
func ensureUnique(tx *gorm.DB, model any, column, value, excludeID, label string) error {
	q := tx.Model(model).Where(column+" = ?", value)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return apperror.Internal(err)
	}
	if n > 0 {
		return apperror.Duplicate("%s %q already exists", label, value)
	}
	return nil
}

// exists loads the row with id into dest or returns NotFound for label.
func exists(tx *gorm.DB, dest any, id, label string) error {
	if strings.TrimSpace(id) == "" {
		return apperror.NotFound("%s not found", label)
	}
	return storeErr(tx.First(dest, "id = ?", id).Error, label)
}

func required(value, field string) (string, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return "", apperror.Validation("%s is required", field)
	}
	return v, nil
}

// applyRange restricts column to [from, to]; nil bounds are open.
func applyRange(q *gorm.DB, column string, from, to *time.Time) *gorm.DB {
	if from != nil {
		q = q.Where(column+" >= ?", from.UTC())
	}
	if to != nil {
		q = q.Where(column+" <= ?", to.UTC())
	}
	return q
}

// titleLike builds a case-insensitive substring match.
func titleLike(q *gorm.DB, column, title string) *gorm.DB {
	title = strings.TrimSpace(title)
	if title == "" {
		return q
	}
	return q.Where("LOWER("+column+") LIKE ?", "%"+strings.ToLower(title)+"%")
}

const newestFirst = "created_at desc, id desc"
