package models

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Approver is one of the fixed approval authorities for a task
type Approver string

const (
	ApproverTES Approver = "TES"
	ApproverAAB Approver = "AAB"
	ApproverVAS Approver = "VAS"
	ApproverTAA Approver = "TAA"
	ApproverIOS Approver = "IOS"
)

// Approvers lists the accepted approver codes.
var Approvers = []Approver{ApproverTES, ApproverAAB, ApproverVAS, ApproverTAA, ApproverIOS}

func (a Approver) Valid() bool {
	for _, v := range Approvers {
		if a == v {
			return true
		}
	}
	return false
}

// CompletionThreshold is the minimum progress at which a task may be completed.
const CompletionThreshold = 90

var (
	ErrCompletionRequiresProgress = fmt.Errorf("task can only be completed when progress is at least %d%%", CompletionThreshold)
	ErrProgressOutOfRange         = errors.New("progress must be between 0 and 100")
)

// Task represents a procurement/expense request tracked through approval, payment and completion
type Task struct {
	Base
	Title         string          `json:"title" gorm:"not null;index"`
	Description   string          `json:"description"`
	Vendor        string          `json:"vendor" gorm:"not null"`
	Amount        decimal.Decimal `json:"amount" gorm:"type:decimal(14,2);not null"`
	Approver      Approver        `json:"approver" gorm:"not null"`
	CategoryID    string          `json:"categoryId" gorm:"column:category_id;not null;index"`
	SubCategoryID string          `json:"subCategoryId" gorm:"column:sub_category_id;not null;index"`
	HandlerID     string          `json:"handlerId" gorm:"column:handler_id;not null;index"`

	IsApproved  bool   `json:"isApproved" gorm:"column:is_approved;not null;default:false"`
	IsPaid      bool   `json:"isPaid" gorm:"column:is_paid;not null;default:false"`
	Progress    int    `json:"progress" gorm:"not null;default:0"`
	IsCompleted bool   `json:"isCompleted" gorm:"column:is_completed;not null;default:false"`
	Remark      string `json:"remark"`

	Category    *Category    `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	SubCategory *SubCategory `json:"subCategory,omitempty" gorm:"foreignKey:SubCategoryID"`
}

// TableName specifies the table name for Task Model
func (Task) TableName() string {
	return "tasks"
}

// CheckWorkflow validates the approval/progress/completion fields.
func (t *Task) CheckWorkflow() error {
	if t.Progress < 0 || t.Progress > 100 {
		return ErrProgressOutOfRange
	}
	if t.IsCompleted && t.Progress < CompletionThreshold {
		return ErrCompletionRequiresProgress
	}
	return nil
}

// BeforeSave rejects any write that would leave the task in an invalid workflow state.
func (t *Task) BeforeSave(tx *gorm.DB) error {
	return t.CheckWorkflow()
}
