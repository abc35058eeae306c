package models

// Category classifies tasks at the top level.
type Category struct {
	Base
	Title       string `json:"category" gorm:"column:category;not null;uniqueIndex"`
	Description string `json:"description"`
	AuthorID    string `json:"author" gorm:"column:author_id;index"`

	TaskIDs []string `json:"tasks" gorm:"-"`
}

func (Category) TableName() string {
	return "categories"
}

// SubCategory classifies tasks below a category.
type SubCategory struct {
	Base
	Title       string `json:"title" gorm:"not null;uniqueIndex"`
	Description string `json:"description"`
	AuthorID    string `json:"author" gorm:"column:author_id;index"`

	TaskIDs []string `json:"tasks" gorm:"-"`
}

func (SubCategory) TableName() string {
	return "sub_categories"
}
