package model

// Category groups contacts and events (work, family, health, etc.). Titles are global and unique.
type Category struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Title string `gorm:"size:30;not null;uniqueIndex:uq_categories_title" json:"title" validate:"required,min=2,max=30"`
}

func (Category) TableName() string { return "category" }
