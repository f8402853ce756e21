package model

// Tag is a free-form label shared between events.
type Tag struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Title string `gorm:"size:65;not null;index" json:"title" validate:"required,min=2,max=65"`
}

func (Tag) TableName() string { return "tag" }

func (t Tag) String() string { return t.Title }
