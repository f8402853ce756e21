package model

// Contact is an address book entry owned by its author.
type Contact struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CategoryID *uint     `gorm:"index" json:"category_id" validate:"required"`
	Category   *Category `gorm:"constraint:OnDelete:RESTRICT" json:"category,omitempty" validate:"-"`
	AuthorID   uint      `gorm:"not null;index" json:"author_id" validate:"required"`
	Author     *User     `gorm:"constraint:OnDelete:CASCADE" json:"-" validate:"-"`
	Name       string    `gorm:"size:155;not null" json:"name" validate:"required,max=155"`
	Surname    string    `gorm:"size:155" json:"surname" validate:"max=155"`
	Email      string    `gorm:"size:45" json:"email" validate:"omitempty,max=45,email"`
	Telephone  string    `gorm:"size:20" json:"telephone" validate:"max=20"`
	Birthdate  *Date     `json:"birthdate"`
	Note       string    `gorm:"type:text" json:"note" validate:"max=675"`
}

func (Contact) TableName() string { return "contact" }

// FullName joins name and surname for display.
func (c Contact) FullName() string {
	if c.Surname == "" {
		return c.Name
	}
	return c.Name + " " + c.Surname
}
