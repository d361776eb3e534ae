package models

type Title struct {
	ID          int64    `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string   `json:"name" gorm:"type:text;not null;index"`
	Year        int      `json:"year" gorm:"not null;index"`
	Description *string  `json:"description,omitempty" gorm:"type:text"`
	CategoryID  *int64   `json:"category_id,omitempty" gorm:"index"`
	Rating      *float64 `json:"rating" gorm:"-"` // filled from reviews on read, never stored

	// associations
	Category *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL;"`
	Genres   []Genre   `json:"genres,omitempty" gorm:"many2many:genre_titles;constraint:OnDelete:CASCADE;"`
}

func (Title) TableName() string {
	return "titles"
}
