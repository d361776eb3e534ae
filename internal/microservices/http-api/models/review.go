package models

const (
	MinScore = 1
	MaxScore = 10
)

type Review struct {
	ID      int64 `json:"id" gorm:"primaryKey;autoIncrement"`
	TitleID int64 `json:"title_id" gorm:"not null;index"`
	Authored
	Score int `json:"score" gorm:"not null;check:score >= 1 AND score <= 10"`

	// associations
	Author User `json:"author,omitempty" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE;"`
}

func (Review) TableName() string {
	return "reviews"
}
