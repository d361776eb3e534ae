package models

// GenreTitle links a title to a genre. The pair is the whole identity.
type GenreTitle struct {
	TitleID int64 `json:"title_id" gorm:"primaryKey"`
	GenreID int64 `json:"genre_id" gorm:"primaryKey"`
}

func (GenreTitle) TableName() string {
	return "genre_titles"
}
