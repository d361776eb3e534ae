package models

import "time"

// Authored is the part reviews and comments share: who wrote what, and when.
type Authored struct {
	AuthorID string    `json:"author_id" gorm:"type:uuid;not null;index"`
	Text     string    `json:"text" gorm:"type:text;not null"`
	PubDate  time.Time `json:"pub_date" gorm:"autoCreateTime;index"`
}

func (a Authored) WrittenBy(userID string) bool {
	return userID != "" && a.AuthorID == userID
}
