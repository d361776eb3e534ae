package dto

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"reviewhub/internal/microservices/http-api/models"
	"reviewhub/internal/microservices/http-api/service"
)

// ReviewRequest is used for create and PATCH.
type ReviewRequest struct {
	Text  *string `json:"text"`
	Score *int    `json:"score"`
}

func (r ReviewRequest) ValidateCreate() error {
	return invalid(validation.ValidateStruct(&r,
		validation.Field(&r.Text, validation.Required),
		validation.Field(&r.Score, validation.NotNil, validation.Min(models.MinScore), validation.Max(models.MaxScore)),
	))
}

func (r ReviewRequest) ValidatePatch() error {
	return invalid(validation.ValidateStruct(&r,
		validation.Field(&r.Text, validation.NilOrNotEmpty),
		validation.Field(&r.Score, validation.Min(models.MinScore), validation.Max(models.MaxScore)),
	))
}

func (r ReviewRequest) ToPatch() service.ReviewPatch {
	return service.ReviewPatch{Text: r.Text, Score: r.Score}
}

type ReviewResponse struct {
	ID      int64     `json:"id"`
	Text    string    `json:"text"`
	Author  string    `json:"author"`
	Score   int       `json:"score"`
	PubDate time.Time `json:"pub_date"`
}

func ToReviewResponse(r models.Review) ReviewResponse {
	return ReviewResponse{
		ID:      r.ID,
		Text:    r.Text,
		Author:  r.Author.Username,
		Score:   r.Score,
		PubDate: r.PubDate,
	}
}

// CommentRequest for creating or editing a comment
type CommentRequest struct {
	Text string `json:"text"`
}

func (r CommentRequest) Validate() error {
	return invalid(validation.ValidateStruct(&r,
		validation.Field(&r.Text, validation.Required),
	))
}

type CommentResponse struct {
	ID      int64     `json:"id"`
	Text    string    `json:"text"`
	Author  string    `json:"author"`
	PubDate time.Time `json:"pub_date"`
}

func ToCommentResponse(c models.Comment) CommentResponse {
	return CommentResponse{
		ID:      c.ID,
		Text:    c.Text,
		Author:  c.Author.Username,
		PubDate: c.PubDate,
	}
}
