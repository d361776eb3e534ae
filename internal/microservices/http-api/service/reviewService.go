package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"reviewhub/internal/microservices/http-api/apperr"
	"reviewhub/internal/microservices/http-api/models"
	"reviewhub/internal/microservices/http-api/permissions"
	"reviewhub/internal/microservices/http-api/repository"
)

// ReviewPatch holds the editable review fields; nil keeps the stored value.
type ReviewPatch struct {
	Text  *string
	Score *int
}

type ReviewService interface {
	List(ctx context.Context, titleID int64, page, pageSize int) ([]models.Review, int64, error)
	Get(ctx context.Context, titleID, reviewID int64) (*models.Review, error)
	Create(ctx context.Context, author permissions.Requester, titleID int64, text string, score int) (*models.Review, error)
	Update(ctx context.Context, requester permissions.Requester, titleID, reviewID int64, patch ReviewPatch) (*models.Review, error)
	Delete(ctx context.Context, requester permissions.Requester, titleID, reviewID int64) error
}

type reviewService struct {
	reviewRepo repository.ReviewRepository
	titleRepo  repository.TitleRepository
}

func NewReviewService(reviewRepo repository.ReviewRepository, titleRepo repository.TitleRepository) ReviewService {
	return &reviewService{
		reviewRepo: reviewRepo,
		titleRepo:  titleRepo,
	}
}

func validateScore(score int) error {
	if score < models.MinScore || score > models.MaxScore {
		return apperr.Validation("score must be between %d and %d, got %d", models.MinScore, models.MaxScore, score)
	}
	return nil
}

func validateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return apperr.Validation("text must not be empty")
	}
	return nil
}

func (s *reviewService) List(ctx context.Context, titleID int64, page, pageSize int) ([]models.Review, int64, error) {
	if _, err := s.titleRepo.FindByID(ctx, titleID); err != nil {
		return nil, 0, titleLookupError(err, titleID)
	}
	return s.reviewRepo.ListByTitle(ctx, titleID, page, pageSize)
}

func (s *reviewService) Get(ctx context.Context, titleID, reviewID int64) (*models.Review, error) {
	review, err := s.reviewRepo.FindByID(ctx, titleID, reviewID)
	if err != nil {
		return nil, reviewLookupError(err, reviewID)
	}
	return review, nil
}

// Create does not look for an existing review first. The (title, author)
// constraint decides, which also settles two concurrent submissions.
func (s *reviewService) Create(ctx context.Context, author permissions.Requester, titleID int64, text string, score int) (*models.Review, error) {
	if err := permissions.Enforce(permissions.Authenticated(author), author, "post a review"); err != nil {
		return nil, err
	}
	if _, err := s.titleRepo.FindByID(ctx, titleID); err != nil {
		return nil, titleLookupError(err, titleID)
	}
	if err := validateScore(score); err != nil {
		return nil, err
	}
	if err := validateText(text); err != nil {
		return nil, err
	}

	review := &models.Review{
		TitleID:  titleID,
		Authored: models.Authored{AuthorID: author.UserID, Text: text},
		Score:    score,
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, apperr.Conflict("you have already reviewed this title")
		case errors.Is(err, repository.ErrReference):
			// title deleted between the lookup and the insert
			return nil, apperr.NotFound("title %d not found", titleID)
		}
		return nil, fmt.Errorf("create review: %w", err)
	}
	review.Author = models.User{ID: author.UserID, Username: author.Username}
	return review, nil
}

func (s *reviewService) Update(ctx context.Context, requester permissions.Requester, titleID, reviewID int64, patch ReviewPatch) (*models.Review, error) {
	review, err := s.reviewRepo.FindByID(ctx, titleID, reviewID)
	if err != nil {
		return nil, reviewLookupError(err, reviewID)
	}

	allowed := permissions.AuthorOrModeratorOrReadOnly(http.MethodPatch, requester, review.WrittenBy(requester.UserID))
	if err := permissions.Enforce(allowed, requester, "edit this review"); err != nil {
		return nil, err
	}

	if patch.Score != nil {
		if err := validateScore(*patch.Score); err != nil {
			return nil, err
		}
		review.Score = *patch.Score
	}
	if patch.Text != nil {
		if err := validateText(*patch.Text); err != nil {
			return nil, err
		}
		review.Text = *patch.Text
	}

	if err := s.reviewRepo.Update(ctx, review); err != nil {
		return nil, reviewLookupError(err, reviewID)
	}
	return review, nil
}

func (s *reviewService) Delete(ctx context.Context, requester permissions.Requester, titleID, reviewID int64) error {
	review, err := s.reviewRepo.FindByID(ctx, titleID, reviewID)
	if err != nil {
		return reviewLookupError(err, reviewID)
	}

	allowed := permissions.AuthorOrModeratorOrReadOnly(http.MethodDelete, requester, review.WrittenBy(requester.UserID))
	if err := permissions.Enforce(allowed, requester, "delete this review"); err != nil {
		return err
	}

	if err := s.reviewRepo.Delete(ctx, titleID, reviewID); err != nil {
		return reviewLookupError(err, reviewID)
	}
	return nil
}

func reviewLookupError(err error, id int64) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("review %d not found", id)
	}
	return fmt.Errorf("review %d: %w", id, err)
}
