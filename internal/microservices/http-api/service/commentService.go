package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"reviewhub/internal/microservices/http-api/apperr"
	"reviewhub/internal/microservices/http-api/models"
	"reviewhub/internal/microservices/http-api/permissions"
	"reviewhub/internal/microservices/http-api/repository"
)

type CommentService interface {
	List(ctx context.Context, titleID, reviewID int64, page, pageSize int) ([]models.Comment, int64, error)
	Get(ctx context.Context, titleID, reviewID, commentID int64) (*models.Comment, error)
	Create(ctx context.Context, author permissions.Requester, titleID, reviewID int64, text string) (*models.Comment, error)
	Update(ctx context.Context, requester permissions.Requester, titleID, reviewID, commentID int64, text string) (*models.Comment, error)
	Delete(ctx context.Context, requester permissions.Requester, titleID, reviewID, commentID int64) error
}

type commentService struct {
	commentRepo repository.CommentRepository
	reviewRepo  repository.ReviewRepository
}

func NewCommentService(commentRepo repository.CommentRepository, reviewRepo repository.ReviewRepository) CommentService {
	return &commentService{
		commentRepo: commentRepo,
		reviewRepo:  reviewRepo,
	}
}

// review resolves the parent, which must belong to titleID.
func (s *commentService) review(ctx context.Context, titleID, reviewID int64) (*models.Review, error) {
	review, err := s.reviewRepo.FindByID(ctx, titleID, reviewID)
	if err != nil {
		return nil, reviewLookupError(err, reviewID)
	}
	return review, nil
}

func (s *commentService) List(ctx context.Context, titleID, reviewID int64, page, pageSize int) ([]models.Comment, int64, error) {
	if _, err := s.review(ctx, titleID, reviewID); err != nil {
		return nil, 0, err
	}
	return s.commentRepo.ListByReview(ctx, reviewID, page, pageSize)
}

func (s *commentService) Get(ctx context.Context, titleID, reviewID, commentID int64) (*models.Comment, error) {
	if _, err := s.review(ctx, titleID, reviewID); err != nil {
		return nil, err
	}
	comment, err := s.commentRepo.FindByID(ctx, reviewID, commentID)
	if err != nil {
		return nil, commentLookupError(err, commentID)
	}
	return comment, nil
}

func (s *commentService) Create(ctx context.Context, author permissions.Requester, titleID, reviewID int64, text string) (*models.Comment, error) {
	if err := permissions.Enforce(permissions.Authenticated(author), author, "post a comment"); err != nil {
		return nil, err
	}
	if _, err := s.review(ctx, titleID, reviewID); err != nil {
		return nil, err
	}
	if err := validateText(text); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		ReviewID: reviewID,
		Authored: models.Authored{AuthorID: author.UserID, Text: text},
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		if errors.Is(err, repository.ErrReference) {
			return nil, apperr.NotFound("review %d not found", reviewID)
		}
		return nil, fmt.Errorf("create comment: %w", err)
	}
	comment.Author = models.User{ID: author.UserID, Username: author.Username}
	return comment, nil
}

func (s *commentService) Update(ctx context.Context, requester permissions.Requester, titleID, reviewID, commentID int64, text string) (*models.Comment, error) {
	comment, err := s.Get(ctx, titleID, reviewID, commentID)
	if err != nil {
		return nil, err
	}

	allowed := permissions.AuthorOrModeratorOrReadOnly(http.MethodPatch, requester, comment.WrittenBy(requester.UserID))
	if err := permissions.Enforce(allowed, requester, "edit this comment"); err != nil {
		return nil, err
	}
	if err := validateText(text); err != nil {
		return nil, err
	}

	comment.Text = text
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, commentLookupError(err, commentID)
	}
	return comment, nil
}

func (s *commentService) Delete(ctx context.Context, requester permissions.Requester, titleID, reviewID, commentID int64) error {
	comment, err := s.Get(ctx, titleID, reviewID, commentID)
	if err != nil {
		return err
	}

	allowed := permissions.AuthorOrModeratorOrReadOnly(http.MethodDelete, requester, comment.WrittenBy(requester.UserID))
	if err := permissions.Enforce(allowed, requester, "delete this comment"); err != nil {
		return err
	}

	if err := s.commentRepo.Delete(ctx, reviewID, commentID); err != nil {
		return commentLookupError(err, commentID)
	}
	return nil
}

func commentLookupError(err error, id int64) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("comment %d not found", id)
	}
	return fmt.Errorf("comment %d: %w", id, err)
}
