//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"reviewhub/database"
	"reviewhub/internal/microservices/http-api/models"
)

// RepositorySuite runs the repositories against a throwaway postgres with the
// real migrations applied. Run with: go test -tags integration ./...
type RepositorySuite struct {
	suite.Suite
	ctx       context.Context
	container *tcpostgres.PostgresContainer
	db        *gorm.DB

	users      UserRepository
	categories VocabularyRepository[models.Category]
	genres     VocabularyRepository[models.Genre]
	titles     TitleRepository
	reviews    ReviewRepository
	comments   CommentRepository
}

func TestRepositorySuite(t *testing.T) {
	if testing.Short() {
		t.Skip("needs docker")
	}
	suite.Run(t, new(RepositorySuite))
}

func (s *RepositorySuite) SetupSuite() {
	s.ctx = context.Background()

	ctr, err := tcpostgres.Run(s.ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("reviewhub"),
		tcpostgres.WithUsername("reviewhub"),
		tcpostgres.WithPassword("reviewhub"),
		tcpostgres.BasicWaitStrategies(),
	)
	s.Require().NoError(err)
	s.container = ctr

	dsn, err := ctr.ConnectionString(s.ctx, "sslmode=disable")
	s.Require().NoError(err)
	s.Require().NoError(database.MigrateUp(dsn, zap.NewNop()))

	s.db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         database.NewGormLogger(zap.NewNop(), gormlogger.Silent),
	})
	s.Require().NoError(err)

	s.users = NewUserRepository(s.db)
	s.categories = NewCategoryRepository(s.db)
	s.genres = NewGenreRepository(s.db)
	s.titles = NewTitleRepository(s.db)
	s.reviews = NewReviewRepository(s.db)
	s.comments = NewCommentRepository(s.db)
}

func (s *RepositorySuite) TearDownSuite() {
	if s.container != nil {
		s.NoError(testcontainers.TerminateContainer(s.container))
	}
}

func (s *RepositorySuite) SetupTest() {
	s.Require().NoError(s.db.Exec(
		"TRUNCATE comments, reviews, genre_titles, titles, genres, categories, users RESTART IDENTITY CASCADE").Error)
}

func (s *RepositorySuite) newUser(username string) *models.User {
	u, err := s.users.GetOrCreate(s.ctx, username, username+"@example.com")
	s.Require().NoError(err)
	return u
}

func (s *RepositorySuite) newTitle(name string, categoryID *int64, genreIDs ...int64) *models.Title {
	t := &models.Title{Name: name, Year: 2001, CategoryID: categoryID}
	s.Require().NoError(s.titles.Create(s.ctx, t, genreIDs))
	return t
}

func (s *RepositorySuite) TestGetOrCreate_IsIdempotentOnExactPair() {
	first := s.newUser("alice")
	second, err := s.users.GetOrCreate(s.ctx, "alice", "alice@example.com")
	s.Require().NoError(err)
	s.Equal(first.ID, second.ID)

	_, err = s.users.GetOrCreate(s.ctx, "alice", "other@example.com")
	s.ErrorIs(err, ErrDuplicate)
	_, err = s.users.GetOrCreate(s.ctx, "bob", "alice@example.com")
	s.ErrorIs(err, ErrDuplicate)
}

func (s *RepositorySuite) TestConfirmationCodeIsSingleUse() {
	u := s.newUser("alice")
	s.Require().NoError(s.users.SetConfirmationCode(s.ctx, u.ID, "Ab12Cd"))

	ok, err := s.users.ConsumeConfirmationCode(s.ctx, "alice", "Ab12Cd")
	s.Require().NoError(err)
	s.True(ok)

	ok, err = s.users.ConsumeConfirmationCode(s.ctx, "alice", "Ab12Cd")
	s.Require().NoError(err)
	s.False(ok)
}

func (s *RepositorySuite) TestWrongGuessBurnsCode() {
	u := s.newUser("alice")
	s.Require().NoError(s.users.SetConfirmationCode(s.ctx, u.ID, "Ab12Cd"))

	ok, err := s.users.ConsumeConfirmationCode(s.ctx, "alice", "zzzzzz")
	s.Require().NoError(err)
	s.False(ok)

	ok, err = s.users.ConsumeConfirmationCode(s.ctx, "alice", "Ab12Cd")
	s.Require().NoError(err)
	s.False(ok)
}

func (s *RepositorySuite) TestReviewOncePerTitleAndAuthor() {
	alice, bob := s.newUser("alice"), s.newUser("bob")
	title := s.newTitle("Solaris", nil)

	first := &models.Review{TitleID: title.ID, Score: 7, Authored: models.Authored{AuthorID: alice.ID, Text: "good"}}
	s.Require().NoError(s.reviews.Create(s.ctx, first))

	dup := &models.Review{TitleID: title.ID, Score: 3, Authored: models.Authored{AuthorID: alice.ID, Text: "again"}}
	s.ErrorIs(s.reviews.Create(s.ctx, dup), ErrDuplicate)

	other := &models.Review{TitleID: title.ID, Score: 3, Authored: models.Authored{AuthorID: bob.ID, Text: "meh"}}
	s.NoError(s.reviews.Create(s.ctx, other))
}

func (s *RepositorySuite) TestAverageScores() {
	alice, bob := s.newUser("alice"), s.newUser("bob")
	rated := s.newTitle("Stalker", nil)
	unrated := s.newTitle("Mirror", nil)

	for _, rv := range []*models.Review{
		{TitleID: rated.ID, Score: 4, Authored: models.Authored{AuthorID: alice.ID, Text: "a"}},
		{TitleID: rated.ID, Score: 8, Authored: models.Authored{AuthorID: bob.ID, Text: "b"}},
	} {
		s.Require().NoError(s.reviews.Create(s.ctx, rv))
	}

	avg, err := s.titles.AverageScores(s.ctx, []int64{rated.ID, unrated.ID})
	s.Require().NoError(err)
	s.InDelta(6.0, avg[rated.ID], 1e-9)
	_, present := avg[unrated.ID]
	s.False(present)
}

func (s *RepositorySuite) TestDeleteTitleCascades() {
	alice := s.newUser("alice")
	genre := &models.Genre{Name: "Drama", Slug: "drama"}
	s.Require().NoError(s.genres.Create(s.ctx, genre))
	title := s.newTitle("Andrei Rublev", nil, genre.ID)

	review := &models.Review{TitleID: title.ID, Score: 9, Authored: models.Authored{AuthorID: alice.ID, Text: "x"}}
	s.Require().NoError(s.reviews.Create(s.ctx, review))
	comment := &models.Comment{ReviewID: review.ID, Authored: models.Authored{AuthorID: alice.ID, Text: "y"}}
	s.Require().NoError(s.comments.Create(s.ctx, comment))

	s.Require().NoError(s.titles.Delete(s.ctx, title.ID))

	var n int64
	s.db.Model(&models.Review{}).Count(&n)
	s.Zero(n)
	s.db.Model(&models.Comment{}).Count(&n)
	s.Zero(n)
	s.db.Model(&models.GenreTitle{}).Count(&n)
	s.Zero(n)
	s.db.Model(&models.Genre{}).Count(&n)
	s.EqualValues(1, n)
}

func (s *RepositorySuite) TestDeleteCategoryKeepsTitles() {
	cat := &models.Category{Name: "Film", Slug: "film"}
	s.Require().NoError(s.categories.Create(s.ctx, cat))
	title := s.newTitle("Nostalghia", &cat.ID)

	s.Require().NoError(s.categories.DeleteBySlug(s.ctx, "film"))

	got, err := s.titles.FindByID(s.ctx, title.ID)
	s.Require().NoError(err)
	s.Nil(got.CategoryID)
	s.Nil(got.Category)
}

func (s *RepositorySuite) TestTitleFilters() {
	film := &models.Category{Name: "Film", Slug: "film"}
	s.Require().NoError(s.categories.Create(s.ctx, film))
	drama := &models.Genre{Name: "Drama", Slug: "drama"}
	s.Require().NoError(s.genres.Create(s.ctx, drama))

	s.newTitle("The Sacrifice", &film.ID, drama.ID)
	s.newTitle("Sacrifice II", nil)
	s.newTitle("Ivan's Childhood", &film.ID)

	list, total, err := s.titles.List(s.ctx, TitleFilter{Name: "sacri"}, 1, 10)
	s.Require().NoError(err)
	s.EqualValues(2, total)
	s.Len(list, 2)

	list, _, err = s.titles.List(s.ctx, TitleFilter{Genre: "drama"}, 1, 10)
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal("The Sacrifice", list[0].Name)
	s.Require().Len(list[0].Genres, 1)

	_, total, err = s.titles.List(s.ctx, TitleFilter{Category: "film"}, 1, 10)
	s.Require().NoError(err)
	s.EqualValues(2, total)
}

func (s *RepositorySuite) TestCommentsNewestFirst() {
	alice := s.newUser("alice")
	title := s.newTitle("Solaris", nil)
	review := &models.Review{TitleID: title.ID, Score: 5, Authored: models.Authored{AuthorID: alice.ID, Text: "r"}}
	s.Require().NoError(s.reviews.Create(s.ctx, review))

	older := &models.Comment{ReviewID: review.ID, Authored: models.Authored{AuthorID: alice.ID, Text: "old", PubDate: time.Now().Add(-time.Hour)}}
	newer := &models.Comment{ReviewID: review.ID, Authored: models.Authored{AuthorID: alice.ID, Text: "new", PubDate: time.Now()}}
	s.Require().NoError(s.comments.Create(s.ctx, older))
	s.Require().NoError(s.comments.Create(s.ctx, newer))

	list, total, err := s.comments.ListByReview(s.ctx, review.ID, 1, 10)
	s.Require().NoError(err)
	s.EqualValues(2, total)
	s.Equal("new", list[0].Text)
	s.Equal("alice", list[0].Author.Username)
}
