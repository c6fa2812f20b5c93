package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/suite"
	"github.com/vadimbarashkov/ziplink/internal/entity"
)

const testLinkID = "7b0c9f3e-3f3c-4c61-9d0e-2a4f5c2b8e11"

var linkColumns = []string{
	"id", "title", "url", "slug", "description", "is_active", "clicks",
	"is_custom", "user_id", "favicon", "expires_at", "created_at", "updated_at",
}

func ptr[T any](v T) *T {
	return &v
}

func linkRow(rows *sqlmock.Rows, slug, url string, userID *string, clicks int64) *sqlmock.Rows {
	return rows.AddRow(testLinkID, "Example", url, slug, nil, true, clicks, false, userID, nil, nil, time.Time{}, time.Time{})
}

type LinkRepositoryTestSuite struct {
	suite.Suite
	errUnknown      error
	errAffectedRows error
	mock            sqlmock.Sqlmock
	repo            *LinkRepository
}

func (suite *LinkRepositoryTestSuite) SetupSuite() {
	suite.errUnknown = errors.New("unknown error")
	suite.errAffectedRows = errors.New("affected rows error")
}

func (suite *LinkRepositoryTestSuite) SetupSubTest() {
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		suite.T().Fatalf("Failed to create mock database: %v", err)
	}
	suite.T().Cleanup(func() {
		mockDB.Close()
	})

	suite.mock = mock
	suite.repo = NewLinkRepository(sqlx.NewDb(mockDB, "sqlmock"))
}

func (suite *LinkRepositoryTestSuite) TearDownSubTest() {
	suite.NoError(suite.mock.ExpectationsWereMet())
}

func (suite *LinkRepositoryTestSuite) TestSave() {
	expiresAt := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)
	link := &entity.Link{
		Title:     "Example",
		URL:       "https://example.com",
		Slug:      "example",
		ExpiresAt: &expiresAt,
	}

	suite.Run("slug exists", func() {
		suite.mock.ExpectQuery(`INSERT INTO links`).
			WithArgs(sqlmock.AnyArg(), "Example", "https://example.com", "example", nil, false, nil, nil, expiresAt).
			WillReturnError(&pgconn.PgError{Code: "23505"})

		saved, err := suite.repo.Save(context.Background(), link)

		suite.Error(err)
		suite.ErrorIs(err, entity.ErrSlugExists)
		suite.Nil(saved)
	})

	suite.Run("unknown error", func() {
		suite.mock.ExpectQuery(`INSERT INTO links`).
			WillReturnError(suite.errUnknown)

		saved, err := suite.repo.Save(context.Background(), link)

		suite.Error(err)
		suite.ErrorIs(err, suite.errUnknown)
		suite.Nil(saved)
	})

	suite.Run("success", func() {
		rows := linkRow(sqlmock.NewRows(linkColumns), "example", "https://example.com", nil, 0)

		suite.mock.ExpectQuery(`INSERT INTO links`).
			WithArgs(sqlmock.AnyArg(), "Example", "https://example.com", "example", nil, false, nil, nil, expiresAt).
			WillReturnRows(rows)

		saved, err := suite.repo.Save(context.Background(), link)

		suite.NoError(err)
		suite.NotNil(saved)
		suite.Equal(testLinkID, saved.ID)
		suite.Equal("example", saved.Slug)
		suite.True(saved.IsGuest())
		suite.Zero(saved.Clicks)
	})
}

func (suite *LinkRepositoryTestSuite) TestRetrieveByID() {
	suite.Run("malformed id", func() {
		link, err := suite.repo.RetrieveByID(context.Background(), "not-a-uuid")

		suite.ErrorIs(err, entity.ErrLinkNotFound)
		suite.Nil(link)
	})

	suite.Run("link not found", func() {
		suite.mock.ExpectQuery(`SELECT (.+) FROM links WHERE id`).
			WithArgs(testLinkID).
			WillReturnError(sql.ErrNoRows)

		link, err := suite.repo.RetrieveByID(context.Background(), testLinkID)

		suite.ErrorIs(err, entity.ErrLinkNotFound)
		suite.Nil(link)
	})

	suite.Run("unknown error", func() {
		suite.mock.ExpectQuery(`SELECT (.+) FROM links WHERE id`).
			WithArgs(testLinkID).
			WillReturnError(suite.errUnknown)

		link, err := suite.repo.RetrieveByID(context.Background(), testLinkID)

		suite.ErrorIs(err, suite.errUnknown)
		suite.Nil(link)
	})

	suite.Run("success", func() {
		rows := linkRow(sqlmock.NewRows(linkColumns), "example", "https://example.com", ptr("user-1"), 3)

		suite.mock.ExpectQuery(`SELECT (.+) FROM links WHERE id`).
			WithArgs(testLinkID).
			WillReturnRows(rows)

		link, err := suite.repo.RetrieveByID(context.Background(), testLinkID)

		suite.NoError(err)
		suite.True(link.OwnedBy("user-1"))
		suite.EqualValues(3, link.Clicks)
	})
}

func (suite *LinkRepositoryTestSuite) TestRetrieveActiveBySlug() {
	suite.Run("link not found", func() {
		suite.mock.ExpectQuery(`SELECT (.+) FROM links WHERE slug = \$1 AND is_active`).
			WithArgs("abc").
			WillReturnError(sql.ErrNoRows)

		link, err := suite.repo.RetrieveActiveBySlug(context.Background(), "abc")

		suite.ErrorIs(err, entity.ErrLinkNotFound)
		suite.Nil(link)
	})

	suite.Run("success", func() {
		rows := linkRow(sqlmock.NewRows(linkColumns), "abc", "https://example.com", nil, 0)

		suite.mock.ExpectQuery(`SELECT (.+) FROM links WHERE slug = \$1 AND is_active`).
			WithArgs("abc").
			WillReturnRows(rows)

		link, err := suite.repo.RetrieveActiveBySlug(context.Background(), "abc")

		suite.NoError(err)
		suite.Equal("https://example.com", link.URL)
	})
}

func (suite *LinkRepositoryTestSuite) TestListByOwner() {
	suite.Run("unknown error", func() {
		suite.mock.ExpectQuery(`SELECT (.+) FROM links WHERE user_id = \$1`).
			WithArgs("user-1").
			WillReturnError(suite.errUnknown)

		links, err := suite.repo.ListByOwner(context.Background(), "user-1")

		suite.ErrorIs(err, suite.errUnknown)
		suite.Nil(links)
	})

	suite.Run("success", func() {
		rows := sqlmock.NewRows(linkColumns)
		linkRow(rows, "a", "https://a.example.com", ptr("user-1"), 1)
		linkRow(rows, "b", "https://b.example.com", ptr("user-1"), 2)

		suite.mock.ExpectQuery(`SELECT (.+) FROM links WHERE user_id = \$1`).
			WithArgs("user-1").
			WillReturnRows(rows)

		links, err := suite.repo.ListByOwner(context.Background(), "user-1")

		suite.NoError(err)
		suite.Len(links, 2)
		suite.Equal("a", links[0].Slug)
		suite.Equal("b", links[1].Slug)
	})
}

func (suite *LinkRepositoryTestSuite) TestListGuest() {
	suite.Run("empty", func() {
		suite.mock.ExpectQuery(`SELECT (.+) FROM links WHERE user_id IS NULL`).
			WillReturnRows(sqlmock.NewRows(linkColumns))

		links, err := suite.repo.ListGuest(context.Background())

		suite.NoError(err)
		suite.NotNil(links)
		suite.Empty(links)
	})
}

func (suite *LinkRepositoryTestSuite) TestOwnerStats() {
	suite.Run("unknown error", func() {
		suite.mock.ExpectQuery(`SELECT COUNT\(\*\) AS total_links`).
			WithArgs("user-1").
			WillReturnError(suite.errUnknown)

		stats, err := suite.repo.OwnerStats(context.Background(), "user-1")

		suite.ErrorIs(err, suite.errUnknown)
		suite.Nil(stats)
	})

	suite.Run("success", func() {
		suite.mock.ExpectQuery(`SELECT COUNT\(\*\) AS total_links`).
			WithArgs("user-1").
			WillReturnRows(sqlmock.NewRows([]string{"total_links", "total_clicks"}).AddRow(4, 17))

		stats, err := suite.repo.OwnerStats(context.Background(), "user-1")

		suite.NoError(err)
		suite.Equal(&entity.OwnerStats{TotalLinks: 4, TotalClicks: 17}, stats)
	})
}

func (suite *LinkRepositoryTestSuite) TestUpdate() {
	upd := entity.LinkUpdate{
		URL:      ptr("https://new-example.com"),
		IsActive: ptr(false),
	}

	suite.Run("link not found", func() {
		suite.mock.ExpectQuery(`UPDATE links SET`).
			WithArgs(testLinkID, nil, "https://new-example.com", nil, false, nil).
			WillReturnError(sql.ErrNoRows)

		link, err := suite.repo.Update(context.Background(), testLinkID, upd)

		suite.ErrorIs(err, entity.ErrLinkNotFound)
		suite.Nil(link)
	})

	suite.Run("unknown error", func() {
		suite.mock.ExpectQuery(`UPDATE links SET`).
			WithArgs(testLinkID, nil, "https://new-example.com", nil, false, nil).
			WillReturnError(suite.errUnknown)

		link, err := suite.repo.Update(context.Background(), testLinkID, upd)

		suite.ErrorIs(err, suite.errUnknown)
		suite.Nil(link)
	})

	suite.Run("success", func() {
		rows := linkRow(sqlmock.NewRows(linkColumns), "abc", "https://new-example.com", ptr("user-1"), 0)

		suite.mock.ExpectQuery(`UPDATE links SET`).
			WithArgs(testLinkID, nil, "https://new-example.com", nil, false, nil).
			WillReturnRows(rows)

		link, err := suite.repo.Update(context.Background(), testLinkID, upd)

		suite.NoError(err)
		suite.Equal("https://new-example.com", link.URL)
	})
}

func (suite *LinkRepositoryTestSuite) TestRemove() {
	suite.Run("unknown error", func() {
		suite.mock.ExpectExec(`DELETE FROM links`).
			WithArgs(testLinkID).
			WillReturnError(suite.errUnknown)

		err := suite.repo.Remove(context.Background(), testLinkID)

		suite.ErrorIs(err, suite.errUnknown)
	})

	suite.Run("rows affected error", func() {
		suite.mock.ExpectExec(`DELETE FROM links`).
			WithArgs(testLinkID).
			WillReturnResult(sqlmock.NewErrorResult(suite.errAffectedRows))

		err := suite.repo.Remove(context.Background(), testLinkID)

		suite.ErrorIs(err, suite.errAffectedRows)
	})

	suite.Run("link not found", func() {
		suite.mock.ExpectExec(`DELETE FROM links`).
			WithArgs(testLinkID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := suite.repo.Remove(context.Background(), testLinkID)

		suite.ErrorIs(err, entity.ErrLinkNotFound)
	})

	suite.Run("success", func() {
		suite.mock.ExpectExec(`DELETE FROM links`).
			WithArgs(testLinkID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := suite.repo.Remove(context.Background(), testLinkID)

		suite.NoError(err)
	})
}

func TestLinkRepository(t *testing.T) {
	suite.Run(t, new(LinkRepositoryTestSuite))
}
