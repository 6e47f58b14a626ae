package store

import (
	"context"
	"errors"
	"time"

	"campus/internal/params"
	"campus/internal/scoring"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound          = errors.New("resource not found")
	ErrConflict          = errors.New("resource already exists")
	QueryTimeoutDuration = time.Second * 5
)

type Storage struct {
	Users interface {
		Create(context.Context, pgx.Tx, *User) error
		CreateAndInvite(ctx context.Context, user *User, token string, invitationExp time.Duration) error
		Activate(ctx context.Context, token string) error
		GetByID(context.Context, int64) (*User, error)
		GetByEmail(context.Context, string) (*User, error)
		UpdateUser(ctx context.Context, userID int64, updates map[string]interface{}) error
		SetProfile(ctx context.Context, url string, userID int64) error
		GetProfileUrl(ctx context.Context, userID int64) (string, error)
		SaveRefreshToken(ctx context.Context, userID int64, refreshToken string) error
		GetRefreshToken(ctx context.Context, userID int64) (string, error)
		DeleteRefreshToken(ctx context.Context, userID int64) error
		Delete(ctx context.Context, userID int64) error
	}
	Colleges interface {
		Create(context.Context, *College) error
		GetByID(context.Context, int64) (*College, error)
		List(context.Context, CollegeFilter) ([]College, int, error)
		Update(ctx context.Context, collegeID int64, updates map[string]interface{}) error
		Delete(ctx context.Context, collegeID int64) error
		Exists(ctx context.Context, collegeID int64) (bool, error)
		AddPhotoURL(ctx context.Context, collegeID int64, photoURL string) error
		RemovePhotoURL(ctx context.Context, collegeID int64, photoURL string) error
		Save(ctx context.Context, userID, collegeID int64) error
		Unsave(ctx context.Context, userID, collegeID int64) error
		GetSavedByUser(ctx context.Context, userID int64) ([]College, error)
	}
	Reviews interface {
		Create(context.Context, *Review) error
		GetByID(context.Context, int64) (*Review, error)
		Update(context.Context, *Review) error
		SoftDelete(ctx context.Context, reviewID int64) error
		Restore(ctx context.Context, reviewID int64) error
		ListActiveByCollege(ctx context.Context, collegeID int64, p params.Pagination) ([]Review, int, error)
		AddHelpfulVote(ctx context.Context, reviewID, userID int64) (bool, error)
		RemoveHelpfulVote(ctx context.Context, reviewID, userID int64) (bool, error)
		AddReport(ctx context.Context, reviewID, userID int64) (bool, error)
		ListReported(ctx context.Context, minReports int, p params.Pagination) ([]Review, int, error)
	}
	// Ratings is the single entry point for refreshing a college's
	// denormalized rating summary. Every code path that changes a college's
	// review set goes through Recompute; nothing else writes the summary
	// columns.
	Ratings interface {
		Recompute(ctx context.Context, collegeID int64) (*scoring.RatingSummary, error)
	}
	Applications interface {
		Create(context.Context, *Application) error
		GetByID(context.Context, int64) (*Application, error)
		ListByUser(ctx context.Context, userID int64, p params.Pagination) ([]Application, int, error)
		ListByCollege(ctx context.Context, collegeID int64, status string, p params.Pagination) ([]Application, int, error)
		Withdraw(ctx context.Context, applicationID, userID int64) error
		UpdateStatus(ctx context.Context, applicationID int64, status, note string) (*Application, error)
		AddDocumentURL(ctx context.Context, applicationID, userID int64, url string) error
	}
	PushTokens interface {
		AddOrUpdatePushToken(ctx context.Context, userID int64, token string, deviceInfo []byte) error
		RemovePushToken(ctx context.Context, userID int64, token string) error
		GetTokensForUser(ctx context.Context, userID int64) ([]string, error)
		RemoveTokensByTokenList(ctx context.Context, tokens []string) error
	}
	Dashboard interface {
		Overview(ctx context.Context) (*Overview, error)
	}
}

func NewStorage(db *pgxpool.Pool) Storage {
	return Storage{
		Users:        &UsersStore{db},
		Colleges:     &CollegesStore{db},
		Reviews:      &ReviewsStore{db},
		Ratings:      &RatingsStore{db},
		Applications: &ApplicationsStore{db},
		PushTokens:   &PushTokensStore{db},
		Dashboard:    &DashboardStore{db},
	}
}

func withTx(db *pgxpool.Pool, ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	return tx.Commit(ctx)
}
