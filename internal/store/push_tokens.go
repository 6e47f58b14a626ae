package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PushTokensStore struct {
	db *pgxpool.Pool
}

// AddOrUpdatePushToken upserts on the token value so a device that changes
// hands is reassigned to the new account instead of duplicated.
func (s *PushTokensStore) AddOrUpdatePushToken(ctx context.Context, userID int64, token string, deviceInfo []byte) error {
	query := `
		INSERT INTO push_tokens (user_id, token, device_info, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (token)
		DO UPDATE SET user_id = EXCLUDED.user_id, device_info = EXCLUDED.device_info, updated_at = NOW()
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	_, err := s.db.Exec(ctx, query, userID, token, deviceInfo)
	if err != nil {
		return fmt.Errorf("failed to save push token: %w", err)
	}
	return nil
}

func (s *PushTokensStore) RemovePushToken(ctx context.Context, userID int64, token string) error {
	query := `DELETE FROM push_tokens WHERE user_id = $1 AND token = $2`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	_, err := s.db.Exec(ctx, query, userID, token)
	return err
}

func (s *PushTokensStore) GetTokensForUser(ctx context.Context, userID int64) ([]string, error) {
	query := `SELECT token FROM push_tokens WHERE user_id = $1`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tokens := []string{}
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
	}
	return tokens, rows.Err()
}

// RemoveTokensByTokenList drops tokens Expo reported as dead.
func (s *PushTokensStore) RemoveTokensByTokenList(ctx context.Context, tokens []string) error {
	if len(tokens) == 0 {
		return nil
	}

	query := `DELETE FROM push_tokens WHERE token = ANY($1)`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	_, err := s.db.Exec(ctx, query, tokens)
	return err
}
