package notifications

import (
	"context"
	"testing"

	"campus/internal/store"

	"github.com/9ssi7/exponent"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPushTokens struct {
	tokens []string
}

func (s *stubPushTokens) AddOrUpdatePushToken(ctx context.Context, userID int64, token string, deviceInfo []byte) error {
	return nil
}
func (s *stubPushTokens) RemovePushToken(ctx context.Context, userID int64, token string) error {
	return nil
}
func (s *stubPushTokens) GetTokensForUser(ctx context.Context, userID int64) ([]string, error) {
	return s.tokens, nil
}
func (s *stubPushTokens) RemoveTokensByTokenList(ctx context.Context, tokens []string) error {
	return nil
}

type recordingSender struct {
	published [][]*exponent.Message
}

func (s *recordingSender) Publish(ctx context.Context, msgs []*exponent.Message) ([]*exponent.MessageResponse, error) {
	s.published = append(s.published, msgs)
	return nil, nil
}

func (s *recordingSender) PublishSingle(ctx context.Context, msg *exponent.Message) ([]*exponent.MessageResponse, error) {
	s.published = append(s.published, []*exponent.Message{msg})
	return nil, nil
}

func TestSendApplicationNotificationNoDevices(t *testing.T) {
	sender := &recordingSender{}
	storage := store.Storage{PushTokens: &stubPushTokens{}}

	err := SendApplicationNotification(context.Background(), sender, storage, 42, ApplicationAccepted, "APP-X7K2M9Q4")

	assert.NoError(t, err)
	assert.Empty(t, sender.published)
}

func TestSendApplicationNotificationFanOut(t *testing.T) {
	sender := &recordingSender{}
	storage := store.Storage{PushTokens: &stubPushTokens{
		tokens: []string{"ExponentPushToken[aaa]", "ExponentPushToken[bbb]"},
	}}

	err := SendApplicationNotification(context.Background(), sender, storage, 42, ApplicationAccepted, "APP-X7K2M9Q4")

	require.NoError(t, err)
	require.Len(t, sender.published, 1)
	require.Len(t, sender.published[0], 2)

	msg := sender.published[0][0]
	assert.Equal(t, "Congratulations!", msg.Title)
	assert.Equal(t, "APP-X7K2M9Q4", msg.Data["referenceCode"])
	assert.Equal(t, string(ApplicationAccepted), msg.Data["event"])
}
