package notifications

import (
	"context"
	"fmt"

	"campus/internal/store"

	"github.com/9ssi7/exponent"
)

type ApplicationEvent string

const (
	ApplicationReceived    ApplicationEvent = "RECEIVED"
	ApplicationUnderReview ApplicationEvent = "UNDER_REVIEW"
	ApplicationAccepted    ApplicationEvent = "ACCEPTED"
	ApplicationRejected    ApplicationEvent = "REJECTED"
)

func SendApplicationNotification(ctx context.Context, push PushSender, storage store.Storage, userID int64, event ApplicationEvent, referenceCode string) error {
	tokens, err := storage.PushTokens.GetTokensForUser(ctx, userID)
	if err != nil {
		return err
	}
	// No registered devices is a normal state, not a failure.
	if len(tokens) == 0 {
		return nil
	}

	var title, body string
	switch event {
	case ApplicationReceived:
		title = "Application Received"
		body = fmt.Sprintf("We received your application %s", referenceCode)
	case ApplicationUnderReview:
		title = "Application Under Review"
		body = fmt.Sprintf("Your application %s is now being reviewed", referenceCode)
	case ApplicationAccepted:
		title = "Congratulations!"
		body = fmt.Sprintf("Your application %s has been accepted! 🎉", referenceCode)
	case ApplicationRejected:
		title = "Application Decision"
		body = fmt.Sprintf("There is a decision on your application %s", referenceCode)
	default:
		title = "Application Update"
		body = fmt.Sprintf("Your application %s has an update", referenceCode)
	}

	msgs := make([]*exponent.Message, 0, len(tokens))
	for _, t := range tokens {
		token := exponent.Token(t)
		msg := &exponent.Message{
			To:    []*exponent.Token{&token},
			Title: title,
			Body:  body,
			// The data field is what the app receives when the notification
			// is tapped; it drives deep linking on the client.
			Data: map[string]string{
				"type":          "application",
				"event":         string(event),
				"referenceCode": referenceCode,
				"screen":        "my-applications-screen",
			},
		}
		msgs = append(msgs, msg)
	}

	_, err = push.Publish(ctx, msgs)
	if err != nil {
		return err
	}
	return nil
}
