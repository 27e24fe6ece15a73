package push

import (
	"context"
	"fmt"

	expo "github.com/oliveroneill/exponent-server-sdk-golang/sdk"
	log "github.com/sirupsen/logrus"
)

// expoMaxMessages is the most messages the Expo push API accepts per request.
const expoMaxMessages = 100

type ExpoPublisher interface {
	PublishMultiple(messages []expo.PushMessage) ([]expo.PushResponse, error)
}

// ExpoSender publishes one message per token so that every ticket maps back to a token.
type ExpoSender struct {
	client ExpoPublisher
}

func NewExpoSender(client ExpoPublisher) *ExpoSender {
	return &ExpoSender{client: client}
}

// IsExpoToken reports whether token is an Expo push token rather than an FCM registration token.
func IsExpoToken(token string) bool {
	_, err := expo.NewExponentPushToken(token)
	return err == nil
}

func NewExpoClient(host string) *expo.PushClient {
	if host == "" {
		return expo.NewPushClient(nil)
	}
	return expo.NewPushClient(&expo.ClientConfig{Host: host})
}

func (s *ExpoSender) SendMulticast(ctx context.Context, msg Message) (Result, error) {
	var result Result

	messages := []expo.PushMessage{}
	for _, raw := range msg.Tokens {
		token, err := expo.NewExponentPushToken(raw)
		if err != nil {
			log.WithField("token", redact(raw)).Error("invalid expo token")
			result.FailureCount++
			continue
		}

		messages = append(messages, expo.PushMessage{
			To:       []expo.ExponentPushToken{token},
			Body:     msg.Body,
			Data:     msg.Data,
			Sound:    "default",
			Title:    msg.Title,
			Priority: expo.HighPriority,
		})
	}

	for start := 0; start < len(messages); start += expoMaxMessages {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		end := start + expoMaxMessages
		if end > len(messages) {
			end = len(messages)
		}

		responses, err := s.client.PublishMultiple(messages[start:end])
		if err != nil {
			return result, fmt.Errorf("expo publish: %w", err)
		}

		for _, response := range responses {
			if err := response.ValidateResponse(); err != nil {
				log.WithField("to", response.PushMessage.To).Warnf("expo delivery failed: %s", err)
				result.FailureCount++
				continue
			}
			result.SuccessCount++
		}
	}

	return result, nil
}
