package push

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/messaging"
	log "github.com/sirupsen/logrus"
)

// fcmMaxTokens is the most tokens FCM accepts in one multicast call.
const fcmMaxTokens = 500

type MulticastClient interface {
	SendEachForMulticast(ctx context.Context, message *messaging.MulticastMessage) (*messaging.BatchResponse, error)
}

type FCMSender struct {
	client MulticastClient
}

func NewFCMSender(client MulticastClient) *FCMSender {
	return &FCMSender{client: client}
}

func (s *FCMSender) SendMulticast(ctx context.Context, msg Message) (Result, error) {
	var result Result

	for _, tokens := range chunk(msg.Tokens, fcmMaxTokens) {
		response, err := s.client.SendEachForMulticast(ctx, &messaging.MulticastMessage{
			Tokens: tokens,
			Notification: &messaging.Notification{
				Title: msg.Title,
				Body:  msg.Body,
			},
			Data: msg.Data,
		})
		if err != nil {
			return result, fmt.Errorf("fcm multicast: %w", err)
		}

		for i, r := range response.Responses {
			if !r.Success && i < len(tokens) {
				log.WithField("token", redact(tokens[i])).Warnf("fcm delivery failed: %v", r.Error)
			}
		}

		result = result.add(Result{SuccessCount: response.SuccessCount, FailureCount: response.FailureCount})
	}

	return result, nil
}

func redact(token string) string {
	if len(token) <= 12 {
		return token
	}
	return token[:12] + "..."
}
