package push

import (
	"context"
	"errors"
)

// Router splits tokens between the Expo and FCM senders by token format.
// Without an Expo sender every token goes to FCM.
type Router struct {
	fcm  Sender
	expo Sender
}

func NewRouter(fcm, expo Sender) *Router {
	return &Router{fcm: fcm, expo: expo}
}

func (r *Router) SendMulticast(ctx context.Context, msg Message) (Result, error) {
	var fcmTokens, expoTokens []string
	for _, token := range msg.Tokens {
		if r.expo != nil && IsExpoToken(token) {
			expoTokens = append(expoTokens, token)
			continue
		}
		fcmTokens = append(fcmTokens, token)
	}

	var (
		result Result
		errs   []error
	)

	if len(fcmTokens) > 0 {
		fcmMsg := msg
		fcmMsg.Tokens = fcmTokens
		res, err := r.fcm.SendMulticast(ctx, fcmMsg)
		result = result.add(res)
		errs = append(errs, err)
	}

	if len(expoTokens) > 0 {
		expoMsg := msg
		expoMsg.Tokens = expoTokens
		res, err := r.expo.SendMulticast(ctx, expoMsg)
		result = result.add(res)
		errs = append(errs, err)
	}

	return result, errors.Join(errs...)
}
