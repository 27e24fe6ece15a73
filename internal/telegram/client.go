package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

var ErrTelegramAPI = errors.New("telegram api")

// APIResponse is the envelope every Bot API method answers with.
type APIResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result,omitempty"`
	ErrorCode   int             `json:"error_code,omitempty"`
	Description string          `json:"description,omitempty"`
}

type Client struct {
	http *resty.Client
}

func NewClient(apiURL, botToken string) *Client {
	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(apiURL, "/")+"/bot"+botToken).
		SetHeader("Content-Type", "application/json").
		SetTimeout(10 * time.Second)

	return &Client{http: httpClient}
}

// SendMessage posts an HTML-formatted message, optionally with an inline keyboard.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string, markup *InlineKeyboardMarkup) error {
	return c.call(ctx, "sendMessage", sendMessageRequest{
		ChatID:      chatID,
		Text:        text,
		ParseMode:   "HTML",
		ReplyMarkup: markup,
	})
}

func (c *Client) AnswerCallbackQuery(ctx context.Context, callbackQueryID, text string) error {
	return c.call(ctx, "answerCallbackQuery", answerCallbackQueryRequest{
		CallbackQueryID: callbackQueryID,
		Text:            text,
	})
}

// EditMessageText replaces a message's text. The inline keyboard is dropped since none is sent.
func (c *Client) EditMessageText(ctx context.Context, chatID int64, messageID int, text string) error {
	return c.call(ctx, "editMessageText", editMessageTextRequest{
		ChatID:    chatID,
		MessageID: messageID,
		Text:      text,
		ParseMode: "HTML",
	})
}

func (c *Client) call(ctx context.Context, method string, payload interface{}) error {
	var body APIResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(payload).
		SetResult(&body).
		SetError(&body).
		Post("/" + method)
	if err != nil {
		return fmt.Errorf("telegram %s: %w", method, err)
	}

	if resp.IsError() || !body.OK {
		return errors.Join(ErrTelegramAPI, fmt.Errorf("%s (HTTP Status: %d)- %d: %s", method, resp.StatusCode(), body.ErrorCode, body.Description))
	}

	return nil
}
