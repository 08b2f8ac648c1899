package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"mkowalczyk/olxwatch/pkg/errors"
)

const defaultAPIBase = "https://api.telegram.org"

// Update is one inbound Telegram update
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message"`
}

// Message is the message part of an update
type Message struct {
	Chat Chat   `json:"chat"`
	Text string `json:"text"`
}

// Chat identifies the conversation a message belongs to
type Chat struct {
	ID int64 `json:"id"`
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description"`
	Result      json.RawMessage `json:"result"`
}

// TelegramClient talks to the Telegram Bot API over plain HTTPS. Outbound
// sends are throttled to stay under the Bot API flood limits.
type TelegramClient struct {
	token   string
	apiBase string
	client  *http.Client
	limiter *rate.Limiter
}

// NewTelegramClient creates a client for the given bot token
func NewTelegramClient(token string) *TelegramClient {
	return &TelegramClient{
		token:   token,
		apiBase: defaultAPIBase,
		client: &http.Client{
			// Long polls ask for up to 30s; leave headroom
			Timeout: 40 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Every(50*time.Millisecond), 1),
	}
}

// NewTelegramClientWithBase creates a client against a custom API base URL,
// used by tests to point at a local server.
func NewTelegramClientWithBase(token, apiBase string) *TelegramClient {
	c := NewTelegramClient(token)
	c.apiBase = strings.TrimRight(apiBase, "/")
	return c
}

func (c *TelegramClient) call(ctx context.Context, method string, params url.Values) (json.RawMessage, error) {
	endpoint := fmt.Sprintf("%s/bot%s/%s", c.apiBase, c.token, method)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(params.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("telegram %s: %w", method, err)
	}
	defer resp.Body.Close()

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("telegram %s: failed to decode response: %w", method, err)
	}
	if !body.OK {
		return nil, fmt.Errorf("telegram %s: %s", method, body.Description)
	}
	return body.Result, nil
}

// SendMessage delivers text to a chat
func (c *TelegramClient) SendMessage(ctx context.Context, chatID int64, text string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	params := url.Values{}
	params.Set("chat_id", strconv.FormatInt(chatID, 10))
	params.Set("text", text)

	if _, err := c.call(ctx, "sendMessage", params); err != nil {
		return errors.NewDelivery(strconv.FormatInt(chatID, 10), "failed to send message", err)
	}
	return nil
}

// GetUpdates long-polls for inbound updates after offset
func (c *TelegramClient) GetUpdates(ctx context.Context, offset int64, timeoutSeconds int) ([]Update, error) {
	params := url.Values{}
	params.Set("offset", strconv.FormatInt(offset, 10))
	params.Set("timeout", strconv.Itoa(timeoutSeconds))

	result, err := c.call(ctx, "getUpdates", params)
	if err != nil {
		return nil, err
	}

	var updates []Update
	if err := json.Unmarshal(result, &updates); err != nil {
		return nil, fmt.Errorf("telegram getUpdates: failed to decode updates: %w", err)
	}
	return updates, nil
}

// GetMe verifies the token against the API and returns the bot username
func (c *TelegramClient) GetMe(ctx context.Context) (string, error) {
	result, err := c.call(ctx, "getMe", url.Values{})
	if err != nil {
		return "", err
	}

	var me struct {
		Username string `json:"username"`
	}
	if err := json.Unmarshal(result, &me); err != nil {
		return "", fmt.Errorf("telegram getMe: failed to decode response: %w", err)
	}
	return me.Username, nil
}
