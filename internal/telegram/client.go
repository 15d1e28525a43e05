package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client is a minimal Bot API client covering the methods the bot uses.
type Client struct {
	token   string
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the given bot token. baseURL is
// overridable for tests; empty selects the public API.
func NewClient(token, baseURL string) *Client {
	if baseURL == "" {
		baseURL = "https://api.telegram.org"
	}
	return &Client{
		token:   token,
		baseURL: baseURL,
		// Long polls block server-side for up to 50s; leave headroom.
		http: &http.Client{Timeout: 65 * time.Second},
	}
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description,omitempty"`
	Result      json.RawMessage `json:"result,omitempty"`
}

func (c *Client) call(ctx context.Context, method string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s: %w", method, err)
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	var api apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&api); err != nil {
		return fmt.Errorf("decode %s response: %w", method, err)
	}
	if !api.OK {
		return fmt.Errorf("telegram %s: %s", method, api.Description)
	}
	if out != nil && api.Result != nil {
		if err := json.Unmarshal(api.Result, out); err != nil {
			return fmt.Errorf("decode %s result: %w", method, err)
		}
	}
	return nil
}

type sendMessageRequest struct {
	ChatID      int64                `json:"chat_id"`
	Text        string               `json:"text"`
	ParseMode   string               `json:"parse_mode,omitempty"`
	ReplyMarkup *ReplyKeyboardMarkup `json:"reply_markup,omitempty"`
}

// Send delivers a text message. parseMode is ModePlain or ModeMarkdownV2;
// MarkdownV2 text must already have reserved characters escaped.
func (c *Client) Send(ctx context.Context, chatID int64, text, parseMode string) error {
	return c.call(ctx, "sendMessage", sendMessageRequest{
		ChatID: chatID, Text: text, ParseMode: parseMode,
	}, nil)
}

// SendKeyboard delivers a plain message with a reply keyboard attached.
func (c *Client) SendKeyboard(ctx context.Context, chatID int64, text string, kb *ReplyKeyboardMarkup) error {
	return c.call(ctx, "sendMessage", sendMessageRequest{
		ChatID: chatID, Text: text, ReplyMarkup: kb,
	}, nil)
}

// GetMe returns the bot's own account, used to build deep links.
func (c *Client) GetMe(ctx context.Context) (User, error) {
	var u User
	err := c.call(ctx, "getMe", struct{}{}, &u)
	return u, err
}

type getUpdatesRequest struct {
	Offset  int64 `json:"offset,omitempty"`
	Timeout int   `json:"timeout,omitempty"`
}

// GetUpdates long-polls for new updates starting at offset.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeoutSec int) ([]Update, error) {
	var out []Update
	err := c.call(ctx, "getUpdates", getUpdatesRequest{Offset: offset, Timeout: timeoutSec}, &out)
	return out, err
}

type setWebhookRequest struct {
	URL string `json:"url"`
}

// SetWebhook switches update delivery to HTTP POSTs at url. An empty
// url removes the webhook (re-enabling getUpdates).
func (c *Client) SetWebhook(ctx context.Context, url string) error {
	return c.call(ctx, "setWebhook", setWebhookRequest{URL: url}, nil)
}

type banChatMemberRequest struct {
	ChatID    int64 `json:"chat_id"`
	UserID    int64 `json:"user_id"`
	UntilDate int64 `json:"until_date,omitempty"`
}

// BanChatMember bans a member until the given time.
func (c *Client) BanChatMember(ctx context.Context, chatID, userID int64, until time.Time) error {
	return c.call(ctx, "banChatMember", banChatMemberRequest{
		ChatID: chatID, UserID: userID, UntilDate: until.Unix(),
	}, nil)
}

type unbanChatMemberRequest struct {
	ChatID int64 `json:"chat_id"`
	UserID int64 `json:"user_id"`
}

// UnbanChatMember lifts a ban. Telegram also removes a present member
// from the chat, which is how the bot implements /kick.
func (c *Client) UnbanChatMember(ctx context.Context, chatID, userID int64) error {
	return c.call(ctx, "unbanChatMember", unbanChatMemberRequest{ChatID: chatID, UserID: userID}, nil)
}

type restrictChatMemberRequest struct {
	ChatID      int64           `json:"chat_id"`
	UserID      int64           `json:"user_id"`
	Permissions ChatPermissions `json:"permissions"`
	UntilDate   int64           `json:"until_date,omitempty"`
}

// RestrictChatMember revokes all send permissions until the given time.
func (c *Client) RestrictChatMember(ctx context.Context, chatID, userID int64, until time.Time) error {
	return c.call(ctx, "restrictChatMember", restrictChatMemberRequest{
		ChatID: chatID, UserID: userID, Permissions: ChatPermissions{}, UntilDate: until.Unix(),
	}, nil)
}
