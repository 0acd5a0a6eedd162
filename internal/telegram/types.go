package telegram

import (
	"fmt"
	"strings"
)

// APIResponse is the generic envelope returned by the Telegram Bot API.
type APIResponse[T any] struct {
	OK          bool   `json:"ok"`
	Result      T      `json:"result"`
	Description string `json:"description,omitempty"`
	ErrorCode   int    `json:"error_code,omitempty"`
}

// Chat is the subset of the getChat result used for display names.
type Chat struct {
	ID        int64  `json:"id"`
	Type      string `json:"type"`
	Title     string `json:"title,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// DisplayName resolves a human-readable name for the chat: the title for
// groups and channels, otherwise first and last name joined. Empty results
// fall back to "Unknown".
func (c Chat) DisplayName() string {
	if c.Title != "" {
		return c.Title
	}
	name := c.FirstName
	if last := strings.TrimSpace(c.LastName); last != "" {
		name += " " + last
	}
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	return unknownChatName
}

// Message is the subset of a sent message the sender reads back.
type Message struct {
	MessageID int  `json:"message_id"`
	Chat      Chat `json:"chat"`
}

// APIError is a Bot API-level failure: HTTP exchange succeeded but the API
// rejected the call.
type APIError struct {
	Status      int    // HTTP status code
	Code        int    `json:"error_code"`
	Description string `json:"description"`
	Body        string `json:"-"` // truncated response body, for debug logging only
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("telegram: API returned status %d: %s", e.Status, e.Description)
	}
	return fmt.Sprintf("telegram: API returned status %d", e.Status)
}

// inputMedia is one descriptor in a sendMediaGroup media array. Media and
// Thumbnail reference binary parts in the same request via attach:// URLs.
type inputMedia struct {
	Type       string `json:"type"`
	Media      string `json:"media"`
	Caption    string `json:"caption,omitempty"`
	HasSpoiler bool   `json:"has_spoiler,omitempty"`
	Width      int    `json:"width,omitempty"`
	Height     int    `json:"height,omitempty"`
	Duration   int    `json:"duration,omitempty"`
	Thumbnail  string `json:"thumbnail,omitempty"`
}
