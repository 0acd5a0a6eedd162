package telegram

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Button is a single inline link button.
type Button struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

// ButtonLayout is an ordered inline keyboard: rows of link buttons. It is
// built once from CLI input and attached read-only to every outgoing request.
type ButtonLayout struct {
	Rows [][]Button
}

// MarshalJSON renders the Bot API reply_markup shape:
// {"inline_keyboard": [[{"text": ..., "url": ...}]]}.
func (l *ButtonLayout) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		InlineKeyboard [][]Button `json:"inline_keyboard"`
	}{InlineKeyboard: l.Rows})
}

// Encode returns the serialized reply_markup value for form fields.
func (l *ButtonLayout) Encode() (string, error) {
	data, err := json.Marshal(l)
	if err != nil {
		return "", fmt.Errorf("telegram: encode reply markup: %w", err)
	}
	return string(data), nil
}

// ParseButtonLayout builds a layout from repeated --button values plus the
// deprecated flat --button-text/--button-url pair. Each spec is
// "Label|https://..." and becomes its own row; the legacy pair, when present,
// is appended as a final one-button row. Returns nil when no buttons were
// requested.
func ParseButtonLayout(specs []string, legacyText, legacyURL string) (*ButtonLayout, error) {
	layout := &ButtonLayout{}

	for _, spec := range specs {
		label, url, ok := strings.Cut(spec, "|")
		label = strings.TrimSpace(label)
		url = strings.TrimSpace(url)
		if !ok || label == "" || url == "" {
			return nil, fmt.Errorf("telegram: invalid button spec %q (want \"Label|URL\")", spec)
		}
		layout.Rows = append(layout.Rows, []Button{{Text: label, URL: url}})
	}

	switch {
	case legacyText != "" && legacyURL != "":
		layout.Rows = append(layout.Rows, []Button{{Text: legacyText, URL: legacyURL}})
	case legacyText != "" || legacyURL != "":
		return nil, errors.New("telegram: both button text and button URL must be provided")
	}

	if len(layout.Rows) == 0 {
		return nil, nil
	}
	return layout, nil
}
