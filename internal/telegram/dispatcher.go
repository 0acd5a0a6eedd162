package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"mime/multipart"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sendtg/sendtg/internal/media"
)

const unknownChatName = "Unknown"

// checkActions is the action vocabulary the check command samples from.
var checkActions = []string{
	"typing",
	"upload_photo",
	"record_video",
	"upload_video",
	"record_voice",
	"upload_voice",
	"upload_document",
	"choose_sticker",
	"find_location",
	"record_video_note",
	"upload_video_note",
}

// Dispatcher walks a send plan against one target chat. It owns the HTTP
// client and the chat-name cache for the duration of a run; it is not safe
// for concurrent use and is not meant to outlive one invocation.
type Dispatcher struct {
	client   *Client
	chatID   string
	threadID int64
	chatName string
	logger   *slog.Logger
	progress media.Progress
	rand     *rand.Rand
}

// NewDispatcher wires a dispatcher for one run. progress may be nil, in which
// case upload events are discarded. rnd feeds the check-mode action choice;
// tests pin it to a fixed seed.
func NewDispatcher(client *Client, chatID string, threadID int64, logger *slog.Logger, progress media.Progress, rnd *rand.Rand) *Dispatcher {
	if progress == nil {
		progress = media.NopProgress{}
	}
	return &Dispatcher{
		client:   client,
		chatID:   chatID,
		threadID: threadID,
		chatName: unknownChatName,
		logger:   logger,
		progress: progress,
		rand:     rnd,
	}
}

// StepOutcome records how one plan step went. A nil Err means the step's
// attachments were delivered.
type StepOutcome struct {
	Step media.Step
	Err  error
}

// Dispatch executes the plan in order. A failed step is reported and recorded
// but never stops the remaining steps; the returned manifest has one entry
// per step, in plan order.
func (d *Dispatcher) Dispatch(ctx context.Context, plan []media.Step, markup *ButtonLayout, fallbackCaption string, silent bool) []StepOutcome {
	markupJSON, err := encodeMarkup(markup)
	if err != nil {
		// Malformed markup is an input error; it was validated at parse
		// time, so this is effectively unreachable.
		d.logger.Error("failed to encode reply markup", "error", err)
		markupJSON = ""
	}

	outcomes := make([]StepOutcome, 0, len(plan))
	for _, step := range plan {
		d.announce(ctx, step.Items[0].Kind.UploadAction())

		var stepErr error
		if step.IsGroup() {
			stepErr = d.sendGroup(ctx, step.Items, markupJSON, silent)
			if stepErr == nil {
				d.logger.Info("media group sent", "chat", d.chatName, "items", len(step.Items))
			} else {
				d.logger.Error("failed to send media group", "error", stepErr)
				d.logDebugBody(stepErr)
			}
		} else {
			item := step.Items[0]
			stepErr = d.sendSingle(ctx, item, fallbackCaption, markupJSON, silent)
			if stepErr == nil {
				d.logger.Info("media file sent", "chat", d.chatName, "file", item.FileName)
			} else {
				d.logger.Error("failed to send media file", "file", item.FileName, "error", stepErr)
				d.logDebugBody(stepErr)
			}
		}
		outcomes = append(outcomes, StepOutcome{Step: step, Err: stepErr})
	}
	return outcomes
}

// SendText delivers a plain text message via sendMessage. Literal "\n"
// sequences in the CLI argument are expanded to real newlines.
func (d *Dispatcher) SendText(ctx context.Context, text string, silent bool, markup *ButtonLayout) error {
	d.announce(ctx, "typing")

	payload := map[string]any{
		"chat_id":              d.chatID,
		"text":                 strings.ReplaceAll(text, `\n`, "\n"),
		"parse_mode":           "HTML",
		"disable_notification": silent,
	}
	if d.threadID != 0 {
		payload["message_thread_id"] = d.threadID
	}
	if markup != nil {
		payload["reply_markup"] = markup
	}

	if _, err := postJSON[Message](ctx, d.client, "sendMessage", payload); err != nil {
		d.logger.Error("failed to send message", "error", err)
		d.logDebugBody(err)
		return err
	}
	d.logger.Info("message sent", "chat", d.chatName, "text", text)
	return nil
}

// Check issues a single random chat action and reports round-trip latency.
func (d *Dispatcher) Check(ctx context.Context) error {
	action := checkActions[d.rand.Intn(len(checkActions))]

	start := time.Now()
	_, err := postJSON[bool](ctx, d.client, "sendChatAction", map[string]any{
		"chat_id": d.chatID,
		"action":  action,
	})
	if err != nil {
		d.logger.Error("failed to send chat action", "error", err)
		d.logDebugBody(err)
		return err
	}
	d.logger.Info("API round trip", "latency", time.Since(start).Round(time.Millisecond))
	return nil
}

// announce shows a transient chat action and refreshes the cached chat name.
// Both calls are best-effort: failures are logged at debug level only.
func (d *Dispatcher) announce(ctx context.Context, action string) {
	values := url.Values{
		"chat_id": {d.chatID},
		"action":  {action},
	}
	if d.threadID != 0 {
		values.Set("message_thread_id", strconv.FormatInt(d.threadID, 10))
	}
	if _, err := postForm[bool](ctx, d.client, "sendChatAction", values); err != nil {
		d.logger.Debug("chat action failed", "action", action, "error", err)
	}

	d.refreshChatName(ctx)
}

// refreshChatName resolves the chat's display name. On failure the previous
// value is retained; an API-level rejection surfaces as "Error: <description>".
func (d *Dispatcher) refreshChatName(ctx context.Context) {
	chat, err := postJSON[Chat](ctx, d.client, "getChat", map[string]any{"chat_id": d.chatID})
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Description != "" {
			d.chatName = "Error: " + apiErr.Description
			return
		}
		d.logger.Debug("failed to get chat name", "error", err)
		return
	}
	d.chatName = chat.DisplayName()
}

// ChatName returns the current cached display name of the target chat.
func (d *Dispatcher) ChatName() string {
	return d.chatName
}

// sendSingle uploads one item via its kind's send method. Metadata fields
// travel as individual form fields and the thumbnail as its own binary part.
func (d *Dispatcher) sendSingle(ctx context.Context, item *media.Item, fallbackCaption, markupJSON string, silent bool) error {
	_, err := postMultipart[Message](ctx, d.client, item.Kind.SendMethod(), func(mw *multipart.Writer) error {
		if err := d.writeCommonFields(mw, silent); err != nil {
			return err
		}
		if err := d.streamFilePart(mw, string(item.Kind), item); err != nil {
			return err
		}
		if item.Kind == media.KindVideo {
			if err := mw.WriteField("supports_streaming", "true"); err != nil {
				return err
			}
		}
		if meta := item.Meta; meta != nil {
			fields := []struct {
				name  string
				value int
			}{
				{"duration", meta.Duration},
				{"width", meta.Width},
				{"height", meta.Height},
			}
			for _, f := range fields {
				if f.value <= 0 {
					continue
				}
				if err := mw.WriteField(f.name, strconv.Itoa(f.value)); err != nil {
					return err
				}
			}
			if meta.Thumbnail != nil {
				if err := writeThumbPart(mw, "thumbnail", meta.Thumbnail); err != nil {
					return err
				}
			}
		}
		caption := item.Caption
		if caption == "" {
			caption = fallbackCaption
		}
		if caption != "" {
			if err := mw.WriteField("caption", caption); err != nil {
				return err
			}
		}
		if item.Spoiler {
			if err := mw.WriteField("has_spoiler", "true"); err != nil {
				return err
			}
		}
		if markupJSON != "" {
			if err := mw.WriteField("reply_markup", markupJSON); err != nil {
				return err
			}
		}
		return nil
	})
	return err
}

// sendGroup uploads 2–10 items in one sendMediaGroup call. Each descriptor in
// the media array references its file part, and its thumbnail part when
// present, by slot name.
func (d *Dispatcher) sendGroup(ctx context.Context, items []*media.Item, markupJSON string, silent bool) error {
	descriptors := make([]inputMedia, 0, len(items))
	for _, item := range items {
		entry := inputMedia{
			Type:       string(item.Kind),
			Media:      "attach://" + item.Slot,
			Caption:    item.Caption,
			HasSpoiler: item.Spoiler,
		}
		if meta := item.Meta; meta != nil {
			entry.Width = meta.Width
			entry.Height = meta.Height
			entry.Duration = meta.Duration
			if meta.Thumbnail != nil {
				entry.Thumbnail = "attach://" + item.ThumbSlot()
			}
		}
		descriptors = append(descriptors, entry)
	}

	mediaJSON, err := json.Marshal(descriptors)
	if err != nil {
		return fmt.Errorf("telegram: encode media descriptors: %w", err)
	}

	_, err = postMultipart[[]Message](ctx, d.client, "sendMediaGroup", func(mw *multipart.Writer) error {
		if err := d.writeCommonFields(mw, silent); err != nil {
			return err
		}
		if err := mw.WriteField("media", string(mediaJSON)); err != nil {
			return err
		}
		if markupJSON != "" {
			if err := mw.WriteField("reply_markup", markupJSON); err != nil {
				return err
			}
		}
		for _, item := range items {
			if err := d.streamFilePart(mw, item.Slot, item); err != nil {
				return err
			}
		}
		for _, item := range items {
			if item.Meta == nil || item.Meta.Thumbnail == nil {
				continue
			}
			if err := writeThumbPart(mw, item.ThumbSlot(), item.Meta.Thumbnail); err != nil {
				return err
			}
		}
		return nil
	})
	return err
}

func (d *Dispatcher) writeCommonFields(mw *multipart.Writer, silent bool) error {
	if err := mw.WriteField("chat_id", d.chatID); err != nil {
		return err
	}
	if d.threadID != 0 {
		if err := mw.WriteField("message_thread_id", strconv.FormatInt(d.threadID, 10)); err != nil {
			return err
		}
	}
	if silent {
		if err := mw.WriteField("disable_notification", "true"); err != nil {
			return err
		}
	}
	return nil
}

// streamFilePart copies the item's file into the multipart body through a
// progress-tracked reader. The file is read exactly once and never buffered
// whole.
func (d *Dispatcher) streamFilePart(mw *multipart.Writer, field string, item *media.Item) error {
	reader, err := media.OpenReader(item.Path, item.FileName, d.progress)
	if err != nil {
		return err
	}
	defer reader.Close()

	part, err := mw.CreateFormFile(field, item.FileName)
	if err != nil {
		return err
	}
	_, err = io.Copy(part, reader)
	return err
}

// writeThumbPart attaches in-memory thumbnail bytes as a JPEG binary part.
func writeThumbPart(mw *multipart.Writer, field string, data []byte) error {
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name=%q; filename=%q`, field, field+".jpg"))
	header.Set("Content-Type", "image/jpeg")
	part, err := mw.CreatePart(header)
	if err != nil {
		return err
	}
	_, err = part.Write(data)
	return err
}

func encodeMarkup(markup *ButtonLayout) (string, error) {
	if markup == nil {
		return "", nil
	}
	return markup.Encode()
}

// logDebugBody surfaces the HTTP status and truncated body of an API error
// at debug level, keeping the info/error stream clean.
func (d *Dispatcher) logDebugBody(err error) {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Body != "" {
		d.logger.Debug("API response", "status", apiErr.Status, "body", apiErr.Body)
	}
}
