package line

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/buskerbot/permit-assistant/internal/events"
)

// WebhookHandler verifies and parses LINE webhook deliveries.
type WebhookHandler struct {
	channelSecret string
	onEvent       func(ev events.Inbound)
}

// NewWebhookHandler creates a webhook handler. onEvent is called for
// each parsed inbound event, after the HTTP response is committed.
func NewWebhookHandler(channelSecret string, onEvent func(events.Inbound)) *WebhookHandler {
	return &WebhookHandler{
		channelSecret: channelSecret,
		onEvent:       onEvent,
	}
}

// HandleInbound handles POST webhook deliveries.
func (h *WebhookHandler) HandleInbound(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	// An empty secret disables verification, for local development
	// against simulated webhooks.
	if h.channelSecret != "" {
		signature := r.Header.Get("X-Line-Signature")
		if !VerifySignature(h.channelSecret, body, signature) {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
	}

	var req WebhookRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	// Must respond 200 quickly or LINE redelivers the whole batch.
	w.WriteHeader(http.StatusOK)

	for _, ev := range ParseWebhookEvent(req) {
		if h.onEvent != nil {
			h.onEvent(ev)
		}
	}
}

// ParseWebhookEvent converts a webhook delivery into inbound events,
// dropping event types the assistant does not handle.
func ParseWebhookEvent(req WebhookRequest) []events.Inbound {
	var out []events.Inbound

	for _, ev := range req.Events {
		parsed := events.Inbound{
			ID:          ev.WebhookEventID,
			SenderID:    ev.Source.UserID,
			GroupID:     ev.Source.GroupID,
			ReplyHandle: ev.ReplyToken,
			ReceivedAt:  time.UnixMilli(ev.Timestamp),
		}

		switch ev.Type {
		case "follow":
			parsed.Type = events.TypeFollow
		case "unfollow":
			parsed.Type = events.TypeUnfollow
		case "message":
			if ev.Message == nil {
				continue
			}
			if parsed.ID == "" {
				parsed.ID = ev.Message.ID
			}
			parsed.MessageID = ev.Message.ID
			switch ev.Message.Type {
			case "text":
				parsed.Type = events.TypeText
				parsed.Text = ev.Message.Text
			case "video":
				parsed.Type = events.TypeMedia
				parsed.Media = events.MediaVideo
			case "image":
				parsed.Type = events.TypeMedia
				parsed.Media = events.MediaImage
			case "audio":
				parsed.Type = events.TypeMedia
				parsed.Media = events.MediaAudio
			default:
				parsed.Type = events.TypeMedia
				parsed.Media = events.MediaOther
			}
		default:
			continue
		}

		out = append(out, parsed)
	}

	return out
}
