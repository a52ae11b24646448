// Package line speaks the LINE Messaging API: webhook intake with
// signature verification, reply/push delivery, and media content
// download.
package line

// WebhookRequest is the envelope LINE POSTs to the webhook endpoint.
type WebhookRequest struct {
	Destination string         `json:"destination"`
	Events      []WebhookEvent `json:"events"`
}

// WebhookEvent is one event inside a webhook delivery.
type WebhookEvent struct {
	Type            string           `json:"type"`
	WebhookEventID  string           `json:"webhookEventId"`
	Timestamp       int64            `json:"timestamp"`
	ReplyToken      string           `json:"replyToken,omitempty"`
	Source          EventSource      `json:"source"`
	Message         *EventMessage    `json:"message,omitempty"`
	DeliveryContext *DeliveryContext `json:"deliveryContext,omitempty"`
}

// EventSource identifies who sent the event and from where.
type EventSource struct {
	Type    string `json:"type"` // user, group, room
	UserID  string `json:"userId,omitempty"`
	GroupID string `json:"groupId,omitempty"`
	RoomID  string `json:"roomId,omitempty"`
}

// EventMessage is the message payload of a message event.
type EventMessage struct {
	ID       string `json:"id"`
	Type     string `json:"type"` // text, image, video, audio, file, ...
	Text     string `json:"text,omitempty"`
	Duration int64  `json:"duration,omitempty"`
	FileSize int64  `json:"fileSize,omitempty"`
}

// DeliveryContext marks webhook redeliveries.
type DeliveryContext struct {
	IsRedelivery bool `json:"isRedelivery"`
}

// Message is one outbound message. Exactly the fields for its Type are
// set; LINE rejects payloads with foreign fields left non-empty.
type Message struct {
	Type               string `json:"type"`
	Text               string `json:"text,omitempty"`
	OriginalContentURL string `json:"originalContentUrl,omitempty"`
	PreviewImageURL    string `json:"previewImageUrl,omitempty"`
	Duration           int64  `json:"duration,omitempty"`
}

// NewTextMessage builds a plain text message.
func NewTextMessage(text string) Message {
	return Message{Type: "text", Text: text}
}

// NewImageMessage builds an image message. LINE requires both a full
// image and a preview URL; passing the same URL for both is accepted.
func NewImageMessage(contentURL, previewURL string) Message {
	if previewURL == "" {
		previewURL = contentURL
	}
	return Message{Type: "image", OriginalContentURL: contentURL, PreviewImageURL: previewURL}
}

// NewAudioMessage builds an audio message. Duration is in milliseconds.
func NewAudioMessage(contentURL string, durationMillis int64) Message {
	return Message{Type: "audio", OriginalContentURL: contentURL, Duration: durationMillis}
}

type replyRequest struct {
	ReplyToken string    `json:"replyToken"`
	Messages   []Message `json:"messages"`
}

type pushRequest struct {
	To       string    `json:"to"`
	Messages []Message `json:"messages"`
}

type apiError struct {
	Message string `json:"message"`
	Details []struct {
		Message  string `json:"message"`
		Property string `json:"property"`
	} `json:"details,omitempty"`
}
