// Package events defines the transport-neutral inbound event model and
// the dedupe store that keeps webhook redeliveries from double-running
// the conversation.
package events

import "time"

// EventType discriminates inbound events.
type EventType string

const (
	TypeText     EventType = "text"
	TypeMedia    EventType = "media"
	TypeFollow   EventType = "follow"
	TypeUnfollow EventType = "unfollow"
)

// MediaKind narrows TypeMedia events.
type MediaKind string

const (
	MediaVideo MediaKind = "video"
	MediaImage MediaKind = "image"
	MediaAudio MediaKind = "audio"
	MediaOther MediaKind = "other"
)

// Inbound is one user action delivered by the messaging channel,
// already stripped of provider-specific envelope details.
type Inbound struct {
	ID       string // provider event id, used for dedupe
	Type     EventType
	SenderID string
	GroupID  string // empty for 1:1 chats

	// ReplyHandle is the provider's short-lived reply token. Empty
	// when the event cannot be replied to (e.g. unfollow).
	ReplyHandle string

	Text string // TypeText only

	// TypeMedia only.
	Media     MediaKind
	MessageID string

	ReceivedAt time.Time
}

// AutomationResult is the callback payload from the downstream
// automation service after it finishes (or fails) a submission.
type AutomationResult struct {
	RequestID     string `json:"request_id"`
	UserID        string `json:"user_id"`
	Success       bool   `json:"success"`
	ScreenshotURL string `json:"screenshot_url,omitempty"`
	Error         string `json:"error,omitempty"`
}
