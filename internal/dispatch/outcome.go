package dispatch

import "github.com/buskerbot/permit-assistant/internal/line"

// OutcomeKind says what the dispatcher decided to do with an event.
type OutcomeKind int

const (
	// OutcomeReply carries messages to send on the event's reply token.
	OutcomeReply OutcomeKind = iota
	// OutcomeNone acknowledges the event with no user-visible reply
	// (duplicates, unfollow, unparseable events).
	OutcomeNone
)

// Outcome is the dispatcher's verdict for one inbound event.
type Outcome struct {
	Kind     OutcomeKind
	Messages []line.Message
}

func replyText(text string) Outcome {
	return Outcome{Kind: OutcomeReply, Messages: []line.Message{line.NewTextMessage(text)}}
}

func noReply() Outcome {
	return Outcome{Kind: OutcomeNone}
}
