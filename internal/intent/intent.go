// Package intent turns raw voice-transcript text into a structured
// intent. An LLM does the heavy lifting (it also repairs common
// voice-input transcription errors); a deterministic keyword matcher
// takes over whenever the LLM is unavailable or fails.
package intent

// Intent is the closed set of meanings the assistant acts on. Every
// dispatcher switch over Intent handles all members plus IntentUnclear.
type Intent string

const (
	IntentApply         Intent = "apply"
	IntentConfirm       Intent = "confirm"
	IntentModify        Intent = "modify"
	IntentSpecificDates Intent = "specific_dates"
	IntentUseDefault    Intent = "use_default"
	IntentUploadNew     Intent = "upload_new"
	IntentModifyDate    Intent = "modify_date"
	IntentModifyVideo   Intent = "modify_video"
	IntentCancel        Intent = "cancel"
	IntentDate          Intent = "date"
	IntentTest          Intent = "test"
	IntentHelp          Intent = "help"
	IntentGreeting      Intent = "greeting"
	IntentUnclear       Intent = "unclear"
)

// Context tells the classifier what stage of the conversation the text
// arrived in, which narrows the plausible intents.
type Context string

const (
	ContextGeneral       Context = "general"
	ContextApplication   Context = "application"
	ContextDateSelection Context = "date_selection"
	ContextVideoChoice   Context = "video_choice"
	ContextModification  Context = "modification"
)

// Analysis sources, in descending order of trust.
const (
	SourceLLM      = "llm"
	SourceKeywords = "keywords"
)

// Confidence bands. At or above High the dispatcher acts directly; in
// the medium band it acts but prefixes the reply with its understanding
// of what was said; below Medium it asks the user to rephrase.
const (
	ConfidenceHigh   = 0.8
	ConfidenceMedium = 0.5
)

// Analysis is the classifier's verdict on one piece of user text.
type Analysis struct {
	Intent        Intent  `json:"intent"`
	Confidence    float64 `json:"confidence"`
	CorrectedText string  `json:"correctedText"`
	Explanation   string  `json:"explanation,omitempty"`
	Source        string  `json:"source"`
}

// Actionable reports whether the dispatcher should act on the verdict
// at all, versus asking the user to rephrase.
func (a Analysis) Actionable() bool {
	return a.Confidence >= ConfidenceMedium && a.Intent != IntentUnclear
}

// NeedsEcho reports whether the reply should lead with the assistant's
// understanding, used for medium-confidence verdicts.
func (a Analysis) NeedsEcho() bool {
	return a.Confidence >= ConfidenceMedium && a.Confidence < ConfidenceHigh
}

var knownIntents = map[Intent]bool{
	IntentApply:         true,
	IntentConfirm:       true,
	IntentModify:        true,
	IntentSpecificDates: true,
	IntentUseDefault:    true,
	IntentUploadNew:     true,
	IntentModifyDate:    true,
	IntentModifyVideo:   true,
	IntentCancel:        true,
	IntentDate:          true,
	IntentTest:          true,
	IntentHelp:          true,
	IntentGreeting:      true,
	IntentUnclear:       true,
}

// normalizeIntent maps free-form LLM output onto the closed set,
// collapsing anything unknown to IntentUnclear.
func normalizeIntent(s string) Intent {
	in := Intent(s)
	if knownIntents[in] {
		return in
	}
	return IntentUnclear
}
