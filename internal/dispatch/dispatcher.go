// Package dispatch routes inbound messaging events through the
// conversation state machine. One user at a time, three layers of text
// understanding: the current step's literal word lists first, exact
// command keywords second, the intent classifier last.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/buskerbot/permit-assistant/internal/application"
	"github.com/buskerbot/permit-assistant/internal/config"
	"github.com/buskerbot/permit-assistant/internal/dates"
	"github.com/buskerbot/permit-assistant/internal/events"
	"github.com/buskerbot/permit-assistant/internal/intent"
	"github.com/buskerbot/permit-assistant/internal/line"
	"github.com/buskerbot/permit-assistant/internal/media"
	"github.com/buskerbot/permit-assistant/internal/observability/metrics"
	"github.com/buskerbot/permit-assistant/internal/session"
	"github.com/buskerbot/permit-assistant/internal/window"
)

// Replier sends messages back over the messaging channel.
type Replier interface {
	Reply(ctx context.Context, replyToken string, messages ...line.Message) error
	Push(ctx context.Context, userID string, messages ...line.Message) error
}

// ContentFetcher downloads uploaded media from the channel provider.
type ContentFetcher interface {
	GetMessageContent(ctx context.Context, messageID string) (io.ReadCloser, string, error)
}

// VideoStore persists uploaded performance videos.
type VideoStore interface {
	Put(ctx context.Context, userID, messageID string, body io.Reader, contentType string) (*media.StoredVideo, error)
}

// Deduper records event ids so webhook redeliveries run the
// conversation at most once.
type Deduper interface {
	MarkProcessed(ctx context.Context, provider, eventID string) (bool, error)
}

// Finalizer submits a confirmed application.
type Finalizer interface {
	Finalize(ctx context.Context, sess *session.Session) (*application.Record, error)
}

// Guard makes finalization first-wins per user.
type Guard interface {
	Acquire(ctx context.Context, userID string) (bool, error)
	Release(ctx context.Context, userID string) error
}

// RecordSettler applies the automation outcome to the stored record.
type RecordSettler interface {
	SettleResult(ctx context.Context, requestID string, success bool, screenshotURL, failureReason string) (bool, error)
}

// Config carries the dispatcher's conversation policy.
type Config struct {
	// Tier selects how much understanding machinery runs: "basic",
	// "ai", or "stateful".
	Tier string

	Rules    window.Rules
	Location *time.Location

	// DefaultSaturdays is how many Saturdays the started application
	// pre-selects.
	DefaultSaturdays int
}

// Deps wires the dispatcher's collaborators. Nil optional fields
// (Dedupe, Guard, Content, Videos, Records, Metrics) degrade that
// capability instead of failing.
type Deps struct {
	Sessions   *session.Store
	Classifier *intent.Classifier
	Finalizer  Finalizer
	Guard      Guard
	Dedupe     Deduper
	Replier    Replier
	Content    ContentFetcher
	Videos     VideoStore
	Records    RecordSettler
	Metrics    *metrics.AssistantMetrics
	Logger     *slog.Logger
}

// Dispatcher is the conversation engine. Safe for concurrent use;
// events from the same sender are serialized internally.
type Dispatcher struct {
	cfg Config

	sessions   *session.Store
	classifier *intent.Classifier
	finalizer  Finalizer
	guard      Guard
	dedupe     Deduper
	replier    Replier
	content    ContentFetcher
	videos     VideoStore
	records    RecordSettler
	metrics    *metrics.AssistantMetrics
	logger     *slog.Logger

	locks *keyedMutex
	now   func() time.Time
}

func New(cfg Config, deps Deps) *Dispatcher {
	if cfg.Tier == "" {
		cfg.Tier = config.TierStateful
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.DefaultSaturdays <= 0 {
		cfg.DefaultSaturdays = 3
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	loc := cfg.Location
	return &Dispatcher{
		cfg:        cfg,
		sessions:   deps.Sessions,
		classifier: deps.Classifier,
		finalizer:  deps.Finalizer,
		guard:      deps.Guard,
		dedupe:     deps.Dedupe,
		replier:    deps.Replier,
		content:    deps.Content,
		videos:     deps.Videos,
		records:    deps.Records,
		metrics:    deps.Metrics,
		logger:     logger,
		locks:      newKeyedMutex(),
		now:        func() time.Time { return time.Now().In(loc) },
	}
}

// HandleEvent runs one inbound event through the state machine and
// sends the resulting reply. The returned Outcome is what was decided,
// reply delivery errors included only in logs: the webhook has already
// been acknowledged by the time we get here.
func (d *Dispatcher) HandleEvent(ctx context.Context, ev events.Inbound) Outcome {
	start := time.Now()
	out := d.dispatch(ctx, ev)
	d.metrics.ObserveDispatchLatency(string(ev.Type), time.Since(start).Seconds())
	d.metrics.ObserveInbound(string(ev.Type), outcomeStatus(out))

	if out.Kind == OutcomeReply && len(out.Messages) > 0 && ev.ReplyHandle != "" && d.replier != nil {
		if err := d.replier.Reply(ctx, ev.ReplyHandle, out.Messages...); err != nil {
			d.logger.Error("reply delivery failed",
				"event_id", ev.ID,
				"user_id", ev.SenderID,
				"error", err.Error(),
			)
		}
	}
	return out
}

func (d *Dispatcher) dispatch(ctx context.Context, ev events.Inbound) (out Outcome) {
	if d.dedupe != nil && ev.ID != "" {
		fresh, err := d.dedupe.MarkProcessed(ctx, events.ProviderLINE, ev.ID)
		if err != nil {
			// Fail open: a broken dedupe table must not mute the bot.
			d.logger.Error("event dedupe check failed", "event_id", ev.ID, "error", err.Error())
		} else if !fresh {
			d.logger.Info("duplicate event dropped", "event_id", ev.ID)
			return noReply()
		}
	}

	if ev.SenderID == "" {
		return noReply()
	}

	d.locks.Lock(ev.SenderID)
	defer d.locks.Unlock(ev.SenderID)

	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("dispatch panicked",
				"event_id", ev.ID,
				"user_id", ev.SenderID,
				"panic", fmt.Sprint(r),
			)
			out = replyText(msgGenericRetry)
		}
	}()

	switch ev.Type {
	case events.TypeFollow:
		return replyText(msgWelcome)
	case events.TypeUnfollow:
		if err := d.sessions.Delete(ctx, ev.SenderID); err != nil {
			d.logger.Error("session cleanup on unfollow failed", "user_id", ev.SenderID, "error", err.Error())
		}
		return noReply()
	case events.TypeMedia:
		return d.handleMedia(ctx, ev)
	case events.TypeText:
		return d.handleText(ctx, ev)
	default:
		return noReply()
	}
}

func outcomeStatus(out Outcome) string {
	if out.Kind == OutcomeReply {
		return "replied"
	}
	return "silent"
}

// --- text routing ---

func (d *Dispatcher) handleText(ctx context.Context, ev events.Inbound) Outcome {
	text := strings.TrimSpace(ev.Text)
	if text == "" {
		return noReply()
	}
	switch d.cfg.Tier {
	case config.TierBasic:
		return d.handleTextBasic(text)
	case config.TierAI:
		return d.handleTextAI(ctx, ev.SenderID, text)
	default:
		return d.handleTextStateful(ctx, ev, text)
	}
}

// handleTextBasic is the degraded keyword-only mode with no state and
// no classifier.
func (d *Dispatcher) handleTextBasic(text string) Outcome {
	switch {
	case strings.Contains(text, "申請"):
		return replyText(basicApplyMessage(text))
	case strings.Contains(text, "測試"):
		return replyText(d.testStatus())
	case strings.Contains(text, "幫助"), strings.Contains(text, "說明"):
		return replyText(msgHelp)
	default:
		return replyText(basicModeMessage(text))
	}
}

// handleTextAI classifies without conversation state. Medium-band
// verdicts only echo the understanding; acting on them needs the
// stateful tier's confirmation flow.
func (d *Dispatcher) handleTextAI(ctx context.Context, userID, text string) Outcome {
	a := d.classifier.Analyze(ctx, text, intent.ContextGeneral)
	d.metrics.ObserveIntent(string(a.Intent), a.Source)
	switch {
	case a.Confidence >= intent.ConfidenceHigh && a.Intent != intent.IntentUnclear:
		return d.executeIntent(ctx, nil, userID, text, a)
	case a.NeedsEcho():
		return replyText(echoUnderstandingMessage(text, correctedOr(a, text), a.Confidence))
	default:
		return replyText(rephraseMessage(text))
	}
}

func (d *Dispatcher) handleTextStateful(ctx context.Context, ev events.Inbound, text string) Outcome {
	sess, err := d.sessions.Get(ctx, ev.SenderID)
	if err != nil {
		d.logger.Error("session load failed", "user_id", ev.SenderID, "error", err.Error())
		sess = nil
	}

	if sess != nil {
		if out, handled := d.handleStateInput(ctx, sess, text); handled {
			return out
		}
	}

	if out, handled := d.handleExactKeywords(ctx, ev.SenderID, text); handled {
		return out
	}

	a := d.classifier.Analyze(ctx, text, conversationContext(sess))
	d.metrics.ObserveIntent(string(a.Intent), a.Source)
	switch {
	case a.Confidence >= intent.ConfidenceHigh && a.Intent != intent.IntentUnclear:
		return d.executeIntent(ctx, sess, ev.SenderID, text, a)
	case a.NeedsEcho() && a.Intent != intent.IntentUnclear:
		return d.suspendForConfirmation(ctx, sess, ev.SenderID, a, text)
	default:
		return replyText(rephraseMessage(text))
	}
}

func conversationContext(sess *session.Session) intent.Context {
	if sess == nil {
		return intent.ContextGeneral
	}
	switch sess.Step {
	case session.StepStarted:
		return intent.ContextApplication
	case session.StepSelectingDate, session.StepConfirmingDates:
		return intent.ContextDateSelection
	case session.StepWaitingVideoUpload:
		return intent.ContextVideoChoice
	default:
		return intent.ContextGeneral
	}
}

// handleExactKeywords short-circuits the classifier for unambiguous
// single-word commands.
func (d *Dispatcher) handleExactKeywords(ctx context.Context, userID, text string) (Outcome, bool) {
	switch text {
	case "申請":
		return d.startApplication(ctx, userID), true
	case "測試":
		return replyText(d.testStatus()), true
	case "幫助", "說明":
		return replyText(msgHelp), true
	}
	return Outcome{}, false
}

// --- per-step input handlers ---

// Affirm, finish and deny lists match the whole utterance (equalsAny);
// only multi-character command phrases like 改日期 or 取消 match as
// substrings.
var (
	startedAffirmWords   = []string{"對", "好", "確認", "可以", "沒錯", "正確", "ok"}
	selectionFinishWords = []string{"好了", "完成", "確定", "滿意", "好", "ok"}
	cancelWords          = []string{"取消", "不要了", "算了"}
	proposalAffirmWords  = []string{"對", "好", "正確", "是", "確認", "ok"}
	suspendedAffirmWords = []string{"對", "好", "是", "確認", "可以", "沒錯", "正確"}
	suspendedDenyWords   = []string{"不對", "不是", "錯", "不要", "重來"}
)

func (d *Dispatcher) handleStateInput(ctx context.Context, sess *session.Session, text string) (Outcome, bool) {
	switch sess.Step {
	case session.StepStarted:
		return d.handleStartedInput(ctx, sess, text)
	case session.StepSelectingDate:
		return d.handleSelectingDateInput(ctx, sess, text)
	case session.StepConfirmingDates:
		return d.handleConfirmingDatesInput(ctx, sess, text)
	case session.StepWaitingVideoUpload:
		return d.handleVideoUploadInput(ctx, sess, text)
	case session.StepWaitingConfirmation:
		return d.handleSuspendedInput(ctx, sess, text)
	}
	return Outcome{}, false
}

func (d *Dispatcher) handleStartedInput(ctx context.Context, sess *session.Session, text string) (Outcome, bool) {
	lower := strings.ToLower(strings.TrimSpace(text))
	switch {
	case strings.Contains(text, "改日期"), strings.Contains(text, "修改日期"):
		return d.enterDateSelection(ctx, sess), true
	case strings.Contains(text, "改影片"), strings.Contains(text, "修改影片"):
		return d.enterVideoUpload(ctx, sess), true
	case containsWord(lower, cancelWords):
		return d.cancelApplication(ctx, sess.UserID), true
	case containsWord(lower, []string{"修改", "不對"}):
		return replyText(msgWhichModification), true
	case equalsAny(lower, startedAffirmWords):
		return d.finalize(ctx, sess), true
	}
	return Outcome{}, false
}

func (d *Dispatcher) handleSelectingDateInput(ctx context.Context, sess *session.Session, text string) (Outcome, bool) {
	lower := strings.ToLower(strings.TrimSpace(text))
	switch {
	case containsWord(lower, cancelWords):
		sess.Advance(session.StepStarted, d.now())
		if out, failed := d.save(ctx, sess); failed {
			return out, true
		}
		return replyText(dateModificationCancelled(sess)), true
	case equalsAny(lower, selectionFinishWords):
		if len(sess.SelectedDates) == 0 {
			return replyText(dateSelectionPrompt(sess.TargetMonth)), true
		}
		sess.Advance(session.StepStarted, d.now())
		if out, failed := d.save(ctx, sess); failed {
			return out, true
		}
		return replyText(confirmPromptMessage(sess)), true
	}
	return d.handleDateSelection(ctx, sess, text), true
}

func (d *Dispatcher) handleConfirmingDatesInput(ctx context.Context, sess *session.Session, text string) (Outcome, bool) {
	lower := strings.ToLower(strings.TrimSpace(text))
	if equalsAny(lower, proposalAffirmWords) {
		sess.AcceptPending(d.now())
		sess.Advance(session.StepSelectingDate, d.now())
		if out, failed := d.save(ctx, sess); failed {
			return out, true
		}
		return replyText(datesUpdatedMessage(sess.SelectedDates, nil, sess.TargetMonth)), true
	}

	// Anything else rejects the proposal. If the rejection itself
	// carries dates ("不對，是12號"), parse it as a fresh selection.
	sess.RejectPending(d.now())
	if !containsDigits(dates.Normalize(text)) {
		if out, failed := d.save(ctx, sess); failed {
			return out, true
		}
		return replyText(msgSayDatesAgain), true
	}
	return d.handleDateSelection(ctx, sess, text), true
}

func (d *Dispatcher) handleVideoUploadInput(ctx context.Context, sess *session.Session, text string) (Outcome, bool) {
	if containsWord(strings.ToLower(text), cancelWords) {
		sess.Advance(session.StepStarted, d.now())
		if out, failed := d.save(ctx, sess); failed {
			return out, true
		}
		return replyText(videoModificationCancelled(sess)), true
	}
	return replyText(msgVideoUploadReminder), true
}

func (d *Dispatcher) handleSuspendedInput(ctx context.Context, sess *session.Session, text string) (Outcome, bool) {
	pending := sess.Unconfirmed
	if pending == nil {
		// Corrupt state; start over.
		if err := d.sessions.Delete(ctx, sess.UserID); err != nil {
			d.logger.Error("session delete failed", "user_id", sess.UserID, "error", err.Error())
		}
		return replyText(msgRestartAfterDenial), true
	}

	lower := strings.ToLower(strings.TrimSpace(text))
	switch {
	case equalsAny(lower, suspendedDenyWords):
		return d.resumeOrDiscard(ctx, sess, pending, msgRestartAfterDenial), true
	case equalsAny(lower, suspendedAffirmWords):
		out := d.resumeOrDiscard(ctx, sess, pending, "")
		if out.Kind == OutcomeReply {
			return out, true
		}
		confirmed := intent.Analysis{
			Intent:        intent.Intent(pending.Intent),
			Confidence:    1,
			CorrectedText: pending.CorrectedText,
			Source:        intent.SourceKeywords,
		}
		resumed, err := d.sessions.Get(ctx, sess.UserID)
		if err != nil {
			d.logger.Error("session load failed", "user_id", sess.UserID, "error", err.Error())
		}
		return d.executeIntent(ctx, resumed, sess.UserID, pending.CorrectedText, confirmed), true
	}
	return replyText(confirmIntentMessage(pending.CorrectedText)), true
}

// resumeOrDiscard returns the session to the step the confirmation
// interrupted, or deletes it when the confirmation had no application
// behind it. A non-empty reply is sent as is; an empty reply means the
// caller continues with the confirmed intent.
func (d *Dispatcher) resumeOrDiscard(ctx context.Context, sess *session.Session, pending *session.PendingIntent, reply string) Outcome {
	if pending.ReturnStep.Valid() {
		sess.Resume(d.now())
		if out, failed := d.save(ctx, sess); failed {
			return out
		}
	} else {
		if err := d.sessions.Delete(ctx, sess.UserID); err != nil {
			d.logger.Error("session delete failed", "user_id", sess.UserID, "error", err.Error())
		}
	}
	if reply != "" {
		return replyText(reply)
	}
	return noReply()
}

func (d *Dispatcher) suspendForConfirmation(ctx context.Context, sess *session.Session, userID string, a intent.Analysis, text string) Outcome {
	now := d.now()
	if sess == nil {
		sess = session.New(userID, window.MonthRef{}, now)
		sess.Unconfirmed = &session.PendingIntent{
			Intent:        string(a.Intent),
			CorrectedText: correctedOr(a, text),
		}
		sess.Advance(session.StepWaitingConfirmation, now)
	} else {
		sess.Suspend(string(a.Intent), correctedOr(a, text), now)
	}
	if out, failed := d.save(ctx, sess); failed {
		return out
	}
	return replyText(confirmIntentMessage(sess.Unconfirmed.CorrectedText))
}

// --- intent execution ---

func (d *Dispatcher) executeIntent(ctx context.Context, sess *session.Session, userID, text string, a intent.Analysis) Outcome {
	switch a.Intent {
	case intent.IntentApply:
		return d.startApplication(ctx, userID)
	case intent.IntentTest:
		return replyText(d.testStatus())
	case intent.IntentHelp:
		return replyText(msgHelp)
	case intent.IntentGreeting:
		return replyText(msgGreeting)
	case intent.IntentConfirm:
		if sess == nil {
			return replyText(msgNeedApplicationFirst)
		}
		if sess.Step == session.StepStarted {
			return d.finalize(ctx, sess)
		}
		return replyText(understoodButIdleMessage(correctedOr(a, text)))
	case intent.IntentModify:
		if sess == nil {
			return replyText(msgNeedApplicationFirst)
		}
		return replyText(msgWhichModification)
	case intent.IntentModifyDate:
		if sess == nil {
			return replyText(msgNeedApplicationForDates)
		}
		return d.enterDateSelection(ctx, sess)
	case intent.IntentModifyVideo, intent.IntentUploadNew:
		if sess == nil {
			return replyText(msgNeedApplicationForVideo)
		}
		return d.enterVideoUpload(ctx, sess)
	case intent.IntentUseDefault:
		if sess == nil {
			return replyText(msgNeedApplicationFirst)
		}
		sess.UseDefaultVideo = true
		sess.NewVideo = nil
		sess.Advance(session.StepStarted, d.now())
		if out, failed := d.save(ctx, sess); failed {
			return out
		}
		return replyText(confirmPromptMessage(sess))
	case intent.IntentSpecificDates, intent.IntentDate:
		if sess == nil {
			return replyText(msgNeedApplicationForDates)
		}
		if sess.Step != session.StepSelectingDate {
			sess.Advance(session.StepSelectingDate, d.now())
		}
		return d.handleDateSelection(ctx, sess, correctedOr(a, text))
	case intent.IntentCancel:
		if sess == nil {
			return replyText(msgNothingToCancel)
		}
		return d.cancelApplication(ctx, sess.UserID)
	default:
		return replyText(rephraseMessage(text))
	}
}

// --- application lifecycle ---

func (d *Dispatcher) startApplication(ctx context.Context, userID string) Outcome {
	now := d.now()
	status := d.cfg.Rules.Check(now)
	if !status.Open {
		return replyText(closedWindowMessage(d.cfg.Rules, status.NextOpen))
	}

	sess := session.New(userID, status.Target, now)
	sess.SelectedDates = dates.DefaultDates(status.Target, d.cfg.DefaultSaturdays)
	sess.UseDefaultVideo = true
	if out, failed := d.save(ctx, sess); failed {
		return out
	}
	d.logger.Info("application started",
		"user_id", userID,
		"target_month", status.Target.Display(),
		"default_dates", len(sess.SelectedDates),
	)
	return replyText(applicationStartedMessage(sess))
}

func (d *Dispatcher) enterDateSelection(ctx context.Context, sess *session.Session) Outcome {
	sess.Advance(session.StepSelectingDate, d.now())
	if out, failed := d.save(ctx, sess); failed {
		return out
	}
	return replyText(dateSelectionPrompt(sess.TargetMonth))
}

func (d *Dispatcher) enterVideoUpload(ctx context.Context, sess *session.Session) Outcome {
	sess.Advance(session.StepWaitingVideoUpload, d.now())
	if out, failed := d.save(ctx, sess); failed {
		return out
	}
	return replyText(msgVideoUploadPrompt)
}

func (d *Dispatcher) cancelApplication(ctx context.Context, userID string) Outcome {
	if err := d.sessions.Delete(ctx, userID); err != nil {
		d.logger.Error("session delete failed", "user_id", userID, "error", err.Error())
		return replyText(msgGenericRetry)
	}
	return replyText(msgApplicationCancelled)
}

// handleDateSelection interprets text as a date selection. The
// classifier gets the first shot so voice-garbled numerals ("謝謝依號"
// for 11號) can be repaired; its repair is proposed back to the user
// rather than trusted outright. Clean input parses directly.
func (d *Dispatcher) handleDateSelection(ctx context.Context, sess *session.Session, text string) Outcome {
	a := d.classifier.Analyze(ctx, text, intent.ContextDateSelection)
	d.metrics.ObserveIntent(string(a.Intent), a.Source)

	if a.Source == intent.SourceLLM && a.Confidence >= 0.6 &&
		a.CorrectedText != "" && a.CorrectedText != text {
		if res := dates.ParseDays(a.CorrectedText, sess.TargetMonth); res.Ok() {
			sess.Propose(res.Dates, false, d.now())
			if out, failed := d.save(ctx, sess); failed {
				return out
			}
			return replyText(dateConfirmationMessage(text, res.Dates))
		}
	}

	if res := dates.ParseDays(text, sess.TargetMonth); res.Ok() {
		sess.SelectedDates = res.Dates
		sess.Advance(session.StepSelectingDate, d.now())
		if out, failed := d.save(ctx, sess); failed {
			return out
		}
		return replyText(datesUpdatedMessage(res.Dates, res.Invalid, sess.TargetMonth))
	}

	return replyText(dateParseFailureMessage(text))
}

func (d *Dispatcher) finalize(ctx context.Context, sess *session.Session) Outcome {
	if len(sess.SelectedDates) == 0 {
		return d.enterDateSelection(ctx, sess)
	}

	if d.guard != nil {
		ok, err := d.guard.Acquire(ctx, sess.UserID)
		if err != nil {
			// Fail open rather than blocking a legitimate submission.
			d.logger.Error("finalize guard failed", "user_id", sess.UserID, "error", err.Error())
		} else if !ok {
			return replyText(msgAlreadyFinalizing)
		}
	}

	rec, err := d.finalizer.Finalize(ctx, sess)
	if err != nil {
		d.metrics.ObserveFinalized("error")
		d.logger.Error("finalize failed", "user_id", sess.UserID, "error", err.Error())
		if d.guard != nil {
			if rerr := d.guard.Release(ctx, sess.UserID); rerr != nil {
				d.logger.Error("finalize guard release failed", "user_id", sess.UserID, "error", rerr.Error())
			}
		}
		return replyText(msgGenericRetry)
	}

	d.metrics.ObserveFinalized("submitted")
	d.logger.Info("application finalized",
		"user_id", sess.UserID,
		"request_id", rec.RequestID,
		"target_month", sess.TargetMonth.Display(),
		"dates", len(sess.SelectedDates),
	)
	return replyText(finalizedMessage(sess))
}

// --- media ---

func (d *Dispatcher) handleMedia(ctx context.Context, ev events.Inbound) Outcome {
	switch ev.Media {
	case events.MediaVideo:
		return d.handleVideo(ctx, ev)
	case events.MediaAudio:
		return replyText(msgAudioNotSupported)
	default:
		return replyText(msgUnsupportedMessage)
	}
}

func (d *Dispatcher) handleVideo(ctx context.Context, ev events.Inbound) Outcome {
	sess, err := d.sessions.Get(ctx, ev.SenderID)
	if err != nil {
		d.logger.Error("session load failed", "user_id", ev.SenderID, "error", err.Error())
		return replyText(msgGenericRetry)
	}
	if sess == nil || sess.Step != session.StepWaitingVideoUpload {
		return replyText(msgNeedApplicationForVideo)
	}

	now := d.now()
	stored, err := d.storeVideo(ctx, ev)
	if err != nil {
		if !errors.Is(err, media.ErrDisabled) {
			d.logger.Error("video store failed",
				"user_id", ev.SenderID,
				"message_id", ev.MessageID,
				"error", err.Error(),
			)
		}
		sess.UseDefaultVideo = true
		sess.NewVideo = nil
		sess.Advance(session.StepStarted, now)
		if out, failed := d.save(ctx, sess); failed {
			return out
		}
		return replyText(videoFallbackMessage(sess))
	}

	sess.NewVideo = &session.VideoRef{
		Bucket:    stored.Bucket,
		Key:       stored.Key,
		MessageID: ev.MessageID,
		StoredAt:  stored.StoredAt,
	}
	sess.UseDefaultVideo = false
	sess.Advance(session.StepStarted, now)
	if out, failed := d.save(ctx, sess); failed {
		return out
	}
	return replyText(videoReceivedMessage(sess))
}

func (d *Dispatcher) storeVideo(ctx context.Context, ev events.Inbound) (*media.StoredVideo, error) {
	if d.content == nil || d.videos == nil {
		return nil, media.ErrDisabled
	}
	body, contentType, err := d.content.GetMessageContent(ctx, ev.MessageID)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	return d.videos.Put(ctx, ev.SenderID, ev.MessageID, body, contentType)
}

// --- automation callback ---

// HandleAutomationResult applies the downstream automation outcome:
// settle the stored record, free the finalize token, and push the
// result to the user.
func (d *Dispatcher) HandleAutomationResult(ctx context.Context, res events.AutomationResult) error {
	if res.RequestID == "" {
		return fmt.Errorf("dispatch: automation result missing request id")
	}

	if d.dedupe != nil {
		fresh, err := d.dedupe.MarkProcessed(ctx, events.ProviderAutomation, res.RequestID)
		if err != nil {
			d.logger.Error("callback dedupe check failed", "request_id", res.RequestID, "error", err.Error())
		} else if !fresh {
			d.logger.Info("duplicate automation callback dropped", "request_id", res.RequestID)
			return nil
		}
	}

	if d.records != nil {
		updated, err := d.records.SettleResult(ctx, res.RequestID, res.Success, res.ScreenshotURL, res.Error)
		if err != nil {
			d.logger.Error("record settle failed", "request_id", res.RequestID, "error", err.Error())
		} else if !updated {
			d.logger.Warn("callback for unknown request", "request_id", res.RequestID)
		}
	}

	if res.Success {
		d.metrics.ObserveFinalized("confirmed")
	} else {
		d.metrics.ObserveFinalized("failed")
	}

	if d.guard != nil && res.UserID != "" {
		if err := d.guard.Release(ctx, res.UserID); err != nil {
			d.logger.Error("finalize guard release failed", "user_id", res.UserID, "error", err.Error())
		}
	}

	if d.replier == nil || res.UserID == "" {
		return nil
	}

	var msgs []line.Message
	if res.Success {
		msgs = append(msgs, line.NewTextMessage(callbackSuccessMessage()))
		if res.ScreenshotURL != "" {
			msgs = append(msgs, line.NewImageMessage(res.ScreenshotURL, ""))
		}
	} else {
		msgs = append(msgs, line.NewTextMessage(callbackFailureMessage(res.Error)))
	}
	if err := d.replier.Push(ctx, res.UserID, msgs...); err != nil {
		return fmt.Errorf("dispatch: failed to push automation result: %w", err)
	}
	return nil
}

// --- helpers ---

// save persists the session and maps a failure to a retry reply. The
// bool is true when the caller should return the outcome instead of
// continuing.
func (d *Dispatcher) save(ctx context.Context, sess *session.Session) (Outcome, bool) {
	if err := d.sessions.Put(ctx, sess); err != nil {
		d.logger.Error("session save failed", "user_id", sess.UserID, "error", err.Error())
		return replyText(msgGenericRetry), true
	}
	return Outcome{}, false
}

func (d *Dispatcher) testStatus() string {
	now := d.now()
	return testStatusMessage(now, d.cfg.Rules.Check(now).Open)
}

func correctedOr(a intent.Analysis, fallback string) string {
	if strings.TrimSpace(a.CorrectedText) != "" {
		return a.CorrectedText
	}
	return fallback
}

func containsWord(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// equalsAny reports whether text is exactly one of words. Affirm, deny
// and finish words match the whole utterance so "不好" or "不可以" never
// reads as the "好" or "可以" inside it.
func equalsAny(text string, words []string) bool {
	for _, w := range words {
		if text == w {
			return true
		}
	}
	return false
}

func containsDigits(text string) bool {
	return strings.ContainsAny(text, "0123456789")
}
