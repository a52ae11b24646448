package intent

import (
	"context"
	"errors"
	"testing"
	"time"
)

type stubLLM struct {
	text string
	err  error

	lastReq LLMRequest
}

func (s *stubLLM) Complete(_ context.Context, req LLMRequest) (LLMResponse, error) {
	s.lastReq = req
	if s.err != nil {
		return LLMResponse{}, s.err
	}
	return LLMResponse{Text: s.text}, nil
}

func TestAnalyzeParsesLLMVerdict(t *testing.T) {
	llm := &stubLLM{text: `{"intent":"apply","confidence":0.95,"correctedText":"我要申請","explanation":"語音錯誤修正"}`}
	c := NewClassifier(llm, "model-id", time.Second, nil)

	got := c.Analyze(context.Background(), "我藥聲請", ContextGeneral)

	if got.Intent != IntentApply {
		t.Errorf("intent = %s, want apply", got.Intent)
	}
	if got.Confidence != 0.95 {
		t.Errorf("confidence = %v, want 0.95", got.Confidence)
	}
	if got.CorrectedText != "我要申請" {
		t.Errorf("correctedText = %q", got.CorrectedText)
	}
	if got.Source != SourceLLM {
		t.Errorf("source = %s, want llm", got.Source)
	}
	if llm.lastReq.Model != "model-id" {
		t.Errorf("model = %q", llm.lastReq.Model)
	}
}

func TestAnalyzeExtractsJSONFromProse(t *testing.T) {
	llm := &stubLLM{text: "好的，以下是分析結果：\n```json\n{\"intent\":\"confirm\",\"confidence\":0.9,\"correctedText\":\"確認\"}\n```"}
	c := NewClassifier(llm, "m", time.Second, nil)

	got := c.Analyze(context.Background(), "正確", ContextApplication)
	if got.Intent != IntentConfirm || got.Confidence != 0.9 {
		t.Errorf("got %s/%v, want confirm/0.9", got.Intent, got.Confidence)
	}
}

func TestAnalyzeFallsBackOnLLMError(t *testing.T) {
	llm := &stubLLM{err: errors.New("throttled")}
	c := NewClassifier(llm, "m", time.Second, nil)

	got := c.Analyze(context.Background(), "我要申請", ContextApplication)
	if got.Intent != IntentApply {
		t.Errorf("intent = %s, want apply via keywords", got.Intent)
	}
	if got.Source != SourceKeywords {
		t.Errorf("source = %s, want keywords", got.Source)
	}
}

func TestAnalyzeFallsBackOnGarbage(t *testing.T) {
	llm := &stubLLM{text: "我不確定你的意思"}
	c := NewClassifier(llm, "m", time.Second, nil)

	got := c.Analyze(context.Background(), "5號、12號", ContextDateSelection)
	if got.Intent != IntentSpecificDates || got.Source != SourceKeywords {
		t.Errorf("got %s/%s, want specific_dates via keywords", got.Intent, got.Source)
	}
}

func TestAnalyzeUnknownIntentCollapsesToUnclear(t *testing.T) {
	llm := &stubLLM{text: `{"intent":"order_pizza","confidence":0.99,"correctedText":"x"}`}
	c := NewClassifier(llm, "m", time.Second, nil)

	got := c.Analyze(context.Background(), "x", ContextGeneral)
	if got.Intent != IntentUnclear {
		t.Errorf("intent = %s, want unclear", got.Intent)
	}
}

func TestAnalyzeClampsConfidence(t *testing.T) {
	llm := &stubLLM{text: `{"intent":"apply","confidence":3.5,"correctedText":"申請"}`}
	c := NewClassifier(llm, "m", time.Second, nil)

	got := c.Analyze(context.Background(), "申請", ContextGeneral)
	if got.Confidence != 1 {
		t.Errorf("confidence = %v, want clamped to 1", got.Confidence)
	}
}

func TestAnalyzeNilLLMUsesKeywords(t *testing.T) {
	c := NewClassifier(nil, "", time.Second, nil)
	got := c.Analyze(context.Background(), "測試", ContextGeneral)
	if got.Intent != IntentTest || got.Source != SourceKeywords {
		t.Errorf("got %s/%s", got.Intent, got.Source)
	}
}

func TestAnalyzeEmptyInput(t *testing.T) {
	llm := &stubLLM{text: `{"intent":"apply","confidence":1}`}
	c := NewClassifier(llm, "m", time.Second, nil)

	got := c.Analyze(context.Background(), "   ", ContextGeneral)
	if got.Intent != IntentUnclear || got.Confidence != 0 {
		t.Errorf("got %s/%v, want unclear/0", got.Intent, got.Confidence)
	}
}

func TestAnalysisBands(t *testing.T) {
	high := Analysis{Intent: IntentApply, Confidence: 0.85}
	if !high.Actionable() || high.NeedsEcho() {
		t.Error("high confidence should act without echo")
	}

	medium := Analysis{Intent: IntentApply, Confidence: 0.6}
	if !medium.Actionable() || !medium.NeedsEcho() {
		t.Error("medium confidence should act with echo")
	}

	low := Analysis{Intent: IntentApply, Confidence: 0.3}
	if low.Actionable() {
		t.Error("low confidence should not act")
	}

	unclear := Analysis{Intent: IntentUnclear, Confidence: 0.9}
	if unclear.Actionable() {
		t.Error("unclear is never actionable")
	}
}
