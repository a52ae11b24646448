package intent

import "testing"

func TestMatchKeywordsApplication(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantIntent Intent
		wantConf   float64
	}{
		{"apply", "我要申請", IntentApply, 0.8},
		{"apply mis-transcribed", "聲請", IntentApply, 0.8},
		{"confirm", "好的", IntentConfirm, 0.7},
		{"modify", "不對，重選", IntentModify, 0.7},
		{"unclear", "嗯嗯嗯", IntentUnclear, 0.2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchKeywords(tt.input, ContextApplication)
			if got.Intent != tt.wantIntent {
				t.Errorf("intent = %s, want %s", got.Intent, tt.wantIntent)
			}
			if got.Confidence != tt.wantConf {
				t.Errorf("confidence = %v, want %v", got.Confidence, tt.wantConf)
			}
			if got.Source != SourceKeywords {
				t.Errorf("source = %s", got.Source)
			}
		})
	}
}

func TestMatchKeywordsDateSelection(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantIntent Intent
		wantConf   float64
	}{
		{"confirm beats digits", "好", IntentConfirm, 0.8},
		{"modify", "我要修改", IntentModify, 0.8},
		{"digit days", "5號、12號", IntentSpecificDates, 0.75},
		{"simplified suffix", "5号", IntentSpecificDates, 0.75},
		{"no dates", "隨便", IntentUnclear, 0.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchKeywords(tt.input, ContextDateSelection)
			if got.Intent != tt.wantIntent || got.Confidence != tt.wantConf {
				t.Errorf("got %s/%v, want %s/%v", got.Intent, got.Confidence, tt.wantIntent, tt.wantConf)
			}
		})
	}
}

func TestMatchKeywordsVideoChoice(t *testing.T) {
	if got := MatchKeywords("用常用的", ContextVideoChoice); got.Intent != IntentUseDefault {
		t.Errorf("intent = %s, want use_default", got.Intent)
	}
	if got := MatchKeywords("我要上傳新的", ContextVideoChoice); got.Intent != IntentUploadNew {
		t.Errorf("intent = %s, want upload_new", got.Intent)
	}
	if got := MatchKeywords("都可以吧", ContextVideoChoice); got.Intent != IntentUnclear {
		t.Errorf("intent = %s, want unclear", got.Intent)
	}
}

func TestMatchKeywordsGeneral(t *testing.T) {
	tests := []struct {
		input      string
		wantIntent Intent
		wantConf   float64
	}{
		{"測試", IntentTest, 0.9},
		{"幫助", IntentHelp, 0.9},
		{"我要申請", IntentApply, 0.7},
		{"今天天氣", IntentUnclear, 0.1},
	}
	for _, tt := range tests {
		got := MatchKeywords(tt.input, ContextGeneral)
		if got.Intent != tt.wantIntent || got.Confidence != tt.wantConf {
			t.Errorf("%q: got %s/%v, want %s/%v", tt.input, got.Intent, got.Confidence, tt.wantIntent, tt.wantConf)
		}
	}
}
