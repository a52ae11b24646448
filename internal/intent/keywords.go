package intent

import (
	"regexp"
	"strings"
)

// Keyword lists tuned for voice transcripts: 聲請/伸請/身請 are common
// mis-transcriptions of 申請.
var (
	applyKeywords   = []string{"申請", "聲請", "伸請", "身請", "藥申請"}
	confirmKeywords = []string{"好", "對", "確認", "可以", "正確", "是的", "沒錯", "ok"}
	modifyKeywords  = []string{"修改", "不對", "重選", "不要", "改"}
)

var digitDayPattern = regexp.MustCompile(`\d{1,2}[號号日]`)

// MatchKeywords classifies text deterministically. It backs up the LLM
// path and is also the whole classifier at the basic dialogue tier.
// Confidence values are fixed per rule so downstream thresholds behave
// predictably.
func MatchKeywords(text string, ctx Context) Analysis {
	input := strings.ToLower(strings.TrimSpace(text))

	switch ctx {
	case ContextApplication:
		return matchApplication(input)
	case ContextDateSelection:
		return matchDateSelection(input)
	case ContextVideoChoice:
		return matchVideoChoice(input)
	default:
		return matchGeneral(input)
	}
}

func matchApplication(input string) Analysis {
	if containsAny(input, applyKeywords) {
		return Analysis{Intent: IntentApply, Confidence: 0.8, CorrectedText: "申請", Source: SourceKeywords}
	}
	if containsAny(input, confirmKeywords) {
		return Analysis{Intent: IntentConfirm, Confidence: 0.7, CorrectedText: "確認", Source: SourceKeywords}
	}
	if containsAny(input, modifyKeywords) {
		return Analysis{Intent: IntentModify, Confidence: 0.7, CorrectedText: "修改", Source: SourceKeywords}
	}
	return Analysis{Intent: IntentUnclear, Confidence: 0.2, CorrectedText: input, Source: SourceKeywords}
}

func matchDateSelection(input string) Analysis {
	// Confirmation and modification outrank date extraction here, so a
	// bare 好 accepts the proposed dates instead of parsing as nothing.
	if containsAny(input, confirmKeywords) {
		return Analysis{Intent: IntentConfirm, Confidence: 0.8, CorrectedText: "確認", Source: SourceKeywords}
	}
	if containsAny(input, modifyKeywords) {
		return Analysis{Intent: IntentModify, Confidence: 0.8, CorrectedText: "修改", Source: SourceKeywords}
	}
	if digitDayPattern.MatchString(input) {
		return Analysis{Intent: IntentSpecificDates, Confidence: 0.75, CorrectedText: input, Source: SourceKeywords}
	}
	return Analysis{Intent: IntentUnclear, Confidence: 0.3, CorrectedText: input, Source: SourceKeywords}
}

func matchVideoChoice(input string) Analysis {
	if containsAny(input, []string{"常用", "預設", "原本"}) {
		return Analysis{Intent: IntentUseDefault, Confidence: 0.8, CorrectedText: "常用影片", Source: SourceKeywords}
	}
	if containsAny(input, []string{"新", "上傳", "換"}) {
		return Analysis{Intent: IntentUploadNew, Confidence: 0.8, CorrectedText: "新影片", Source: SourceKeywords}
	}
	return Analysis{Intent: IntentUnclear, Confidence: 0.3, CorrectedText: input, Source: SourceKeywords}
}

func matchGeneral(input string) Analysis {
	if strings.Contains(input, "測試") || strings.Contains(input, "test") {
		return Analysis{Intent: IntentTest, Confidence: 0.9, CorrectedText: "測試", Source: SourceKeywords}
	}
	if containsAny(input, []string{"幫助", "說明", "help"}) {
		return Analysis{Intent: IntentHelp, Confidence: 0.9, CorrectedText: "幫助", Source: SourceKeywords}
	}
	if containsAny(input, applyKeywords) {
		return Analysis{Intent: IntentApply, Confidence: 0.7, CorrectedText: "申請", Source: SourceKeywords}
	}
	return Analysis{Intent: IntentUnclear, Confidence: 0.1, CorrectedText: input, Source: SourceKeywords}
}

func containsAny(input string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(input, kw) {
			return true
		}
	}
	return false
}
