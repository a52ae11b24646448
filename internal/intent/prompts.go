package intent

import "fmt"

// The prompts teach the model the transcription error patterns a blind
// user's voice input actually produces, then constrain the answer to a
// per-context intent set. Replies must be a single JSON object.

const basePromptHeader = `你是一個專門處理盲人語音輸入錯誤的AI助手。盲人語音輸入常見錯誤模式：

數字錯誤：
- 「時」通常是「十」的錯誤（6時6日 = 6月16日，三月時五日 = 三月十五日）
- 「一」可能是「醫」、「二」可能是「而」
- 「三」可能是「山」、「四」可能是「是」
- 「五」可能是「無」、「六」可能是「路」
- 「七」可能是「期」、「八」可能是「把」
- 「九」可能是「酒」

日期月份錯誤（極重要）：
- 「越」、「樂」、「約」都是「月」的錯誤
- 「六越」= 「六月」
- 「十越」= 「十月」

日期日號錯誤：
- 「好」、「號」、「日」常混淆
- 「二十三好」= 「二十三號」
- 「號」和「日」都可以接受

申請相關錯誤：
- 「藥」、「要」、「腰」在語音輸入時常混淆
- 「我藥申請」= 「我要申請」
- 「聲請」、「身請」= 「申請」
- 注意：「我想」和「我要」都是正確表達，不需要修正

請特別注意這些語音錯誤，並提供正確的理解。`

const responseFormat = `請以JSON格式回應，包含：
{
  "intent": "用戶意圖",
  "confidence": 0.0-1.0的信心度分數,
  "correctedText": "修正後的文字",
  "explanation": "簡短解釋"
}`

const applicationSection = `可能的意圖類型：
- "apply": 用戶想要申請場地（包含「申請」、「藥申請」、「伸請」、「聲請」、「身請」等變體）
- "confirm": 用戶確認或同意（「好」、「對」、「確認」、「可以」、「正確」、「是的」、「沒錯」等）
- "modify": 用戶想要修改或重選（「修改」、「不對」、「重選」、「不要」等）
- "unclear": 無法確定意圖

範例：
輸入「聲請」→ {"intent":"apply","confidence":0.9,"correctedText":"申請","explanation":"語音錯誤修正：聲請→申請"}
輸入「正確」→ {"intent":"confirm","confidence":0.9,"correctedText":"確認","explanation":"用戶確認理解正確"}`

const dateSelectionSection = `你的專門任務：理解用戶說的日期號碼並轉換成標準格式

常見的語音錯誤模式：
- 「時越」= 「十月」（時 = 十，越 = 月）
- 「蝕二」= 「十二」（蝕 = 十）
- 「二六」= 「二十六」（省略十）

重要：只處理具體的日期號碼，統一轉換為「X號」格式
忽略「前幾個」「所有」等複雜指令，專注理解日期號碼

範例轉換：
輸入「十月十一 時越十二 十月二六」
→ {"intent":"specific_dates","confidence":0.9,"correctedText":"11號、12號、26號","explanation":"語音錯誤修正：時越=十月，提取日期號碼"}

輸入「五號十二號十九號」
→ {"intent":"specific_dates","confidence":0.95,"correctedText":"5號、12號、19號","explanation":"統一日期格式"}

輸入「蝕二號、二六號、時越五日」
→ {"intent":"specific_dates","confidence":0.9,"correctedText":"12號、26號、5號","explanation":"語音錯誤修正：蝕二=十二，時越=十月"}`

const videoChoiceSection = `可能的意圖類型：
- "use_default": 使用常用影片（「常用」、「預設」、「原本的」等）
- "upload_new": 上傳新影片（「新影片」、「上傳」、「新的」、「換」等）
- "unclear": 無法確定選擇

範例：
輸入「常用的」→ {"intent":"use_default","confidence":0.9,"correctedText":"常用影片","explanation":"選擇使用常用影片"}
輸入「換新的」→ {"intent":"upload_new","confidence":0.9,"correctedText":"上傳新影片","explanation":"要上傳新影片"}`

const modificationSection = `用戶想要修改申請資訊，可能的意圖：
- "modify_date": 修改日期（「改日期」、「換日期」、「重選日期」等）
- "modify_video": 修改影片（「改影片」、「換影片」、「上傳新影片」等）
- "modify": 不確定要改什麼（「修改」、「改」等）
- "cancel": 取消申請（「取消」、「不要了」、「算了」等）
- "unclear": 無法理解

範例：
輸入「改日期」→ {"intent":"modify_date","confidence":0.95,"correctedText":"修改日期","explanation":"要修改申請日期"}
輸入「換影片」→ {"intent":"modify_video","confidence":0.95,"correctedText":"修改影片","explanation":"要更換表演影片"}`

const generalSection = `一般對話可能的意圖：
- "apply": 申請相關（包含「申請」、「藥申請」、「伸請」、「聲請」、「身請」等）
- "date": 日期相關（包含月份日期，如「六月十六日」等）
- "confirm": 確認同意（「好」、「對」、「確認」、「可以」、「正確」、「是的」、「沒錯」等）
- "help": 尋求幫助
- "test": 測試系統
- "greeting": 打招呼
- "unclear": 無法理解

重要範例：
輸入「我藥聲請」→ {"intent":"apply","confidence":0.95,"correctedText":"我要申請","explanation":"語音錯誤修正：藥→要、聲請→申請"}
輸入「六越十六日」→ {"intent":"date","confidence":0.95,"correctedText":"六月十六日","explanation":"語音錯誤修正：越→月"}
輸入「正確」→ {"intent":"confirm","confidence":0.9,"correctedText":"確認","explanation":"用戶表示確認"}`

func systemPrompt(ctx Context) string {
	section := generalSection
	switch ctx {
	case ContextApplication:
		section = applicationSection
	case ContextDateSelection:
		section = dateSelectionSection
	case ContextVideoChoice:
		section = videoChoiceSection
	case ContextModification:
		section = modificationSection
	}
	return basePromptHeader + "\n\n" + responseFormat + "\n\n" + section
}

func userPrompt(input string, ctx Context) string {
	return fmt.Sprintf("用戶輸入：「%s」\n對話情境：%s", input, ctx)
}
