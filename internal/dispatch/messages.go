package dispatch

import (
	"fmt"
	"strings"
	"time"

	"github.com/buskerbot/permit-assistant/internal/dates"
	"github.com/buskerbot/permit-assistant/internal/session"
	"github.com/buskerbot/permit-assistant/internal/window"
)

// All user-facing text is zh-TW and written for a listener, not a
// reader: the user hears these through a screen reader, so replies
// lead with the point and keep lists short.

const (
	msgWelcome = `歡迎使用街頭藝人申請助手！🎭

我可以協助您：
• 申請街頭藝人表演場地
• 自動計算可申請日期
• 處理申請文件

📌 使用方式：
說「申請」開始申請流程
說「測試」測試系統狀態
說「幫助」查看使用說明`

	msgHelp = `🤖 街頭藝人申請助手使用說明

📌 主要功能：
• 申請街頭藝人表演場地
• 自動計算可申請日期
• 處理申請文件

💬 指令說明：
• 「申請」- 開始申請流程
• 「測試」- 測試系統狀態
• 「幫助」- 顯示此說明

📅 申請規則：
• 每月 1-15 日及 20-31 日可申請
• 可申請未來 1-2 個月場地
• 預設選擇前 3 個週六`

	msgGreeting = "您好！我是街頭藝人申請助手 🎭\n\n請說「申請」開始申請流程"

	msgNeedApplicationFirst = "請先說「申請」開始申請流程"

	msgNeedApplicationForDates = "請先說「申請」開始申請流程，再選擇日期"

	msgNeedApplicationForVideo = "請先說「申請」開始申請流程，並選擇「改影片」上傳新影片"

	msgAudioNotSupported = "收到您的語音訊息！\n\n請改用手機的語音輸入功能轉成文字後傳送，例如：「我要申請」"

	msgUnsupportedMessage = "目前支援文字和影片訊息，請重新發送。"

	msgWhichModification = "要修改什麼？\n\n請說「改日期」或「改影片」"

	msgVideoUploadPrompt = `🎬 請上傳新的表演影片

支援格式:MP4、MOV

請直接傳送影片檔案,或說「取消」放棄修改`

	msgVideoUploadReminder = "請直接傳送影片檔案，或說「取消」放棄修改"

	msgRestartAfterDenial = "好的，請重新說明您的需求"

	msgGenericRetry = "系統忙碌中，請再說一次您的需求"

	msgAlreadyFinalizing = "您的申請正在處理中，請稍候通知"

	msgApplicationCancelled = "已取消本次申請\n\n如需重新申請，請說「申請」"

	msgNothingToCancel = "目前沒有進行中的申請\n\n請說「申請」開始申請流程"

	msgSayDatesAgain = "好的，請再說一次日期\n\n例如：「11號、12號、26號」"
)

func closedWindowMessage(rules window.Rules, nextOpen time.Time) string {
	return fmt.Sprintf(`⏰ 現在不是申請時間

申請時間為每月 %d-%d 日及 %d-%d 日
下次開放：%d月%d日`,
		rules.First.StartDay, rules.First.EndDay,
		rules.Second.StartDay, rules.Second.EndDay,
		int(nextOpen.Month()), nextOpen.Day())
}

func applicationStartedMessage(sess *session.Session) string {
	return fmt.Sprintf(`📅 申請 %s 份場地

📍 預設日期：%s
🎬 影片：使用常用影片

✅ 確認請說「好」或「對」
📝 修改請說「改日期」或「改影片」`,
		sess.TargetMonth.Display(), joinDisplays(sess.SelectedDates))
}

func applicationSummary(sess *session.Session) string {
	return fmt.Sprintf(`📅 申請月份：%s
📍 申請日期：%s
🎬 表演影片：%s`,
		sess.TargetMonth.Display(), joinDisplays(sess.SelectedDates), videoDisplay(sess))
}

func finalizedMessage(sess *session.Session) string {
	return fmt.Sprintf(`✅ 申請已送出！

%s

📧 系統將自動處理您的申請
🔔 完成後會通知您`, applicationSummary(sess))
}

func dateSelectionPrompt(target window.MonthRef) string {
	return fmt.Sprintf(`📅 %s 可選日期：

週六：%s
週日：%s

請告訴我您要哪幾天（例如：11號、12號、26號）`,
		target.Display(),
		joinDisplays(dates.Saturdays(target)),
		joinDisplays(dates.Sundays(target)))
}

func datesUpdatedMessage(selected []dates.SelectedDate, invalid []int, target window.MonthRef) string {
	msg := fmt.Sprintf(`✅ 日期已更新！

📍 目前選擇：%s`, joinDisplays(selected))
	if len(invalid) > 0 {
		msg += fmt.Sprintf("\n（%d月沒有%s，已忽略）", int(target.Month), dates.FormatInvalid(invalid))
	}
	msg += "\n\n🔄 還要改嗎？直接說新的日期\n✅ 滿意請說「好」完成選擇"
	return msg
}

func confirmPromptMessage(sess *session.Session) string {
	return fmt.Sprintf(`%s

✅ 確認請說「好」或「對」
📝 修改請說「改日期」或「改影片」`, applicationSummary(sess))
}

func confirmIntentMessage(corrected string) string {
	return fmt.Sprintf("🤔 我理解您想要「%s」\n\n這樣正確嗎？請說「對」或「不對」", corrected)
}

func dateConfirmationMessage(original string, proposed []dates.SelectedDate) string {
	return fmt.Sprintf(`🤔 您說的是這些日期嗎？

原始輸入：「%s」
我的理解：%s

✅ 正確請說「對」
🔄 不對請直接再說一次日期`,
		original, joinDisplays(proposed))
}

func dateParseFailureMessage(input string) string {
	return fmt.Sprintf(`😕 我聽不太清楚「%s」

請用簡單的說法，例如：
• 「11號、12號、26號」

請說具體的日期號碼`, input)
}

func dateModificationCancelled(sess *session.Session) string {
	return "已取消日期修改\n\n" + applicationSummary(sess)
}

func videoModificationCancelled(sess *session.Session) string {
	return "已取消影片修改\n\n" + applicationSummary(sess)
}

func videoReceivedMessage(sess *session.Session) string {
	return fmt.Sprintf(`✅ 影片已收到！

%s

確認請說「好」，或繼續修改`, applicationSummary(sess))
}

func videoFallbackMessage(sess *session.Session) string {
	return fmt.Sprintf(`😕 影片儲存失敗，將改用常用影片

%s

確認請說「好」，或再傳一次影片`, applicationSummary(sess))
}

func echoUnderstandingMessage(original, corrected string, confidence float64) string {
	return fmt.Sprintf(`🤔 AI理解結果

原始輸入：「%s」
可能是：「%s」
信心度：%.0f%%

請確認我的理解是否正確`, original, corrected, confidence*100)
}

func rephraseMessage(original string) string {
	return fmt.Sprintf(`😕 我不太確定您的意思

原始輸入：「%s」

請用更清楚的方式表達，例如：
• 「申請」
• 「測試」
• 「幫助」`, original)
}

func understoodButIdleMessage(corrected string) string {
	return fmt.Sprintf("理解您的意思：「%s」\n\n請說「申請」開始申請流程", corrected)
}

func testStatusMessage(now time.Time, open bool) string {
	windowStatus := "已關閉"
	if open {
		windowStatus = "開放中"
	}
	return fmt.Sprintf(`✅ 系統測試正常！

• AI語意解析：運作中
• 狀態管理：運作中
• 日期計算：運作中
• 申請窗口：%s

⏰ 時間：%s`, windowStatus, now.Format("2006/01/02 15:04"))
}

func basicModeMessage(text string) string {
	return fmt.Sprintf("收到訊息：「%s」\n\n我是街頭藝人申請助手，目前使用基本處理模式。\n\n如需申請請說「申請」\n如需測試請說「測試」", text)
}

func basicApplyMessage(text string) string {
	return fmt.Sprintf("收到申請需求！\n\n目前是基本處理模式，AI功能暫時不可用。\n\n原始訊息：「%s」", text)
}

func callbackSuccessMessage() string {
	return "✅ 申請已完成！\n\n主辦單位已收到您的申請文件\n🔔 審核結果會再通知您"
}

func callbackFailureMessage(reason string) string {
	msg := "❌ 申請文件處理失敗"
	if strings.TrimSpace(reason) != "" {
		msg += fmt.Sprintf("\n\n原因：%s", reason)
	}
	msg += "\n\n請說「申請」重新申請，或聯絡協助人員"
	return msg
}

func videoDisplay(sess *session.Session) string {
	if sess.UseDefaultVideo {
		return "常用影片"
	}
	return "新上傳影片"
}

func joinDisplays(ds []dates.SelectedDate) string {
	parts := make([]string, 0, len(ds))
	for _, d := range ds {
		parts = append(parts, d.Display)
	}
	return strings.Join(parts, "、")
}
