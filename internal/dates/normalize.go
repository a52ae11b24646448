package dates

import "strings"

// chineseDigits maps spoken Chinese numerals onto Arabic digits so that
// the day extractor only has to deal with one numeral system. Pairs are
// ordered longest-first: strings.Replacer tries patterns in argument
// order at each position, so 三十一 must win over 三十, and 三十 over 三.
// The bare 十X forms (十一 through 十九, plus lone 十) come after the
// X十Y compounds so that 二十一 never decomposes into 2 + 十一.
var numeralReplacer = strings.NewReplacer(
	"三十一", "31",
	"三十", "30",
	"二十九", "29",
	"二十八", "28",
	"二十七", "27",
	"二十六", "26",
	"二十五", "25",
	"二十四", "24",
	"二十三", "23",
	"二十二", "22",
	"二十一", "21",
	"二十", "20",
	"十九", "19",
	"十八", "18",
	"十七", "17",
	"十六", "16",
	"十五", "15",
	"十四", "14",
	"十三", "13",
	"十二", "12",
	"十一", "11",
	"十", "10",
	"九", "9",
	"八", "8",
	"七", "7",
	"六", "6",
	"五", "5",
	"四", "4",
	"三", "3",
	"兩", "2",
	"倆", "2",
	"二", "2",
	"一", "1",
	"零", "0",
)

// Normalize rewrites spoken Chinese numerals in text into Arabic
// digits. Voice input transcribes dates as words ("二十六號"), and the
// rest of the pipeline only understands digits ("26號"). Text that is
// already numeric passes through unchanged.
func Normalize(text string) string {
	return numeralReplacer.Replace(text)
}
