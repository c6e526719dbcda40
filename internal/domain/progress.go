package domain

import (
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var countPrinter = message.NewPrinter(language.English)

// FormatProgress renders progress as a percentage with one decimal.
// A zero total always renders "0%".
func FormatProgress(s JobStatus) string {
	if s.Total == 0 {
		return "0%"
	}
	pct := float64(s.Progress) / float64(s.Total) * 100
	return strconv.FormatFloat(pct, 'f', 1, 64) + "%"
}

// FormatCount renders n with thousands separators, e.g. 750000 -> "750,000".
func FormatCount(n int) string {
	return countPrinter.Sprintf("%d", n)
}
