package bot

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/BiryukovValeri/rag-knowledge-base/internal/rag"
)

const (
	// safeLimit stays below Telegram's 4096-character message cap so the
	// truncation notice always fits.
	safeLimit   = 3800
	trimSuffix  = "\n\n[Ответ обрезан до лимита Telegram]"
	maxSources  = 3
	noAnswerMsg = "Ответ не получен."
)

// TrimForTelegram cuts text to the safe message length, appending a notice
// when something was dropped.
func TrimForTelegram(text string) string {
	if utf8.RuneCountInString(text) <= safeLimit {
		return text
	}
	runes := []rune(text)
	return string(runes[:safeLimit]) + trimSuffix
}

// FormatAnswer renders an answer as Telegram HTML: a bold header, the answer
// body, and up to three source lines.
func FormatAnswer(answer string, citations []rag.Citation) string {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		answer = noAnswerMsg
	}

	var lines []string
	for i, c := range citations {
		if i >= maxSources {
			break
		}
		title := c.BookTitle
		if title == "" {
			title = "Без названия"
		}
		series := c.BookSeries
		if series == "" {
			series = "серия не указана"
		}
		lines = append(lines, fmt.Sprintf("• %s (%s)", title, series))
	}

	body := fmt.Sprintf("<b>Ответ</b>\n\n%s", answer)
	if len(lines) > 0 {
		body += "\n\n<b>Источники:</b>\n" + strings.Join(lines, "\n")
	}

	return TrimForTelegram(body)
}

// shorten cuts s to at most width runes, appending an ellipsis when trimmed.
// Newlines collapse into spaces so the result fits a single-line preview.
func shorten(s string, width int) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:width-1])) + "…"
}
