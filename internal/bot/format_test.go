package bot

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/BiryukovValeri/rag-knowledge-base/internal/rag"
)

func TestFormatAnswer(t *testing.T) {
	citations := []rag.Citation{
		{BookTitle: "Стратегический интеллект", BookSeries: "Интеллекты"},
		{BookTitle: "Финансовый интеллект", BookSeries: "Интеллекты"},
	}

	got := FormatAnswer("Краткий ответ.", citations)

	if !strings.HasPrefix(got, "<b>Ответ</b>\n\nКраткий ответ.") {
		t.Errorf("unexpected prefix: %q", got)
	}
	if !strings.Contains(got, "<b>Источники:</b>\n• Стратегический интеллект (Интеллекты)\n• Финансовый интеллект (Интеллекты)") {
		t.Errorf("sources block missing: %q", got)
	}
}

func TestFormatAnswer_LimitsSources(t *testing.T) {
	citations := make([]rag.Citation, 5)
	for i := range citations {
		citations[i] = rag.Citation{BookTitle: "Книга", BookSeries: "Серия"}
	}

	got := FormatAnswer("Ответ.", citations)

	if count := strings.Count(got, "• "); count != 3 {
		t.Errorf("source lines = %v, want 3", count)
	}
}

func TestFormatAnswer_UnknownMeta(t *testing.T) {
	got := FormatAnswer("Ответ.", []rag.Citation{{}})

	if !strings.Contains(got, "• Без названия (серия не указана)") {
		t.Errorf("fallback labels missing: %q", got)
	}
}

func TestFormatAnswer_NoCitations(t *testing.T) {
	got := FormatAnswer("Ответ.", nil)

	if strings.Contains(got, "Источники") {
		t.Errorf("unexpected sources block: %q", got)
	}
}

func TestFormatAnswer_EmptyAnswer(t *testing.T) {
	got := FormatAnswer("   ", nil)

	if !strings.Contains(got, "Ответ не получен.") {
		t.Errorf("placeholder missing: %q", got)
	}
}

func TestTrimForTelegram(t *testing.T) {
	short := "короткий текст"
	if got := TrimForTelegram(short); got != short {
		t.Errorf("short text modified: %q", got)
	}

	long := strings.Repeat("ф", 5000)
	got := TrimForTelegram(long)

	if !strings.HasSuffix(got, "[Ответ обрезан до лимита Telegram]") {
		t.Errorf("truncation notice missing: %q", got[len(got)-80:])
	}
	if n := utf8.RuneCountInString(got); n > 4096 {
		t.Errorf("trimmed text is %v runes, above the Telegram cap", n)
	}
	if !strings.HasPrefix(got, strings.Repeat("ф", 100)) {
		t.Error("trimmed text does not preserve the prefix")
	}
}

func TestShorten(t *testing.T) {
	tests := []struct {
		name  string
		input string
		width int
		want  string
	}{
		{
			name:  "fits",
			input: "короткий вопрос",
			width: 64,
			want:  "короткий вопрос",
		},
		{
			name:  "trimmed with ellipsis",
			input: strings.Repeat("а", 80),
			width: 10,
			want:  strings.Repeat("а", 9) + "…",
		},
		{
			name:  "newlines collapse",
			input: "первая\nвторая",
			width: 64,
			want:  "первая вторая",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := shorten(tt.input, tt.width); got != tt.want {
				t.Errorf("shorten(%q, %v) = %q, want %q", tt.input, tt.width, got, tt.want)
			}
		})
	}
}
