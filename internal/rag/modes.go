package rag

// Answer modes. Each mode pairs a system prompt with an instruction appended
// after the context and a sampling temperature.
const (
	ModeSynthesis = "synthesis"
	ModeExtract   = "extract"
	ModeBullets   = "bullets"
	ModeShort     = "short"
)

type modeSpec struct {
	systemPrompt string
	instruction  string
	temperature  float32
}

var modeSpecs = map[string]modeSpec{
	ModeSynthesis: {
		systemPrompt: "Ты отвечаешь ТОЛЬКО на основе переданных фрагментов книг. " +
			"Твоя задача — синтезировать и обобщить идеи из фрагментов, " +
			"но не придумывать факты, которых там нет. " +
			"Можно перефразировать и связывать мысли, но любые выводы должны " +
			"логически следовать из текстов. Если данных недостаточно, прямо скажи об этом. " +
			"Отвечай по-русски, структурированно и без лишней воды.",
		instruction: "Сформулируй связный обобщённый ответ на вопрос, аккуратно объединяя идеи из фрагментов. " +
			"Поясни ключевые смыслы и взаимосвязи, но не выходи за рамки того, что явно или неявно " +
			"следует из текстов. " +
			"В конце добавь блок «Источники» с кратким перечислением книг по номерам Источников (1, 2, …).",
		temperature: 0.2,
	},
	ModeExtract: {
		systemPrompt: "Ты отвечаешь ТОЛЬКО на основе переданных фрагментов книг. " +
			"Твоя задача — максимально буквальный, аккуратный ответ. " +
			"Избегай свободных интерпретаций и обобщений, не придумывай того, " +
			"чего нет в текстах. Если данных недостаточно, прямо укажи это. " +
			"Отвечай по-русски, кратко и по существу.",
		instruction: "Сформулируй краткий ответ (3–6 предложений), опираясь на дословные формулировки " +
			"из фрагментов. При необходимости цитируй ключевые фразы. " +
			"Не добавляй собственных гипотез. " +
			"В конце добавь блок «Источники» с перечислением использованных Источников (1, 2, …) " +
			"без пересказа их содержания.",
		temperature: 0.1,
	},
	ModeBullets: {
		systemPrompt: "Ты отвечаешь ТОЛЬКО на основе переданных фрагментов книг. " +
			"Твоя задача — выделить ключевые тезисы, не придумывая фактов, которых нет в текстах. " +
			"Если данных недостаточно, прямо скажи об этом. " +
			"Отвечай по-русски, ёмко и без лишней воды.",
		instruction: "Сформулируй ответ в виде списка из 3–7 ключевых тезисов по вопросу. " +
			"Каждый тезис — одно-два предложения, строго по материалу фрагментов. " +
			"В конце добавь блок «Источники» с перечислением книг по номерам Источников (1, 2, …).",
		temperature: 0.2,
	},
	ModeShort: {
		systemPrompt: "Ты отвечаешь ТОЛЬКО на основе переданных фрагментов книг. " +
			"Твоя задача — очень короткий точный ответ без рассуждений. " +
			"Если данных недостаточно, прямо скажи об этом. " +
			"Отвечай по-русски.",
		instruction: "Дай очень короткий ответ на вопрос, не длиннее 500 символов, " +
			"без вступлений и без блока источников.",
		temperature: 0.1,
	},
}

// ValidMode reports whether mode names a known answer mode.
func ValidMode(mode string) bool {
	_, ok := modeSpecs[mode]
	return ok
}

// Modes returns the known answer mode names.
func Modes() []string {
	return []string{ModeSynthesis, ModeExtract, ModeBullets, ModeShort}
}
