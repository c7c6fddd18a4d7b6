package i18n

import (
	"strings"
	"sync"
)

// Message identifiers. Placeholders in braces are filled from the data map.
const (
	MsgInvalidType    = "invalid_type"     // {expected} {received}
	MsgStringMin      = "string.min"       // {min}
	MsgStringMax      = "string.max"       // {max}
	MsgStringLength   = "string.length"    // {length}
	MsgStringPattern  = "string.pattern"   // {pattern}
	MsgStringStarts   = "string.starts"    // {prefix}
	MsgStringEnds     = "string.ends"      // {suffix}
	MsgStringNotEmpty = "string.not_empty" //
	MsgStringFormat   = "string.format"    // {format}
	MsgNumberMin      = "number.min"       // {min}
	MsgNumberMax      = "number.max"       // {max}
	MsgNumberPositive = "number.positive"  //
	MsgNumberNegative = "number.negative"  //
	MsgNumberInt      = "number.int"       //
	MsgNumberFloat    = "number.float"     //
	MsgNumberFinite   = "number.finite"    //
	MsgNumberBetween  = "number.between"   // {min} {max}
	MsgArrayMin       = "array.min"        // {min}
	MsgArrayMax       = "array.max"        // {max}
	MsgArrayLength    = "array.length"     // {length}
	MsgArrayNoEmpty   = "array.noempty"    //
	MsgObjectRequired = "object.required"  // {keys}
	MsgCustom         = "custom"           // {rule}
	MsgParseError     = "parse_error"      //
)

// Translator retrieves localized messages for message identifiers.
// data provides optional metadata to embed in the message (for example,
// "expected" or "min").
type Translator interface {
	Message(id string, data map[string]string) string
}

var dictionaries = map[string]map[string]string{
	"en": {
		MsgInvalidType:    "Expected {expected}, received {received}",
		MsgStringMin:      "Expected string to contain at least {min} character(s)",
		MsgStringMax:      "Expected string to contain at most {max} character(s)",
		MsgStringLength:   "Expected string to contain exactly {length} character(s)",
		MsgStringPattern:  "Expected string to match pattern {pattern}",
		MsgStringStarts:   "Expected string to start with \"{prefix}\"",
		MsgStringEnds:     "Expected string to end with \"{suffix}\"",
		MsgStringNotEmpty: "Expected string to be non-empty",
		MsgStringFormat:   "Invalid {format}",
		MsgNumberMin:      "Expected value to be greater than or equal to {min}",
		MsgNumberMax:      "Expected value to be less than or equal to {max}",
		MsgNumberPositive: "Expected value to be positive",
		MsgNumberNegative: "Expected value to be negative",
		MsgNumberInt:      "Expected integer, received float",
		MsgNumberFloat:    "Expected float, received integer",
		MsgNumberFinite:   "Expected finite number",
		MsgNumberBetween:  "Expected value to be between {min} and {max}",
		MsgArrayMin:       "Expected array to contain at least {min} element(s)",
		MsgArrayMax:       "Expected array to contain at most {max} element(s)",
		MsgArrayLength:    "Expected array to contain exactly {length} element(s)",
		MsgArrayNoEmpty:   "Expected array to be non-empty",
		MsgObjectRequired: "Missing required key(s): {keys}",
		MsgCustom:         "Failed rule {rule}",
		MsgParseError:     "parse error",
	},
	"ja": {
		MsgInvalidType:    "{expected} が必要ですが {received} を受け取りました",
		MsgStringMin:      "{min} 文字以上である必要があります",
		MsgStringMax:      "{max} 文字以下である必要があります",
		MsgStringLength:   "ちょうど {length} 文字である必要があります",
		MsgStringPattern:  "パターン {pattern} に一致しません",
		MsgStringStarts:   "\"{prefix}\" で始まる必要があります",
		MsgStringEnds:     "\"{suffix}\" で終わる必要があります",
		MsgStringNotEmpty: "空文字列は許可されません",
		MsgStringFormat:   "{format} の形式が不正です",
		MsgNumberMin:      "{min} 以上である必要があります",
		MsgNumberMax:      "{max} 以下である必要があります",
		MsgNumberPositive: "正の数である必要があります",
		MsgNumberNegative: "負の数である必要があります",
		MsgNumberInt:      "整数である必要があります",
		MsgNumberFloat:    "小数である必要があります",
		MsgNumberFinite:   "有限の数である必要があります",
		MsgNumberBetween:  "{min} 以上 {max} 以下である必要があります",
		MsgArrayMin:       "要素が {min} 個以上必要です",
		MsgArrayMax:       "要素は {max} 個以下である必要があります",
		MsgArrayLength:    "要素はちょうど {length} 個である必要があります",
		MsgArrayNoEmpty:   "空の配列は許可されません",
		MsgObjectRequired: "必須キーが不足しています: {keys}",
		MsgCustom:         "ルール {rule} を満たしていません",
		MsgParseError:     "解析エラー",
	},
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(id string, data map[string]string) string {
	tmpl, ok := dictionaries[t.lang][id]
	if !ok {
		if tmpl, ok = dictionaries["en"][id]; !ok {
			return id
		}
	}
	return render(tmpl, data)
}

func render(tmpl string, data map[string]string) string {
	if len(data) == 0 || !strings.Contains(tmpl, "{") {
		return tmpl
	}
	pairs := make([]string, 0, len(data)*2)
	for k, v := range data {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

var (
	mu                sync.RWMutex
	currentTranslator Translator = dictTranslator{lang: "en"}
)

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if _, ok := dictionaries[lang]; !ok {
		lang = "en"
	}
	SetTranslator(dictTranslator{lang: lang})
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version). nil restores English.
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	mu.Lock()
	currentTranslator = tr
	mu.Unlock()
}

// T fetches a message for the given id using the current Translator.
func T(id string, data map[string]string) string {
	mu.RLock()
	tr := currentTranslator
	mu.RUnlock()
	return tr.Message(id, data)
}
