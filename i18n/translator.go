package i18n

import "strings"

// Translator retrieves localized messages for validation error codes.
// data provides optional metadata to embed in the message (for example,
// "maximum" or "attributes"), referenced as %{key} in templates.
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

var dictionaries = map[string]map[string]string{
	"en": {
		"blank":         "can't be blank",
		"too_long":      "is too long (maximum is %{maximum})",
		"too_short":     "is too short (minimum is %{minimum})",
		"too_small":     "must be greater than or equal to %{minimum}",
		"too_big":       "must be less than or equal to %{maximum}",
		"inclusion":     "is not included in the list",
		"invalid":       "is invalid",
		"format":        "has an invalid format",
		"not_a_number":  "is not a number",
		"exactly_one":   "must have exactly one of: %{attributes}",
		"at_most_one":   "must have at most one of: %{attributes}",
		"at_least_one":  "must have at least one of: %{attributes}",
		"uniqueness":    "has duplicate value %{value}",
		"duplicate_key": "is given more than once; the last value wins",
	},
	"ja": {
		"blank":         "を入力してください",
		"too_long":      "は%{maximum}以下にしてください",
		"too_short":     "は%{minimum}以上にしてください",
		"too_small":     "は%{minimum}以上の値にしてください",
		"too_big":       "は%{maximum}以下の値にしてください",
		"inclusion":     "は一覧にありません",
		"invalid":       "は不正な値です",
		"format":        "の形式が不正です",
		"not_a_number":  "は数値で入力してください",
		"exactly_one":   "は次のいずれか1つだけを指定してください: %{attributes}",
		"at_most_one":   "は次のうち1つまでしか指定できません: %{attributes}",
		"at_least_one":  "は次のいずれかを指定してください: %{attributes}",
		"uniqueness":    "に重複した値があります: %{value}",
		"duplicate_key": "が複数回指定されています（最後の値が使われます）",
	},
}

func (t dictTranslator) Message(code string, data map[string]string) string {
	tmpl, ok := dictionaries[t.lang][code]
	if !ok {
		return code
	}
	return Interpolate(tmpl, data)
}

// Interpolate replaces %{key} placeholders with values from data.
// Placeholders without a value are left untouched.
func Interpolate(tmpl string, data map[string]string) string {
	if len(data) == 0 || !strings.Contains(tmpl, "%{") {
		return tmpl
	}
	pairs := make([]string, 0, len(data)*2)
	for k, v := range data {
		pairs = append(pairs, "%{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if _, ok := dictionaries[lang]; !ok {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }
