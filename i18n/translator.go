// Package i18n translates issue codes into human readable messages.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
)

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "expected" or "property").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

var messages = map[string]map[string]string{
	"en": {
		"unknown_type":         "unknown type {token} for property {property} of {struct}",
		"invalid_redefinition": "cannot redefine property {property} of {struct} as {declared_type}, inherited type is {inherited_type}",
		"invalid_default":      "invalid default value for property {property} of {struct}",
		"invalid_type":         "property {property} of {declaring_type} expects {expected}, {actual} given",
		"invalid_enum":         "invalid value {value} for enum {enum}",
		"undefined_property":   "undefined property {property} of {struct}",
		"invalid_state":        "invalid state: {reason}",
		"json_error":           "json error: {reason}",
	},
	"ja": {
		"unknown_type":         "{struct} のプロパティ {property} の型 {token} が不明です",
		"invalid_redefinition": "{struct} のプロパティ {property} を {declared_type} で再定義できません（継承元の型は {inherited_type}）",
		"invalid_default":      "{struct} のプロパティ {property} のデフォルト値が不正です",
		"invalid_type":         "{declaring_type} のプロパティ {property} には {expected} が必要ですが {actual} が渡されました",
		"invalid_enum":         "列挙型 {enum} に対して値 {value} は不正です",
		"undefined_property":   "{struct} に未定義のプロパティ {property} です",
		"invalid_state":        "不正な状態です: {reason}",
		"json_error":           "JSON エラー: {reason}",
	},
}

func (t dictTranslator) Message(code string, data map[string]string) string {
	dict, ok := messages[t.lang]
	if !ok {
		dict = messages["en"]
	}
	tmpl, ok := dict[code]
	if !ok {
		return code
	}
	return expand(tmpl, data)
}

// expand substitutes {key} placeholders; unknown placeholders become empty.
func expand(tmpl string, data map[string]string) string {
	if !strings.Contains(tmpl, "{") {
		return tmpl
	}
	b := &strings.Builder{}
	for {
		i := strings.IndexByte(tmpl, '{')
		if i < 0 {
			b.WriteString(tmpl)
			break
		}
		j := strings.IndexByte(tmpl[i:], '}')
		if j < 0 {
			b.WriteString(tmpl)
			break
		}
		b.WriteString(tmpl[:i])
		b.WriteString(data[tmpl[i+1:i+j]])
		tmpl = tmpl[i+j+1:]
	}
	return b.String()
}

var supported = []language.Tag{language.English, language.Japanese}

var matcher = language.NewMatcher(supported)

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language. Any BCP 47 tag is
// accepted ("ja-JP", "en-US", ...); unsupported languages fall back to English.
func SetLanguage(lang string) {
	_, idx, conf := matcher.Match(language.Make(lang))
	if conf == language.No || idx < 0 || idx >= len(supported) {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	base, _ := supported[idx].Base()
	currentTranslator = dictTranslator{lang: base.String()}
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
