package i18n

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"
)

// 支持的语言
const (
	LocalePtBR = "pt-BR"
	LocaleEnUS = "en-US"

	DefaultLocale = LocalePtBR
	localeHeader  = "X-Locale"
)

var supportedTags = []language.Tag{
	language.BrazilianPortuguese,
	language.AmericanEnglish,
}

var matcher = language.NewMatcher(supportedTags)

// ResolveLocale 解析请求语言：X-Locale 优先，其次 Accept-Language
func ResolveLocale(c *gin.Context) string {
	if c == nil || c.Request == nil {
		return DefaultLocale
	}
	if locale := NormalizeLocale(c.GetHeader(localeHeader)); locale != "" {
		return locale
	}
	accept := strings.TrimSpace(c.GetHeader("Accept-Language"))
	if accept == "" {
		return DefaultLocale
	}
	tags, _, err := language.ParseAcceptLanguage(accept)
	if err != nil || len(tags) == 0 {
		return DefaultLocale
	}
	_, index, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return DefaultLocale
	}
	return localeFromTag(supportedTags[index])
}

// NormalizeLocale 归一化语言标识，不支持时返回空
func NormalizeLocale(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	tag, err := language.Parse(raw)
	if err != nil {
		return ""
	}
	base, _ := tag.Base()
	switch base.String() {
	case "pt":
		return LocalePtBR
	case "en":
		return LocaleEnUS
	default:
		return ""
	}
}

func localeFromTag(tag language.Tag) string {
	if tag == language.AmericanEnglish {
		return LocaleEnUS
	}
	return LocalePtBR
}

// T 翻译消息键；缺失时回退默认语言，再回退键本身
func T(locale, key string) string {
	if table, ok := messages[locale]; ok {
		if msg, ok := table[key]; ok {
			return msg
		}
	}
	if msg, ok := messages[DefaultLocale][key]; ok {
		return msg
	}
	return key
}

// Sprintf 翻译带参数的消息
func Sprintf(locale, key string, args ...interface{}) string {
	return fmt.Sprintf(T(locale, key), args...)
}
