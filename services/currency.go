package services

import (
	"strings"

	"golang.org/x/text/language"
)

var regionCurrency = map[string]string{
	"US": "USD",
	"GB": "GBP",
	"CA": "CAD",
	"AU": "AUD",
	"NZ": "NZD",
	"JP": "JPY",
	"CN": "CNY",
	"HK": "HKD",
	"SG": "SGD",
	"KR": "KRW",
	"IN": "INR",
	"EU": "EUR",
	"DE": "EUR",
	"FR": "EUR",
	"ES": "EUR",
	"IT": "EUR",
	"NL": "EUR",
	"BE": "EUR",
	"CH": "CHF",
}

// CurrencyForLocale infers the search currency from a locale such as
// "en-GB" or "de_DE.UTF-8". Only an explicit region counts; anything else
// falls back to base.
func CurrencyForLocale(locale, base string) string {
	locale = strings.TrimSpace(locale)
	if i := strings.IndexAny(locale, ".@"); i >= 0 {
		locale = locale[:i]
	}
	locale = strings.ReplaceAll(locale, "_", "-")
	if locale == "" || locale == "C" || locale == "POSIX" {
		return base
	}

	tag, err := language.Parse(locale)
	if err != nil {
		return base
	}
	region, conf := tag.Region()
	if conf != language.Exact {
		return base
	}
	if cur, ok := regionCurrency[region.String()]; ok {
		return cur
	}
	return base
}

// PreferredLocale picks the highest-weighted tag of an Accept-Language
// header. Empty when the header is missing or unparsable.
func PreferredLocale(acceptLanguage string) string {
	if strings.TrimSpace(acceptLanguage) == "" {
		return ""
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return ""
	}
	return tags[0].String()
}
