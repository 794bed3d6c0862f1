package utils

// Minimal server-side i18n for fixed keys; clients localize everything else.

var translations = map[string]map[string]string{
	"en": {
		"health.ok": "ok",
	},
	"zh": {
		"health.ok": "好的",
	},
}

// T returns the translation of key in locale, falling back to English and
// finally to the key itself.
func T(locale, key string) string {
	if v, ok := translations[locale][key]; ok {
		return v
	}
	if v, ok := translations["en"][key]; ok {
		return v
	}
	return key
}
