package middleware

import (
	"context"
	"net/http"

	"github.com/Exios66/Cronbach-Alpha/internal/utils"
)

type ctxKey int

const localeKey ctxKey = 1

// supportedLocales mirrors the translation tables in utils.
var supportedLocales = []string{"en", "zh"}

// LocaleMiddleware resolves the request locale from the lang query
// parameter or the Accept-Language header and stores it in the context.
func LocaleMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		locale := utils.DetermineLocale(r.URL.Query().Get("lang"), r.Header.Get("Accept-Language"), supportedLocales, "en")
		ctx := context.WithValue(r.Context(), localeKey, locale)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// LocaleFromContext retrieves the locale stored by LocaleMiddleware.
func LocaleFromContext(ctx context.Context) string {
	if v := ctx.Value(localeKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return "en"
}
