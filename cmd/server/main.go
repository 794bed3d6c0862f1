package main

import (
	"encoding/json"
	"log"
	"net/http"
	"os"

	"github.com/Exios66/Cronbach-Alpha/internal/api"
	"github.com/Exios66/Cronbach-Alpha/internal/middleware"
	"github.com/Exios66/Cronbach-Alpha/internal/utils"
)

func main() {
	addr := utils.SafeEnv("CRONBACH_ADDR", ":8080")
	commit := os.Getenv("CRONBACH_COMMIT")
	buildTime := os.Getenv("CRONBACH_BUILD_TIME")

	store, err := openStore()
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	if os.Getenv("CRONBACH_SEED") != "" {
		d := api.SeedExample(store)
		log.Printf("seeded example dataset %s (%d items, %d rows)", d.ID, len(d.Items), len(d.Rows))
	}

	mux := http.NewServeMux()
	// API routes
	api.NewRouterWithStore(store).Register(mux)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		locale := middleware.LocaleFromContext(r.Context())
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":         true,
			"name":       "Cronbach Alpha API",
			"locale":     locale,
			"msg":        utils.T(locale, "health.ok"),
			"commit":     commit,
			"build_time": buildTime,
		})
	})

	mux.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"commit":     commit,
			"build_time": buildTime,
		})
	})

	// Wrap mux with auth, locale, cache and header middleware
	handler := middleware.CORS(middleware.SecureHeaders(middleware.NoStore(middleware.LocaleMiddleware(middleware.WithAuth(mux)))))

	log.Printf("Cronbach Alpha server listening on %s", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
