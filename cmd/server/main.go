package main

import (
	"log"
	"net/http"
	"os"

	"health-assistant/internal/advice"
	"health-assistant/internal/auth"
	"health-assistant/internal/handlers"
	"health-assistant/internal/storage"
	"health-assistant/internal/trends"

	_ "github.com/joho/godotenv/autoload"
)

func main() {
	dbPath := envOr("DB_PATH", "precision_health.db")
	db, err := storage.NewDB(dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := db.CleanExpiredSessions(); err != nil {
		log.Printf("Failed to clean expired sessions: %v", err)
	}

	if err := seedAdminUser(db); err != nil {
		log.Fatalf("Failed to seed admin user: %v", err)
	}

	adviser := advice.NewClient(os.Getenv("GEMINI_API_KEY"))
	trendSource := trends.NewClient(os.Getenv("TRENDS_URL"))
	secureCookies := os.Getenv("SECURE_COOKIES") == "true"

	h := handlers.NewHandlers(db, "web/templates", secureCookies, adviser, trendSource)
	mux := setupRouter(h, "web/static")

	port := envOr("PORT", "8080")
	log.Printf("Server listening on http://localhost:%s", port)
	log.Fatal(http.ListenAndServe(":"+port, mux))
}

func setupRouter(h *handlers.Handlers, staticDir string) *http.ServeMux {
	mux := http.NewServeMux()

	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))

	// Unauthenticated flow
	mux.HandleFunc("GET /login", h.LoginForm)
	mux.HandleFunc("POST /login", h.Login)
	mux.HandleFunc("GET /signup", h.SignupForm)
	mux.HandleFunc("POST /signup", h.Signup)
	mux.HandleFunc("POST /logout", h.Logout)

	// Protected pages
	mux.Handle("GET /dashboard", h.AuthMiddleware(http.HandlerFunc(h.Dashboard)))
	mux.Handle("POST /dashboard/recommendations", h.AuthMiddleware(http.HandlerFunc(h.GenerateRecommendations)))
	mux.Handle("GET /consultation", h.AuthMiddleware(http.HandlerFunc(h.Consultation)))
	mux.Handle("POST /consultation/log", h.AuthMiddleware(http.HandlerFunc(h.LogConsultation)))
	mux.Handle("GET /profile", h.AuthMiddleware(http.HandlerFunc(h.ProfileForm)))
	mux.Handle("POST /profile", h.AuthMiddleware(http.HandlerFunc(h.UpdateProfile)))
	mux.Handle("POST /visits", h.AuthMiddleware(http.HandlerFunc(h.ScheduleVisit)))

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
	})

	return mux
}

// seedAdminUser creates a bootstrap account on an empty database when
// ADMIN_EMAIL and ADMIN_PASSWORD are set. Useful for first deploys and e2e runs.
func seedAdminUser(db *storage.DB) error {
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		return nil
	}

	count, err := db.UserCount()
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	_, err = db.CreateUser(storage.NewUser{
		Name:         envOr("ADMIN_NAME", "Admin"),
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		return err
	}
	log.Printf("Seeded admin user %s", email)
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
