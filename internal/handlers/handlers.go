package handlers

import (
	"context"
	"errors"
	"health-assistant/internal/auth"
	"health-assistant/internal/models"
	"health-assistant/internal/storage"
	"health-assistant/internal/trends"
	"html/template"
	"log"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Context key type to avoid collisions.
type contextKey string

const (
	// UserContextKey is the context key for the authenticated user.
	UserContextKey contextKey = "user"
	// SessionCookieName is the name of the session cookie.
	SessionCookieName = "session"
	// SessionDuration is how long sessions last (7 days).
	SessionDuration = 7 * 24 * time.Hour
)

// ErrUnauthorized is returned by CurrentUser when the request carries no
// authenticated identity.
var ErrUnauthorized = errors.New("login required")

// Adviser produces free-text health recommendations for a user.
type Adviser interface {
	Recommend(ctx context.Context, user *models.User) (string, error)
}

// TrendSource fetches trending health topics.
type TrendSource interface {
	Fetch(ctx context.Context) ([]trends.Trend, error)
}

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	db           *storage.DB
	templateDir  string
	secureCookie bool
	adviser      Adviser
	trends       TrendSource
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *storage.DB, templateDir string, secureCookie bool, adviser Adviser, trendSource TrendSource) *Handlers {
	return &Handlers{
		db:           db,
		templateDir:  templateDir,
		secureCookie: secureCookie,
		adviser:      adviser,
		trends:       trendSource,
	}
}

// CurrentUser returns the authenticated user for the request. It fails with
// ErrUnauthorized rather than returning an empty identity, so a handler
// reached without a valid session cannot touch user data.
func CurrentUser(r *http.Request) (*models.User, error) {
	if user, ok := r.Context().Value(UserContextKey).(*models.User); ok && user != nil {
		return user, nil
	}
	return nil, ErrUnauthorized
}

// AuthMiddleware wraps handlers to require authentication. It is the single
// authorization checkpoint: requests without a valid session are redirected
// to the login page and the protected handler never runs.
// It also implements rolling sessions: if a session is past the halfway point
// of its lifetime, it automatically renews the session.
func (h *Handlers) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil || cookie.Value == "" {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}

		sessionInfo, err := h.db.ValidateSessionWithInfo(cookie.Value)
		if err != nil {
			// Invalid or expired session, clear the cookie
			h.clearSessionCookie(w)
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}

		// Rolling session: renew if past halfway point
		// This keeps active users logged in while still expiring inactive sessions
		now := time.Now()
		timeUntilExpiry := sessionInfo.ExpiresAt.Sub(now)
		halfSessionDuration := SessionDuration / 2

		if timeUntilExpiry < halfSessionDuration {
			newExpiresAt := now.Add(SessionDuration)
			if err := h.db.RenewSession(cookie.Value, newExpiresAt); err == nil {
				h.setSessionCookie(w, cookie.Value)
			}
			// If renewal fails, just continue with the current session
		}

		ctx := context.WithValue(r.Context(), UserContextKey, sessionInfo.User)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// LoginViewModel holds data for the login page.
type LoginViewModel struct {
	Error string
}

// LoginForm renders the login page.
func (h *Handlers) LoginForm(w http.ResponseWriter, r *http.Request) {
	// If already logged in, go straight to the dashboard
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		if _, err := h.db.ValidateSession(cookie.Value); err == nil {
			http.Redirect(w, r, "/dashboard", http.StatusFound)
			return
		}
	}
	h.render(w, r, "login.html", LoginViewModel{})
}

// Login handles the login form submission.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, r, "login.html", LoginViewModel{Error: "Invalid form submission"})
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")

	if email == "" || password == "" {
		h.render(w, r, "login.html", LoginViewModel{Error: "Email and password are required"})
		return
	}

	user, err := h.db.GetUserByEmail(email)
	if err != nil || !auth.CheckPassword(password, user.PasswordHash) {
		h.render(w, r, "login.html", LoginViewModel{Error: "Invalid email or password."})
		return
	}

	if err := h.startSession(w, user.ID); err != nil {
		log.Printf("Failed to start session: %v", err)
		h.render(w, r, "login.html", LoginViewModel{Error: "An error occurred. Please try again."})
		return
	}

	h.logActivity(user.ID, "Logged in")
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

// SignupViewModel holds data for the signup page.
type SignupViewModel struct {
	Error   string
	Genders []string
}

var genders = []string{"Male", "Female", "Other"}

// SignupForm renders the signup page.
func (h *Handlers) SignupForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "signup.html", SignupViewModel{Genders: genders})
}

// Signup handles the signup form submission.
func (h *Handlers) Signup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, r, "signup.html", SignupViewModel{Error: "Invalid form submission", Genders: genders})
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")

	if name == "" || email == "" || password == "" {
		h.render(w, r, "signup.html", SignupViewModel{Error: "Please fill all required fields.", Genders: genders})
		return
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		log.Printf("Failed to hash password: %v", err)
		h.render(w, r, "signup.html", SignupViewModel{Error: "An error occurred. Please try again.", Genders: genders})
		return
	}

	age, _ := strconv.Atoi(r.FormValue("age"))
	height, _ := strconv.ParseFloat(r.FormValue("height"), 64)
	weight, _ := strconv.ParseFloat(r.FormValue("weight"), 64)

	user, err := h.db.CreateUser(storage.NewUser{
		Name:              name,
		Email:             email,
		PasswordHash:      hash,
		Age:               age,
		Gender:            r.FormValue("gender"),
		Height:            height,
		Weight:            weight,
		MedicalConditions: r.FormValue("medical_conditions"),
		HealthGoals:       r.FormValue("health_goals"),
	})
	if errors.Is(err, storage.ErrEmailTaken) {
		h.render(w, r, "signup.html", SignupViewModel{Error: "An account with that email already exists.", Genders: genders})
		return
	}
	if err != nil {
		log.Printf("Failed to create user: %v", err)
		h.render(w, r, "signup.html", SignupViewModel{Error: "An error occurred. Please try again.", Genders: genders})
		return
	}

	if err := h.startSession(w, user.ID); err != nil {
		log.Printf("Failed to start session: %v", err)
		// Account exists; send them through the login form instead
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	h.logActivity(user.ID, "Signed up")
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

// Logout handles user logout.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		if user, err := h.db.ValidateSession(cookie.Value); err == nil {
			h.logActivity(user.ID, "Logged out")
		}
		if err := h.db.DeleteSession(cookie.Value); err != nil {
			log.Printf("Failed to delete session: %v", err)
		}
	}
	h.clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusFound)
}

// startSession creates a session row and sets the session cookie.
func (h *Handlers) startSession(w http.ResponseWriter, userID int64) error {
	token, err := auth.GenerateSessionToken()
	if err != nil {
		return err
	}
	expiresAt := time.Now().Add(SessionDuration)
	if err := h.db.CreateSession(token, userID, expiresAt); err != nil {
		return err
	}
	h.setSessionCookie(w, token)
	return nil
}

func (h *Handlers) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(SessionDuration.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handlers) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

// logActivity records a telemetry event. Failures are logged and swallowed:
// analytics writes must never fail a request.
func (h *Handlers) logActivity(userID int64, description string) {
	if err := h.db.LogActivity(userID, description); err != nil {
		log.Printf("Failed to log activity for user %d: %v", userID, err)
	}
}

func (h *Handlers) render(w http.ResponseWriter, r *http.Request, viewName string, data any) {
	tmpl, err := template.ParseFiles(filepath.Join(h.templateDir, "base.html"), filepath.Join(h.templateDir, viewName))
	if err != nil {
		log.Printf("Template error: %v", err)
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}
	target := "base.html"
	if r.Header.Get("HX-Request") == "true" {
		target = "content"
	}
	if err := tmpl.ExecuteTemplate(w, target, data); err != nil {
		log.Printf("Template execution error: %v", err)
	}
}
