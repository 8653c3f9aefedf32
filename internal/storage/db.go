package storage

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"health-assistant/internal/models"

	// Import sqlite driver
	_ "modernc.org/sqlite"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrEmailTaken is returned when an email is already registered.
	ErrEmailTaken = errors.New("email already registered")
)

// DB wraps a sql.DB connection.
type DB struct {
	conn *sql.DB
}

// NewDB opens a database connection and runs migrations.
func NewDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if err := conn.Ping(); err != nil {
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		return nil, err
	}

	return db, nil
}

func (db *DB) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			email TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			age INTEGER DEFAULT 0,
			gender TEXT DEFAULT '',
			height REAL DEFAULT 0,
			weight REAL DEFAULT 0,
			medical_conditions TEXT DEFAULT '',
			health_goals TEXT DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS sessions (
			token TEXT PRIMARY KEY,
			user_id INTEGER NOT NULL,
			expires_at DATETIME NOT NULL,
			last_activity DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS user_activities (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			activity_description TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id)
		)`,
		`CREATE TABLE IF NOT EXISTS user_plans (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			lifestyle_plan TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id)
		)`,
		`CREATE TABLE IF NOT EXISTS workouts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			workout_plan TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id)
		)`,
		`CREATE TABLE IF NOT EXISTS consultations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			question TEXT,
			response TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id)
		)`,
		`CREATE TABLE IF NOT EXISTS doctor_visits (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			visit_reason TEXT,
			appointment_date DATETIME,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id)
		)`,
		`CREATE TABLE IF NOT EXISTS recommendations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			health_recommendation TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id)
		)`,
	}

	for _, m := range migrations {
		if _, err := db.conn.Exec(m); err != nil {
			return err
		}
	}

	return nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// NewUser carries the fields submitted at sign-up.
type NewUser struct {
	Name              string
	Email             string
	PasswordHash      string
	Age               int
	Gender            string
	Height            float64
	Weight            float64
	MedicalConditions string
	HealthGoals       string
}

// CreateUser inserts a new user and returns the stored record.
// Returns ErrEmailTaken if the email is already registered.
func (db *DB) CreateUser(nu NewUser) (*models.User, error) {
	result, err := db.conn.Exec(
		`INSERT INTO users (name, email, password_hash, age, gender, height, weight, medical_conditions, health_goals)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		nu.Name, nu.Email, nu.PasswordHash, nu.Age, nu.Gender, nu.Height, nu.Weight, nu.MedicalConditions, nu.HealthGoals,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	return db.GetUserByID(id)
}

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint failure.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

const userColumns = `id, name, email, password_hash, age, gender, height, weight, medical_conditions, health_goals, created_at`

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Age, &u.Gender,
		&u.Height, &u.Weight, &u.MedicalConditions, &u.HealthGoals, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByID retrieves a user by ID.
func (db *DB) GetUserByID(id int64) (*models.User, error) {
	return scanUser(db.conn.QueryRow(
		"SELECT "+userColumns+" FROM users WHERE id = ?", id,
	))
}

// GetUserByEmail retrieves a user by email, the login key.
func (db *DB) GetUserByEmail(email string) (*models.User, error) {
	return scanUser(db.conn.QueryRow(
		"SELECT "+userColumns+" FROM users WHERE email = ?", email,
	))
}

// ProfileUpdate carries a partial profile update. Nil fields are left unchanged.
type ProfileUpdate struct {
	Name              *string
	Age               *int
	Gender            *string
	Height            *float64
	Weight            *float64
	MedicalConditions *string
	HealthGoals       *string
}

// UpdateProfile applies a partial update to the user with the given email.
// The column list is fixed here; caller input never reaches the SQL text.
func (db *DB) UpdateProfile(email string, up ProfileUpdate) error {
	set := make([]string, 0, 7)
	args := make([]any, 0, 8)

	if up.Name != nil {
		set = append(set, "name = ?")
		args = append(args, *up.Name)
	}
	if up.Age != nil {
		set = append(set, "age = ?")
		args = append(args, *up.Age)
	}
	if up.Gender != nil {
		set = append(set, "gender = ?")
		args = append(args, *up.Gender)
	}
	if up.Height != nil {
		set = append(set, "height = ?")
		args = append(args, *up.Height)
	}
	if up.Weight != nil {
		set = append(set, "weight = ?")
		args = append(args, *up.Weight)
	}
	if up.MedicalConditions != nil {
		set = append(set, "medical_conditions = ?")
		args = append(args, *up.MedicalConditions)
	}
	if up.HealthGoals != nil {
		set = append(set, "health_goals = ?")
		args = append(args, *up.HealthGoals)
	}

	if len(set) == 0 {
		return nil
	}

	args = append(args, email)
	result, err := db.conn.Exec(
		"UPDATE users SET "+strings.Join(set, ", ")+" WHERE email = ?", args...,
	)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// LogActivity records a user activity for analytics.
func (db *DB) LogActivity(userID int64, description string) error {
	_, err := db.conn.Exec(
		"INSERT INTO user_activities (user_id, activity_description) VALUES (?, ?)",
		userID, description,
	)
	return err
}

// CreatePlan stores a lifestyle plan for a user.
func (db *DB) CreatePlan(userID int64, lifestylePlan string) error {
	_, err := db.conn.Exec(
		"INSERT INTO user_plans (user_id, lifestyle_plan) VALUES (?, ?)",
		userID, lifestylePlan,
	)
	return err
}

// LatestPlan returns the most recent lifestyle plan for a user.
func (db *DB) LatestPlan(userID int64) (*models.Plan, error) {
	row := db.conn.QueryRow(
		"SELECT id, user_id, lifestyle_plan, created_at FROM user_plans WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT 1",
		userID,
	)
	var p models.Plan
	err := row.Scan(&p.ID, &p.UserID, &p.LifestylePlan, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateWorkout stores a workout plan for a user.
func (db *DB) CreateWorkout(userID int64, workoutPlan string) error {
	_, err := db.conn.Exec(
		"INSERT INTO workouts (user_id, workout_plan) VALUES (?, ?)",
		userID, workoutPlan,
	)
	return err
}

// LatestWorkout returns the most recent workout plan for a user.
func (db *DB) LatestWorkout(userID int64) (*models.Workout, error) {
	row := db.conn.QueryRow(
		"SELECT id, user_id, workout_plan, created_at FROM workouts WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT 1",
		userID,
	)
	var w models.Workout
	err := row.Scan(&w.ID, &w.UserID, &w.WorkoutPlan, &w.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// CreateConsultation logs a consultation question/response pair.
func (db *DB) CreateConsultation(userID int64, question, response string) error {
	_, err := db.conn.Exec(
		"INSERT INTO consultations (user_id, question, response) VALUES (?, ?, ?)",
		userID, question, response,
	)
	return err
}

// ListConsultations returns all consultations for a user, newest first.
func (db *DB) ListConsultations(userID int64) ([]models.Consultation, error) {
	rows, err := db.conn.Query(
		"SELECT id, user_id, question, response, created_at FROM consultations WHERE user_id = ? ORDER BY created_at DESC, id DESC",
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var consultations []models.Consultation
	for rows.Next() {
		var c models.Consultation
		if err := rows.Scan(&c.ID, &c.UserID, &c.Question, &c.Response, &c.CreatedAt); err != nil {
			return nil, err
		}
		consultations = append(consultations, c)
	}
	return consultations, rows.Err()
}

// ScheduleDoctorVisit stores an upcoming appointment for a user.
func (db *DB) ScheduleDoctorVisit(userID int64, visitReason string, appointmentDate time.Time) error {
	_, err := db.conn.Exec(
		"INSERT INTO doctor_visits (user_id, visit_reason, appointment_date) VALUES (?, ?, ?)",
		userID, visitReason, appointmentDate,
	)
	return err
}

// ListDoctorVisits returns all visits for a user ordered by appointment date.
func (db *DB) ListDoctorVisits(userID int64) ([]models.DoctorVisit, error) {
	rows, err := db.conn.Query(
		"SELECT id, user_id, visit_reason, appointment_date, created_at FROM doctor_visits WHERE user_id = ? ORDER BY appointment_date",
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var visits []models.DoctorVisit
	for rows.Next() {
		var v models.DoctorVisit
		if err := rows.Scan(&v.ID, &v.UserID, &v.VisitReason, &v.AppointmentDate, &v.CreatedAt); err != nil {
			return nil, err
		}
		visits = append(visits, v)
	}
	return visits, rows.Err()
}

// CreateRecommendation persists a generated health recommendation.
func (db *DB) CreateRecommendation(userID int64, text string) error {
	_, err := db.conn.Exec(
		"INSERT INTO recommendations (user_id, health_recommendation) VALUES (?, ?)",
		userID, text,
	)
	return err
}

// LatestRecommendation returns the most recent recommendation for a user.
func (db *DB) LatestRecommendation(userID int64) (*models.Recommendation, error) {
	row := db.conn.QueryRow(
		"SELECT id, user_id, health_recommendation, created_at FROM recommendations WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT 1",
		userID,
	)
	var rec models.Recommendation
	err := row.Scan(&rec.ID, &rec.UserID, &rec.Text, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// CreateSession creates a new session for a user.
func (db *DB) CreateSession(token string, userID int64, expiresAt time.Time) error {
	now := time.Now()
	_, err := db.conn.Exec(
		"INSERT INTO sessions (token, user_id, expires_at, last_activity) VALUES (?, ?, ?, ?)",
		token, userID, expiresAt, now,
	)
	return err
}

// SessionInfo holds session validation data.
type SessionInfo struct {
	User         *models.User
	LastActivity time.Time
	ExpiresAt    time.Time
}

// ValidateSession checks if a session token is valid and returns the associated user.
func (db *DB) ValidateSession(token string) (*models.User, error) {
	info, err := db.ValidateSessionWithInfo(token)
	if err != nil {
		return nil, err
	}
	return info.User, nil
}

// ValidateSessionWithInfo checks if a session token is valid and returns session details.
func (db *DB) ValidateSessionWithInfo(token string) (*SessionInfo, error) {
	row := db.conn.QueryRow(`
		SELECT u.id, u.name, u.email, u.password_hash, u.age, u.gender, u.height, u.weight,
		       u.medical_conditions, u.health_goals, u.created_at, s.last_activity, s.expires_at
		FROM sessions s
		JOIN users u ON s.user_id = u.id
		WHERE s.token = ? AND s.expires_at > CURRENT_TIMESTAMP
	`, token)

	var u models.User
	var lastActivity, expiresAt time.Time
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Age, &u.Gender,
		&u.Height, &u.Weight, &u.MedicalConditions, &u.HealthGoals, &u.CreatedAt,
		&lastActivity, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &SessionInfo{
		User:         &u,
		LastActivity: lastActivity,
		ExpiresAt:    expiresAt,
	}, nil
}

// RenewSession updates the last_activity and expires_at for a session.
func (db *DB) RenewSession(token string, newExpiresAt time.Time) error {
	now := time.Now()
	_, err := db.conn.Exec(
		"UPDATE sessions SET last_activity = ?, expires_at = ? WHERE token = ?",
		now, newExpiresAt, token,
	)
	return err
}

// DeleteSession removes a session by token.
func (db *DB) DeleteSession(token string) error {
	_, err := db.conn.Exec("DELETE FROM sessions WHERE token = ?", token)
	return err
}

// CleanExpiredSessions removes all expired sessions.
func (db *DB) CleanExpiredSessions() error {
	_, err := db.conn.Exec("DELETE FROM sessions WHERE expires_at <= CURRENT_TIMESTAMP")
	return err
}

// UserCount returns the number of users in the database.
func (db *DB) UserCount() (int, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM users").Scan(&count)
	return count, err
}
