package models

import "time"

// User represents a registered account with its health profile.
type User struct {
	ID                int64     `json:"id"`
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	PasswordHash      string    `json:"-"`
	Age               int       `json:"age"`
	Gender            string    `json:"gender"`
	Height            float64   `json:"height"` // cm
	Weight            float64   `json:"weight"` // kg
	MedicalConditions string    `json:"medical_conditions"`
	HealthGoals       string    `json:"health_goals"`
	CreatedAt         time.Time `json:"created_at"`
}

// Session represents a browser session backed by a cookie token.
type Session struct {
	Token     string    `json:"token"`
	UserID    int64     `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Activity is a telemetry record of something a user did.
type Activity struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// Plan is a lifestyle plan generated for a user.
type Plan struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"user_id"`
	LifestylePlan string    `json:"lifestyle_plan"`
	CreatedAt     time.Time `json:"created_at"`
}

// Workout is a workout plan generated for a user.
type Workout struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	WorkoutPlan string    `json:"workout_plan"`
	CreatedAt   time.Time `json:"created_at"`
}

// Consultation is a logged question/response exchange.
type Consultation struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Question  string    `json:"question"`
	Response  string    `json:"response"`
	CreatedAt time.Time `json:"created_at"`
}

// DoctorVisit is a scheduled appointment.
type DoctorVisit struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"user_id"`
	VisitReason     string    `json:"visit_reason"`
	AppointmentDate time.Time `json:"appointment_date"`
	CreatedAt       time.Time `json:"created_at"`
}

// Recommendation is a persisted AI-generated health recommendation.
type Recommendation struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Text      string    `json:"health_recommendation"`
	CreatedAt time.Time `json:"created_at"`
}
