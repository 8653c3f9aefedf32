package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"health-assistant/internal/health"
	"health-assistant/internal/models"
	"health-assistant/internal/storage"
)

// VisitItem represents a doctor visit in the dashboard view.
type VisitItem struct {
	Reason string
	Date   string
}

// DashboardViewModel is the data passed to the dashboard template.
type DashboardViewModel struct {
	User           *models.User
	BMI            string
	BMICategory    string
	HasBMI         bool
	Recommendation string
	Plan           string
	Workout        string
	Visits         []VisitItem
	AdviceError    string
}

func (h *Handlers) buildDashboard(user *models.User) DashboardViewModel {
	vm := DashboardViewModel{User: user}

	if bmi, err := health.BMI(user.Height, user.Weight); err == nil {
		vm.HasBMI = true
		vm.BMI = fmt.Sprintf("%.2f", bmi)
		vm.BMICategory = health.BMICategory(bmi)
	}

	if rec, err := h.db.LatestRecommendation(user.ID); err == nil {
		vm.Recommendation = rec.Text
	} else if !errors.Is(err, storage.ErrNotFound) {
		log.Printf("LatestRecommendation error: %v", err)
	}

	if plan, err := h.db.LatestPlan(user.ID); err == nil {
		vm.Plan = plan.LifestylePlan
	} else if !errors.Is(err, storage.ErrNotFound) {
		log.Printf("LatestPlan error: %v", err)
	}

	if workout, err := h.db.LatestWorkout(user.ID); err == nil {
		vm.Workout = workout.WorkoutPlan
	} else if !errors.Is(err, storage.ErrNotFound) {
		log.Printf("LatestWorkout error: %v", err)
	}

	visits, err := h.db.ListDoctorVisits(user.ID)
	if err != nil {
		log.Printf("ListDoctorVisits error: %v", err)
	}
	for _, v := range visits {
		vm.Visits = append(vm.Visits, VisitItem{
			Reason: v.VisitReason,
			Date:   v.AppointmentDate.Format("Mon, 02 Jan 2006 15:04"),
		})
	}

	return vm
}

// Dashboard renders the health dashboard.
func (h *Handlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	user, err := CurrentUser(r)
	if err != nil {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	h.logActivity(user.ID, "Viewed dashboard")
	h.render(w, r, "dashboard.html", h.buildDashboard(user))
}

// GenerateRecommendations asks the advice service for fresh recommendations,
// persists them, and re-renders the dashboard. A failed call renders the
// dashboard with an "unavailable" notice instead of an error page.
func (h *Handlers) GenerateRecommendations(w http.ResponseWriter, r *http.Request) {
	user, err := CurrentUser(r)
	if err != nil {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	text, err := h.adviser.Recommend(ctx, user)
	if err != nil {
		log.Printf("Recommend error for user %d: %v", user.ID, err)
		vm := h.buildDashboard(user)
		vm.AdviceError = "Health recommendations are currently unavailable. Please try again later."
		h.render(w, r, "dashboard.html", vm)
		return
	}

	if err := h.db.CreateRecommendation(user.ID, text); err != nil {
		log.Printf("CreateRecommendation error: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.logActivity(user.ID, "Generated health recommendations")
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

// ProfileViewModel is the data passed to the profile template.
type ProfileViewModel struct {
	User    *models.User
	Genders []string
	Error   string
	Saved   bool
}

// ProfileForm renders the profile update page.
func (h *Handlers) ProfileForm(w http.ResponseWriter, r *http.Request) {
	user, err := CurrentUser(r)
	if err != nil {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}
	h.render(w, r, "profile.html", ProfileViewModel{
		User:    user,
		Genders: genders,
		Saved:   r.URL.Query().Get("saved") == "1",
	})
}

// UpdateProfile applies a profile update. Only the enumerated fields can
// change; submitted values replace stored ones, blank fields are ignored.
func (h *Handlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, err := CurrentUser(r)
	if err != nil {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	if err := r.ParseForm(); err != nil {
		h.render(w, r, "profile.html", ProfileViewModel{User: user, Genders: genders, Error: "Invalid form submission"})
		return
	}

	update, err := parseProfileForm(r)
	if err != nil {
		h.render(w, r, "profile.html", ProfileViewModel{User: user, Genders: genders, Error: err.Error()})
		return
	}

	if err := h.db.UpdateProfile(user.Email, update); err != nil {
		log.Printf("UpdateProfile error: %v", err)
		h.render(w, r, "profile.html", ProfileViewModel{User: user, Genders: genders, Error: "Could not save your profile. Please try again."})
		return
	}

	h.logActivity(user.ID, "Updated profile")
	http.Redirect(w, r, "/profile?saved=1", http.StatusFound)
}

func parseProfileForm(r *http.Request) (storage.ProfileUpdate, error) {
	var up storage.ProfileUpdate

	if v := strings.TrimSpace(r.FormValue("name")); v != "" {
		up.Name = &v
	}
	if v := r.FormValue("age"); v != "" {
		age, err := strconv.Atoi(v)
		if err != nil || age < 1 || age > 120 {
			return up, errors.New("age must be a number between 1 and 120")
		}
		up.Age = &age
	}
	if v := r.FormValue("gender"); v != "" {
		up.Gender = &v
	}
	if v := r.FormValue("height"); v != "" {
		height, err := strconv.ParseFloat(v, 64)
		if err != nil || height <= 0 {
			return up, errors.New("height must be a positive number of centimeters")
		}
		up.Height = &height
	}
	if v := r.FormValue("weight"); v != "" {
		weight, err := strconv.ParseFloat(v, 64)
		if err != nil || weight <= 0 {
			return up, errors.New("weight must be a positive number of kilograms")
		}
		up.Weight = &weight
	}
	if r.Form.Has("medical_conditions") {
		v := r.FormValue("medical_conditions")
		up.MedicalConditions = &v
	}
	if r.Form.Has("health_goals") {
		v := r.FormValue("health_goals")
		up.HealthGoals = &v
	}

	return up, nil
}

// ScheduleVisit stores a doctor visit appointment.
func (h *Handlers) ScheduleVisit(w http.ResponseWriter, r *http.Request) {
	user, err := CurrentUser(r)
	if err != nil {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	reason := strings.TrimSpace(r.FormValue("reason"))
	dateStr := r.FormValue("date")
	if reason == "" || dateStr == "" {
		http.Error(w, "reason and date are required", http.StatusBadRequest)
		return
	}

	date, err := time.Parse("2006-01-02T15:04", dateStr)
	if err != nil {
		date, err = time.Parse("2006-01-02", dateStr)
	}
	if err != nil {
		http.Error(w, "invalid appointment date", http.StatusBadRequest)
		return
	}

	if err := h.db.ScheduleDoctorVisit(user.ID, reason, date); err != nil {
		log.Printf("ScheduleDoctorVisit error: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.logActivity(user.ID, "Scheduled doctor visit")
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}
