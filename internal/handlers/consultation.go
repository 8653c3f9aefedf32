package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"health-assistant/internal/health"
	"health-assistant/internal/trends"
)

// ConditionRecommendation pairs a condition with its medication list and links.
type ConditionRecommendation struct {
	Condition   string
	Medications health.Medications
	Links       []MedicationLink
}

// MedicationLink is a medication name with its PubMed search URL.
type MedicationLink struct {
	Name string
	URL  string
}

// ConsultationViewModel is the data passed to the consultation template.
type ConsultationViewModel struct {
	Name            string
	Conditions      []string
	Selected        map[string]bool
	Recommendations []ConditionRecommendation
	Trends          []trends.Trend
	TrendsError     string
	TrendFilter     string
	LoadedAt        string
}

// Consultation renders the trending-medications consultation page.
func (h *Handlers) Consultation(w http.ResponseWriter, r *http.Request) {
	user, err := CurrentUser(r)
	if err != nil {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	selected := r.URL.Query()["condition"]
	filter := strings.TrimSpace(r.URL.Query().Get("q"))

	vm := ConsultationViewModel{
		Name:        user.Name,
		Conditions:  health.Conditions(),
		Selected:    make(map[string]bool, len(selected)),
		TrendFilter: filter,
		LoadedAt:    time.Now().Format("2006-01-02 15:04:05"),
	}
	for _, c := range selected {
		vm.Selected[c] = true
	}

	recommendations := health.MedicationsFor(selected)
	// Iterate the selection order, not the map, to keep the page stable
	for _, condition := range selected {
		meds := recommendations[condition]
		cr := ConditionRecommendation{Condition: condition, Medications: meds}
		for _, med := range meds {
			cr.Links = append(cr.Links, MedicationLink{Name: med, URL: health.PubMedLink(med)})
		}
		vm.Recommendations = append(vm.Recommendations, cr)
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	items, err := h.trends.Fetch(ctx)
	if err != nil {
		log.Printf("Trends fetch error: %v", err)
		vm.TrendsError = "No trending data available."
	} else {
		vm.Trends = trends.Filter(items, filter)
	}

	h.logActivity(user.ID, "Viewed consultation")
	h.render(w, r, "consultation.html", vm)
}

// LogConsultation persists a consultation question/response record.
func (h *Handlers) LogConsultation(w http.ResponseWriter, r *http.Request) {
	user, err := CurrentUser(r)
	if err != nil {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	question := strings.TrimSpace(r.FormValue("question"))
	response := strings.TrimSpace(r.FormValue("response"))
	if question == "" {
		http.Error(w, "question is required", http.StatusBadRequest)
		return
	}

	if err := h.db.CreateConsultation(user.ID, question, response); err != nil {
		log.Printf("CreateConsultation error: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.logActivity(user.ID, "Logged consultation")
	http.Redirect(w, r, "/consultation", http.StatusFound)
}
