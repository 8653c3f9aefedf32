package health

import "strings"

// NoMedicationsFound is returned for conditions with no table entry. Callers
// display it verbatim, so it must stay a string rather than an empty list.
const NoMedicationsFound = "No specific medications found"

// Medications is the list recommended for one condition. An empty list renders
// as the NoMedicationsFound sentinel.
type Medications []string

func (m Medications) String() string {
	if len(m) == 0 {
		return NoMedicationsFound
	}
	return strings.Join(m, ", ")
}

var medicationTable = map[string]Medications{
	"obesity":             {"Wegovy", "Ozempic", "Mounjaro", "Phentermine"},
	"diabetes":            {"Metformin", "Insulin", "GLP-1 Agonists", "SGLT2 Inhibitors"},
	"high blood pressure": {"Atenolol", "Lisinopril", "Losartan", "Amlodipine"},
	"sunset anxiety":      {"Xanax", "Zoloft", "Lexapro", "Ativan"},
	"arthritis":           {"Methotrexate", "Sulfasalazine", "Humira", "Corticosteroids"},
	"depression":          {"SSRIs", "SNRIs", "Citalopram", "Sertraline", "Fluoxetine"},
	"anxiety":             {"Buspirone", "Xanax", "Ativan", "Valium"},
	"asthma":              {"Albuterol", "Salbutamol", "Advair", "Fluticasone"},
	"COPD":                {"Spiriva", "Symbicort", "Albuterol", "Fluticasone"},
	"cholesterol":         {"Statins", "Lipitor", "Atorvastatin", "Zocor"},
	"sleep apnea":         {"CPAP therapy", "BiPAP", "Oxygen therapy"},
	"eczema":              {"Topical steroids", "Hydrocortisone", "Tacrolimus"},
	"insomnia":            {"Ambien", "Melatonin", "Zolpidem"},
	"acne":                {"Benzoyl Peroxide", "Tretinoin", "Accutane", "Doxycycline"},
	"allergies":           {"Antihistamines", "Claritin", "Zyrtec", "Benadryl"},
	"migraine":            {"Sumatriptan", "Zolmitriptan", "Amitriptyline", "Topiramate"},
	"heart disease":       {"Beta-blockers", "Aspirin", "ACE inhibitors", "Statins"},
	"gout":                {"Allopurinol", "Colchicine", "Indomethacin"},
	"cancer":              {"Chemotherapy", "Immunotherapy", "Radiation therapy"},
	"stroke":              {"Aspirin", "Clopidogrel", "Warfarin"},
	"thyroid problems":    {"Levothyroxine", "Methimazole", "Liothyronine"},
	"kidney disease":      {"ACE inhibitors", "Diuretics"},
	"liver disease":       {"Antivirals", "Interferon", "Ribavirin"},
}

// Conditions returns the selectable condition names in display order.
func Conditions() []string {
	return []string{
		"obesity", "diabetes", "high blood pressure", "sunset anxiety", "arthritis",
		"depression", "anxiety", "asthma", "COPD", "cholesterol", "sleep apnea",
		"eczema", "insomnia", "acne", "allergies", "migraine", "heart disease",
		"gout", "cancer", "stroke", "thyroid problems", "kidney disease", "liver disease",
	}
}

// MedicationsFor returns the medication list for each requested condition.
// Conditions absent from the table map to an empty list, which displays as
// the NoMedicationsFound sentinel.
func MedicationsFor(conditions []string) map[string]Medications {
	recommendations := make(map[string]Medications, len(conditions))
	for _, condition := range conditions {
		recommendations[condition] = medicationTable[condition]
	}
	return recommendations
}

// PubMedLink builds a PubMed search URL for a medication name. The link is
// never fetched, only rendered.
func PubMedLink(medication string) string {
	return "https://pubmed.ncbi.nlm.nih.gov/?term=" + strings.ReplaceAll(medication, " ", "+")
}
