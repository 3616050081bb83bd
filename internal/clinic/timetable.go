package clinic

import "time"

// TimetableStart is the Monday the generated four-week timetable begins on.
var TimetableStart = time.Date(2025, time.January, 6, 0, 0, 0, 0, time.UTC)

// Working days per week of the rota, as offsets from Monday.
var weeklyDays = [][]int{
	{0, 2}, // Mon, Wed
	{1, 3}, // Tue, Thu
	{0, 4}, // Mon, Fri
	{2, 4}, // Wed, Fri
}

var sessionTimes = []time.Duration{
	9 * time.Hour,
	10 * time.Hour,
	11 * time.Hour,
	14 * time.Hour,
	15 * time.Hour,
	16 * time.Hour,
}

// ExpertiseAreas lists the areas the treatment catalogue knows about, in a stable order.
var ExpertiseAreas = []string{
	"Sports Medicine",
	"Post-Op Recovery",
	"Manual Physiotherapy",
	"Orthopedic Rehabilitation",
	"Chronic Pain Management",
	"Neurological Disorders",
	"Stroke Rehabilitation",
	"Osteopathy",
	"Arthritis Management",
	"Pediatric Development",
	"Aquatic Therapy",
	"Respiratory Physiotherapy",
	"Posture Correction",
	"Work Injury Management",
	"Pelvic Floor Physiotherapy",
	"Pediatric Physiotherapy",
	"Geriatric Physiotherapy",
}

var treatmentCatalogue = map[string][]string{
	"Sports Medicine":            {"Sports Injury Assessment", "Athletic Recovery Session", "Health check"},
	"Post-Op Recovery":           {"Surgical Rehabilitation", "Scar Tissue Management"},
	"Manual Physiotherapy":       {"Joint Mobilization", "Myofascial Release"},
	"Orthopedic Rehabilitation":  {"Fracture Recovery", "Joint Replacement Therapy"},
	"Chronic Pain Management":    {"Pain Relief Session", "Trigger Point Therapy"},
	"Neurological Disorders":     {"Neuro-muscular Re-education", "Balance Training", "Neural mobilisation"},
	"Stroke Rehabilitation":      {"Post-Stroke Mobility Training", "Cognitive Rehabilitation"},
	"Osteopathy":                 {"Fall Prevention Session", "Mobility Maintenance"},
	"Arthritis Management":       {"Joint Preservation Therapy", "Pain Management Session", "Acupuncture"},
	"Pediatric Development":      {"Developmental Delay Therapy", "Motor Skills Training"},
	"Aquatic Therapy":            {"Pool Rehabilitation", "Hydrotherapy Session"},
	"Respiratory Physiotherapy":  {"Breathing Exercise Session", "Chest Physiotherapy"},
	"Posture Correction":         {"Ergonomic Assessment", "Postural Alignment Session"},
	"Work Injury Management":     {"Ergonomic Workspace Evaluation", "Injury Prevention Session", "Massage"},
	"Pelvic Floor Physiotherapy": {"Bladder Retraining Techniques", "Postpartum Rehabilitation", "Pelvic Floor Muscle Training (PFMT)"},
	"Pediatric Physiotherapy":    {"Developmental Delay Therapy", "Gait Training", "Sensory Integration Therapy"},
	"Geriatric Physiotherapy":    {"Fall Prevention Programs", "Osteoarthritis & Joint Pain Management", "Functional Mobility Training"},
}

// TreatmentsFor returns the treatments offered under an expertise area.
func TreatmentsFor(expertise string) []Treatment {
	names, ok := treatmentCatalogue[expertise]
	if !ok {
		names = []string{"General Physiotherapy Session"}
	}
	out := make([]Treatment, 0, len(names))
	for _, n := range names {
		out = append(out, Treatment{Name: n})
	}
	return out
}

// GenerateTimetable lays out four weeks of slots for every physiotherapist in the directory,
// starting on the Monday given by start. The expertise area used rotates week by week and each
// working day gets that area's treatments in the first free session times.
func GenerateTimetable(dir *Directory, start time.Time) {
	day0 := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())

	for _, physio := range dir.Physiotherapists() {
		if len(physio.Expertise) == 0 {
			continue
		}
		for week, days := range weeklyDays {
			treatments := TreatmentsFor(physio.Expertise[week%len(physio.Expertise)])

			for _, offset := range days {
				date := day0.AddDate(0, 0, week*7+offset)
				next := 0
				for _, session := range sessionTimes {
					if next == len(treatments) {
						break
					}
					at := date.Add(session)
					if physio.hasSlotAt(at) {
						continue
					}
					dir.AddSlot(physio, treatments[next], at)
					next++
				}
			}
		}
	}
}
