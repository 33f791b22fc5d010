package rules

// Strength expresses how persuasive a defence usually is. The ordered set is
// fixed: high > medium > low.
type Strength string

const (
	StrengthHigh   Strength = "high"
	StrengthMedium Strength = "medium"
	StrengthLow    Strength = "low"
)

// rank returns the sort weight of a strength. Unknown strengths sink.
func (s Strength) rank() int {
	switch s {
	case StrengthHigh:
		return 3
	case StrengthMedium:
		return 2
	case StrengthLow:
		return 1
	default:
		return 0
	}
}

// DefenceCategory groups defences by the kind of argument they make.
type DefenceCategory string

const (
	DefenceExemption  DefenceCategory = "exemption"
	DefenceProcedural DefenceCategory = "procedural"
	DefencePayment    DefenceCategory = "payment"
)

// Defence identifiers. Declaration order of defenceTemplates below is the
// ranking tiebreak, so these are listed in that order.
const (
	DefenceLoading          = "loading"
	DefencePassengerDropoff = "passenger_dropoff"
	DefenceBlueBadge        = "blue_badge"
	DefenceMedicalEmergency = "medical_emergency"
	DefenceGracePeriod      = "grace_period"
	DefenceSignageIssues    = "signage_issues"
	DefenceBayMarkingIssues = "bay_marking_issues"
	DefencePaymentMade      = "payment_made"
	DefenceObservation      = "observation_period"
	DefenceLateCouncilReply = "late_council_reply"
)

// Defence is one candidate argument for cancelling a ticket. The template
// fields (ID through Evidence) are read-only blueprints; Applicable and
// Reasoning are computed fresh on every evaluation.
type Defence struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Strength    Strength        `json:"strength"`
	Category    DefenceCategory `json:"category"`
	Evidence    []string        `json:"evidence"`
	Applicable  bool            `json:"applicable"`
	Reasoning   string          `json:"reasoning"`
}

// defenceTemplates is the fixed, ordered template set. Order matters: ties
// in strength are broken by position in this slice.
var defenceTemplates = []Defence{
	{
		ID:          DefenceLoading,
		Name:        "Loading/Unloading Goods",
		Description: "You were actively loading or unloading goods from your vehicle",
		Strength:    StrengthHigh,
		Category:    DefenceExemption,
		Evidence:    []string{"delivery_notes", "cctv", "witness_statements"},
	},
	{
		ID:          DefencePassengerDropoff,
		Name:        "Passenger Drop-off/Pick-up",
		Description: "You were picking up or dropping off passengers",
		Strength:    StrengthMedium,
		Category:    DefenceExemption,
		Evidence:    []string{"passenger_details", "cctv", "witness_statements"},
	},
	{
		ID:          DefenceBlueBadge,
		Name:        "Blue Badge Holder",
		Description: "You are a registered Blue Badge holder",
		Strength:    StrengthHigh,
		Category:    DefenceExemption,
		Evidence:    []string{"blue_badge", "clock", "permit_display"},
	},
	{
		ID:          DefenceMedicalEmergency,
		Name:        "Medical Emergency",
		Description: "There was a medical emergency requiring immediate parking",
		Strength:    StrengthHigh,
		Category:    DefenceExemption,
		Evidence:    []string{"medical_records", "hospital_letter", "police_report"},
	},
	{
		ID:          DefenceGracePeriod,
		Name:        "Grace Period",
		Description: "You were within the allowed grace period for parking",
		Strength:    StrengthMedium,
		Category:    DefenceProcedural,
		Evidence:    []string{"payment_receipt", "timestamp", "cctv"},
	},
	{
		ID:          DefenceSignageIssues,
		Name:        "Inadequate or Missing Signage",
		Description: "Parking signs were unclear, missing, or obscured",
		Strength:    StrengthHigh,
		Category:    DefenceProcedural,
		Evidence:    []string{"photos", "location_survey", "witness_statements"},
	},
	{
		ID:          DefenceBayMarkingIssues,
		Name:        "Faded or Absent Bay Markings",
		Description: "Parking bay markings were unclear or missing",
		Strength:    StrengthMedium,
		Category:    DefenceProcedural,
		Evidence:    []string{"photos", "highway_inspection", "council_records"},
	},
	{
		ID:          DefencePaymentMade,
		Name:        "Payment Made",
		Description: "You had paid for parking or had a valid permit",
		Strength:    StrengthHigh,
		Category:    DefencePayment,
		Evidence:    []string{"payment_receipt", "bank_statement", "permit"},
	},
	{
		ID:          DefenceObservation,
		Name:        "Insufficient Observation Period",
		Description: "CEO did not observe for the required minimum time",
		Strength:    StrengthMedium,
		Category:    DefenceProcedural,
		Evidence:    []string{"cctv", "ceo_notes", "timestamp"},
	},
	{
		ID:          DefenceLateCouncilReply,
		Name:        "Late Council Response",
		Description: "Council failed to respond within 56 days to previous challenge",
		Strength:    StrengthHigh,
		Category:    DefenceProcedural,
		Evidence:    []string{"previous_correspondence", "proof_of_posting", "council_records"},
	},
}

// Templates returns a fresh copy of the defence template set so callers can
// never mutate the blueprints.
func Templates() []Defence {
	out := make([]Defence, len(defenceTemplates))
	copy(out, defenceTemplates)
	for i := range out {
		out[i].Evidence = append([]string(nil), defenceTemplates[i].Evidence...)
	}
	return out
}

// GeneralFallbackDefences are the generic procedural prompts returned when no
// specific defence applies. An empty specific set is a valid outcome, not a
// failure.
func GeneralFallbackDefences() []string {
	return []string{
		"Request CEO notes and photos to verify observation period and signage",
		"Check if the PCN complies with all legal requirements",
		"Verify the location matches the actual parking restrictions",
		"Challenge if the penalty amount exceeds the allowed maximum",
	}
}
