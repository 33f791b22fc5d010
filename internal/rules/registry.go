package rules

// ContraventionRule describes how a contravention code behaves for appeal
// purposes: its broad category, whether paid-time grace applies, whether the
// CEO must observe before issuing, and the defences most commonly raised.
type ContraventionRule struct {
	Category            string
	GracePeriodEligible bool
	ObservationRequired bool
	CommonDefences      []string
}

// CategoryUnknown is assigned to codes absent from the registry.
const CategoryUnknown = "unknown"

// unknownContravention is the conservative default: no grace eligibility,
// observation assumed required, no common defences.
var unknownContravention = ContraventionRule{
	Category:            CategoryUnknown,
	GracePeriodEligible: false,
	ObservationRequired: true,
	CommonDefences:      nil,
}

// contraventionRules is the static registry, keyed by the on-ticket code.
// Loaded once; never mutated.
var contraventionRules = map[string]ContraventionRule{
	"01": {Category: "restricted_street", GracePeriodEligible: false, ObservationRequired: true, CommonDefences: []string{"loading", "emergency", "signage"}},
	"02": {Category: "restricted_street", GracePeriodEligible: false, ObservationRequired: true, CommonDefences: []string{"loading", "emergency", "signage"}},
	"06": {Category: "pay_display", GracePeriodEligible: true, ObservationRequired: true, CommonDefences: []string{"payment", "machine_fault", "signage"}},
	"11": {Category: "payment_required", GracePeriodEligible: true, ObservationRequired: true, CommonDefences: []string{"payment", "machine_fault", "grace_period"}},
	"12": {Category: "permit_required", GracePeriodEligible: false, ObservationRequired: true, CommonDefences: []string{"permit", "visitor_permit", "signage"}},
	"16": {Category: "permit_required", GracePeriodEligible: false, ObservationRequired: true, CommonDefences: []string{"permit", "bay_marking", "signage"}},
	"19": {Category: "permit_required", GracePeriodEligible: false, ObservationRequired: true, CommonDefences: []string{"permit", "virtual_permit", "system_error"}},
	"21": {Category: "suspended_bay", GracePeriodEligible: false, ObservationRequired: true, CommonDefences: []string{"suspension_signage", "suspension_notice", "emergency"}},
	"22": {Category: "reparking", GracePeriodEligible: false, ObservationRequired: true, CommonDefences: []string{"different_purpose", "loading", "emergency"}},
	"23": {Category: "vehicle_type", GracePeriodEligible: false, ObservationRequired: true, CommonDefences: []string{"vehicle_classification", "signage", "bay_marking"}},
	"24": {Category: "parking_position", GracePeriodEligible: false, ObservationRequired: true, CommonDefences: []string{"bay_marking", "obstruction", "space_availability"}},
	"25": {Category: "loading_restriction", GracePeriodEligible: true, ObservationRequired: true, CommonDefences: []string{"loading", "observation_period", "signage"}},
	"26": {Category: "footway_parking", GracePeriodEligible: false, ObservationRequired: true, CommonDefences: []string{"marked_bay", "signage", "emergency"}},
	"27": {Category: "dropped_footway", GracePeriodEligible: false, ObservationRequired: true, CommonDefences: []string{"footway_marking", "signage", "emergency"}},
	"30": {Category: "overtime_parking", GracePeriodEligible: true, ObservationRequired: true, CommonDefences: []string{"grace_period", "payment_error", "machine_fault"}},
	"40": {Category: "disabled_bay", GracePeriodEligible: false, ObservationRequired: true, CommonDefences: []string{"blue_badge", "permit_display", "signage"}},
	"47": {Category: "bus_stop", GracePeriodEligible: false, ObservationRequired: true, CommonDefences: []string{"boarded_passengers", "emergency", "signage"}},
	"48": {Category: "bus_stop", GracePeriodEligible: false, ObservationRequired: true, CommonDefences: []string{"boarded_passengers", "emergency", "signage"}},
	"50": {Category: "traffic_flow", GracePeriodEligible: false, ObservationRequired: true, CommonDefences: []string{"emergency", "direction", "signage"}},
	"61": {Category: "engine_running", GracePeriodEligible: false, ObservationRequired: true, CommonDefences: []string{"loading", "passenger_dropoff", "short_period"}},
	"62": {Category: "footway_parking", GracePeriodEligible: false, ObservationRequired: true, CommonDefences: []string{"marked_bay", "signage", "emergency"}},
	"73": {Category: "taxi_rank", GracePeriodEligible: false, ObservationRequired: true, CommonDefences: []string{"taxi_license", "emergency", "signage"}},
	"74": {Category: "cycle_lane", GracePeriodEligible: false, ObservationRequired: true, CommonDefences: []string{"emergency", "signage", "lane_marking"}},
	"80": {Category: "cycle_lane", GracePeriodEligible: false, ObservationRequired: true, CommonDefences: []string{"emergency", "signage", "lane_marking"}},
	"85": {Category: "pedestrian_zone", GracePeriodEligible: false, ObservationRequired: true, CommonDefences: []string{"loading", "permit", "emergency"}},
	"86": {Category: "pedestrian_zone", GracePeriodEligible: false, ObservationRequired: true, CommonDefences: []string{"loading", "permit", "emergency"}},
	"87": {Category: "restricted_area", GracePeriodEligible: false, ObservationRequired: true, CommonDefences: []string{"permit", "signage", "emergency"}},
	"91": {Category: "police_bay", GracePeriodEligible: false, ObservationRequired: true, CommonDefences: []string{"emergency_vehicle", "police_business", "signage"}},
	"93": {Category: "vehicle_restriction", GracePeriodEligible: false, ObservationRequired: true, CommonDefences: []string{"vehicle_type", "signage", "emergency"}},
	"95": {Category: "clearway", GracePeriodEligible: false, ObservationRequired: true, CommonDefences: []string{"emergency", "breakdown", "signage"}},
	"96": {Category: "cycle_track", GracePeriodEligible: false, ObservationRequired: true, CommonDefences: []string{"emergency", "signage", "track_marking"}},
	"97": {Category: "red_route", GracePeriodEligible: false, ObservationRequired: true, CommonDefences: []string{"loading", "emergency", "signage"}},
	"99": {Category: "specific_vehicle", GracePeriodEligible: false, ObservationRequired: true, CommonDefences: []string{"vehicle_type", "permit", "signage"}},
}

// LookupContravention resolves a contravention code to its rule. It is a
// total function: unknown codes resolve to the conservative default and
// never to an error.
func LookupContravention(code string) ContraventionRule {
	if rule, ok := contraventionRules[code]; ok {
		return rule
	}
	return unknownContravention
}

// contraventionExplanations gives plain-English meanings for known codes,
// returned alongside OCR candidates so users can confirm the right code.
var contraventionExplanations = map[string]string{
	"01": "Parked in a restricted street during prescribed hours",
	"02": "Parked or loading/unloading in a restricted street where waiting and loading/unloading restrictions are in force",
	"06": "Parked without clearly displaying a valid pay & display ticket or voucher",
	"11": "Parked without payment of the parking charge",
	"12": "Parked in a residents' zone or space without a valid permit",
	"16": "Parked in a permit space without displaying a valid permit",
	"19": "Parked in a residents' bay without a valid virtual permit or physical permit",
	"21": "Parked in a suspended bay/space or area",
	"22": "Re-parked in the same parking place within one hour of leaving",
	"23": "Parked in a parking place or area not designated for that class of vehicle",
	"24": "Not parked correctly within the markings of the bay or space",
	"25": "Parked in a loading place during restricted hours without loading",
	"26": "Vehicle parked more than 50cm from the edge of the carriageway and not within a designated parking place",
	"27": "Parked adjacent to a dropped footway",
	"30": "Parked for longer than permitted",
	"40": "Parked in a designated disabled person's parking place without displaying a valid disabled person's badge",
	"47": "Stopped on a restricted bus stop or stand",
	"48": "Stopped on a restricted bus stop or stand during prohibited hours",
	"50": "Parked against the flow of traffic",
	"61": "Parked with engine running where prohibited",
	"62": "Parked with one or more wheels on or over a footpath or any part of a road other than a carriageway",
	"73": "Parked in a taxi rank",
	"74": "Parked in a cycle lane",
	"80": "Parked in a mandatory cycle lane",
	"85": "Parked in a pedestrian zone",
	"86": "Parked in a pedestrian zone during restricted hours",
	"87": "Parked in a restricted area during prescribed hours",
	"91": "Parked in a bay marked for police vehicles",
	"93": "Parked contrary to a prohibition on certain types of vehicle",
	"95": "Parked on a clearway",
	"96": "Parked in a cycle track",
	"97": "Parked on red route",
	"99": "Parked in a bay reserved for specific vehicles (e.g., car club, electric vehicles)",
}

// ContraventionExplanation returns the plain-English meaning of a code, or a
// generic caution for codes we do not recognize.
func ContraventionExplanation(code string) string {
	if text, ok := contraventionExplanations[code]; ok {
		return text
	}
	return "This contravention code indicates a parking violation. Please verify the exact meaning with the issuing authority."
}
