package dispatch

import (
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/clinicdesk/scheduling-agent/agent/contract"
	statex "github.com/clinicdesk/scheduling-agent/agent/state"
)

const slotsMarker = "following slots are available"

var lastVisitDoctorPattern = regexp.MustCompile(`last_visit_doctor'?\s*[:=]\s*'?(Dr\.?\s*[A-Za-z]+)`)

// applyExtraction maps one successful capability result into state field
// updates. Rules are pure functions of (request, result): structured payloads
// are preferred, with tolerant text parsing as fallback. A result that
// matches no rule leaves state untouched; the field simply stays unknown.
func applyExtraction(st *statex.ConversationState, req contractx.Request, res contractx.Result) {
	switch res.Name {
	case contractx.CapPatientLookup:
		extractPatientLookup(st, req, res)
	case contractx.CapInsuranceCollect:
		if details, ok := res.Payload.(string); ok && details != "" {
			st.SetInsurance(details)
		} else if carrier, ok := req.Args["carrier"].(string); ok && strings.TrimSpace(carrier) != "" {
			st.SetInsurance(strings.TrimSpace(carrier))
		}
	case contractx.CapInsuranceSkip:
		st.SetInsurance(statex.InsuranceNotProvided)
	case contractx.CapDoctorList:
		if doctors, ok := res.Payload.([]contractx.Doctor); ok {
			st.DoctorList = doctors
		} else {
			logUnparsedResult(res)
		}
	case contractx.CapSlotsList:
		extractSlots(st, res)
	case contractx.CapAppointmentBook:
		if strings.Contains(strings.ToLower(res.Text), "successfully booked") {
			st.Booked = true
		} else {
			logUnparsedResult(res)
		}
	case contractx.CapIntakeForms, contractx.CapReminders:
		// transcript only
	}
}

func extractPatientLookup(st *statex.ConversationState, req contractx.Request, res contractx.Result) {
	if record, ok := res.Payload.(contractx.PatientRecord); ok {
		st.PatientStatus = statex.PatientReturning
		st.PatientInfo = map[string]string{
			"name":  record.Name,
			"dob":   record.DOB,
			"email": record.Email,
			"phone": record.Phone,
		}
		if record.LastVisitDoctor != "" {
			st.DoctorName = record.LastVisitDoctor
		}
		return
	}

	lower := strings.ToLower(res.Text)
	switch {
	case strings.Contains(lower, "new patient"):
		st.PatientStatus = statex.PatientNew
		// No record exists yet, so remember the identity from the lookup
		// arguments themselves.
		st.PatientInfo = map[string]string{}
		if name, ok := req.Args["full_name"].(string); ok && name != "" {
			st.PatientInfo["name"] = name
		}
		if dob, ok := req.Args["dob"].(string); ok && dob != "" {
			st.PatientInfo["dob"] = dob
		}
	case strings.Contains(lower, "returning patient"):
		st.PatientStatus = statex.PatientReturning
		if m := lastVisitDoctorPattern.FindStringSubmatch(res.Text); m != nil {
			st.DoctorName = strings.TrimSpace(m[1])
		}
	default:
		logUnparsedResult(res)
	}
}

func extractSlots(st *statex.ConversationState, res contractx.Result) {
	if slots, ok := res.Payload.([]string); ok {
		st.SetAvailableSlots(slots)
		return
	}
	st.SetAvailableSlots(ParseSlots(res.Text))
}

// ParseSlots extracts the slot list from rendered slot-availability text.
// Absence of the availability marker means "fetched, none available" and
// yields an empty (non-nil) list.
func ParseSlots(text string) []string {
	idx := strings.Index(strings.ToLower(text), slotsMarker)
	if idx < 0 {
		return []string{}
	}

	// Slot strings may themselves contain times, so cut at the first colon
	// after the marker, which ends the "... for Dr. X:" preamble.
	rest := text[idx+len(slotsMarker):]
	if colon := strings.Index(rest, ":"); colon >= 0 {
		rest = rest[colon+1:]
	}
	rest = strings.TrimSuffix(strings.TrimSpace(rest), ".")

	parts := strings.Split(rest, ",")
	slots := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			slots = append(slots, s)
		}
	}
	return slots
}

func logUnparsedResult(res contractx.Result) {
	log.Debug().
		Str("capability", string(res.Name)).
		Str("text", res.Text).
		Msg("capability result did not match extraction rule; field left unknown")
}
