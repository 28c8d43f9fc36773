// Package intent holds the best-effort free-text heuristics that derive state
// updates from user replies: doctor choice, slot confirmation, and the
// returning-patient insurance confirmation. It is intentionally isolated from
// the router: heuristics here may misfire on unusual phrasing (false
// positives on short substring matches, false negatives on nicknames or
// paraphrased times), and the deterministic transition logic must never depend
// on them.
package intent

import (
	"regexp"
	"strings"

	contractx "github.com/clinicdesk/scheduling-agent/agent/contract"
	statex "github.com/clinicdesk/scheduling-agent/agent/state"
)

// Update is the partial state change derived from one user message. Nil
// pointers mean "no change".
type Update struct {
	DoctorName    *string
	ConfirmedTime *string
	Insurance     *string
	ClearDoctor   bool
}

func (u Update) Empty() bool {
	return u.DoctorName == nil && u.ConfirmedTime == nil && u.Insurance == nil && !u.ClearDoctor
}

var timeOfDayPattern = regexp.MustCompile(`(?i)\d{1,2}(?::\d{2})?\s*(?:AM|PM)`)

// Phrases that signal the user wants a different doctor than the one on
// file. Deliberately narrow; anything else counts as implicit confirmation
// when an insurance confirmation is pending.
var differentDoctorPhrases = []string{
	"different doctor",
	"another doctor",
	"someone else",
	"somebody else",
	"change doctor",
	"switch doctor",
	"other doctor",
	"new doctor",
}

// Extract derives a partial state update from the latest user message. It is
// a pure function of (state, message); call Apply to commit the result.
func Extract(st *statex.ConversationState, userText string) Update {
	var u Update
	if st == nil {
		return u
	}
	lower := strings.ToLower(userText)

	// Returning patient with an insurance confirmation pending: a wish for a
	// different doctor forces re-selection; any other reply is treated as
	// implicitly re-affirming the existing policy. Known to be over-broad.
	if st.PatientStatus == statex.PatientReturning && !st.InsuranceCollected() && st.DoctorName != "" {
		if wantsDifferentDoctor(lower) {
			u.ClearDoctor = true
			return u
		}
		confirmed := statex.InsuranceConfirmed
		u.Insurance = &confirmed
	}

	if len(st.DoctorList) > 0 && st.DoctorName == "" {
		if name := matchDoctor(st.DoctorList, lower); name != "" {
			u.DoctorName = &name
		}
	}

	if st.SlotsKnown() && len(st.AvailableSlots) > 0 && st.ConfirmedTime == "" {
		if slot := matchSlot(st.AvailableSlots, lower); slot != "" {
			u.ConfirmedTime = &slot
		}
	}

	return u
}

// Apply commits an extracted update. Returns true if anything changed.
func Apply(st *statex.ConversationState, u Update) bool {
	if st == nil || u.Empty() {
		return false
	}
	if u.ClearDoctor {
		st.ClearDoctorChoice()
		return true
	}
	if u.Insurance != nil {
		st.SetInsurance(*u.Insurance)
	}
	if u.DoctorName != nil {
		st.DoctorName = *u.DoctorName
	}
	if u.ConfirmedTime != nil {
		st.ConfirmedTime = *u.ConfirmedTime
	}
	return true
}

func wantsDifferentDoctor(lowerMsg string) bool {
	for _, phrase := range differentDoctorPhrases {
		if strings.Contains(lowerMsg, phrase) {
			return true
		}
	}
	return false
}

// matchDoctor returns the first listed doctor whose name appears in the
// message, comparing case-insensitively and tolerating a dropped "Dr."
// prefix. Ties break by list order.
func matchDoctor(doctors []contractx.Doctor, lowerMsg string) string {
	for _, d := range doctors {
		full := strings.ToLower(strings.TrimSpace(d.Name))
		if full == "" {
			continue
		}
		if strings.Contains(lowerMsg, full) {
			return d.Name
		}
		bare := strings.TrimSpace(strings.TrimPrefix(full, "dr."))
		if bare != "" && bare != full && strings.Contains(lowerMsg, bare) {
			return d.Name
		}
	}
	return ""
}

// matchSlot returns the first offered slot whose time-of-day portion appears
// in the message. The confirmed value is always the full slot string exactly
// as offered, so the closure invariant on ConfirmedTime holds.
func matchSlot(slots []string, lowerMsg string) string {
	for _, slot := range slots {
		tod := timeOfDayPattern.FindString(slot)
		if tod == "" {
			continue
		}
		if strings.Contains(lowerMsg, strings.ToLower(tod)) {
			return slot
		}
	}
	return ""
}
