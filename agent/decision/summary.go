package decision

import (
	"fmt"
	"strings"

	statex "github.com/clinicdesk/scheduling-agent/agent/state"
)

// Summarize renders the task status block the decision prompt keys its
// step ordering on. Fields read "Unknown"/"No" until the workflow fills them.
func Summarize(st *statex.ConversationState) string {
	if st == nil {
		return ""
	}

	patientStatus := "Unknown"
	switch st.PatientStatus {
	case statex.PatientNew:
		patientStatus = "NEW"
	case statex.PatientReturning:
		patientStatus = "RETURNING"
	}

	insurance := "No"
	if st.InsuranceCollected() {
		insurance = "Yes"
	}

	doctor := "Unknown"
	if strings.TrimSpace(st.DoctorName) != "" {
		doctor = st.DoctorName
	}

	slots := "No"
	if st.SlotsKnown() && len(st.AvailableSlots) > 0 {
		slots = "Yes"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "- Patient Status: %s\n", patientStatus)
	fmt.Fprintf(&b, "- Insurance Collected: %s\n", insurance)
	fmt.Fprintf(&b, "- Doctor Chosen: %s\n", doctor)
	fmt.Fprintf(&b, "- Slots Found: %s", slots)
	return b.String()
}
