package router

import (
	"fmt"
	"strings"

	statex "github.com/clinicdesk/scheduling-agent/agent/state"
)

// RenderPrompt fills the scripted template for the given kind from state. The
// result is the assistant utterance for this turn; the next user message
// returns control to the Decision Engine.
func RenderPrompt(kind PromptKind, st *statex.ConversationState) string {
	switch kind {
	case PromptAskInsurance:
		return renderAskInsurance(st)
	case PromptConfirmOrChooseDoctor:
		return renderConfirmOrChooseDoctor(st)
	case PromptPresentSlots:
		return renderPresentSlots(st)
	case PromptFinalConfirmation:
		return renderFinalConfirmation(st)
	default:
		return ""
	}
}

func patientFirstName(st *statex.ConversationState) string {
	if st == nil {
		return ""
	}
	name := strings.TrimSpace(st.PatientInfo["name"])
	if name == "" {
		return ""
	}
	parts := strings.Fields(name)
	return parts[0]
}

func renderAskInsurance(st *statex.ConversationState) string {
	greeting := "Thanks"
	if first := patientFirstName(st); first != "" {
		greeting = "Thanks, " + first
	}
	return greeting + "! Since you're a new patient, could you share your insurance carrier and member ID? " +
		"If you'd rather not provide insurance right now, just say \"skip\" and we can continue."
}

func renderConfirmOrChooseDoctor(st *statex.ConversationState) string {
	if st != nil && st.PatientStatus == statex.PatientReturning && st.DoctorName != "" && len(st.DoctorList) == 0 {
		return fmt.Sprintf(
			"Welcome back! Last time you saw %s. Would you like to book with %s again and keep your insurance on file, or choose a different doctor?",
			st.DoctorName, st.DoctorName,
		)
	}

	var b strings.Builder
	b.WriteString("Here are our available doctors:\n")
	if st != nil {
		for _, d := range st.DoctorList {
			fmt.Fprintf(&b, "- %s (%s)\n", d.Name, d.Specialty)
		}
	}
	b.WriteString("Which doctor would you like to see?")
	return b.String()
}

func renderPresentSlots(st *statex.ConversationState) string {
	if st == nil || !st.SlotsKnown() {
		return "I wasn't able to check the schedule just now. Could you try again?"
	}
	if len(st.AvailableSlots) == 0 {
		return fmt.Sprintf(
			"I'm sorry, %s has no open slots at the moment. Would you like to pick a different doctor?",
			doctorOrDefault(st),
		)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Here are the available slots for %s:\n", doctorOrDefault(st))
	for i, slot := range st.AvailableSlots {
		fmt.Fprintf(&b, "%d. %s\n", i+1, slot)
	}
	b.WriteString("Which time works best for you?")
	return b.String()
}

func renderFinalConfirmation(st *statex.ConversationState) string {
	name := "you"
	if st != nil {
		if n := strings.TrimSpace(st.PatientInfo["name"]); n != "" {
			name = n
		}
	}

	msg := fmt.Sprintf(
		"You're all set! Your appointment for %s with %s at %s is confirmed. A confirmation email is on its way and we'll remind you before the visit.",
		name, doctorOrDefault(st), confirmedOrDefault(st),
	)
	if st != nil && st.PatientStatus == statex.PatientNew {
		msg += " Please complete the intake forms we've emailed you before your visit."
	}
	return msg
}

func doctorOrDefault(st *statex.ConversationState) string {
	if st != nil && st.DoctorName != "" {
		return st.DoctorName
	}
	return "the doctor"
}

func confirmedOrDefault(st *statex.ConversationState) string {
	if st != nil && st.ConfirmedTime != "" {
		return st.ConfirmedTime
	}
	return "the agreed time"
}
