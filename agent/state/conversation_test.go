package state

import (
	"errors"
	"testing"
	"time"

	contractx "github.com/clinicdesk/scheduling-agent/agent/contract"
)

func TestValidateRejectsDoctorBeforePatientStatus(t *testing.T) {
	t.Parallel()

	st := NewConversationState("s1", time.Now())
	st.DoctorName = "Dr. Chen"

	if err := st.Validate(); !errors.Is(err, ErrSequencing) {
		t.Fatalf("Validate() error = %v, want ErrSequencing", err)
	}
}

func TestValidateRejectsSlotsBeforeDoctor(t *testing.T) {
	t.Parallel()

	st := NewConversationState("s1", time.Now())
	st.PatientStatus = PatientNew
	st.SetAvailableSlots([]string{"Tomorrow at 09:00 AM (60 min)"})

	if err := st.Validate(); !errors.Is(err, ErrSequencing) {
		t.Fatalf("Validate() error = %v, want ErrSequencing", err)
	}
}

func TestValidateConfirmedTimeMustBeOfferedSlot(t *testing.T) {
	t.Parallel()

	st := NewConversationState("s1", time.Now())
	st.PatientStatus = PatientReturning
	st.DoctorName = "Dr. Chen"
	st.SetAvailableSlots([]string{"Mon 9AM", "Tue 2PM"})

	st.ConfirmedTime = "Mon 9AM"
	if err := st.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	st.ConfirmedTime = "Wed 4PM"
	if err := st.Validate(); !errors.Is(err, ErrSequencing) {
		t.Fatalf("Validate() error = %v, want ErrSequencing", err)
	}
}

func TestSetAvailableSlotsEmptyIsFetched(t *testing.T) {
	t.Parallel()

	st := NewConversationState("s1", time.Now())
	if st.SlotsKnown() {
		t.Fatal("fresh state must not report slots as fetched")
	}

	st.PatientStatus = PatientReturning
	st.DoctorName = "Dr. Chen"
	st.SetAvailableSlots(nil)

	if !st.SlotsKnown() {
		t.Fatal("empty slot list must still count as fetched")
	}
	if st.AvailableSlots == nil || len(st.AvailableSlots) != 0 {
		t.Fatalf("AvailableSlots = %#v, want empty non-nil slice", st.AvailableSlots)
	}
}

func TestValidateTranscriptCorrelation(t *testing.T) {
	t.Parallel()

	now := time.Now()
	st := NewConversationState("s1", now)
	st.AppendUser("My name is Jane Doe", now)
	st.AppendAssistant("", []CapabilityCall{{ID: "c1", Name: contractx.CapPatientLookup}}, now)
	st.AppendCapabilityResult(contractx.Result{
		CorrelationID: "c1",
		Name:          contractx.CapPatientLookup,
		Status:        contractx.StatusOK,
		Text:          "SUCCESS: This is a new patient.",
	}, now)

	if err := st.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	st.AppendCapabilityResult(contractx.Result{
		CorrelationID: "orphan",
		Name:          contractx.CapDoctorList,
		Status:        contractx.StatusOK,
		Text:          "SUCCESS: doctors",
	}, now)

	if err := st.Validate(); !errors.Is(err, ErrSequencing) {
		t.Fatalf("Validate() error = %v, want ErrSequencing", err)
	}
}

func TestClearDoctorChoiceResetsDownstreamFields(t *testing.T) {
	t.Parallel()

	st := NewConversationState("s1", time.Now())
	st.PatientStatus = PatientReturning
	st.DoctorName = "Dr. Chen"
	st.SetAvailableSlots([]string{"Mon 9AM"})
	st.ConfirmedTime = "Mon 9AM"

	st.ClearDoctorChoice()

	if st.DoctorName != "" || st.SlotsKnown() || st.ConfirmedTime != "" {
		t.Fatalf("ClearDoctorChoice left residue: %#v", st)
	}
	if err := st.Validate(); err != nil {
		t.Fatalf("Validate() after clear = %v", err)
	}
}
