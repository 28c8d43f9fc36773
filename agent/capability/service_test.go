package capability

import (
	"context"
	"errors"
	"strings"
	"testing"

	contractx "github.com/clinicdesk/scheduling-agent/agent/contract"
)

type fakeDirectory struct {
	record  *contractx.PatientRecord
	doctors []contractx.Doctor
	err     error
}

func (f *fakeDirectory) FindPatient(ctx context.Context, fullName, dob string) (*contractx.PatientRecord, error) {
	return f.record, f.err
}

func (f *fakeDirectory) ListDoctors(ctx context.Context) ([]contractx.Doctor, error) {
	return f.doctors, f.err
}

type fakeBookingLog struct {
	err     error
	entries [][3]string
}

func (f *fakeBookingLog) AppendBooking(ctx context.Context, patientName, doctorName, appointmentTime string) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, [3]string{patientName, doctorName, appointmentTime})
	return nil
}

type fakeSlotSource struct {
	slots []string
	err   error
}

func (f *fakeSlotSource) AvailableSlots(ctx context.Context, doctorName string, newPatient bool) ([]string, error) {
	return f.slots, f.err
}

type sentConfirmation struct {
	patient, doctor, when string
	newPatient            bool
}

type fakeNotifier struct {
	confirmErr    error
	remindersErr  error
	confirmations []sentConfirmation
	reminders     []string
}

func (f *fakeNotifier) SendConfirmation(ctx context.Context, patientName, doctorName, appointmentTime, email string, isNewPatient bool) error {
	if f.confirmErr != nil {
		return f.confirmErr
	}
	f.confirmations = append(f.confirmations, sentConfirmation{
		patient:    patientName,
		doctor:     doctorName,
		when:       appointmentTime,
		newPatient: isNewPatient,
	})
	return nil
}

func (f *fakeNotifier) ScheduleReminders(ctx context.Context, patientName, appointmentTime string) error {
	if f.remindersErr != nil {
		return f.remindersErr
	}
	f.reminders = append(f.reminders, patientName)
	return nil
}

func testGateway(t *testing.T, dir *fakeDirectory, book *fakeBookingLog, slots *fakeSlotSource, notify *fakeNotifier) *Gateway {
	t.Helper()
	if dir == nil {
		dir = &fakeDirectory{}
	}
	if book == nil {
		book = &fakeBookingLog{}
	}
	if slots == nil {
		slots = &fakeSlotSource{}
	}
	if notify == nil {
		notify = &fakeNotifier{}
	}
	g, err := NewGateway(dir, book, slots, notify)
	if err != nil {
		t.Fatalf("NewGateway() error = %v", err)
	}
	return g
}

func TestInvokeLookupNewPatient(t *testing.T) {
	t.Parallel()

	g := testGateway(t, &fakeDirectory{}, nil, nil, nil)

	res, err := g.Invoke(context.Background(), contractx.Request{
		Name: contractx.CapPatientLookup,
		Args: map[string]any{"full_name": "Jane Doe", "dob": "1990-01-01"},
	})
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if !res.OK() {
		t.Fatalf("result = %#v", res)
	}
	if res.Text != "SUCCESS: This is a new patient." {
		t.Fatalf("Text = %q", res.Text)
	}
	if res.Payload != nil {
		t.Fatalf("Payload = %#v, want nil for new patient", res.Payload)
	}
}

func TestInvokeLookupReturningPatient(t *testing.T) {
	t.Parallel()

	g := testGateway(t, &fakeDirectory{record: &contractx.PatientRecord{
		Name:            "John Smith",
		DOB:             "1985-05-20",
		Email:           "john@example.com",
		Phone:           "555-0101",
		LastVisitDoctor: "Dr. Chen",
	}}, nil, nil, nil)

	res, err := g.Invoke(context.Background(), contractx.Request{
		Name: contractx.CapPatientLookup,
		Args: map[string]any{"full_name": "John Smith", "dob": "1985-05-20"},
	})
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if !strings.Contains(res.Text, "returning patient") {
		t.Fatalf("Text = %q", res.Text)
	}
	if !strings.Contains(res.Text, "'last_visit_doctor': 'Dr. Chen'") {
		t.Fatalf("Text = %q, want prior-doctor detail", res.Text)
	}
	record, ok := res.Payload.(contractx.PatientRecord)
	if !ok || record.LastVisitDoctor != "Dr. Chen" {
		t.Fatalf("Payload = %#v", res.Payload)
	}
}

func TestInvokeLookupDirectoryDown(t *testing.T) {
	t.Parallel()

	g := testGateway(t, &fakeDirectory{err: errors.New("connection refused")}, nil, nil, nil)

	res, err := g.Invoke(context.Background(), contractx.Request{
		Name: contractx.CapPatientLookup,
		Args: map[string]any{"full_name": "Jane Doe", "dob": "1990-01-01"},
	})
	if err != nil {
		t.Fatalf("Invoke() error = %v, backend failures must come back as Results", err)
	}
	if res.OK() || res.ErrKind != contractx.ErrKindUnavailable {
		t.Fatalf("result = %#v", res)
	}
	if !strings.HasPrefix(res.Text, "ERROR:") {
		t.Fatalf("Text = %q", res.Text)
	}
}

func TestInvokeSlotsListRendersSlots(t *testing.T) {
	t.Parallel()

	g := testGateway(t, nil, nil, &fakeSlotSource{slots: []string{"Mon 9AM", "Tue 2PM"}}, nil)

	res, err := g.Invoke(context.Background(), contractx.Request{
		Name: contractx.CapSlotsList,
		Args: map[string]any{"doctor_name": "Dr. Chen", "is_new_patient": true},
	})
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if res.Text != "SUCCESS: The following slots are available for Dr. Chen: Mon 9AM, Tue 2PM." {
		t.Fatalf("Text = %q", res.Text)
	}
	slots, ok := res.Payload.([]string)
	if !ok || len(slots) != 2 {
		t.Fatalf("Payload = %#v", res.Payload)
	}
}

func TestInvokeSlotsListEmpty(t *testing.T) {
	t.Parallel()

	g := testGateway(t, nil, nil, &fakeSlotSource{slots: nil}, nil)

	res, err := g.Invoke(context.Background(), contractx.Request{
		Name: contractx.CapSlotsList,
		Args: map[string]any{"doctor_name": "Dr. Chen"},
	})
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if !res.OK() {
		t.Fatalf("result = %#v", res)
	}
	if strings.Contains(strings.ToLower(res.Text), "following slots are available") {
		t.Fatalf("Text = %q, empty schedule must not carry the availability marker", res.Text)
	}
	slots, ok := res.Payload.([]string)
	if !ok || len(slots) != 0 {
		t.Fatalf("Payload = %#v, want empty slice", res.Payload)
	}
}

func TestInvokeBookAppointment(t *testing.T) {
	t.Parallel()

	book := &fakeBookingLog{}
	g := testGateway(t, nil, book, nil, nil)

	res, err := g.Invoke(context.Background(), contractx.Request{
		Name: contractx.CapAppointmentBook,
		Args: map[string]any{
			"patient_name":     "Jane Doe",
			"doctor_name":      "Dr. Chen",
			"appointment_time": "Mon 9AM",
		},
	})
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if !strings.Contains(res.Text, "successfully booked") {
		t.Fatalf("Text = %q", res.Text)
	}
	if len(book.entries) != 1 || book.entries[0] != [3]string{"Jane Doe", "Dr. Chen", "Mon 9AM"} {
		t.Fatalf("booking log = %#v", book.entries)
	}
}

func TestInvokeBookAppointmentFailure(t *testing.T) {
	t.Parallel()

	g := testGateway(t, nil, &fakeBookingLog{err: errors.New("disk full")}, nil, nil)

	res, err := g.Invoke(context.Background(), contractx.Request{
		Name: contractx.CapAppointmentBook,
		Args: map[string]any{
			"patient_name":     "Jane Doe",
			"doctor_name":      "Dr. Chen",
			"appointment_time": "Mon 9AM",
		},
	})
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if res.OK() || res.ErrKind != contractx.ErrKindInternal {
		t.Fatalf("result = %#v", res)
	}
	if res.Text != "ERROR: Could not book the appointment due to a system error." {
		t.Fatalf("Text = %q", res.Text)
	}
}

func TestInvokeInsuranceSkip(t *testing.T) {
	t.Parallel()

	g := testGateway(t, nil, nil, nil, nil)

	res, err := g.Invoke(context.Background(), contractx.Request{Name: contractx.CapInsuranceSkip})
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if res.Payload != "Not Provided" {
		t.Fatalf("Payload = %#v", res.Payload)
	}
}

func TestInvokeNotifications(t *testing.T) {
	t.Parallel()

	notify := &fakeNotifier{}
	g := testGateway(t, nil, nil, nil, notify)

	res, err := g.Invoke(context.Background(), contractx.Request{
		Name: contractx.CapIntakeForms,
		Args: map[string]any{
			"patient_name":     "Jane Doe",
			"doctor_name":      "Dr. Chen",
			"appointment_time": "Mon 9AM",
			"is_new_patient":   true,
			"email":            "jane@example.com",
		},
	})
	if err != nil || !res.OK() {
		t.Fatalf("confirmation: res = %#v err = %v", res, err)
	}
	if !strings.Contains(res.Text, "intake forms") {
		t.Fatalf("Text = %q, want intake forms mention for new patient", res.Text)
	}

	res, err = g.Invoke(context.Background(), contractx.Request{
		Name: contractx.CapReminders,
		Args: map[string]any{"patient_name": "Jane Doe", "appointment_time": "Mon 9AM"},
	})
	if err != nil || !res.OK() {
		t.Fatalf("reminders: res = %#v err = %v", res, err)
	}
	if !strings.Contains(res.Text, "24 hours and 3 hours") {
		t.Fatalf("Text = %q", res.Text)
	}

	if len(notify.confirmations) != 1 || len(notify.reminders) != 1 {
		t.Fatalf("notifier calls = %#v / %#v", notify.confirmations, notify.reminders)
	}
	sent := notify.confirmations[0]
	if sent.doctor != "Dr. Chen" || sent.when != "Mon 9AM" || !sent.newPatient {
		t.Fatalf("confirmation = %#v, want doctor, time and new-patient flag", sent)
	}
}

func TestInvokeConfirmationReturningPatient(t *testing.T) {
	t.Parallel()

	notify := &fakeNotifier{}
	g := testGateway(t, nil, nil, nil, notify)

	res, err := g.Invoke(context.Background(), contractx.Request{
		Name: contractx.CapIntakeForms,
		Args: map[string]any{
			"patient_name":     "John Smith",
			"doctor_name":      "Dr. Adams",
			"appointment_time": "Tue 2PM",
			"is_new_patient":   false,
		},
	})
	if err != nil || !res.OK() {
		t.Fatalf("confirmation: res = %#v err = %v", res, err)
	}
	if strings.Contains(res.Text, "intake forms") {
		t.Fatalf("Text = %q, intake forms mention should be absent", res.Text)
	}
	if len(notify.confirmations) != 1 || notify.confirmations[0].newPatient {
		t.Fatalf("confirmations = %#v", notify.confirmations)
	}
}

func TestInvokeUnknownCapabilityIsError(t *testing.T) {
	t.Parallel()

	g := testGateway(t, nil, nil, nil, nil)

	_, err := g.Invoke(context.Background(), contractx.Request{Name: "billing.charge"})
	if !errors.Is(err, contractx.ErrUnknownCapability) {
		t.Fatalf("expected ErrUnknownCapability, got %v", err)
	}
}

func TestNewGatewayRequiresCollaborators(t *testing.T) {
	t.Parallel()

	if _, err := NewGateway(nil, &fakeBookingLog{}, &fakeSlotSource{}, &fakeNotifier{}); err == nil {
		t.Fatal("expected error for nil directory")
	}
	if _, err := NewGateway(&fakeDirectory{}, nil, &fakeSlotSource{}, &fakeNotifier{}); err == nil {
		t.Fatal("expected error for nil booking log")
	}
	if _, err := NewGateway(&fakeDirectory{}, &fakeBookingLog{}, nil, &fakeNotifier{}); err == nil {
		t.Fatal("expected error for nil slot source")
	}
	if _, err := NewGateway(&fakeDirectory{}, &fakeBookingLog{}, &fakeSlotSource{}, nil); err == nil {
		t.Fatal("expected error for nil notifier")
	}
}
