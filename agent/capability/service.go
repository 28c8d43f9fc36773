package capability

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/clinicdesk/scheduling-agent/agent/contract"
)

// Directory is the EMR lookup surface the gateway needs. FindPatient returns
// (nil, nil) when no record matches; that is the new-patient case, not an
// error.
type Directory interface {
	FindPatient(ctx context.Context, fullName, dob string) (*contractx.PatientRecord, error)
	ListDoctors(ctx context.Context) ([]contractx.Doctor, error)
}

// BookingLog appends confirmed bookings.
type BookingLog interface {
	AppendBooking(ctx context.Context, patientName, doctorName, appointmentTime string) error
}

// SlotSource supplies available appointment slots for a doctor.
type SlotSource interface {
	AvailableSlots(ctx context.Context, doctorName string, newPatient bool) ([]string, error)
}

// Notifier delivers post-booking notifications.
type Notifier interface {
	SendConfirmation(ctx context.Context, patientName, doctorName, appointmentTime, email string, isNewPatient bool) error
	ScheduleReminders(ctx context.Context, patientName, appointmentTime string) error
}

// Gateway executes catalog capabilities against the clinic's backends. It is
// the only component with side effects; everything above it sees the tagged
// Result.
type Gateway struct {
	directory Directory
	bookings  BookingLog
	slots     SlotSource
	notifier  Notifier
}

var _ contractx.Gateway = (*Gateway)(nil)

func NewGateway(directory Directory, bookings BookingLog, slots SlotSource, notifier Notifier) (*Gateway, error) {
	if directory == nil {
		return nil, errors.New("patient directory is required")
	}
	if bookings == nil {
		return nil, errors.New("booking log is required")
	}
	if slots == nil {
		return nil, errors.New("slot source is required")
	}
	if notifier == nil {
		return nil, errors.New("notifier is required")
	}
	return &Gateway{
		directory: directory,
		bookings:  bookings,
		slots:     slots,
		notifier:  notifier,
	}, nil
}

// Invoke runs one capability and returns a tagged Result. Backend failures
// come back as error-status Results, never as a Go error; a non-nil error
// means the request itself was malformed past the dispatch boundary.
func (g *Gateway) Invoke(ctx context.Context, req contractx.Request) (contractx.Result, error) {
	if err := ValidateRequest(req); err != nil {
		return contractx.Result{}, err
	}

	res := contractx.Result{
		CorrelationID: req.CorrelationID,
		Name:          req.Name,
		Status:        contractx.StatusOK,
	}

	switch req.Name {
	case contractx.CapPatientLookup:
		g.lookupPatient(ctx, req, &res)
	case contractx.CapInsuranceCollect:
		collectInsurance(req, &res)
	case contractx.CapInsuranceSkip:
		res.Payload = "Not Provided"
		res.Text = "SUCCESS: Insurance collection was skipped at the patient's request."
	case contractx.CapDoctorList:
		g.listDoctors(ctx, &res)
	case contractx.CapSlotsList:
		g.listSlots(ctx, req, &res)
	case contractx.CapAppointmentBook:
		g.bookAppointment(ctx, req, &res)
	case contractx.CapIntakeForms:
		g.sendConfirmation(ctx, req, &res)
	case contractx.CapReminders:
		g.scheduleReminders(ctx, req, &res)
	default:
		return contractx.Result{}, fmt.Errorf("%w: %s", contractx.ErrUnknownCapability, req.Name)
	}

	if !res.OK() {
		log.Warn().
			Str("capability", string(req.Name)).
			Str("err_kind", string(res.ErrKind)).
			Msg("capability failed")
	}
	return res, nil
}

func (g *Gateway) lookupPatient(ctx context.Context, req contractx.Request, res *contractx.Result) {
	fullName := stringArg(req, "full_name")
	dob := stringArg(req, "dob")

	record, err := g.directory.FindPatient(ctx, fullName, dob)
	if err != nil {
		fail(res, contractx.ErrKindUnavailable, "ERROR: The patient database is unavailable right now.")
		return
	}
	if record == nil {
		res.Text = "SUCCESS: This is a new patient."
		return
	}

	res.Payload = *record
	res.Text = fmt.Sprintf(
		"SUCCESS: Found returning patient. Details: {'name': '%s', 'dob': '%s', 'email': '%s', 'phone': '%s', 'last_visit_doctor': '%s'}",
		record.Name, record.DOB, record.Email, record.Phone, record.LastVisitDoctor,
	)
}

func collectInsurance(req contractx.Request, res *contractx.Result) {
	carrier := stringArg(req, "carrier")
	details := carrier
	if member := stringArg(req, "member_id"); member != "" {
		details = fmt.Sprintf("%s (member %s)", carrier, member)
	}
	res.Payload = details
	res.Text = fmt.Sprintf("SUCCESS: Insurance details recorded: %s.", details)
}

func (g *Gateway) listDoctors(ctx context.Context, res *contractx.Result) {
	doctors, err := g.directory.ListDoctors(ctx)
	if err != nil {
		fail(res, contractx.ErrKindUnavailable, "ERROR: The doctor directory is unavailable right now.")
		return
	}

	res.Payload = doctors
	lines := make([]string, 0, len(doctors))
	for _, d := range doctors {
		lines = append(lines, fmt.Sprintf("%s (%s)", d.Name, d.Specialty))
	}
	res.Text = "SUCCESS: Our doctors are: " + strings.Join(lines, ", ") + "."
}

func (g *Gateway) listSlots(ctx context.Context, req contractx.Request, res *contractx.Result) {
	doctorName := stringArg(req, "doctor_name")
	newPatient := boolArg(req, "is_new_patient")

	slots, err := g.slots.AvailableSlots(ctx, doctorName, newPatient)
	if err != nil {
		fail(res, contractx.ErrKindUnavailable, "ERROR: The scheduling system is unavailable right now.")
		return
	}
	if len(slots) == 0 {
		res.Payload = []string{}
		res.Text = fmt.Sprintf("SUCCESS: No slots are currently open for %s.", doctorName)
		return
	}

	res.Payload = slots
	res.Text = fmt.Sprintf(
		"SUCCESS: The following slots are available for %s: %s.",
		doctorName, strings.Join(slots, ", "),
	)
}

func (g *Gateway) bookAppointment(ctx context.Context, req contractx.Request, res *contractx.Result) {
	patient := stringArg(req, "patient_name")
	doctor := stringArg(req, "doctor_name")
	when := stringArg(req, "appointment_time")

	if err := g.bookings.AppendBooking(ctx, patient, doctor, when); err != nil {
		fail(res, contractx.ErrKindInternal, "ERROR: Could not book the appointment due to a system error.")
		return
	}
	res.Text = fmt.Sprintf(
		"SUCCESS: The appointment has been successfully booked for %s with %s at %s.",
		patient, doctor, when,
	)
}

func (g *Gateway) sendConfirmation(ctx context.Context, req contractx.Request, res *contractx.Result) {
	patient := stringArg(req, "patient_name")
	doctor := stringArg(req, "doctor_name")
	when := stringArg(req, "appointment_time")
	email := stringArg(req, "email")
	newPatient := boolArg(req, "is_new_patient")

	if err := g.notifier.SendConfirmation(ctx, patient, doctor, when, email, newPatient); err != nil {
		fail(res, contractx.ErrKindUnavailable, "ERROR: Could not send the confirmation email.")
		return
	}
	if newPatient {
		res.Text = fmt.Sprintf("SUCCESS: Confirmation email with intake forms sent to %s.", patient)
		return
	}
	res.Text = fmt.Sprintf("SUCCESS: Confirmation email sent to %s.", patient)
}

func (g *Gateway) scheduleReminders(ctx context.Context, req contractx.Request, res *contractx.Result) {
	patient := stringArg(req, "patient_name")
	when := stringArg(req, "appointment_time")

	if err := g.notifier.ScheduleReminders(ctx, patient, when); err != nil {
		fail(res, contractx.ErrKindUnavailable, "ERROR: Could not schedule the reminders.")
		return
	}
	res.Text = fmt.Sprintf(
		"SUCCESS: Reminders scheduled for %s, 24 hours and 3 hours before %s.",
		patient, when,
	)
}

func fail(res *contractx.Result, kind contractx.ErrorKind, text string) {
	res.Status = contractx.StatusError
	res.ErrKind = kind
	res.Text = text
	res.Payload = nil
}

func stringArg(req contractx.Request, key string) string {
	if v, ok := req.Args[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func boolArg(req contractx.Request, key string) bool {
	switch v := req.Args[key].(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(strings.TrimSpace(v), "true")
	default:
		return false
	}
}
