package contract

import "time"

// Name identifies a capability in the closed catalog. The Decision Engine may
// only request names declared here; anything else is rejected at the dispatch
// boundary.
type Name string

const (
	CapPatientLookup    Name = "patient.lookup"
	CapInsuranceCollect Name = "insurance.collect"
	CapInsuranceSkip    Name = "insurance.skip"
	CapDoctorList       Name = "doctor.list"
	CapSlotsList        Name = "slots.list"
	CapAppointmentBook  Name = "appointment.book"
	CapIntakeForms      Name = "notify.intake_forms"
	CapReminders        Name = "notify.reminders"
)

// Request is one capability invocation asked for by the Decision Engine or by
// the Router's deterministic follow-up step.
type Request struct {
	CorrelationID string         `json:"correlation_id"`
	Name          Name           `json:"name"`
	Args          map[string]any `json:"args,omitempty"`
}

type Status string

const (
	StatusOK    Status = "ok"
	StatusError Status = "error"
)

// ErrorKind classifies capability failures for logging and routing. It never
// crosses the session boundary; users only see natural language.
type ErrorKind string

const (
	ErrKindNone        ErrorKind = ""
	ErrKindUnknown     ErrorKind = "unknown_capability"
	ErrKindBadArgs     ErrorKind = "bad_arguments"
	ErrKindUnavailable ErrorKind = "backend_unavailable"
	ErrKindInternal    ErrorKind = "internal"
)

// Result is the tagged outcome of one capability invocation. Payload carries
// the structured result when the capability has one; Text is the rendered
// transcript line handed to the model, which keeps the legacy
// "SUCCESS:"/"ERROR:" convention at that presentation layer only.
type Result struct {
	CorrelationID string    `json:"correlation_id"`
	Name          Name      `json:"name"`
	Status        Status    `json:"status"`
	ErrKind       ErrorKind `json:"err_kind,omitempty"`
	Text          string    `json:"text"`
	Payload       any       `json:"payload,omitempty"`
}

func (r Result) OK() bool {
	return r.Status == StatusOK
}

// PatientRecord is the structured payload of a returning-patient lookup.
type PatientRecord struct {
	Name            string `json:"name"`
	DOB             string `json:"dob"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	LastVisitDoctor string `json:"last_visit_doctor"`
}

type Doctor struct {
	Name      string `json:"name"`
	Specialty string `json:"specialty"`
}

// DecisionRequest is the Decision Engine's input: the latest user message plus
// a compact task-status summary and the recent transcript rendered as text.
type DecisionRequest struct {
	UserMessage   string    `json:"user_message"`
	StatusSummary string    `json:"status_summary"`
	Transcript    []string  `json:"transcript"`
	Now           time.Time `json:"now"`
}

// Decision is what the engine produced: either a user-facing utterance or one
// or more capability requests, never both.
type Decision struct {
	Utterance string    `json:"utterance,omitempty"`
	Requests  []Request `json:"requests,omitempty"`
}

func (d Decision) WantsCapabilities() bool {
	return len(d.Requests) > 0
}
