package state

import (
	"errors"
	"fmt"
	"time"

	contractx "github.com/clinicdesk/scheduling-agent/agent/contract"
)

type PatientStatus string

const (
	PatientUnknown   PatientStatus = "unknown"
	PatientNew       PatientStatus = "new"
	PatientReturning PatientStatus = "returning"
)

func (p PatientStatus) Known() bool {
	return p == PatientNew || p == PatientReturning
}

// Insurance sentinel values. Any other non-empty InsuranceInfo holds the
// carrier details the user provided.
const (
	InsuranceNotProvided = "Not Provided"
	InsuranceConfirmed   = "Confirmed"
)

type Role string

const (
	RoleUser       Role = "user"
	RoleAssistant  Role = "assistant"
	RoleCapability Role = "capability"
)

// CapabilityCall records one capability request attached to an assistant
// message. ID is the correlation id the matching result message carries.
type CapabilityCall struct {
	ID   string         `json:"id"`
	Name contractx.Name `json:"name"`
	Args map[string]any `json:"args,omitempty"`
}

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`

	// Assistant messages that request capability invocations.
	Calls []CapabilityCall `json:"calls,omitempty"`

	// Capability-result messages.
	Capability    contractx.Name `json:"capability,omitempty"`
	CorrelationID string         `json:"correlation_id,omitempty"`
	Failed        bool           `json:"failed,omitempty"`

	At time.Time `json:"at"`
}

// ConversationState is the per-session source of truth for workflow progress.
// It is mutated only by the Action Dispatcher (capability-driven fields) and
// the user-choice extraction step; the transcript is append-only.
type ConversationState struct {
	SessionID string `json:"session_id"`

	PatientStatus PatientStatus     `json:"patient_status"`
	PatientInfo   map[string]string `json:"patient_info,omitempty"`
	InsuranceInfo *string           `json:"insurance_info,omitempty"`

	DoctorList []contractx.Doctor `json:"doctor_list,omitempty"`
	DoctorName string             `json:"doctor_name,omitempty"`

	// AvailableSlots distinguishes "not fetched" (nil) from "fetched, none
	// available" (empty slice).
	AvailableSlots []string `json:"available_slots"`
	SlotsFetched   bool     `json:"slots_fetched,omitempty"`
	ConfirmedTime  string   `json:"confirmed_time,omitempty"`

	Booked bool `json:"booked,omitempty"`

	Transcript []Message `json:"transcript,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

var (
	ErrInvalidSession = errors.New("session id is empty")
	ErrSequencing     = errors.New("workflow sequencing violated")
)

func NewConversationState(sessionID string, now time.Time) *ConversationState {
	return &ConversationState{
		SessionID:     sessionID,
		PatientStatus: PatientUnknown,
		UpdatedAt:     now.UTC(),
	}
}

func (s *ConversationState) Touch(now time.Time) {
	s.UpdatedAt = now.UTC()
}

func (s *ConversationState) InsuranceCollected() bool {
	return s != nil && s.InsuranceInfo != nil && *s.InsuranceInfo != ""
}

func (s *ConversationState) SetInsurance(info string) {
	s.InsuranceInfo = &info
}

// ClearDoctorChoice drops the chosen doctor and the fetched list so the
// workflow re-enters doctor selection. Used when a returning patient asks for
// a different doctor.
func (s *ConversationState) ClearDoctorChoice() {
	s.DoctorName = ""
	s.DoctorList = nil
	s.AvailableSlots = nil
	s.SlotsFetched = false
	s.ConfirmedTime = ""
}

// SetAvailableSlots records a fetched slot list. An empty list is remembered
// as "fetched, none available" rather than reverting to unknown.
func (s *ConversationState) SetAvailableSlots(slots []string) {
	if slots == nil {
		slots = []string{}
	}
	s.AvailableSlots = slots
	s.SlotsFetched = true
}

func (s *ConversationState) SlotsKnown() bool {
	return s != nil && s.SlotsFetched
}

func (s *ConversationState) AppendUser(text string, now time.Time) {
	s.Transcript = append(s.Transcript, Message{
		Role:    RoleUser,
		Content: text,
		At:      now.UTC(),
	})
}

func (s *ConversationState) AppendAssistant(text string, calls []CapabilityCall, now time.Time) {
	s.Transcript = append(s.Transcript, Message{
		Role:    RoleAssistant,
		Content: text,
		Calls:   calls,
		At:      now.UTC(),
	})
}

func (s *ConversationState) AppendCapabilityResult(res contractx.Result, now time.Time) {
	s.Transcript = append(s.Transcript, Message{
		Role:          RoleCapability,
		Content:       res.Text,
		Capability:    res.Name,
		CorrelationID: res.CorrelationID,
		Failed:        !res.OK(),
		At:            now.UTC(),
	})
}

func (s *ConversationState) LastMessage() *Message {
	if s == nil || len(s.Transcript) == 0 {
		return nil
	}
	return &s.Transcript[len(s.Transcript)-1]
}

// LastAssistantUtterance returns the most recent assistant text, skipping
// pure capability-request messages.
func (s *ConversationState) LastAssistantUtterance() string {
	if s == nil {
		return ""
	}
	for i := len(s.Transcript) - 1; i >= 0; i-- {
		m := s.Transcript[i]
		if m.Role == RoleAssistant && m.Content != "" {
			return m.Content
		}
	}
	return ""
}

// Validate checks the workflow sequencing invariants. It is called before
// every save; a violation indicates a dispatcher or router bug, never user
// input.
func (s *ConversationState) Validate() error {
	if s == nil {
		return errors.New("nil conversation state")
	}
	if s.SessionID == "" {
		return ErrInvalidSession
	}
	if s.DoctorName != "" && !s.PatientStatus.Known() {
		return fmt.Errorf("%w: doctor chosen before patient status", ErrSequencing)
	}
	if s.SlotsFetched && s.DoctorName == "" {
		return fmt.Errorf("%w: slots fetched before doctor chosen", ErrSequencing)
	}
	if s.ConfirmedTime != "" {
		if !s.SlotsFetched {
			return fmt.Errorf("%w: time confirmed before slots fetched", ErrSequencing)
		}
		found := false
		for _, slot := range s.AvailableSlots {
			if slot == s.ConfirmedTime {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%w: confirmed time %q is not an offered slot", ErrSequencing, s.ConfirmedTime)
		}
	}
	return s.validateTranscript()
}

// validateTranscript checks that every capability-result message correlates
// with a call in the nearest preceding assistant request message.
func (s *ConversationState) validateTranscript() error {
	pending := map[string]bool{}
	for _, m := range s.Transcript {
		switch m.Role {
		case RoleAssistant:
			if len(m.Calls) > 0 {
				pending = make(map[string]bool, len(m.Calls))
				for _, c := range m.Calls {
					pending[c.ID] = true
				}
			}
		case RoleCapability:
			if m.CorrelationID == "" || !pending[m.CorrelationID] {
				return fmt.Errorf("%w: capability result %q has no matching request", ErrSequencing, m.Capability)
			}
		}
	}
	return nil
}
