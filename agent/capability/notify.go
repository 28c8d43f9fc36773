package capability

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	qstashx "github.com/clinicdesk/scheduling-agent/pkg/qstash"
)

// ReminderPublisher is the slice of the QStash client the notifier uses.
type ReminderPublisher interface {
	PublishJSON(ctx context.Context, destination string, body any, delay string) error
}

// ClinicNotifier simulates the clinic's outbound email and, when a QStash
// publisher is configured, registers delayed reminder deliveries. Without a
// publisher the reminders are logged only, matching the original simulator.
type ClinicNotifier struct {
	publisher   ReminderPublisher
	reminderURL string
}

var _ Notifier = (*ClinicNotifier)(nil)

type NotifierOption func(*ClinicNotifier)

func WithReminderPublisher(p ReminderPublisher, destinationURL string) NotifierOption {
	return func(n *ClinicNotifier) {
		n.publisher = p
		n.reminderURL = strings.TrimSpace(destinationURL)
	}
}

func NewClinicNotifier(opts ...NotifierOption) *ClinicNotifier {
	n := &ClinicNotifier{}
	for _, opt := range opts {
		if opt != nil {
			opt(n)
		}
	}
	return n
}

// SendConfirmation emails the booking confirmation. New patients get an extra
// paragraph asking them to complete the intake forms before the visit.
func (n *ClinicNotifier) SendConfirmation(_ context.Context, patientName, doctorName, appointmentTime, email string, isNewPatient bool) error {
	body := confirmationBody(patientName, doctorName, appointmentTime, isNewPatient)

	evt := log.Info().
		Str("patient", patientName).
		Str("doctor", doctorName).
		Str("appointment_time", appointmentTime).
		Bool("new_patient", isNewPatient).
		Str("body", body)
	if email != "" {
		evt = evt.Str("email", email)
	}
	evt.Msg("confirmation email sent")
	return nil
}

func confirmationBody(patientName, doctorName, appointmentTime string, isNewPatient bool) string {
	formMessage := ""
	if isNewPatient {
		formMessage = "\nAs a next step, please complete the attached patient intake forms before your visit.\n"
	}
	return fmt.Sprintf(
		"Subject: Your Appointment Confirmation\n\nDear %s,\n\nThis is a confirmation for your upcoming appointment with %s at %s.\n%s\nWe look forward to seeing you.\n\nSincerely,\nThe Clinic",
		patientName, doctorName, appointmentTime, formMessage,
	)
}

func (n *ClinicNotifier) ScheduleReminders(ctx context.Context, patientName, appointmentTime string) error {
	reminders := []struct {
		delay string
		note  string
	}{
		{delay: "24h", note: "24 hours before"},
		{delay: "3h", note: "3 hours before (with form completion check)"},
	}

	for _, r := range reminders {
		if n.publisher != nil && n.reminderURL != "" {
			payload := map[string]string{
				"patient_name":     patientName,
				"appointment_time": appointmentTime,
				"reminder":         r.note,
			}
			if err := n.publisher.PublishJSON(ctx, n.reminderURL, payload, r.delay); err != nil {
				return fmt.Errorf("publish reminder: %w", err)
			}
		}
		log.Info().
			Str("patient", patientName).
			Str("appointment_time", appointmentTime).
			Str("reminder", r.note).
			Msg("reminder scheduled")
	}
	return nil
}

// compile-time check that the qstash client satisfies ReminderPublisher
var _ ReminderPublisher = (*qstashx.Client)(nil)
