package capability

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type recordingPublisher struct {
	err    error
	delays []string
	dests  []string
}

func (r *recordingPublisher) PublishJSON(ctx context.Context, destination string, body any, delay string) error {
	if r.err != nil {
		return r.err
	}
	r.dests = append(r.dests, destination)
	r.delays = append(r.delays, delay)
	return nil
}

func TestScheduleRemindersPublishesBoth(t *testing.T) {
	t.Parallel()

	pub := &recordingPublisher{}
	n := NewClinicNotifier(WithReminderPublisher(pub, "https://clinic.example.com/reminders"))

	if err := n.ScheduleReminders(context.Background(), "Jane Doe", "Mon 9AM"); err != nil {
		t.Fatalf("ScheduleReminders() error = %v", err)
	}

	if len(pub.delays) != 2 || pub.delays[0] != "24h" || pub.delays[1] != "3h" {
		t.Fatalf("delays = %#v, want [24h 3h]", pub.delays)
	}
	for _, d := range pub.dests {
		if d != "https://clinic.example.com/reminders" {
			t.Fatalf("destination = %q", d)
		}
	}
}

func TestScheduleRemindersPublisherFailure(t *testing.T) {
	t.Parallel()

	pubErr := errors.New("queue unavailable")
	n := NewClinicNotifier(WithReminderPublisher(&recordingPublisher{err: pubErr}, "https://clinic.example.com/reminders"))

	err := n.ScheduleReminders(context.Background(), "Jane Doe", "Mon 9AM")
	if !errors.Is(err, pubErr) {
		t.Fatalf("expected publisher error, got %v", err)
	}
}

func TestScheduleRemindersWithoutPublisherLogsOnly(t *testing.T) {
	t.Parallel()

	n := NewClinicNotifier()
	if err := n.ScheduleReminders(context.Background(), "Jane Doe", "Mon 9AM"); err != nil {
		t.Fatalf("ScheduleReminders() error = %v", err)
	}
}

func TestSendConfirmation(t *testing.T) {
	t.Parallel()

	n := NewClinicNotifier()
	if err := n.SendConfirmation(context.Background(), "Jane Doe", "Dr. Chen", "Mon 9AM", "jane@example.com", true); err != nil {
		t.Fatalf("SendConfirmation() error = %v", err)
	}
}

func TestConfirmationBodyNewPatient(t *testing.T) {
	t.Parallel()

	body := confirmationBody("Jane Doe", "Dr. Chen", "Mon 9AM", true)
	if !strings.Contains(body, "appointment with Dr. Chen at Mon 9AM") {
		t.Fatalf("body = %q, want doctor and time", body)
	}
	if !strings.Contains(body, "complete the attached patient intake forms") {
		t.Fatalf("body = %q, want intake forms paragraph", body)
	}
}

func TestConfirmationBodyReturningPatientOmitsIntakeForms(t *testing.T) {
	t.Parallel()

	body := confirmationBody("John Smith", "Dr. Adams", "Tue 2PM", false)
	if !strings.Contains(body, "appointment with Dr. Adams at Tue 2PM") {
		t.Fatalf("body = %q, want doctor and time", body)
	}
	if strings.Contains(body, "intake forms") {
		t.Fatalf("body = %q, intake forms paragraph should be absent", body)
	}
}
