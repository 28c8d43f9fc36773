package capability

import (
	"context"
	"fmt"
	"time"

	calendlyx "github.com/clinicdesk/scheduling-agent/pkg/calendly"
)

// StaticSlotSource mirrors the clinic's stand-in schedule when no calendar
// provider is configured: a fixed list of near-term slots, 60 minutes for new
// patients and 30 for returning ones.
type StaticSlotSource struct{}

func (StaticSlotSource) AvailableSlots(_ context.Context, _ string, newPatient bool) ([]string, error) {
	duration := 30
	if newPatient {
		duration = 60
	}
	return []string{
		fmt.Sprintf("Tomorrow at 09:00 AM (%d min)", duration),
		fmt.Sprintf("Tomorrow at 11:30 AM (%d min)", duration),
		fmt.Sprintf("Tomorrow at 02:00 PM (%d min)", duration),
		fmt.Sprintf("The day after tomorrow at 10:00 AM (%d min)", duration),
	}, nil
}

// CalendlySlotSource reads real availability from Calendly. The clinic maps
// each patient type to an event type (60-minute intake vs 30-minute
// follow-up); the doctor routing happens inside the Calendly event setup.
type CalendlySlotSource struct {
	client          *calendlyx.Client
	userURI         string
	newPatientURI   string
	returningURI    string
	lookaheadDays   int
	now             func() time.Time
	durationMinutes func(newPatient bool) int
}

func NewCalendlySlotSource(client *calendlyx.Client, userURI, newPatientURI, returningURI string, lookaheadDays int) *CalendlySlotSource {
	if lookaheadDays <= 0 {
		lookaheadDays = 7
	}
	return &CalendlySlotSource{
		client:        client,
		userURI:       userURI,
		newPatientURI: newPatientURI,
		returningURI:  returningURI,
		lookaheadDays: lookaheadDays,
		now:           time.Now,
		durationMinutes: func(newPatient bool) int {
			if newPatient {
				return 60
			}
			return 30
		},
	}
}

func (c *CalendlySlotSource) AvailableSlots(ctx context.Context, _ string, newPatient bool) ([]string, error) {
	eventType := c.returningURI
	if newPatient {
		eventType = c.newPatientURI
	}

	start := c.now().UTC()
	end := start.AddDate(0, 0, c.lookaheadDays)

	times, err := c.client.AvailableTimes(ctx, c.userURI, eventType, start, end)
	if err != nil {
		return nil, fmt.Errorf("calendly availability: %w", err)
	}

	duration := c.durationMinutes(newPatient)
	slots := make([]string, 0, len(times))
	for _, t := range times {
		slots = append(slots, fmt.Sprintf("%s (%d min)", t.Local().Format("Mon Jan 2 at 03:04 PM"), duration))
	}
	return slots, nil
}
