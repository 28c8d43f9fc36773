package capability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	calendlyx "github.com/clinicdesk/scheduling-agent/pkg/calendly"
)

func TestStaticSlotSourceDurations(t *testing.T) {
	t.Parallel()

	src := StaticSlotSource{}

	slots, err := src.AvailableSlots(context.Background(), "Dr. Chen", true)
	if err != nil {
		t.Fatalf("AvailableSlots() error = %v", err)
	}
	if len(slots) != 4 {
		t.Fatalf("got %d slots, want 4", len(slots))
	}
	for _, s := range slots {
		if !strings.Contains(s, "(60 min)") {
			t.Fatalf("new patient slot %q should be 60 min", s)
		}
	}

	slots, err = src.AvailableSlots(context.Background(), "Dr. Chen", false)
	if err != nil {
		t.Fatalf("AvailableSlots() error = %v", err)
	}
	for _, s := range slots {
		if !strings.Contains(s, "(30 min)") {
			t.Fatalf("returning patient slot %q should be 30 min", s)
		}
	}
}

func TestCalendlySlotSourcePicksEventTypeByPatientStatus(t *testing.T) {
	t.Parallel()

	var gotEventType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotEventType = r.URL.Query().Get("event_type")
		w.Write([]byte(`{"collection":[{"status":"available","start_time":"2026-09-01T14:00:00Z"}]}`))
	}))
	defer srv.Close()

	client, err := calendlyx.NewClient(calendlyx.Config{BaseURL: srv.URL, APIKey: "k"})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	src := NewCalendlySlotSource(client, "user-uri", "event-60", "event-30", 7)

	slots, err := src.AvailableSlots(context.Background(), "Dr. Chen", true)
	if err != nil {
		t.Fatalf("AvailableSlots() error = %v", err)
	}
	if gotEventType != "event-60" {
		t.Fatalf("event_type = %q, want the 60-minute intake event", gotEventType)
	}
	if len(slots) != 1 || !strings.Contains(slots[0], "(60 min)") {
		t.Fatalf("slots = %#v", slots)
	}

	if _, err := src.AvailableSlots(context.Background(), "Dr. Chen", false); err != nil {
		t.Fatalf("AvailableSlots() error = %v", err)
	}
	if gotEventType != "event-30" {
		t.Fatalf("event_type = %q, want the 30-minute follow-up event", gotEventType)
	}
}

func TestCalendlySlotSourceWindow(t *testing.T) {
	t.Parallel()

	var gotStart, gotEnd string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotStart = r.URL.Query().Get("start_time")
		gotEnd = r.URL.Query().Get("end_time")
		w.Write([]byte(`{"collection":[]}`))
	}))
	defer srv.Close()

	client, err := calendlyx.NewClient(calendlyx.Config{BaseURL: srv.URL, APIKey: "k"})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	src := NewCalendlySlotSource(client, "user-uri", "event-60", "event-30", 7)
	src.now = func() time.Time {
		return time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	}

	slots, err := src.AvailableSlots(context.Background(), "Dr. Chen", false)
	if err != nil {
		t.Fatalf("AvailableSlots() error = %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("slots = %#v, want none", slots)
	}
	if gotStart != "2026-08-31T10:00:00Z" {
		t.Fatalf("start_time = %q", gotStart)
	}
	if gotEnd != "2026-09-07T10:00:00Z" {
		t.Fatalf("end_time = %q", gotEnd)
	}
}
