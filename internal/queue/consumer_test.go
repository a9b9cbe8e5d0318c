package queue

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestHandleMessageAppendsLine(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	ev := PickupBookedEvent{
		EventID:          "e-1",
		CustomerID:       3,
		WasteProfileID:   12,
		BookingIDs:       []uint64{40, 41},
		CalendarEntryIDs: []uint64{5, 7},
		BookedAt:         "2025-03-01T10:00:00Z",
	}
	body, _ := json.Marshal(ev)

	for i := 0; i < 2; i++ {
		if err := handleMessage(dir, body); err != nil {
			t.Fatalf("handleMessage: %v", err)
		}
	}

	data, err := os.ReadFile(filepath.Join(dir, PickupLogFile))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	want := "[2025-03-01T10:00:00Z] Pickup booked | event_id=e-1 | customer_id=3 | waste_profile_id=12 | bookings=[40,41] | calendar_entries=[5,7]"
	if lines[0] != want {
		t.Fatalf("unexpected line:\n got %s\nwant %s", lines[0], want)
	}
}

func TestHandleMessageRejectsGarbage(t *testing.T) {
	if err := handleMessage(t.TempDir(), []byte("not json")); err == nil {
		t.Fatal("expected unmarshal error")
	}
}
