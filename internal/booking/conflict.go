package booking

import (
	"fmt"
	"time"
)

// overlaps reports whether two half-open [start,end) minute intervals
// intersect. Back-to-back bookings (a.end == b.start) do not overlap.
func overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && aEnd > bStart
}

// HasConflict reports whether any approved event on the venue and date
// overlaps the requested interval. excludeID skips the event itself when a
// pending proposal is being re-checked at approval time.
//
// The scan is linear over the approved events of one venue-day; the guarded
// write at commit time is what makes the answer authoritative under
// concurrent approvals.
func (s *BookingService) HasConflict(venueID string, date time.Time, start, end int, excludeID string) (bool, error) {
	existing, err := s.DB.ApprovedOnSlot(venueID, date)
	if err != nil {
		return false, fmt.Errorf("failed to load approved events for venue %s: %w", venueID, err)
	}
	for _, ev := range existing {
		if ev.ID == excludeID {
			continue
		}
		if overlaps(start, end, ev.StartMinute, ev.EndMinute) {
			return true, nil
		}
	}
	return false, nil
}
