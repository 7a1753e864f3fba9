package availability

import (
	"time"

	"github.com/carelane/hms/services/clinic-service/internal/model"
)

// SlotLength is the fixed booking granularity.
const SlotLength = 30 * time.Minute

type Slot struct {
	Start model.TimeOfDay `json:"start_time"`
	End   model.TimeOfDay `json:"end_time"`
}

// Generate walks the entry's window in SlotLength steps from StartTime and
// returns every slot that ends by EndTime and stays clear of the break.
// Disabled entries yield nothing.
func Generate(entry model.ScheduleEntry) []Slot {
	if !entry.Enabled || entry.EndTime <= entry.StartTime {
		return nil
	}

	var slots []Slot
	for cursor := entry.StartTime; cursor < entry.EndTime; cursor = cursor.Add(SlotLength) {
		end := cursor.Add(SlotLength)
		if end > entry.EndTime {
			break
		}
		if entry.HasBreak() && overlaps(cursor, end, *entry.BreakStart, *entry.BreakEnd) {
			continue
		}
		slots = append(slots, Slot{Start: cursor, End: end})
	}
	return slots
}

// Half-open: [start,end) overlaps [bs,be) iff start < be && bs < end.
func overlaps(start, end, bs, be model.TimeOfDay) bool {
	return start < be && bs < end
}

// Offered reports whether (start, end) is exactly one of slots.
func Offered(slots []Slot, start, end model.TimeOfDay) bool {
	for _, s := range slots {
		if s.Start == start && s.End == end {
			return true
		}
	}
	return false
}
