package session

import (
	"strconv"
	"strings"

	"coachly/fitness-coach/internal/domain"
)

// Item is one exercise inside a workout session. Timed items run down a
// countdown and auto-advance; rep-based items wait for an explicit skip.
type Item struct {
	Ref          domain.ExerciseRef
	Timed        bool
	DurationSec  int
	RemainingSec int
}

// ParseRepsOrTime interprets a plan's repsOrTime field. A duration suffix
// ("30s", "2m", "1m30s") makes the item timed; anything else is a rep count.
func ParseRepsOrTime(s string) (seconds int, timed bool) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" {
		return 0, false
	}

	// plain number means reps
	if _, err := strconv.Atoi(v); err == nil {
		return 0, false
	}

	total := 0
	if i := strings.Index(v, "m"); i >= 0 {
		mins, err := strconv.Atoi(v[:i])
		if err != nil {
			return 0, false
		}
		total = mins * 60
		v = strings.TrimPrefix(v[i+1:], "in") // tolerate "min"
	}
	if v != "" {
		secs, err := strconv.Atoi(strings.TrimSuffix(v, "s"))
		if err != nil {
			if total > 0 {
				return total, true
			}
			return 0, false
		}
		total += secs
	}
	if total <= 0 {
		return 0, false
	}
	return total, true
}

func newItem(ref domain.ExerciseRef) Item {
	seconds, timed := ParseRepsOrTime(ref.RepsOrTime)
	return Item{
		Ref:          ref,
		Timed:        timed,
		DurationSec:  seconds,
		RemainingSec: seconds,
	}
}

func buildItems(refs []domain.ExerciseRef) []Item {
	items := make([]Item, 0, len(refs))
	for _, ref := range refs {
		if ref.IsEmpty() {
			continue
		}
		items = append(items, newItem(ref))
	}
	return items
}
