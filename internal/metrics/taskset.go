package metrics

import (
	"encoding/json"
	"slices"
)

// TaskSet is the set of roadmap day keys the user has checked off.
// It is immutable: Toggle returns a new set and leaves the receiver untouched,
// so a set can be shared between state snapshots.
type TaskSet struct {
	days map[int]struct{}
}

// NewTaskSet builds a set holding the given days.
func NewTaskSet(days ...int) TaskSet {
	s := TaskSet{days: make(map[int]struct{}, len(days))}
	for _, d := range days {
		s.days[d] = struct{}{}
	}
	return s
}

// Has reports whether day is checked off.
func (s TaskSet) Has(day int) bool {
	_, ok := s.days[day]
	return ok
}

// Len is the number of checked-off days.
func (s TaskSet) Len() int {
	return len(s.days)
}

// Toggle removes day when present and inserts it otherwise.
func (s TaskSet) Toggle(day int) TaskSet {
	next := TaskSet{days: make(map[int]struct{}, len(s.days)+1)}
	for d := range s.days {
		next.days[d] = struct{}{}
	}
	if _, ok := next.days[day]; ok {
		delete(next.days, day)
	} else {
		next.days[day] = struct{}{}
	}
	return next
}

// Days returns the checked-off days in ascending order.
func (s TaskSet) Days() []int {
	out := make([]int, 0, len(s.days))
	for d := range s.days {
		out = append(out, d)
	}
	slices.Sort(out)
	return out
}

func (s TaskSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Days())
}

func (s *TaskSet) UnmarshalJSON(data []byte) error {
	var days []int
	if err := json.Unmarshal(data, &days); err != nil {
		return err
	}
	*s = NewTaskSet(days...)
	return nil
}
