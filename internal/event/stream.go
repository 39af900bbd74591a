package event

// Stream is an ordered, duplicate-tolerant sequence of Events produced and
// consumed by graph nodes during one tick or one init/exit hook.
type Stream struct {
	Events []Event
}

// Empty returns a stream with no events.
func Empty() Stream { return Stream{} }

// None returns a singleton stream holding one None event, used to seed
// init/exit patches so that generators inside them fire.
func None() Stream { return Stream{Events: []Event{NoneEvent()}} }

// FromEvent returns a singleton stream holding ev.
func FromEvent(ev Event) Stream { return Stream{Events: []Event{ev}} }

func (s *Stream) Any() bool { return len(s.Events) > 0 }

func (s *Stream) Len() int { return len(s.Events) }

func (s *Stream) Append(ev Event) { s.Events = append(s.Events, ev) }

func (s *Stream) Extend(evs []Event) { s.Events = append(s.Events, evs...) }

func (s *Stream) Pop() (Event, bool) {
	if len(s.Events) == 0 {
		return Event{}, false
	}
	ev := s.Events[len(s.Events)-1]
	s.Events = s.Events[:len(s.Events)-1]
	return ev, true
}

func (s *Stream) RemoveAt(i int) {
	if i < 0 || i >= len(s.Events) {
		return
	}
	s.Events = append(s.Events[:i], s.Events[i+1:]...)
}

// Retain keeps only the events for which keep returns true, preserving order.
func (s *Stream) Retain(keep func(*Event) bool) {
	out := s.Events[:0]
	for _, ev := range s.Events {
		if keep(&ev) {
			out = append(out, ev)
		}
	}
	s.Events = out
}

// ForEach mutates every event in place.
func (s *Stream) ForEach(fn func(*Event)) {
	for i := range s.Events {
		fn(&s.Events[i])
	}
}

func (s *Stream) Clear() { s.Events = nil }

// Clone returns an independent deep copy, used by Fork to run each child on
// its own slice of the input stream.
func (s Stream) Clone() Stream {
	out := make([]Event, len(s.Events))
	for i, ev := range s.Events {
		out[i] = ev.Clone()
	}
	return Stream{Events: out}
}

// Dedup removes exact duplicates while preserving the first occurrence.
// Applying it twice is a no-op (it is idempotent by construction).
func (s *Stream) Dedup() {
	seen := make(map[string]struct{}, len(s.Events))
	out := s.Events[:0]
	for _, ev := range s.Events {
		k := ev.Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, ev)
	}
	s.Events = out
}
