package sim

import (
	"fmt"
	"sort"

	"github.com/san-kum/attractor/internal/rigid"
)

type Action int

const (
	Enable Action = iota
	Disable
	Destroy
)

func (a Action) String() string {
	switch a {
	case Enable:
		return "enable"
	case Disable:
		return "disable"
	case Destroy:
		return "destroy"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// LifecycleEvent enables, disables or destroys a body once simulation time
// reaches At. Due events are applied before the next step runs.
type LifecycleEvent struct {
	At     float64
	Body   string
	Action Action
}

type schedule struct {
	events []LifecycleEvent
	next   int
}

func (s *schedule) add(events ...LifecycleEvent) {
	s.events = append(s.events, events...)
	sort.SliceStable(s.events[s.next:], func(i, j int) bool {
		return s.events[s.next+i].At < s.events[s.next+j].At
	})
}

func (s *schedule) rewind() { s.next = 0 }

// due returns the events with At <= t that have not been applied yet.
// A small tolerance keeps events at exact multiples of dt from slipping a step.
func (s *schedule) due(t, dt float64) []LifecycleEvent {
	start := s.next
	for s.next < len(s.events) && s.events[s.next].At <= t+dt*1e-6 {
		s.next++
	}
	return s.events[start:s.next]
}

func apply(w *rigid.World, ev LifecycleEvent) error {
	b, ok := w.Lookup(ev.Body)
	if !ok {
		return fmt.Errorf("%s %q: %w", ev.Action, ev.Body, ErrUnknownBody)
	}
	switch ev.Action {
	case Enable:
		return w.Enable(b)
	case Disable:
		return w.Disable(b)
	case Destroy:
		w.Destroy(b)
		return nil
	default:
		return fmt.Errorf("unsupported lifecycle action %s", ev.Action)
	}
}
