package input

// Stack is a LIFO of keymaps; the most recently pushed map is queried
// first. A map may appear at most once — Push is a no-op if it is already
// present, and Pop removes only the top entry.
type Stack struct {
	maps []*Keymap
}

// NewStack builds an empty keymap stack.
func NewStack() *Stack { return &Stack{} }

// Push installs km as the new top of the stack. No-op if km is already
// present anywhere in the stack.
func (s *Stack) Push(km *Keymap) {
	for _, m := range s.maps {
		if m == km {
			return
		}
	}
	s.maps = append(s.maps, km)
}

// Pop removes the top keymap, if any.
func (s *Stack) Pop() {
	if n := len(s.maps); n > 0 {
		s.maps = s.maps[:n-1]
	}
}

// Top returns the most recently pushed keymap, or nil if the stack is
// empty.
func (s *Stack) Top() *Keymap {
	if n := len(s.maps); n > 0 {
		return s.maps[n-1]
	}
	return nil
}

// RawEvent is a single raw platform event as delivered by the external
// event source for one tick; it carries enough fields to compute a Key
// and to populate the derived Event handed to callbacks.
type RawEvent struct {
	Key     Key
	CursorX float64
	CursorY float64
	ScrollX float64
	ScrollY float64
}

// Dispatch walks events in arrival order and, for each, iterates the
// stack from top to bottom: a matching entry's callback is invoked, and
// propagation to lower maps stops unless the entry is flagged
// DontConsume. It does not clear events itself — callers own the event
// queue's lifetime (the frame loop clears the queue each tick, not the
// dispatcher).
func (s *Stack) Dispatch(events []RawEvent) {
	for _, re := range events {
		for i := len(s.maps) - 1; i >= 0; i-- {
			e, ok := s.maps[i].lookup(re.Key)
			if !ok {
				continue
			}
			e.Callback(Event{
				Name:     e.Name,
				Key:      re.Key,
				CursorX:  re.CursorX,
				CursorY:  re.CursorY,
				ScrollX:  re.ScrollX,
				ScrollY:  re.ScrollY,
				UserData: e.UserData,
			})
			if e.Flags&DontConsume == 0 {
				break
			}
		}
	}
}
