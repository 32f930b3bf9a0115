// Package input implements a keymap stack that dispatches
// per-frame raw platform events (key/button/motion/scroll/window) to
// named, callback-invoking logical actions, with a per-entry
// consume/propagate policy. Typical usage patterns — toggle-movement
// bindings, drag-look camera turn — are exercised in this package's
// tests.
package input

// EventClass distinguishes the physical source of a raw platform event.
type EventClass uint8

const (
	ClassButton EventClass = iota
	ClassCursor
	ClassScroll
	ClassWindow
)

// Action is the logical action a physical event represents.
type Action uint8

const (
	ActionPress Action = iota
	ActionRelease
	ActionRepeat
	ActionChange
)

// Modifier is a bitset of held modifier keys.
type Modifier uint8

const (
	ModNone  Modifier = 0
	ModShift Modifier = 1 << iota
	ModCtrl
	ModAlt
	ModSuper
	// ModAny matches any modifier combination when used in Key.
	ModAny = Modifier(0xff)
)

// Key identifies an event by its class, code, modifier mask, and action.
// It is a plain struct (class 8 bits, code 16 bits, modifier mask 8 bits,
// action 8 bits) used directly as a Go map key; it is not packed into a
// single 32-bit integer. ModAny on a registered entry is treated as a
// wildcard at lookup time rather than folded into the map key itself.
type Key struct {
	Class EventClass
	Code  uint16
	Mod   Modifier
	Act   Action
}

// ButtonKey builds a Key for a button/key-class event.
func ButtonKey(code uint16, mod Modifier, act Action) Key {
	return Key{Class: ClassButton, Code: code, Mod: mod, Act: act}
}

// CursorKey builds a Key for a cursor/motion-class event with the given
// keyboard modifier mask. Held mouse buttons are not part of the key.
func CursorKey(mod Modifier) Key {
	return Key{Class: ClassCursor, Mod: mod, Act: ActionChange}
}

// ScrollKey builds a Key for a scroll-wheel event.
func ScrollKey(mod Modifier) Key {
	return Key{Class: ClassScroll, Mod: mod, Act: ActionChange}
}

// Window event codes carried in Key.Code for ClassWindow events.
const (
	WindowResize uint16 = iota
	WindowMove
	WindowFocus
	WindowVisibility
)

// WindowKey builds a Key for a window-class event. Focus and visibility
// use ActionPress for gained/shown and ActionRelease for lost/hidden;
// resize and move use act = ActionChange.
func WindowKey(code uint16, act Action) Key {
	return Key{Class: ClassWindow, Code: code, Act: act}
}

// Flags bitset on a KeymapEntry.
type Flags uint8

const (
	// DontConsume means dispatch continues to lower maps in the stack
	// after this entry's callback runs.
	DontConsume Flags = 1 << iota
)

// Event is the logical event handed to a callback: the raw fields plus
// normalized extras a callback commonly needs without re-deriving them.
type Event struct {
	Name     string
	Key      Key
	CursorX  float64
	CursorY  float64
	ScrollX  float64
	ScrollY  float64
	UserData any
}

// Callback receives the resolved logical Event.
type Callback func(ev Event)

// Entry is one keymap binding: name, key, flags, callback, and an
// arbitrary user pointer threaded through into Event.UserData.
type Entry struct {
	Name     string
	Key      Key
	Flags    Flags
	Callback Callback
	UserData any
}

// Keymap is a named collection of key -> entry bindings.
type Keymap struct {
	Name    string
	entries map[Key]Entry
	byName  map[string]Key
}

// NewKeymap builds an empty, named Keymap.
func NewKeymap(name string) *Keymap {
	return &Keymap{Name: name, entries: make(map[Key]Entry), byName: make(map[string]Key)}
}

// Set installs or replaces the binding for e.Key.
func (k *Keymap) Set(e Entry) {
	k.entries[e.Key] = e
	k.byName[e.Name] = e.Key
}

// GetByName returns the entry registered under name.
func (k *Keymap) GetByName(name string) (Entry, bool) {
	key, ok := k.byName[name]
	if !ok {
		return Entry{}, false
	}
	e, ok := k.entries[key]
	return e, ok
}

// lookup finds the entry matching key exactly, then falls back to an
// entry registered with ModAny, which matches any incoming modifier
// state for the same class/code/action.
func (k *Keymap) lookup(key Key) (Entry, bool) {
	if e, ok := k.entries[key]; ok {
		return e, true
	}
	wild := key
	wild.Mod = ModAny
	if e, ok := k.entries[wild]; ok {
		return e, true
	}
	return Entry{}, false
}
