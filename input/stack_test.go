package input

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeymapPropagationConsumeVsDontConsume(t *testing.T) {
	k3, k2, k1 := NewKeymap("k3"), NewKeymap("k2"), NewKeymap("k1")
	stack := NewStack()
	stack.Push(k1)
	stack.Push(k2)
	stack.Push(k3)

	key := ButtonKey(uint16('R'), ModNone, ActionRelease)

	var fired []string
	k3.Set(Entry{Name: "Select", Key: key, Flags: DontConsume, Callback: func(ev Event) {
		fired = append(fired, "Select")
	}})
	k2.Set(Entry{Name: "ContextMenu", Key: key, Callback: func(ev Event) {
		fired = append(fired, "ContextMenu")
	}})

	stack.Dispatch([]RawEvent{{Key: key}})
	require.Equal(t, []string{"Select", "ContextMenu"}, fired)

	fired = nil
	k3.Set(Entry{Name: "Select", Key: key, Callback: func(ev Event) {
		fired = append(fired, "Select")
	}})
	stack.Dispatch([]RawEvent{{Key: key}})
	require.Equal(t, []string{"Select"}, fired)
}

func TestPushIsNoOpIfAlreadyPresent(t *testing.T) {
	s := NewStack()
	km := NewKeymap("global")
	s.Push(km)
	s.Push(km)
	require.Same(t, km, s.Top())
	s.Pop()
	require.Nil(t, s.Top())
}

func TestSetThenGetByName(t *testing.T) {
	km := NewKeymap("global")
	e := Entry{Name: "jump", Key: ButtonKey(uint16(' '), ModNone, ActionPress), Callback: func(Event) {}}
	km.Set(e)

	got, ok := km.GetByName("jump")
	require.True(t, ok)
	require.Equal(t, e.Key, got.Key)
}

// A press entry sets a direction flag true, a paired release entry sets it
// false, both DontConsume so a camera-look binding underneath still sees
// the same physical key.
func TestToggleMovementBinding(t *testing.T) {
	km := NewKeymap("global")
	lookKm := NewKeymap("look")
	stack := NewStack()
	stack.Push(lookKm)
	stack.Push(km)

	moveForward := false
	pressKey := ButtonKey(uint16('W'), ModNone, ActionPress)
	releaseKey := ButtonKey(uint16('W'), ModNone, ActionRelease)

	km.Set(Entry{Name: "move_fwd_on", Key: pressKey, Flags: DontConsume, Callback: func(Event) {
		moveForward = true
	}})
	km.Set(Entry{Name: "move_fwd_off", Key: releaseKey, Flags: DontConsume, Callback: func(Event) {
		moveForward = false
	}})

	lookFired := false
	lookKm.Set(Entry{Name: "look_passthrough", Key: pressKey, Callback: func(Event) {
		lookFired = true
	}})

	stack.Dispatch([]RawEvent{{Key: pressKey}})
	require.True(t, moveForward)
	require.True(t, lookFired)

	stack.Dispatch([]RawEvent{{Key: releaseKey}})
	require.False(t, moveForward)
}

func TestWindowEventDispatch(t *testing.T) {
	km := NewKeymap("sys")
	stack := NewStack()
	stack.Push(km)

	var gotW, gotH float64
	km.Set(Entry{Name: "on_resize", Key: WindowKey(WindowResize, ActionChange), Callback: func(ev Event) {
		gotW, gotH = ev.CursorX, ev.CursorY
	}})

	focusLost := false
	km.Set(Entry{Name: "on_blur", Key: WindowKey(WindowFocus, ActionRelease), Callback: func(Event) {
		focusLost = true
	}})

	stack.Dispatch([]RawEvent{
		{Key: WindowKey(WindowResize, ActionChange), CursorX: 1024, CursorY: 768},
		{Key: WindowKey(WindowFocus, ActionRelease)},
	})
	require.Equal(t, 1024.0, gotW)
	require.Equal(t, 768.0, gotH)
	require.True(t, focusLost)
}

// Right-mouse press/release arms and disarms consumption of cursor
// motion for camera turn.
func TestDragLookBinding(t *testing.T) {
	km := NewKeymap("global")
	stack := NewStack()
	stack.Push(km)

	armed := false
	var lastDX, lastDY float64

	pressKey := ButtonKey(uint16(2 /* right mouse */), ModAny, ActionPress)
	releaseKey := ButtonKey(uint16(2), ModAny, ActionRelease)
	motionKey := CursorKey(ModNone)

	km.Set(Entry{Name: "arm_look", Key: pressKey, Callback: func(Event) { armed = true }})
	km.Set(Entry{Name: "disarm_look", Key: releaseKey, Callback: func(Event) { armed = false }})
	km.Set(Entry{Name: "camera_turn", Key: motionKey, Callback: func(ev Event) {
		if armed {
			lastDX, lastDY = ev.CursorX, ev.CursorY
		}
	}})

	stack.Dispatch([]RawEvent{{Key: pressKey}})
	require.True(t, armed)

	stack.Dispatch([]RawEvent{{Key: motionKey, CursorX: 4, CursorY: -2}})
	require.Equal(t, 4.0, lastDX)
	require.Equal(t, -2.0, lastDY)

	stack.Dispatch([]RawEvent{{Key: releaseKey}})
	require.False(t, armed)
}
