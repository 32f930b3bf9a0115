package platformglfw

import (
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/andewx/vkforge/input"
)

// eventQueueCap bounds the per-frame event queue; events past it are
// dropped for the rest of the tick rather than growing the queue
// unbounded.
const eventQueueCap = 1024

// installEventCallbacks wires GLFW's key/mouse-button/cursor/scroll
// callbacks into w.events, translating each into an input.RawEvent.
// Registered once at window creation, same lifetime as the
// framebuffer-resize callback.
func (w *Window) installEventCallbacks() {
	w.win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, mods glfw.ModifierKey) {
		w.push(input.RawEvent{Key: input.ButtonKey(uint16(key), mapMods(mods), mapAction(action))})
	})
	w.win.SetMouseButtonCallback(func(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		w.push(input.RawEvent{Key: input.ButtonKey(uint16(button), mapMods(mods), mapAction(action))})
	})
	w.win.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		w.push(input.RawEvent{Key: input.CursorKey(input.ModNone), CursorX: x, CursorY: y})
	})
	w.win.SetScrollCallback(func(_ *glfw.Window, xoff, yoff float64) {
		w.push(input.RawEvent{Key: input.ScrollKey(input.ModNone), ScrollX: xoff, ScrollY: yoff})
	})
	w.win.SetSizeCallback(func(_ *glfw.Window, width, height int) {
		w.push(input.RawEvent{Key: input.WindowKey(input.WindowResize, input.ActionChange), CursorX: float64(width), CursorY: float64(height)})
	})
	w.win.SetPosCallback(func(_ *glfw.Window, x, y int) {
		w.push(input.RawEvent{Key: input.WindowKey(input.WindowMove, input.ActionChange), CursorX: float64(x), CursorY: float64(y)})
	})
	w.win.SetFocusCallback(func(_ *glfw.Window, focused bool) {
		act := input.ActionRelease
		if focused {
			act = input.ActionPress
		}
		w.push(input.RawEvent{Key: input.WindowKey(input.WindowFocus, act)})
	})
	w.win.SetIconifyCallback(func(_ *glfw.Window, iconified bool) {
		act := input.ActionPress
		if iconified {
			act = input.ActionRelease
		}
		w.push(input.RawEvent{Key: input.WindowKey(input.WindowVisibility, act)})
	})
}

// push appends re to the per-frame queue, dropping the event once the
// queue hits eventQueueCap.
func (w *Window) push(re input.RawEvent) {
	if len(w.events) >= eventQueueCap {
		return
	}
	w.events = append(w.events, re)
}

// Poll runs the process-wide GLFW event pump, synchronously invoking
// whatever callbacks above fired since the last call, satisfying the
// app.EventSource interface.
func (w *Window) Poll() { glfw.PollEvents() }

// Drain returns this tick's queued events and clears the queue.
// Clearing after the drain is equivalent to clearing before the next
// poll, since nothing reads the queue in between.
func (w *Window) Drain() []input.RawEvent {
	out := w.events
	w.events = nil
	return out
}

func mapAction(a glfw.Action) input.Action {
	switch a {
	case glfw.Press:
		return input.ActionPress
	case glfw.Release:
		return input.ActionRelease
	case glfw.Repeat:
		return input.ActionRepeat
	default:
		return input.ActionChange
	}
}

func mapMods(m glfw.ModifierKey) input.Modifier {
	var out input.Modifier
	if m&glfw.ModShift != 0 {
		out |= input.ModShift
	}
	if m&glfw.ModControl != 0 {
		out |= input.ModCtrl
	}
	if m&glfw.ModAlt != 0 {
		out |= input.ModAlt
	}
	if m&glfw.ModSuper != 0 {
		out |= input.ModSuper
	}
	return out
}
