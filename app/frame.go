package app

import (
	"time"

	vk "github.com/vulkan-go/vulkan"

	"github.com/andewx/vkforge/applog"
	"github.com/andewx/vkforge/errcode"
	"github.com/andewx/vkforge/input"
	"github.com/andewx/vkforge/renderer"
	"github.com/andewx/vkforge/vkr"
)

// EventSource is the event-pump collaborator: something that, once per
// tick, polls the platform and hands back the raw events that arrived
// since the last call. platformglfw.Window implements this on top of
// GLFW's callback-based input, but the frame loop only ever depends on
// this interface, the same separation vkr.Window keeps between the core
// and its platform-specific reference implementation.
type EventSource interface {
	Poll()
	Drain() []input.RawEvent
}

// RunFrameFunc is the user's per-tick callback: it is expected to write
// scene component data (transforms, cameras, ...) and call into the
// renderer to record draw commands. A non-nil error is treated as fatal
// and stops Run.
type RunFrameFunc func(c *Core, dt float64) error

// Run is the deterministic frame loop: each tick it advances the timer
// split, polls and dispatches events, resets the per-frame linear
// arena, calls the user's run-frame callback, ticks the renderer, and
// advances the finished-frame counter. It exits when win.ShouldClose()
// is observed or fn returns a non-nil error. Submit failures are fatal.
// An out-of-date acquire is recovered inside renderer.Renderer.Tick; any
// other acquire failure is logged and the frame is skipped without
// advancing the counter. Present failures are logged and the loop
// continues.
func (c *Core) Run(win vkr.Window, events EventSource, clearValues []vk.ClearValue, record renderer.RecordFn, fn RunFrameFunc) error {
	last := time.Now()
	for !win.ShouldClose() {
		now := time.Now()
		dt := now.Sub(last).Seconds()
		last = now

		events.Poll()
		raw := events.Drain()
		c.Input.Dispatch(raw)

		c.Mem.ResetFrame()

		if err := fn(c, dt); err != nil {
			return err
		}

		if err := c.Renderer.Tick(clearValues, record); err != nil {
			if errcode.IsCode(err, errcode.AcquireImageFail) {
				c.Log.Print(applog.Error, "app/frame.go", "Run", 0, "acquire failed, skipping frame: %v", err)
				continue
			}
			if !errcode.IsCode(err, errcode.PresentFail) {
				return err
			}
			c.Log.Print(applog.Error, "app/frame.go", "Run", 0, "present failed, continuing: %v", err)
		}

		c.finishedFrames++
	}
	return nil
}
