package app_test

import (
	"errors"
	"runtime"
	"testing"

	vk "github.com/vulkan-go/vulkan"

	"github.com/andewx/vkforge/app"
	"github.com/andewx/vkforge/config"
	"github.com/andewx/vkforge/errcode"
	"github.com/andewx/vkforge/platformglfw"
)

func init() {
	runtime.LockOSThread()
}

// TestRunThreeFrames drives the full instance/device/swapchain/scheduler
// stack for three ticks and exits through the run-frame callback's error
// path. It needs a window system and a loadable Vulkan ICD; without
// either it skips rather than fails, so the unit-test packages stay
// meaningful on headless CI.
func TestRunThreeFrames(t *testing.T) {
	if err := platformglfw.Init(); err != nil {
		t.Skipf("no window system / Vulkan ICD available: %v", err)
	}
	defer platformglfw.Terminate()

	doc := &config.Document{
		Window: config.WindowConfig{Width: 320, Height: 240, Title: "vkforge-test"},
		Memory: config.MemoryConfig{FreeListSize: 256 << 20, StackSize: 16 << 20, FrameLinear: 16 << 20},
		Vulkan: config.VulkanConfig{AppName: "vkforge-test", VersionMajor: 1},
	}

	win, err := platformglfw.New(doc.Window.Width, doc.Window.Height, doc.Window.Title)
	if err != nil {
		t.Skipf("window creation failed: %v", err)
	}
	defer win.Destroy()

	core, err := app.New(doc, win, t.TempDir())
	if err != nil {
		if errcode.IsCode(err, errcode.NoPhysicalDevices) || errcode.IsCode(err, errcode.NoSuitablePhysicalDevice) {
			t.Skipf("no usable Vulkan device: %v", err)
		}
		t.Fatalf("app.New: %v", err)
	}
	defer core.Shutdown()

	stop := errors.New("done")
	clear := []vk.ClearValue{vk.NewClearValue([]float32{0, 0, 0, 1})}
	record := func(vk.CommandBuffer, vk.Framebuffer, vk.Extent2D) {}

	frames := 0
	err = core.Run(win, win, clear, record, func(c *app.Core, dt float64) error {
		frames++
		if frames > 3 {
			return stop
		}
		return nil
	})
	if !errors.Is(err, stop) {
		t.Fatalf("Run returned %v, want the callback's stop sentinel", err)
	}
	if got := core.FinishedFrames(); got != 3 {
		t.Fatalf("finished frames = %d, want 3", got)
	}
	if c := core.Renderer.Scheduler.FinishedFrames(); c != 3 {
		t.Fatalf("scheduler finished frames = %d, want 3", c)
	}
}
