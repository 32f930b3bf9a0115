// Package platformglfw is the reference window collaborator: a
// GLFW-backed implementation of vkr.Window and app.EventSource. It
// exists so the module is buildable and runnable end to end without a
// second repository.
package platformglfw

import (
	"fmt"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/vulkan-go/vulkan"

	"github.com/andewx/vkforge/input"
)

// Window wraps a *glfw.Window, tracking whether a resize happened since
// the last frame so the frame scheduler's S0 can decide whether to
// recreate the swapchain.
type Window struct {
	win     *glfw.Window
	resized bool
	events  []input.RawEvent
}

// Init runs the one-time process-wide GLFW bootstrap: glfw.Init, the
// Vulkan support check, and wiring GLFW's Vulkan loader into the vk
// package.
func Init() error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("platformglfw: glfw.Init: %w", err)
	}
	if !glfw.VulkanSupported() {
		return fmt.Errorf("platformglfw: Vulkan not supported by this GLFW build")
	}
	vk.SetGetInstanceProcAddr(glfw.GetVulkanGetInstanceProcAddress())
	if err := vk.Init(); err != nil {
		return fmt.Errorf("platformglfw: vk.Init: %w", err)
	}
	return nil
}

// Terminate shuts down GLFW; call once at process exit after every
// Window has been destroyed.
func Terminate() { glfw.Terminate() }

// New creates a resizable, Vulkan-surfaced window (ClientAPI = NoAPI,
// so GLFW creates no GL context).
func New(width, height int, title string) (*Window, error) {
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.Visible, glfw.True)
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)

	win, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("platformglfw: CreateWindow: %w", err)
	}

	w := &Window{win: win}
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, _, _ int) {
		w.resized = true
	})
	w.installEventCallbacks()
	return w, nil
}

// PixelSize returns the framebuffer size in pixels (what swapchain
// extent selection needs on HiDPI displays).
func (w *Window) PixelSize() (uint32, uint32) {
	width, height := w.win.GetFramebufferSize()
	return uint32(width), uint32(height)
}

// ScreenSize returns the window size in screen coordinates.
func (w *Window) ScreenSize() (uint32, uint32) {
	width, height := w.win.GetSize()
	return uint32(width), uint32(height)
}

// ShouldClose reports whether the user requested the window be closed.
func (w *Window) ShouldClose() bool { return w.win.ShouldClose() }

// FramebufferResizedThisFrame reports and clears the resize flag set by
// the framebuffer-size callback since the last call.
func (w *Window) FramebufferResizedThisFrame() bool {
	r := w.resized
	w.resized = false
	return r
}

// RequiredInstanceExtensions returns the instance extensions GLFW needs
// for presentation on this platform.
func (w *Window) RequiredInstanceExtensions() []string {
	return w.win.GetRequiredInstanceExtensions()
}

// CreateVulkanSurface creates the platform surface for instance via
// GLFW's CreateWindowSurface.
func (w *Window) CreateVulkanSurface(instance vk.Instance) (vk.Surface, error) {
	surfacePtr, err := w.win.CreateWindowSurface(instance, nil)
	if err != nil {
		return vk.NullSurface, fmt.Errorf("platformglfw: CreateWindowSurface: %w", err)
	}
	return vk.SurfaceFromPointer(surfacePtr), nil
}

// Destroy destroys the underlying GLFW window.
func (w *Window) Destroy() { w.win.Destroy() }
