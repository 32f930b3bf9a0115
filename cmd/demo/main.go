// Command demo is a thin runnable entry point wiring platformglfw,
// app, input, and scene together: window creation, core construction, a
// demo keymap, and a clear-to-color frame loop.
package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/go-gl/mathgl/mgl32"
	vk "github.com/vulkan-go/vulkan"

	"github.com/andewx/vkforge/app"
	"github.com/andewx/vkforge/applog"
	"github.com/andewx/vkforge/config"
	"github.com/andewx/vkforge/input"
	"github.com/andewx/vkforge/platformglfw"
	"github.com/andewx/vkforge/scene"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "demo:", err)
		os.Exit(1)
	}
}

func run() error {
	// Vulkan/GLFW calls must stay on the thread that created the window.
	runtime.LockOSThread()

	if err := platformglfw.Init(); err != nil {
		return err
	}
	defer platformglfw.Terminate()

	doc := defaultConfig()
	win, err := platformglfw.New(doc.Window.Width, doc.Window.Height, doc.Window.Title)
	if err != nil {
		return err
	}
	defer win.Destroy()

	core, err := app.New(doc, win, ".")
	if err != nil {
		return err
	}
	defer core.Shutdown()

	installDemoBindings(core)

	camera := core.Scene.AddEntity("camera")
	w, h := win.PixelSize()
	core.Scene.Cameras.Add(camera.ID, scene.Camera{
		Proj: mgl32.Perspective(mgl32.DegToRad(60), float32(w)/float32(h), 0.1, 100),
		View: mgl32.LookAtV(mgl32.Vec3{0, 1, 3}, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 1, 0}),
	})

	clearValues := []vk.ClearValue{vk.NewClearValue([]float32{0.02, 0.02, 0.05, 1})}
	noopRecord := func(vk.CommandBuffer, vk.Framebuffer, vk.Extent2D) {}

	return core.Run(win, win, clearValues, noopRecord, func(c *app.Core, dt float64) error {
		// Stage this tick's camera MVP; the scheduler copies it into
		// the frame's uniform buffer once the frame's fence signals.
		if cam := c.Scene.Cameras.Get(camera.ID); cam != nil {
			c.Renderer.WriteCameraUniform(*cam, mgl32.Ident4())
		}
		return nil
	})
}

// defaultConfig builds the in-memory equivalent of the TOML document a
// real deployment would load via config.Load; kept inline here so the
// demo has no required data file.
func defaultConfig() *config.Document {
	return &config.Document{
		Window: config.WindowConfig{
			Flags:  []string{"resizable", "vulkan"},
			Width:  1280,
			Height: 720,
			Title:  "vkforge demo",
		},
		Vulkan: config.VulkanConfig{
			AppName:      "vkforge-demo",
			VersionMajor: 1,
			VersionMinor: 0,
			VersionPatch: 0,
			LogVerbosity: "warn",
		},
		Descriptor: config.DescriptorPoolConfig{
			MaxDescPerType: map[string]uint32{"uniform_buffer": 16},
			MaxSets:        16,
		},
	}
}

// installDemoBindings installs a toggle-style movement pair: press and
// release entries on W, both DontConsume so maps lower in the stack
// still see the same physical key.
func installDemoBindings(c *app.Core) {
	km := input.NewKeymap("demo")
	const keyW = 87 // glfw.KeyW

	km.Set(input.Entry{
		Name:  "MoveForward",
		Key:   input.ButtonKey(keyW, input.ModNone, input.ActionPress),
		Flags: input.DontConsume,
		Callback: func(ev input.Event) {
			c.Log.Print(applog.Info, "cmd/demo", "installDemoBindings", 0, "move forward pressed")
		},
	})
	km.Set(input.Entry{
		Name:  "StopForward",
		Key:   input.ButtonKey(keyW, input.ModNone, input.ActionRelease),
		Flags: input.DontConsume,
		Callback: func(ev input.Event) {
			c.Log.Print(applog.Info, "cmd/demo", "installDemoBindings", 0, "move forward released")
		},
	})
	c.Input.Push(km)
}
