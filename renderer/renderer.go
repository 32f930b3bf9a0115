package renderer

import (
	vk "github.com/vulkan-go/vulkan"

	"github.com/andewx/vkforge/mem"
	"github.com/andewx/vkforge/vkr"
)

// Renderer is the top-level object tying together the Vulkan context
// (instance/device/swapchain), the private free-list and linear arenas,
// the render-pass/pipeline inventory, the slot-pool resource registry,
// the frame-context ring, and the finished-frame counter. Rather than
// one god-object, each collaborator owns exactly one piece of state and
// the Renderer only sequences them.
type Renderer struct {
	Instance  *vkr.Instance
	Device    *vkr.Device
	Swapchain *vkr.Swapchain
	Inventory *vkr.Inventory
	Transfer  *vkr.TransferService
	Registry  *Registry
	Scheduler *Scheduler

	RenderPassIndex int
	Framebuffers    []vk.Framebuffer

	win vkr.Window

	Persistent *mem.Arena

	// pendingUniform holds the bytes WriteCameraUniform staged for this
	// tick; the scheduler copies them into the frame's mapped uniform
	// buffer once its fence has signalled.
	pendingUniform []byte
}

// Config bundles the construction-time parameters a Renderer needs
// beyond the already-built Instance/Device.
type Config struct {
	UniformSize     uint64
	DescriptorPool  DescriptorPoolSizes
	FrameLinearSize uint64
	PersistentSize  uint64
	Upstream        *mem.Arena         // backs the renderer's private arenas; nil falls back to the OS
	Host            *vkr.HostAllocator // accounts shader staging and upload bounce copies; nil disables
	DepthFormat     vk.Format
	HasDepth        bool
}

// NewRenderer builds the swapchain, the color(+depth) render pass, its
// framebuffers, the resource inventory, the transfer service, the slot
// registry (sized by streamCaps), and the frame scheduler, in that
// dependency order.
func NewRenderer(inst *vkr.Instance, dev *vkr.Device, win vkr.Window, cfg Config, streamCaps StreamCapacities) (*Renderer, error) {
	swapchain, err := vkr.NewSwapchain(inst, dev, win, vk.NullSwapchain)
	if err != nil {
		return nil, err
	}

	inv := vkr.NewInventoryWithAllocator(dev.Handle(), dev.Allocator, cfg.Host)
	rpIndex, err := inv.AddRenderPass(swapchain.Format, cfg.DepthFormat, cfg.HasDepth)
	if err != nil {
		swapchain.Destroy()
		return nil, err
	}
	renderPass := inv.RenderPass(rpIndex)

	framebuffers, err := swapchain.BuildFramebuffers(renderPass, nil)
	if err != nil {
		swapchain.Destroy()
		return nil, err
	}

	persistent, err := mem.New(mem.Config{Policy: mem.FreeList, Size: cfg.PersistentSize, Upstream: cfg.Upstream})
	if err != nil {
		swapchain.Destroy()
		return nil, err
	}

	transfer := vkr.NewTransferService(dev, vkr.QueueGraphics, cfg.Host)
	registry := NewRegistry(streamCaps)

	memProps := inst.Selected.MemProps
	scheduler, err := NewScheduler(dev, swapchain, renderPass, cfg.UniformSize, memProps, cfg.DescriptorPool, cfg.FrameLinearSize, persistent)
	if err != nil {
		swapchain.Destroy()
		return nil, err
	}

	return &Renderer{
		Instance:        inst,
		Device:          dev,
		Swapchain:       swapchain,
		Inventory:       inv,
		Transfer:        transfer,
		Registry:        registry,
		Scheduler:       scheduler,
		RenderPassIndex: rpIndex,
		Framebuffers:    framebuffers,
		win:             win,
		Persistent:      persistent,
	}, nil
}

// RenderPass returns the main color render pass.
func (r *Renderer) RenderPass() vk.RenderPass { return r.Inventory.RenderPass(r.RenderPassIndex) }

// Recreate rebuilds the swapchain and its framebuffers against the
// current window size, the S0 resize branch of the frame scheduler.
func (r *Renderer) Recreate() error {
	r.Device.WaitIdle()

	for _, fb := range r.Framebuffers {
		vk.DestroyFramebuffer(r.Device.Handle(), fb, nil)
	}
	old := r.Swapchain.Handle()
	swapchain, err := vkr.NewSwapchain(r.Instance, r.Device, r.win, old)
	r.Swapchain.Destroy()
	if err != nil {
		return err
	}
	r.Swapchain = swapchain
	r.Scheduler.swapchain = swapchain

	framebuffers, err := swapchain.BuildFramebuffers(r.RenderPass(), nil)
	if err != nil {
		return err
	}
	r.Framebuffers = framebuffers
	return nil
}

// Tick runs one frame through the scheduler. S0 happens here: if the
// window reported a framebuffer resize since the last tick, the
// swapchain and framebuffers are recreated before anything is recorded.
// An out-of-date report from acquire or present triggers the same
// recreation, with the frame skipped.
func (r *Renderer) Tick(clearValues []vk.ClearValue, record RecordFn) error {
	if r.win.FramebufferResizedThisFrame() {
		if err := r.Recreate(); err != nil {
			return err
		}
	}
	err := r.Scheduler.Tick(r.Framebuffers, clearValues, r.pendingUniform, record)
	if err == ErrSwapchainOutOfDate {
		if rerr := r.Recreate(); rerr != nil {
			return rerr
		}
		return nil
	}
	return err
}

// Destroy releases the scheduler, framebuffers, render pass, swapchain,
// and the private persistent arena in dependency order. The Instance and
// Device outlive the Renderer and are destroyed by their own owner.
func (r *Renderer) Destroy() {
	r.Scheduler.Destroy()
	for _, fb := range r.Framebuffers {
		vk.DestroyFramebuffer(r.Device.Handle(), fb, nil)
	}
	r.Inventory.TerminateRenderPass(r.RenderPassIndex)
	r.Swapchain.Destroy()
	r.Persistent.Terminate()
}
