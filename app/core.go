// Package app is the application harness: it ties the arena subsystem,
// the Vulkan abstraction layer, the renderer, the input keymap stack,
// and the scene component store behind a single config-driven
// construction path and a deterministic frame loop.
package app

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"

	"github.com/andewx/vkforge/applog"
	"github.com/andewx/vkforge/config"
	"github.com/andewx/vkforge/errcode"
	"github.com/andewx/vkforge/input"
	"github.com/andewx/vkforge/mem"
	"github.com/andewx/vkforge/renderer"
	"github.com/andewx/vkforge/scene"
	"github.com/andewx/vkforge/vkr"
)

// Core is one Vulkan instance/device/renderer triple, the process-wide
// well-known arenas, the host-allocation bridge, the logger, the input
// keymap stack, and the scene region the user's run-frame callback
// writes into. The frame loop only ever drives one renderer, so Core
// holds it directly rather than through a name-keyed instance map.
type Core struct {
	Log      *applog.Logger
	Mem      *mem.Context
	Host     *vkr.HostAllocator
	Doc      *config.Document
	Instance *vkr.Instance
	Device   *vkr.Device
	Renderer *renderer.Renderer
	Input    *input.Stack
	Scene    *scene.Region

	finishedFrames uint64
}

// New builds a Core from a decoded configuration document and a
// concrete Window collaborator: well-known arenas sized from doc.Memory
// (falling back to mem.DefaultInitSizes for zero fields), the logger
// opened under logDir, the Vulkan instance/device/renderer stack, an
// empty input stack, and an empty scene region. Construction order is
// log sinks first, then instance, then device-backed state.
func New(doc *config.Document, win vkr.Window, logDir string) (core *Core, err error) {
	unwind := &errcode.Unwinder{}
	defer errcode.Recover(unwind, &err)
	defer func() {
		if err != nil {
			unwind.Unwind()
		}
	}()

	logger, err := applog.Open(logDir)
	if err != nil {
		return nil, err
	}
	unwind.Push(func() { logger.Close() })

	sizes := mem.DefaultInitSizes()
	if doc.Memory.FreeListSize != 0 {
		sizes.FreeListSize = doc.Memory.FreeListSize
	}
	if doc.Memory.StackSize != 0 {
		sizes.StackSize = doc.Memory.StackSize
	}
	if doc.Memory.FrameLinear != 0 {
		sizes.FrameLinear = doc.Memory.FrameLinear
	}
	memCtx, err := mem.NewContext(sizes)
	if err != nil {
		return nil, err
	}
	host := vkr.NewHostAllocator(memCtx)

	instCfg := vkr.InstanceConfig{
		AppName:             doc.Vulkan.AppName,
		VersionMajor:        uint32(doc.Vulkan.VersionMajor),
		VersionMinor:        uint32(doc.Vulkan.VersionMinor),
		VersionPatch:        uint32(doc.Vulkan.VersionPatch),
		LogVerbosity:        doc.Vulkan.LogVerbosity,
		InstanceCreateFlags: doc.Vulkan.InstanceCreateFlags,
		ExtraInstanceExts:   doc.Vulkan.ExtraInstanceExtensions,
		DeviceExtensions:    mergeSwapchainExt(doc.Vulkan.DeviceExtensions),
		ValidationLayers:    doc.Vulkan.ValidationLayers,
		Debug:               len(doc.Vulkan.ValidationLayers) > 0,
	}

	instance, err := vkr.NewInstance(instCfg, win)
	if err != nil {
		return nil, err
	}
	unwind.Push(func() { instance.Destroy() })

	device, err := vkr.NewDevice(instance, instCfg.DeviceExtensions)
	if err != nil {
		return nil, err
	}
	unwind.Push(func() { device.Destroy() })

	// The renderer's private arenas are carved out of the well-known
	// free-list arena: a quarter of it, but never less than the two
	// per-frame linear arenas plus headroom need.
	persistentSize := sizes.FreeListSize / 4
	if min := 2*sizes.FrameLinear + (16 << 20); persistentSize < min {
		persistentSize = min
	}
	rcfg := renderer.Config{
		UniformSize:     256,
		DescriptorPool:  descriptorPoolSizes(doc.Descriptor),
		FrameLinearSize: sizes.FrameLinear,
		PersistentSize:  persistentSize,
		Upstream:        memCtx.Persistent(),
		Host:            host,
		HasDepth:        false,
	}
	streamCaps := renderer.StreamCapacities{
		PositionColor:   64 << 20,
		NormalTangentUV: 64 << 20,
		BoneWeights:     16 << 20,
		Index:           32 << 20,
	}
	rend, err := renderer.NewRenderer(instance, device, win, rcfg, streamCaps)
	if err != nil {
		return nil, err
	}
	unwind.Push(func() { rend.Destroy() })

	unwind.Release()
	return &Core{
		Log:      logger,
		Mem:      memCtx,
		Host:     host,
		Doc:      doc,
		Instance: instance,
		Device:   device,
		Renderer: rend,
		Input:    input.NewStack(),
		Scene:    scene.NewRegion(),
	}, nil
}

// FinishedFrames returns the number of ticks Run has completed.
func (c *Core) FinishedFrames() uint64 { return c.finishedFrames }

// Shutdown tears down the renderer, device, and instance in dependency
// order, waiting for the device to go idle first, then logs the final
// host-allocation accounting and closes the logger.
func (c *Core) Shutdown() {
	c.Device.WaitIdle()
	c.Renderer.Destroy()
	c.Device.Destroy()
	c.Instance.Destroy()
	c.logHostAllocStats()
	c.Log.Close()
}

// logHostAllocStats writes the per-scope host-allocation statistics at
// teardown so leaks show up as an alloc/free imbalance in the log.
func (c *Core) logHostAllocStats() {
	for scope, s := range c.Host.Stats() {
		if s.AllocCount == 0 && s.FreeCount == 0 {
			continue
		}
		c.Log.Print(applog.Info, "app/core.go", "Shutdown", 0,
			"host-alloc scope %s: allocs=%d frees=%d reallocs=%d requested=%d/%d actual=%d/%d",
			vkr.AllocScope(scope), s.AllocCount, s.FreeCount, s.ReallocCount,
			s.RequestedAllocBytes, s.RequestedFreeBytes, s.ActualAllocBytes, s.ActualFreeBytes)
	}
}

func mergeSwapchainExt(exts []string) []string {
	for _, e := range exts {
		if e == "VK_KHR_swapchain" {
			return exts
		}
	}
	return append([]string{"VK_KHR_swapchain"}, exts...)
}

func descriptorPoolSizes(cfg config.DescriptorPoolConfig) renderer.DescriptorPoolSizes {
	sizes := renderer.DescriptorPoolSizes{
		MaxPerType: make(map[vk.DescriptorType]uint32, len(cfg.MaxDescPerType)),
		MaxSets:    cfg.MaxSets,
		Flags:      vk.DescriptorPoolCreateFlagBits(cfg.Flags),
	}
	if cfg.MaxSets == 0 {
		sizes.MaxSets = 16
	}
	if len(cfg.MaxDescPerType) == 0 {
		sizes.MaxPerType[vk.DescriptorTypeUniformBuffer] = 16
		sizes.MaxPerType[vk.DescriptorTypeCombinedImageSampler] = 16
		return sizes
	}
	for name, count := range cfg.MaxDescPerType {
		dt, ok := descriptorTypeFromName(name)
		if !ok {
			continue
		}
		sizes.MaxPerType[dt] = count
	}
	return sizes
}

func descriptorTypeFromName(name string) (vk.DescriptorType, bool) {
	switch name {
	case "uniform_buffer":
		return vk.DescriptorTypeUniformBuffer, true
	case "combined_image_sampler":
		return vk.DescriptorTypeCombinedImageSampler, true
	case "storage_buffer":
		return vk.DescriptorTypeStorageBuffer, true
	case "storage_image":
		return vk.DescriptorTypeStorageImage, true
	case "sampled_image":
		return vk.DescriptorTypeSampledImage, true
	case "sampler":
		return vk.DescriptorTypeSampler, true
	default:
		return 0, false
	}
}

// LoadAndNew is the convenience path cmd/demo uses: read and decode the
// TOML document at configPath, then call New.
func LoadAndNew(configPath string, win vkr.Window, logDir string) (*Core, error) {
	doc, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	return New(doc, win, logDir)
}
