package renderer

import (
	"unsafe"

	vk "github.com/vulkan-go/vulkan"

	"github.com/andewx/vkforge/errcode"
	"github.com/andewx/vkforge/mem"
	"github.com/andewx/vkforge/vkr"
)

const framesInFlight = 2

// DescriptorPoolSizes sizes a frame's descriptor pool:
// per-descriptor-type max counts, total max sets, and pool creation
// flags.
type DescriptorPoolSizes struct {
	MaxPerType map[vk.DescriptorType]uint32
	MaxSets    uint32
	Flags      vk.DescriptorPoolCreateFlagBits
}

// FrameContext is one slot of the frames-in-flight ring: its own command
// buffer, its own semaphore pair, its own fence (created signalled so the
// first tick's wait does not block forever), a host-visible uniform
// buffer, and a descriptor pool, bundled per frame instead of recycled
// through independent managers.
type FrameContext struct {
	CommandBuffer  vk.CommandBuffer
	ImageAvail     vk.Semaphore
	RenderFinished vk.Semaphore
	InFlight       vk.Fence
	UniformBuffer  vk.Buffer
	UniformMemory  vk.DeviceMemory
	uniformMapped  unsafe.Pointer
	DescriptorPool vk.DescriptorPool
	Linear         *mem.Arena
}

// Scheduler drives the fixed two-frame ring and its S0-S7 per-tick state
// machine: resize check, fence wait, acquire, fence reset, uniform
// write, record, submit, present.
type Scheduler struct {
	dev        *vkr.Device
	swapchain  *vkr.Swapchain
	renderPass vk.RenderPass

	frames         [framesInFlight]FrameContext
	finishedFrames uint64

	frameLinearSize uint64
}

// NewScheduler allocates the ring's command buffers, sync objects,
// uniform buffers, and descriptor pools. Each frame's linear scratch
// arena is sub-allocated from upstream (the renderer's private
// free-list arena) when one is given.
func NewScheduler(dev *vkr.Device, swapchain *vkr.Swapchain, renderPass vk.RenderPass,
	uniformSize uint64, memProps vk.PhysicalDeviceMemoryProperties, poolSizes DescriptorPoolSizes,
	frameLinearSize uint64, upstream *mem.Arena) (*Scheduler, error) {

	s := &Scheduler{dev: dev, swapchain: swapchain, renderPass: renderPass, frameLinearSize: frameLinearSize}
	unwind := &errcode.Unwinder{}

	pool := dev.DefaultPool(vkr.QueueGraphics)
	bufs := make([]vk.CommandBuffer, framesInFlight)
	ret := vk.AllocateCommandBuffers(dev.Handle(), &vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        pool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: framesInFlight,
	}, bufs)
	if isErr(ret) {
		return nil, wrap(ret, errcode.CreateCommandBufferFail)
	}

	for i := 0; i < framesInFlight; i++ {
		f := &s.frames[i]
		f.CommandBuffer = bufs[i]

		if err := createSemaphore(dev.Handle(), &f.ImageAvail); err != nil {
			unwind.Unwind()
			return nil, err
		}
		unwind.Push(func() { vk.DestroySemaphore(dev.Handle(), f.ImageAvail, nil) })

		if err := createSemaphore(dev.Handle(), &f.RenderFinished); err != nil {
			unwind.Unwind()
			return nil, err
		}
		unwind.Push(func() { vk.DestroySemaphore(dev.Handle(), f.RenderFinished, nil) })

		ret = vk.CreateFence(dev.Handle(), &vk.FenceCreateInfo{
			SType: vk.StructureTypeFenceCreateInfo,
			Flags: vk.FenceCreateFlags(vk.FenceCreateSignaledBit),
		}, nil, &f.InFlight)
		if isErr(ret) {
			unwind.Unwind()
			return nil, wrap(ret, errcode.CreateFenceFail)
		}
		unwind.Push(func() { vk.DestroyFence(dev.Handle(), f.InFlight, nil) })

		if err := createUniformBuffer(dev.Handle(), memProps, uniformSize, f); err != nil {
			unwind.Unwind()
			return nil, err
		}
		unwind.Push(func() {
			vk.UnmapMemory(dev.Handle(), f.UniformMemory)
			vk.DestroyBuffer(dev.Handle(), f.UniformBuffer, nil)
			vk.FreeMemory(dev.Handle(), f.UniformMemory, nil)
		})

		if err := createDescriptorPool(dev.Handle(), poolSizes, f); err != nil {
			unwind.Unwind()
			return nil, err
		}
		unwind.Push(func() { vk.DestroyDescriptorPool(dev.Handle(), f.DescriptorPool, nil) })

		linear, err := mem.New(mem.Config{Policy: mem.Linear, Size: frameLinearSize, Upstream: upstream})
		if err != nil {
			unwind.Unwind()
			return nil, err
		}
		f.Linear = linear
	}

	unwind.Release()
	return s, nil
}

func createSemaphore(device vk.Device, out *vk.Semaphore) error {
	ret := vk.CreateSemaphore(device, &vk.SemaphoreCreateInfo{SType: vk.StructureTypeSemaphoreCreateInfo}, nil, out)
	if isErr(ret) {
		return wrap(ret, errcode.CreateSemaphoreFail)
	}
	return nil
}

func createUniformBuffer(device vk.Device, memProps vk.PhysicalDeviceMemoryProperties, size uint64, f *FrameContext) error {
	ret := vk.CreateBuffer(device, &vk.BufferCreateInfo{
		SType: vk.StructureTypeBufferCreateInfo,
		Size:  vk.DeviceSize(size),
		Usage: vk.BufferUsageFlags(vk.BufferUsageUniformBufferBit),
	}, nil, &f.UniformBuffer)
	if isErr(ret) {
		return wrap(ret, errcode.CreateBufferFail)
	}

	var reqs vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(device, f.UniformBuffer, &reqs)
	reqs.Deref()
	typeIdx, ok := vkr.FindRequiredMemoryType(memProps, vk.MemoryPropertyFlagBits(reqs.MemoryTypeBits),
		vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit)
	if !ok {
		return errcode.New(errcode.CreateBufferFail, nil)
	}
	ret = vk.AllocateMemory(device, &vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  reqs.Size,
		MemoryTypeIndex: typeIdx,
	}, nil, &f.UniformMemory)
	if isErr(ret) {
		return wrap(ret, errcode.CreateBufferFail)
	}
	vk.BindBufferMemory(device, f.UniformBuffer, f.UniformMemory, 0)

	return wrap(vk.MapMemory(device, f.UniformMemory, 0, vk.DeviceSize(size), 0, &f.uniformMapped), errcode.CreateBufferFail)
}

func createDescriptorPool(device vk.Device, sizes DescriptorPoolSizes, f *FrameContext) error {
	poolSizes := make([]vk.DescriptorPoolSize, 0, len(sizes.MaxPerType))
	for t, count := range sizes.MaxPerType {
		poolSizes = append(poolSizes, vk.DescriptorPoolSize{Type: t, DescriptorCount: count})
	}
	ret := vk.CreateDescriptorPool(device, &vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		Flags:         vk.DescriptorPoolCreateFlags(sizes.Flags),
		MaxSets:       sizes.MaxSets,
		PoolSizeCount: uint32(len(poolSizes)),
		PPoolSizes:    poolSizes,
	}, nil, &f.DescriptorPool)
	if isErr(ret) {
		return wrap(ret, errcode.CreateDescriptorPoolFail)
	}
	return nil
}

// WriteUniform copies data into the current frame's mapped uniform
// buffer (S4).
func (s *Scheduler) WriteUniform(data []byte) {
	f := s.current()
	dst := unsafe.Slice((*byte)(f.uniformMapped), len(data))
	copy(dst, data)
}

// current returns the frame context for finished_frames mod 2.
func (s *Scheduler) current() *FrameContext { return &s.frames[s.finishedFrames%framesInFlight] }

// Current exposes the active frame context to callers recording draw
// commands from RecordFn.
func (s *Scheduler) Current() *FrameContext { return s.current() }

// FinishedFrames returns the monotonically increasing tick counter.
func (s *Scheduler) FinishedFrames() uint64 { return s.finishedFrames }

// RecordFn records application draw commands into cmd against
// framebuffer, between vkCmdBeginRenderPass and vkCmdEndRenderPass (S5).
type RecordFn func(cmd vk.CommandBuffer, framebuffer vk.Framebuffer, extent vk.Extent2D)

// Tick runs one S0-S7 cycle. framebuffers is indexed by the acquired
// swapchain image index; uniform, when non-empty, is copied into the
// frame's mapped uniform buffer after the fence wait (S4). The caller
// is responsible for rebuilding s.swapchain and framebuffers before
// calling Tick again when Tick reports ErrSwapchainOutOfDate.
func (s *Scheduler) Tick(framebuffers []vk.Framebuffer, clearValues []vk.ClearValue, uniform []byte, record RecordFn) error {
	f := s.current()
	device := s.dev.Handle()

	// S1 Wait
	ret := vk.WaitForFences(device, 1, []vk.Fence{f.InFlight}, vk.True, vk.MaxUint64)
	if isErr(ret) {
		return wrap(ret, errcode.WaitFenceFail)
	}

	// The frame's scratch arena is only safe to rewind once its fence
	// proves the GPU is done with anything recorded from it.
	f.Linear.Reset()

	// S2 Acquire
	var imageIndex uint32
	ret = vk.AcquireNextImage(device, s.swapchain.Handle(), vk.MaxUint64, f.ImageAvail, nil, &imageIndex)
	if ret == vk.ErrorOutOfDate {
		return ErrSwapchainOutOfDate
	}
	if isErr(ret) && ret != vk.Suboptimal {
		return wrap(ret, errcode.AcquireImageFail)
	}

	// S3 ResetFence
	ret = vk.ResetFences(device, 1, []vk.Fence{f.InFlight})
	if isErr(ret) {
		return wrap(ret, errcode.ResetFenceFail)
	}

	// S4 WriteUBO
	if len(uniform) > 0 {
		s.WriteUniform(uniform)
	}

	// S5 Record
	ret = vk.BeginCommandBuffer(f.CommandBuffer, &vk.CommandBufferBeginInfo{SType: vk.StructureTypeCommandBufferBeginInfo})
	if isErr(ret) {
		return wrap(ret, errcode.BeginCmdBufferFail)
	}

	vk.CmdBeginRenderPass(f.CommandBuffer, &vk.RenderPassBeginInfo{
		SType:           vk.StructureTypeRenderPassBeginInfo,
		RenderPass:      s.renderPass,
		Framebuffer:     framebuffers[imageIndex],
		RenderArea:      vk.Rect2D{Extent: s.swapchain.Extent},
		ClearValueCount: uint32(len(clearValues)),
		PClearValues:    clearValues,
	}, vk.SubpassContentsInline)

	record(f.CommandBuffer, framebuffers[imageIndex], s.swapchain.Extent)

	vk.CmdEndRenderPass(f.CommandBuffer)
	if ret := vk.EndCommandBuffer(f.CommandBuffer); isErr(ret) {
		return wrap(ret, errcode.EndCmdBufferFail)
	}

	// S6 Submit
	waitStages := []vk.PipelineStageFlags{vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)}
	ret = vk.QueueSubmit(s.dev.Queue(vkr.QueueGraphics), 1, []vk.SubmitInfo{{
		SType:                vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount:   1,
		PWaitSemaphores:      []vk.Semaphore{f.ImageAvail},
		PWaitDstStageMask:    waitStages,
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{f.CommandBuffer},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{f.RenderFinished},
	}}, f.InFlight)
	if isErr(ret) {
		return wrap(ret, errcode.SubmitQueueFail)
	}

	// S7 Present
	ret = vk.QueuePresent(s.dev.Queue(vkr.QueuePresent), &vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{f.RenderFinished},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{s.swapchain.Handle()},
		PImageIndices:      []uint32{imageIndex},
	})
	if ret == vk.ErrorOutOfDate || ret == vk.Suboptimal {
		s.finishedFrames++
		return ErrSwapchainOutOfDate
	}
	if isErr(ret) {
		return wrap(ret, errcode.PresentFail)
	}

	s.finishedFrames++
	return nil
}

// ErrSwapchainOutOfDate signals S0's recreate-swapchain branch: the
// caller must rebuild the swapchain and framebuffers before the next
// Tick.
var ErrSwapchainOutOfDate = errcode.New(errcode.AcquireImageFail, nil)

// Destroy waits for the device to idle then releases every per-frame
// object; nothing may be destroyed while a frame's fence is still
// unsignalled.
func (s *Scheduler) Destroy() {
	s.dev.WaitIdle()
	device := s.dev.Handle()
	for i := range s.frames {
		f := &s.frames[i]
		vk.DestroyDescriptorPool(device, f.DescriptorPool, nil)
		vk.UnmapMemory(device, f.UniformMemory)
		vk.DestroyBuffer(device, f.UniformBuffer, nil)
		vk.FreeMemory(device, f.UniformMemory, nil)
		vk.DestroyFence(device, f.InFlight, nil)
		vk.DestroySemaphore(device, f.RenderFinished, nil)
		vk.DestroySemaphore(device, f.ImageAvail, nil)
		f.Linear.Terminate()
	}
}

func isErr(ret vk.Result) bool { return ret != vk.Success }

func wrap(ret vk.Result, code errcode.Code) error {
	if !isErr(ret) {
		return nil
	}
	return errcode.New(code, nil)
}
