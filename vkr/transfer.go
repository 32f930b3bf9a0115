package vkr

import (
	"unsafe"

	vk "github.com/vulkan-go/vulkan"

	"github.com/andewx/vkforge/errcode"
	"github.com/andewx/vkforge/mem"
)

// TransferService runs one-shot buffer/image copies and layout
// transitions on throwaway primary command buffers drawn from the
// device's transient pool: submit a single command buffer, wait on a
// fence, then free it. Transfers are synchronous and meant for load
// time, never the middle of a frame.
type TransferService struct {
	dev  *Device
	kind QueueFamilyKind
	host *HostAllocator
}

// NewTransferService builds a service that submits through kind's queue
// (normally QueueGraphics, which every implementation is required to
// support). When host is non-nil, each upload's host-side staging copy
// is drawn from and accounted against the command scope.
func NewTransferService(dev *Device, kind QueueFamilyKind, host *HostAllocator) *TransferService {
	return &TransferService{dev: dev, kind: kind, host: host}
}

// stageHostCopy bounces data through a command-scope host block so the
// upload's host-side staging bytes show up in the allocation
// accounting. The caller frees the returned Ptr (if valid) once the
// bytes have been written into mapped device memory.
func (t *TransferService) stageHostCopy(data []byte) (mem.Ptr, []byte, error) {
	if t.host == nil {
		return mem.Null, data, nil
	}
	p, err := t.host.Alloc(uint64(len(data)), 8, ScopeCommand)
	if err != nil {
		return mem.Null, nil, err
	}
	buf := t.host.Payload(p, ScopeCommand)
	copy(buf, data)
	return p, buf, nil
}

func (t *TransferService) beginOneShot() (vk.CommandBuffer, error) {
	pool := t.dev.TransientPool(t.kind)
	bufs := make([]vk.CommandBuffer, 1)
	ret := vk.AllocateCommandBuffers(t.dev.Handle(), &vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        pool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	}, bufs)
	if isError(ret) {
		return nil, wrap(ret, errcode.CreateCommandBufferFail)
	}
	cmd := bufs[0]
	ret = vk.BeginCommandBuffer(cmd, &vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	})
	if isError(ret) {
		vk.FreeCommandBuffers(t.dev.Handle(), pool, 1, []vk.CommandBuffer{cmd})
		return nil, wrap(ret, errcode.BeginCmdBufferFail)
	}
	return cmd, nil
}

// submitAndWait ends cmd, submits it on the transfer queue guarded by a
// throwaway fence, blocks for completion, then frees the buffer.
func (t *TransferService) submitAndWait(cmd vk.CommandBuffer) error {
	pool := t.dev.TransientPool(t.kind)
	defer vk.FreeCommandBuffers(t.dev.Handle(), pool, 1, []vk.CommandBuffer{cmd})

	if ret := vk.EndCommandBuffer(cmd); isError(ret) {
		return wrap(ret, errcode.EndCmdBufferFail)
	}

	var fence vk.Fence
	ret := vk.CreateFence(t.dev.Handle(), &vk.FenceCreateInfo{SType: vk.StructureTypeFenceCreateInfo}, nil, &fence)
	if isError(ret) {
		return wrap(ret, errcode.CreateFenceFail)
	}
	defer vk.DestroyFence(t.dev.Handle(), fence, nil)

	ret = vk.QueueSubmit(t.dev.Queue(t.kind), 1, []vk.SubmitInfo{{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    []vk.CommandBuffer{cmd},
	}}, fence)
	if isError(ret) {
		return wrap(ret, errcode.SubmitQueueFail)
	}

	ret = vk.WaitForFences(t.dev.Handle(), 1, []vk.Fence{fence}, vk.True, vk.MaxUint64)
	if isError(ret) {
		return wrap(ret, errcode.WaitFenceFail)
	}
	return nil
}

// CopyBuffer records and submits a src->dst byte-range copy.
func (t *TransferService) CopyBuffer(src, dst vk.Buffer, size uint64) error {
	cmd, err := t.beginOneShot()
	if err != nil {
		return err
	}
	vk.CmdCopyBuffer(cmd, src, dst, 1, []vk.BufferCopy{{Size: vk.DeviceSize(size)}})
	return t.submitAndWait(cmd)
}

// CopyBufferToImage records and submits a buffer->image copy for a
// single-layer, single-mip color image of the given extent.
func (t *TransferService) CopyBufferToImage(src vk.Buffer, dst vk.Image, width, height uint32) error {
	cmd, err := t.beginOneShot()
	if err != nil {
		return err
	}
	vk.CmdCopyBufferToImage(cmd, src, dst, vk.ImageLayoutTransferDstOptimal, 1, []vk.BufferImageCopy{{
		ImageSubresource: vk.ImageSubresourceLayers{
			AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
			LayerCount: 1,
		},
		ImageExtent: vk.Extent3D{Width: width, Height: height, Depth: 1},
	}})
	return t.submitAndWait(cmd)
}

// ImageTransition names the three layout transitions the transfer
// service supports; any other combination is rejected rather than
// silently emitting an overly broad barrier.
type ImageTransition int

const (
	TransitionUndefinedToTransferDst ImageTransition = iota
	TransitionTransferDstToShaderRead
	TransitionUndefinedToDepthAttachment
)

// TransitionImageLayout records and submits the pipeline barrier for one
// of the three supported transitions, erroring on any other combination.
func (t *TransferService) TransitionImageLayout(image vk.Image, transition ImageTransition) error {
	var barrier vk.ImageMemoryBarrier
	barrier.SType = vk.StructureTypeImageMemoryBarrier
	barrier.Image = image
	barrier.SrcQueueFamilyIndex = vk.QueueFamilyIgnored
	barrier.DstQueueFamilyIndex = vk.QueueFamilyIgnored

	var srcStage, dstStage vk.PipelineStageFlagBits

	switch transition {
	case TransitionUndefinedToTransferDst:
		barrier.OldLayout = vk.ImageLayoutUndefined
		barrier.NewLayout = vk.ImageLayoutTransferDstOptimal
		barrier.SrcAccessMask = 0
		barrier.DstAccessMask = vk.AccessFlags(vk.AccessTransferWriteBit)
		barrier.SubresourceRange = vk.ImageSubresourceRange{AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit), LevelCount: 1, LayerCount: 1}
		srcStage = vk.PipelineStageTopOfPipeBit
		dstStage = vk.PipelineStageTransferBit
	case TransitionTransferDstToShaderRead:
		barrier.OldLayout = vk.ImageLayoutTransferDstOptimal
		barrier.NewLayout = vk.ImageLayoutShaderReadOnlyOptimal
		barrier.SrcAccessMask = vk.AccessFlags(vk.AccessTransferWriteBit)
		barrier.DstAccessMask = vk.AccessFlags(vk.AccessShaderReadBit)
		barrier.SubresourceRange = vk.ImageSubresourceRange{AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit), LevelCount: 1, LayerCount: 1}
		srcStage = vk.PipelineStageTransferBit
		dstStage = vk.PipelineStageFragmentShaderBit
	case TransitionUndefinedToDepthAttachment:
		barrier.OldLayout = vk.ImageLayoutUndefined
		barrier.NewLayout = vk.ImageLayoutDepthStencilAttachmentOptimal
		barrier.SrcAccessMask = 0
		barrier.DstAccessMask = vk.AccessFlags(vk.AccessDepthStencilAttachmentReadBit | vk.AccessDepthStencilAttachmentWriteBit)
		barrier.SubresourceRange = vk.ImageSubresourceRange{AspectMask: vk.ImageAspectFlags(vk.ImageAspectDepthBit), LevelCount: 1, LayerCount: 1}
		srcStage = vk.PipelineStageTopOfPipeBit
		dstStage = vk.PipelineStageEarlyFragmentTestsBit
	default:
		return errcode.New(errcode.TransitionImageUnsupportedLayout, nil)
	}

	cmd, err := t.beginOneShot()
	if err != nil {
		return err
	}
	vk.CmdPipelineBarrier(cmd, vk.PipelineStageFlags(srcStage), vk.PipelineStageFlags(dstStage), 0,
		0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{barrier})
	return t.submitAndWait(cmd)
}

// StageAndUploadBuffer copies data into a throwaway host-visible staging
// buffer, then device-to-device copies it into dst — the staged-upload
// path for vertex/index/uniform data.
func (t *TransferService) StageAndUploadBuffer(memProps vk.PhysicalDeviceMemoryProperties, data []byte, dst vk.Buffer) error {
	inv := NewInventory(t.dev.Handle())
	idx, err := inv.AddBuffer(memProps, uint64(len(data)), vk.BufferUsageTransferSrcBit,
		vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit)
	if err != nil {
		return err
	}
	staging := inv.Buffer(idx)
	defer inv.TerminateBuffer(idx)

	blk, payload, err := t.stageHostCopy(data)
	if err != nil {
		return err
	}

	var mapped unsafe.Pointer
	ret := vk.MapMemory(t.dev.Handle(), staging.Memory, 0, vk.DeviceSize(len(data)), 0, &mapped)
	if isError(ret) {
		if blk.Valid() {
			_ = t.host.Free(blk, ScopeCommand)
		}
		return wrap(ret, errcode.CreateBufferFail)
	}
	copyToMapped(mapped, payload)
	vk.UnmapMemory(t.dev.Handle(), staging.Memory)
	if blk.Valid() {
		_ = t.host.Free(blk, ScopeCommand)
	}

	return t.CopyBuffer(staging.Buffer, dst, uint64(len(data)))
}

// StageAndUploadImage copies data into a staging buffer, transitions dst
// to transfer-dst, copies the buffer into it, then transitions it to
// shader-read-only.
func (t *TransferService) StageAndUploadImage(memProps vk.PhysicalDeviceMemoryProperties, data []byte, dst vk.Image, width, height uint32) error {
	inv := NewInventory(t.dev.Handle())
	idx, err := inv.AddBuffer(memProps, uint64(len(data)), vk.BufferUsageTransferSrcBit,
		vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit)
	if err != nil {
		return err
	}
	staging := inv.Buffer(idx)
	defer inv.TerminateBuffer(idx)

	blk, payload, err := t.stageHostCopy(data)
	if err != nil {
		return err
	}

	var mapped unsafe.Pointer
	ret := vk.MapMemory(t.dev.Handle(), staging.Memory, 0, vk.DeviceSize(len(data)), 0, &mapped)
	if isError(ret) {
		if blk.Valid() {
			_ = t.host.Free(blk, ScopeCommand)
		}
		return wrap(ret, errcode.CreateBufferFail)
	}
	copyToMapped(mapped, payload)
	vk.UnmapMemory(t.dev.Handle(), staging.Memory)
	if blk.Valid() {
		_ = t.host.Free(blk, ScopeCommand)
	}

	if err := t.TransitionImageLayout(dst, TransitionUndefinedToTransferDst); err != nil {
		return err
	}
	if err := t.CopyBufferToImage(staging.Buffer, dst, width, height); err != nil {
		return err
	}
	return t.TransitionImageLayout(dst, TransitionTransferDstToShaderRead)
}

// copyToMapped writes data into a mapped device-memory range.
func copyToMapped(mapped unsafe.Pointer, data []byte) {
	dst := unsafe.Slice((*byte)(mapped), len(data))
	copy(dst, data)
}
