package vkr

import (
	vk "github.com/vulkan-go/vulkan"

	"github.com/andewx/vkforge/errcode"
)

// Device owns the logical device, its per-family queues, one resettable
// default command pool and one transient command pool per family, and
// the GPU allocator. Queue roles are an arbitrary family map rather
// than a fixed graphics/present pair, so a separate present queue falls
// out of the same path.
type Device struct {
	inst     *Instance
	handle   vk.Device
	queues   map[QueueFamilyKind]vk.Queue
	families map[QueueFamilyKind]QueueFamilyInfo

	defaultPools   map[uint32]vk.CommandPool // keyed by family (vulkan) index
	transientPools map[uint32]vk.CommandPool

	Allocator *GPUAllocator
}

// NewDevice creates the logical device from inst.Selected's queue-family
// map: one vk.DeviceQueueCreateInfo per distinct CreateIndex, requested
// counts summed within a family, sampler anisotropy enabled when the
// physical device supports it.
func NewDevice(inst *Instance, deviceExtensions []string) (*Device, error) {
	sel := inst.Selected
	unwind := &errcode.Unwinder{}

	byCreateIndex := make(map[int]*vk.DeviceQueueCreateInfo)
	order := []int{}
	requestedByFamily := make(map[uint32]uint32)
	for _, info := range sel.Families {
		requestedByFamily[info.Index] += info.RequestedCount
	}
	for _, info := range sel.Families {
		if _, ok := byCreateIndex[info.CreateIndex]; ok {
			continue
		}
		count := requestedByFamily[info.Index]
		if count > info.AvailableCount {
			count = info.AvailableCount
		}
		priorities := make([]float32, count)
		for i := range priorities {
			priorities[i] = 1.0
		}
		byCreateIndex[info.CreateIndex] = &vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: info.Index,
			QueueCount:       count,
			PQueuePriorities: priorities,
		}
		order = append(order, info.CreateIndex)
	}
	queueInfos := make([]vk.DeviceQueueCreateInfo, 0, len(byCreateIndex))
	for _, ci := range order {
		queueInfos = append(queueInfos, *byCreateIndex[ci])
	}

	var features vk.PhysicalDeviceFeatures
	if sel.Features.SamplerAnisotropy != vk.False {
		features.SamplerAnisotropy = vk.True
	}

	exts := safeStrings(deviceExtensions)
	var handle vk.Device
	ret := vk.CreateDevice(sel.Physical, &vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueInfos)),
		PQueueCreateInfos:       queueInfos,
		EnabledExtensionCount:   uint32(len(exts)),
		PpEnabledExtensionNames: exts,
		PEnabledFeatures:        []vk.PhysicalDeviceFeatures{features},
	}, nil, &handle)
	if isError(ret) {
		return nil, wrap(ret, errcode.CreateDeviceFail)
	}
	unwind.Push(func() { vk.DestroyDevice(handle, nil) })

	d := &Device{
		inst:           inst,
		handle:         handle,
		queues:         make(map[QueueFamilyKind]vk.Queue),
		families:       sel.Families,
		defaultPools:   make(map[uint32]vk.CommandPool),
		transientPools: make(map[uint32]vk.CommandPool),
	}

	offsets := make(map[uint32]uint32)
	for kind, info := range sel.Families {
		idx := offsets[info.Index]
		offsets[info.Index] = idx + 1
		var q vk.Queue
		vk.GetDeviceQueue(handle, info.Index, idx, &q)
		d.queues[kind] = q
	}

	for _, info := range sel.Families {
		if _, ok := d.defaultPools[info.Index]; ok {
			continue
		}
		pool, err := createCommandPool(handle, info.Index, true)
		if err != nil {
			unwind.Unwind()
			return nil, err
		}
		d.defaultPools[info.Index] = pool
		unwind.Push(func() { vk.DestroyCommandPool(handle, pool, nil) })

		tpool, err := createCommandPool(handle, info.Index, false)
		if err != nil {
			unwind.Unwind()
			return nil, err
		}
		d.transientPools[info.Index] = tpool
		unwind.Push(func() { vk.DestroyCommandPool(handle, tpool, nil) })
	}

	d.Allocator = NewGPUAllocator(handle, sel.Physical)

	unwind.Release()
	return d, nil
}

func createCommandPool(device vk.Device, familyIndex uint32, resettable bool) (vk.CommandPool, error) {
	var flags vk.CommandPoolCreateFlagBits
	if resettable {
		flags = vk.CommandPoolCreateResetCommandBufferBit
	} else {
		flags = vk.CommandPoolCreateTransientBit
	}
	var pool vk.CommandPool
	ret := vk.CreateCommandPool(device, &vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: familyIndex,
		Flags:            vk.CommandPoolCreateFlags(flags),
	}, nil, &pool)
	if isError(ret) {
		return vk.CommandPool(vk.NullHandle), wrap(ret, errcode.CreateCommandPoolFail)
	}
	return pool, nil
}

// Handle returns the raw logical device.
func (d *Device) Handle() vk.Device { return d.handle }

// Queue returns the queue assigned to kind.
func (d *Device) Queue(kind QueueFamilyKind) vk.Queue { return d.queues[kind] }

// FamilyIndex returns the Vulkan queue-family index backing kind.
func (d *Device) FamilyIndex(kind QueueFamilyKind) uint32 { return d.families[kind].Index }

// DefaultPool returns the resettable default command pool for kind's
// family.
func (d *Device) DefaultPool(kind QueueFamilyKind) vk.CommandPool {
	return d.defaultPools[d.families[kind].Index]
}

// TransientPool returns the transient command pool for kind's family,
// used by the transfer service for one-time-submit command buffers.
func (d *Device) TransientPool(kind QueueFamilyKind) vk.CommandPool {
	return d.transientPools[d.families[kind].Index]
}

// WaitIdle blocks until all queued work on the device completes; required
// before swapchain recreation and full teardown.
func (d *Device) WaitIdle() { vk.DeviceWaitIdle(d.handle) }

// Destroy releases command pools, the GPU allocator, and the device, in
// reverse creation order.
func (d *Device) Destroy() {
	d.WaitIdle()
	d.Allocator.Shutdown()
	for _, pool := range d.transientPools {
		vk.DestroyCommandPool(d.handle, pool, nil)
	}
	for _, pool := range d.defaultPools {
		vk.DestroyCommandPool(d.handle, pool, nil)
	}
	vk.DestroyDevice(d.handle, nil)
}
