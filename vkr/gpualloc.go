package vkr

import (
	"sync"

	"github.com/NVIDIA/go-nvml/pkg/nvml"
	vk "github.com/vulkan-go/vulkan"

	"github.com/andewx/vkforge/errcode"
)

// gpuPage is one vk.AllocateMemory-backed device-memory page for a
// single memory-type index, with its own free-extent list — the same
// first-fit-with-coalescing algorithm as the free-list mem.Arena,
// specialized to device-memory offsets instead of host bytes.
type gpuPage struct {
	memory vk.DeviceMemory
	size   uint64
	free   []gpuExtent
}

type gpuExtent struct {
	off, size uint64
}

// GPUAllocator is a thin device-memory suballocator: it groups
// allocations into per-memory-type pages and hands out offsets within a
// page, first-fit over each page's free-extent list, falling back to a
// fresh page (pageSize bytes, or the request size if larger) when no
// existing page has room.
type GPUAllocator struct {
	mu         sync.Mutex
	device     vk.Device
	physical   vk.PhysicalDevice
	pageSize   uint64
	pages      map[uint32][]*gpuPage // keyed by memory type index
	totalSize  uint64
	nvmlDevice nvml.Device
	nvmlReady  bool
}

// GPUAlloc is a handle into the suballocator: memory type, owning page,
// and the offset/size reserved within it.
type GPUAlloc struct {
	Memory    vk.DeviceMemory
	TypeIndex uint32
	pageIndex int
	Offset    uint64
	Size      uint64
}

const defaultPageSize = 256 << 20 // 256 MiB pages, matching common VMA block sizes

// NewGPUAllocator wraps device/physical with a suballocator. It probes
// NVML for a VRAM budget if a driver is present, soft-failing (nvmlReady
// stays false) when it is not; the probe is diagnostics only and nothing
// depends on it succeeding.
func NewGPUAllocator(device vk.Device, physical vk.PhysicalDevice) *GPUAllocator {
	a := &GPUAllocator{
		device:   device,
		physical: physical,
		pageSize: defaultPageSize,
		pages:    make(map[uint32][]*gpuPage),
	}
	if nvml.Init() == nvml.SUCCESS {
		if dev, ret := nvml.DeviceGetHandleByIndex(0); ret == nvml.SUCCESS {
			a.nvmlDevice = dev
			a.nvmlReady = true
		}
	}
	return a
}

// Shutdown releases the NVML handle, if one was acquired.
func (a *GPUAllocator) Shutdown() {
	if a.nvmlReady {
		nvml.Shutdown()
		a.nvmlReady = false
	}
}

// TotalSize returns the cumulative bytes currently committed across all
// pages (device allocate/free callbacks both adjust this counter).
func (a *GPUAllocator) TotalSize() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.totalSize
}

// VRAMBudget returns the driver-reported total/used VRAM in bytes via
// NVML, or ok=false if no NVIDIA driver was detected at construction.
func (a *GPUAllocator) VRAMBudget() (total, used uint64, ok bool) {
	if !a.nvmlReady {
		return 0, 0, false
	}
	mem, ret := nvml.DeviceGetMemoryInfo(a.nvmlDevice)
	if ret != nvml.SUCCESS {
		return 0, 0, false
	}
	return mem.Total, mem.Used, true
}

// Alloc reserves size bytes of device memory of typeIndex, first-fit
// over existing pages' free extents before allocating a fresh page.
func (a *GPUAllocator) Alloc(typeIndex uint32, size, alignment uint64) (GPUAlloc, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for pi, pg := range a.pages[typeIndex] {
		if pg == nil {
			continue
		}
		if off, ok := takeExtent(pg, size, alignment); ok {
			return GPUAlloc{Memory: pg.memory, TypeIndex: typeIndex, pageIndex: pi, Offset: off, Size: size}, nil
		}
	}

	newPageSize := a.pageSize
	if size > newPageSize {
		newPageSize = size
	}
	var devMem vk.DeviceMemory
	ret := vk.AllocateMemory(a.device, &vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  vk.DeviceSize(newPageSize),
		MemoryTypeIndex: typeIndex,
	}, nil, &devMem)
	if isError(ret) {
		return GPUAlloc{}, wrap(ret, errcode.CreateAllocatorFail)
	}
	pg := &gpuPage{memory: devMem, size: newPageSize, free: []gpuExtent{{off: 0, size: newPageSize}}}
	a.pages[typeIndex] = append(a.pages[typeIndex], pg)
	a.totalSize += newPageSize

	off, ok := takeExtent(pg, size, alignment)
	if !ok {
		return GPUAlloc{}, errcode.New(errcode.OutOfMemory, nil)
	}
	return GPUAlloc{Memory: devMem, TypeIndex: typeIndex, pageIndex: len(a.pages[typeIndex]) - 1, Offset: off, Size: size}, nil
}

// Free returns alloc's extent to its page's free list, coalescing with
// neighbors, and frees the backing vk.DeviceMemory if the page becomes
// entirely free.
func (a *GPUAllocator) Free(alloc GPUAlloc) {
	a.mu.Lock()
	defer a.mu.Unlock()

	pages := a.pages[alloc.TypeIndex]
	if alloc.pageIndex >= len(pages) || pages[alloc.pageIndex] == nil {
		return
	}
	pg := pages[alloc.pageIndex]
	insertExtent(pg, gpuExtent{off: alloc.Offset, size: alloc.Size})

	if len(pg.free) == 1 && pg.free[0].size == pg.size {
		vk.FreeMemory(a.device, pg.memory, nil)
		a.totalSize -= pg.size
		pages[alloc.pageIndex] = nil
	}
}

func takeExtent(pg *gpuPage, size, alignment uint64) (uint64, bool) {
	for i, e := range pg.free {
		base := alignUpGPU(e.off, alignment)
		pad := base - e.off
		if e.size < pad+size {
			continue
		}
		residual := e.size - pad - size
		switch {
		case pad == 0 && residual == 0:
			pg.free = append(pg.free[:i], pg.free[i+1:]...)
		case pad == 0:
			pg.free[i] = gpuExtent{off: e.off + size, size: residual}
		case residual == 0:
			pg.free[i] = gpuExtent{off: e.off, size: pad}
		default:
			pg.free[i] = gpuExtent{off: e.off, size: pad}
			pg.free = append(pg.free, gpuExtent{})
			copy(pg.free[i+2:], pg.free[i+1:])
			pg.free[i+1] = gpuExtent{off: base + size, size: residual}
		}
		return base, true
	}
	return 0, false
}

func insertExtent(pg *gpuPage, fe gpuExtent) {
	idx := len(pg.free)
	for i, e := range pg.free {
		if e.off > fe.off {
			idx = i
			break
		}
	}
	pg.free = append(pg.free, gpuExtent{})
	copy(pg.free[idx+1:], pg.free[idx:])
	pg.free[idx] = fe

	if idx+1 < len(pg.free) && pg.free[idx].off+pg.free[idx].size == pg.free[idx+1].off {
		pg.free[idx].size += pg.free[idx+1].size
		pg.free = append(pg.free[:idx+1], pg.free[idx+2:]...)
	}
	if idx > 0 && pg.free[idx-1].off+pg.free[idx-1].size == pg.free[idx].off {
		pg.free[idx-1].size += pg.free[idx].size
		pg.free = append(pg.free[:idx], pg.free[idx+1:]...)
	}
}

func alignUpGPU(v, a uint64) uint64 {
	if a == 0 {
		return v
	}
	return (v + a - 1) &^ (a - 1)
}
