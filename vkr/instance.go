package vkr

import (
	"log"
	"unsafe"

	vk "github.com/vulkan-go/vulkan"

	"github.com/andewx/vkforge/errcode"
)

// InstanceConfig is the Vulkan bootstrap configuration (app name,
// version, log verbosity, instance create flags, extra instance/device
// extensions, validation layers); app.Core builds one of these from a
// config.Document before calling NewInstance.
type InstanceConfig struct {
	AppName             string
	VersionMajor        uint32
	VersionMinor        uint32
	VersionPatch        uint32
	LogVerbosity        string
	InstanceCreateFlags uint32
	ExtraInstanceExts   []string
	DeviceExtensions    []string
	ValidationLayers    []string
	Debug               bool
}

// QueueFamilyKind identifies the queue roles the selector records.
type QueueFamilyKind int

const (
	QueueGraphics QueueFamilyKind = iota
	QueuePresent
	QueueCompute
	QueueTransfer
)

// QueueFamilyInfo is the per-role queue-family record: the family's
// Vulkan index, how many queues it actually exposes, how many the engine
// asked for, and the createIndex it shares with any other role backed
// by the same family (merged device-queue-create-info).
type QueueFamilyInfo struct {
	Index          uint32
	AvailableCount uint32
	RequestedCount uint32
	CreateIndex    int
}

// DeviceInfo records everything the selector gathers about a scored
// physical device.
type DeviceInfo struct {
	Physical   vk.PhysicalDevice
	Properties vk.PhysicalDeviceProperties
	Features   vk.PhysicalDeviceFeatures
	MemProps   vk.PhysicalDeviceMemoryProperties
	Families   map[QueueFamilyKind]QueueFamilyInfo
	Score      int
}

// Instance owns the Vulkan instance, optional debug messenger, surface,
// and the selected physical device's properties, features, memory
// properties, and queue-family map.
type Instance struct {
	handle   vk.Instance
	surface  vk.Surface
	debugCB  vk.DebugReportCallback
	cfg      InstanceConfig
	Selected DeviceInfo
}

// NewInstance creates the Vulkan instance, optional debug callback, and
// window surface, then enumerates and scores physical devices, keeping
// the highest-scoring one that satisfies the hard requirements.
func NewInstance(cfg InstanceConfig, win Window) (*Instance, error) {
	inst := &Instance{cfg: cfg}
	unwind := &errcode.Unwinder{}

	required := safeStrings(win.RequiredInstanceExtensions())
	extra := safeStrings(cfg.ExtraInstanceExts)
	instanceExts := mergeUnique(required, extra)
	layers := safeStrings(cfg.ValidationLayers)

	var handle vk.Instance
	ret := vk.CreateInstance(&vk.InstanceCreateInfo{
		SType: vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: &vk.ApplicationInfo{
			SType:              vk.StructureTypeApplicationInfo,
			ApiVersion:         uint32(vk.MakeVersion(1, 2, 0)),
			ApplicationVersion: uint32(vk.MakeVersion(int(cfg.VersionMajor), int(cfg.VersionMinor), int(cfg.VersionPatch))),
			PApplicationName:   safeString(cfg.AppName),
			PEngineName:        safeString("vkforge"),
		},
		EnabledExtensionCount:   uint32(len(instanceExts)),
		PpEnabledExtensionNames: instanceExts,
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     layers,
		Flags:                   vk.InstanceCreateFlags(cfg.InstanceCreateFlags),
	}, nil, &handle)
	if isError(ret) {
		return nil, wrap(ret, errcode.CreateInstanceFail)
	}
	inst.handle = handle
	vk.InitInstance(handle)
	unwind.Push(func() { vk.DestroyInstance(handle, nil) })

	if cfg.Debug {
		var cb vk.DebugReportCallback
		ret := vk.CreateDebugReportCallback(handle, &vk.DebugReportCallbackCreateInfo{
			SType:       vk.StructureTypeDebugReportCallbackCreateInfo,
			Flags:       vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit),
			PfnCallback: dbgCallback,
		}, nil, &cb)
		if isError(ret) {
			unwind.Unwind()
			return nil, wrap(ret, errcode.CreateInstanceFail)
		}
		inst.debugCB = cb
		unwind.Push(func() { vk.DestroyDebugReportCallback(handle, cb, nil) })
	}

	surface, err := win.CreateVulkanSurface(handle)
	if err != nil {
		unwind.Unwind()
		return nil, errcode.New(errcode.CreateSurfaceFail, err)
	}
	inst.surface = surface
	unwind.Push(func() { vk.DestroySurface(handle, surface, nil) })

	selected, err := selectPhysicalDevice(handle, surface)
	if err != nil {
		unwind.Unwind()
		return nil, err
	}
	inst.Selected = selected

	unwind.Release()
	return inst, nil
}

// Handle returns the raw Vulkan instance.
func (i *Instance) Handle() vk.Instance { return i.handle }

// Surface returns the window surface created alongside the instance.
func (i *Instance) Surface() vk.Surface { return i.surface }

// Destroy tears down the surface, debug callback, and instance, in
// reverse creation order.
func (i *Instance) Destroy() {
	if i.surface != vk.NullSurface {
		vk.DestroySurface(i.handle, i.surface, nil)
	}
	if i.debugCB != vk.NullDebugReportCallback {
		vk.DestroyDebugReportCallback(i.handle, i.debugCB, nil)
	}
	if i.handle != nil {
		vk.DestroyInstance(i.handle, nil)
	}
}

func selectPhysicalDevice(instance vk.Instance, surface vk.Surface) (DeviceInfo, error) {
	var count uint32
	ret := vk.EnumeratePhysicalDevices(instance, &count, nil)
	if isError(ret) {
		return DeviceInfo{}, wrap(ret, errcode.EnumeratePhysicalDevicesFail)
	}
	if count == 0 {
		return DeviceInfo{}, errcode.New(errcode.NoPhysicalDevices, nil)
	}
	gpus := make([]vk.PhysicalDevice, count)
	ret = vk.EnumeratePhysicalDevices(instance, &count, gpus)
	if isError(ret) {
		return DeviceInfo{}, wrap(ret, errcode.EnumeratePhysicalDevicesFail)
	}

	var best DeviceInfo
	bestScore := -1
	for _, gpu := range gpus {
		info, ok := scoreDevice(gpu, surface)
		if !ok {
			continue
		}
		if info.Score > bestScore {
			best = info
			bestScore = info.Score
		}
	}
	if bestScore < 0 {
		return DeviceInfo{}, errcode.New(errcode.NoSuitablePhysicalDevice, nil)
	}
	return best, nil
}

// scoreDevice gates eligibility on the hard requirements (graphics +
// present families, >=1 surface format, >=1 present mode); device-type
// and feature bonuses make up the score that ranks eligible devices.
func scoreDevice(gpu vk.PhysicalDevice, surface vk.Surface) (DeviceInfo, bool) {
	var props vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(gpu, &props)
	props.Deref()

	var features vk.PhysicalDeviceFeatures
	vk.GetPhysicalDeviceFeatures(gpu, &features)
	features.Deref()

	var memProps vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(gpu, &memProps)
	memProps.Deref()

	var formatCount uint32
	vk.GetPhysicalDeviceSurfaceFormats(gpu, surface, &formatCount, nil)
	var presentModeCount uint32
	vk.GetPhysicalDeviceSurfacePresentModes(gpu, surface, &presentModeCount, nil)
	if formatCount == 0 || presentModeCount == 0 {
		return DeviceInfo{}, false
	}

	families := findQueueFamilies(gpu, surface)
	gfx, hasGfx := families[QueueGraphics]
	pres, hasPres := families[QueuePresent]
	if !hasGfx || !hasPres {
		return DeviceInfo{}, false
	}
	_ = gfx
	_ = pres

	score := 0
	switch props.DeviceType {
	case vk.PhysicalDeviceTypeDiscreteGpu:
		score += 10
	case vk.PhysicalDeviceTypeIntegratedGpu:
		score += 5
	case vk.PhysicalDeviceTypeVirtualGpu:
		score += 2
	case vk.PhysicalDeviceTypeCpu:
		score += 1
	}
	if features.GeometryShader != vk.False {
		score += 4
	}
	if features.TessellationShader != vk.False {
		score += 3
	}
	if features.SamplerAnisotropy != vk.False {
		score += 3
	} else {
		score -= 3
	}

	return DeviceInfo{
		Physical:   gpu,
		Properties: props,
		Features:   features,
		MemProps:   memProps,
		Families:   families,
		Score:      score,
	}, true
}

// findQueueFamilies walks the device's queue-family properties, tagging
// the first family that supports graphics and the first that supports
// presentation to surface. When the same family covers both, it is
// recorded under one createIndex (merged queue-create-info).
func findQueueFamilies(gpu vk.PhysicalDevice, surface vk.Surface) map[QueueFamilyKind]QueueFamilyInfo {
	var count uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(gpu, &count, nil)
	props := make([]vk.QueueFamilyProperties, count)
	vk.GetPhysicalDeviceQueueFamilyProperties(gpu, &count, props)

	out := make(map[QueueFamilyKind]QueueFamilyInfo)
	createIndex := 0
	for i := uint32(0); i < count; i++ {
		props[i].Deref()
		flags := props[i].QueueFlags

		var supportsPresent vk.Bool32
		vk.GetPhysicalDeviceSurfaceSupport(gpu, i, surface, &supportsPresent)

		gotGraphics := flags&vk.QueueFlags(vk.QueueGraphicsBit) != 0
		gotCompute := flags&vk.QueueFlags(vk.QueueComputeBit) != 0
		gotPresent := supportsPresent.B()

		if gotGraphics {
			if _, ok := out[QueueGraphics]; !ok {
				out[QueueGraphics] = QueueFamilyInfo{Index: i, AvailableCount: props[i].QueueCount, RequestedCount: 1, CreateIndex: createIndex}
				createIndex++
			}
		}
		if gotPresent {
			if existing, ok := out[QueueGraphics]; ok && existing.Index == i {
				out[QueuePresent] = QueueFamilyInfo{Index: i, AvailableCount: props[i].QueueCount, RequestedCount: existing.RequestedCount, CreateIndex: existing.CreateIndex}
			} else if _, ok := out[QueuePresent]; !ok {
				out[QueuePresent] = QueueFamilyInfo{Index: i, AvailableCount: props[i].QueueCount, RequestedCount: 1, CreateIndex: createIndex}
				createIndex++
			}
		}
		if gotCompute {
			if _, ok := out[QueueCompute]; !ok {
				out[QueueCompute] = QueueFamilyInfo{Index: i, AvailableCount: props[i].QueueCount, RequestedCount: 1, CreateIndex: createIndex}
				createIndex++
			}
		}
	}
	if t, ok := out[QueueGraphics]; ok {
		out[QueueTransfer] = t
	}
	return out
}

func mergeUnique(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, s := range list {
			if !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	return out
}

func dbgCallback(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType,
	object uint64, location uint, messageCode int32, pLayerPrefix string,
	pMessage string, pUserData unsafe.Pointer) vk.Bool32 {
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		log.Printf("vulkan ERROR [%s] %d: %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit) != 0:
		log.Printf("vulkan WARNING [%s] %d: %s", pLayerPrefix, messageCode, pMessage)
	default:
		log.Printf("vulkan [%s] %d: %s", pLayerPrefix, messageCode, pMessage)
	}
	return vk.Bool32(vk.False)
}
