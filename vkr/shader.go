package vkr

import (
	vk "github.com/vulkan-go/vulkan"

	"github.com/andewx/vkforge/errcode"
)

// LoadShaderModule creates a vk.ShaderModule from a raw SPIR-V byte
// blob; the inventory owns file I/O, so the module loader only ever
// sees bytes.
func LoadShaderModule(device vk.Device, code []byte) (vk.ShaderModule, error) {
	words := sliceUint32(code)
	var module vk.ShaderModule
	ret := vk.CreateShaderModule(device, &vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(code)),
		PCode:    words,
	}, nil, &module)
	if isError(ret) {
		return vk.NullShaderModule, wrap(ret, errcode.CreateShaderModuleFail)
	}
	return module, nil
}

// FindRequiredMemoryType walks memProps for a type whose bit is set in
// typeBits and whose property flags satisfy required.
func FindRequiredMemoryType(memProps vk.PhysicalDeviceMemoryProperties, typeBits vk.MemoryPropertyFlagBits, required vk.MemoryPropertyFlagBits) (uint32, bool) {
	memProps.Deref()
	for i := uint32(0); i < memProps.MemoryTypeCount; i++ {
		memProps.MemoryTypes[i].Deref()
		bit := vk.MemoryPropertyFlagBits(1 << i)
		if typeBits&bit == 0 {
			continue
		}
		flags := vk.MemoryPropertyFlagBits(memProps.MemoryTypes[i].PropertyFlags)
		if flags&required == required {
			return i, true
		}
	}
	return 0, false
}

// vkBool converts a Go bool to the vk.Bool32 VK_TRUE/VK_FALSE sentinels.
func vkBool(b bool) vk.Bool32 {
	if b {
		return vk.True
	}
	return vk.False
}
