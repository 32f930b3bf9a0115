// Package vkr is the core Vulkan abstraction layer: host/GPU allocation
// bridges, scored instance and device selection, swapchain and
// framebuffer lifecycle, a typed resource inventory, and the transfer
// service.
package vkr

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"

	"github.com/andewx/vkforge/errcode"
)

// isError reports whether ret is anything other than vk.Success.
func isError(ret vk.Result) bool { return ret != vk.Success }

// wrap converts a vk.Result into an *errcode.Error of the given code, or
// nil on success. The vk.Result is rendered to a string before crossing
// into errcode, since errcode must not import the Vulkan package.
func wrap(ret vk.Result, code errcode.Code) error {
	if !isError(ret) {
		return nil
	}
	return errcode.New(code, fmt.Errorf("vk.Result(%d)", ret))
}

// safeString null-terminates s for passing into a Vulkan create-info.
func safeString(s string) string {
	if len(s) == 0 || s[len(s)-1] != 0 {
		return s + "\x00"
	}
	return s
}

func safeStrings(list []string) []string {
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = safeString(s)
	}
	return out
}

// sliceUint32 reinterprets a SPIR-V byte blob as the uint32 words
// Vulkan expects for VkShaderModuleCreateInfo.pCode.
func sliceUint32(data []byte) []uint32 {
	const bytesPerElement = 4
	out := make([]uint32, len(data)/bytesPerElement)
	for i := range out {
		out[i] = uint32(data[i*4]) | uint32(data[i*4+1])<<8 |
			uint32(data[i*4+2])<<16 | uint32(data[i*4+3])<<24
	}
	return out
}
