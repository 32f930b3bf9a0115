package vkr

import vk "github.com/vulkan-go/vulkan"

// Window is the platform-window collaborator contract: a reference
// implementation (GLFW-backed) lives in package platformglfw, but the
// selector, swapchain and frame scheduler only ever depend on this
// interface.
type Window interface {
	PixelSize() (width, height uint32)
	ScreenSize() (width, height uint32)
	ShouldClose() bool
	FramebufferResizedThisFrame() bool
	RequiredInstanceExtensions() []string
	CreateVulkanSurface(instance vk.Instance) (vk.Surface, error)
	Destroy()
}
