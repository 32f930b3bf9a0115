// Package errcode collects the error taxonomy shared by every layer of the
// engine: platform/file lifecycle, Vulkan init, Vulkan object creation,
// command recording/submission, and per-frame rendering. Everything returns
// one of these codes (wrapped in an *Error) instead of raising a panic, the
// same discipline the C core followed with plain integer result codes.
package errcode

// Code identifies a failure kind. Zero value is always "no error".
type Code int

const (
	NoError Code = iota

	// Platform
	PlatformInitFail
	PlatformRunFrameFail
	PlatformTerminateFail

	// File
	FileOpenFail
	FileSeekFail
	FileTellFail
	FileShortRead
	FileShortWrite
	FileGetCwdFail

	// Vulkan init
	CreateInstanceFail
	CreateSurfaceFail
	EnumeratePhysicalDevicesFail
	NoPhysicalDevices
	NoSuitablePhysicalDevice
	CreateDeviceFail
	CreateAllocatorFail
	CreateSemaphoreFail
	CreateFenceFail
	CreateSwapchainFail
	GetSwapchainImagesFail
	CreateImageViewFail

	// Vulkan objects
	CreateShaderModuleFail
	InitDescriptorSetLayoutFail
	CreatePipelineLayoutFail
	CreateRenderPassFail
	CreatePipelineFail
	CreateFramebufferFail
	CreateCommandPoolFail
	CreateCommandBufferFail
	CreateDescriptorPoolFail
	CreateDescriptorSetsFail
	CreateSamplerFail
	CreateBufferFail
	CreateImageFail

	// Recording/submit
	BeginCmdBufferFail
	EndCmdBufferFail
	CopyBufferBeginFail
	CopyBufferSubmitFail
	CopyBufferWaitIdleFail
	TransitionImageUnsupportedLayout

	// Rendering
	LoadShadersFail
	AcquireImageFail
	InitImageFail
	UploadImageFail
	InitImageViewFail
	AddImageFail
	WaitFenceFail
	ResetFenceFail
	SubmitQueueFail
	PresentFail
	InitSamplerFail

	// Out of memory, shared by mem and vkr allocators.
	OutOfMemory
)

var names = map[Code]string{
	NoError:                          "no_error",
	PlatformInitFail:                 "platform_init_fail",
	PlatformRunFrameFail:             "platform_run_frame_fail",
	PlatformTerminateFail:            "platform_terminate_fail",
	FileOpenFail:                     "file_open_fail",
	FileSeekFail:                     "file_seek_fail",
	FileTellFail:                     "file_tell_fail",
	FileShortRead:                    "file_short_read",
	FileShortWrite:                   "file_short_write",
	FileGetCwdFail:                   "file_get_cwd_fail",
	CreateInstanceFail:               "create_instance_fail",
	CreateSurfaceFail:                "create_surface_fail",
	EnumeratePhysicalDevicesFail:     "enumerate_physical_devices_fail",
	NoPhysicalDevices:                "no_physical_devices",
	NoSuitablePhysicalDevice:         "no_suitable_physical_device",
	CreateDeviceFail:                 "create_device_fail",
	CreateAllocatorFail:              "create_allocator_fail",
	CreateSemaphoreFail:              "create_semaphore_fail",
	CreateFenceFail:                  "create_fence_fail",
	CreateSwapchainFail:              "create_swapchain_fail",
	GetSwapchainImagesFail:           "get_swapchain_images_fail",
	CreateImageViewFail:              "create_image_view_fail",
	CreateShaderModuleFail:           "create_shader_module_fail",
	InitDescriptorSetLayoutFail:      "init_descriptor_set_layout_fail",
	CreatePipelineLayoutFail:         "create_pipeline_layout_fail",
	CreateRenderPassFail:             "create_render_pass_fail",
	CreatePipelineFail:               "create_pipeline_fail",
	CreateFramebufferFail:            "create_framebuffer_fail",
	CreateCommandPoolFail:            "create_command_pool_fail",
	CreateCommandBufferFail:          "create_command_buffer_fail",
	CreateDescriptorPoolFail:         "create_descriptor_pool_fail",
	CreateDescriptorSetsFail:         "create_descriptor_sets_fail",
	CreateSamplerFail:                "create_sampler_fail",
	CreateBufferFail:                 "create_buffer_fail",
	CreateImageFail:                  "create_image_fail",
	BeginCmdBufferFail:               "begin_cmd_buffer_fail",
	EndCmdBufferFail:                 "end_cmd_buffer_fail",
	CopyBufferBeginFail:              "copy_buffer_begin_fail",
	CopyBufferSubmitFail:             "copy_buffer_submit_fail",
	CopyBufferWaitIdleFail:           "copy_buffer_wait_idle_fail",
	TransitionImageUnsupportedLayout: "transition_image_unsupported_layout",
	LoadShadersFail:                  "load_shaders_fail",
	AcquireImageFail:                 "acquire_image_fail",
	InitImageFail:                    "init_image_fail",
	UploadImageFail:                  "upload_image_fail",
	InitImageViewFail:                "init_image_view_fail",
	AddImageFail:                     "add_image_fail",
	WaitFenceFail:                    "wait_fence_fail",
	ResetFenceFail:                   "reset_fence_fail",
	SubmitQueueFail:                  "submit_queue_fail",
	PresentFail:                      "present_fail",
	InitSamplerFail:                  "init_sampler_fail",
	OutOfMemory:                      "out_of_memory",
}

func (c Code) String() string {
	if s, ok := names[c]; ok {
		return s
	}
	return "unknown_error"
}
