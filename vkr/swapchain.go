package vkr

import (
	vk "github.com/vulkan-go/vulkan"

	"github.com/andewx/vkforge/errcode"
)

// Swapchain owns the swapchain, its images, and one color image view
// per image. Framebuffers are built against it but owned by the caller,
// so swapchain recreation and framebuffer lifetime stay independent.
type Swapchain struct {
	inst   *Instance
	dev    *Device
	handle vk.Swapchain

	Format vk.Format
	Extent vk.Extent2D

	Images []vk.Image
	Views  []vk.ImageView
}

// NewSwapchain creates a swapchain sized to win's current pixel size:
// BGRA-SRGB preferred, mailbox over fifo, extent clamped to the surface
// capabilities, concurrent sharing only when the graphics and present
// families differ.
func NewSwapchain(inst *Instance, dev *Device, win Window, old vk.Swapchain) (*Swapchain, error) {
	gpu := inst.Selected.Physical
	surface := inst.Surface()

	var caps vk.SurfaceCapabilities
	ret := vk.GetPhysicalDeviceSurfaceCapabilities(gpu, surface, &caps)
	if isError(ret) {
		return nil, wrap(ret, errcode.CreateSwapchainFail)
	}
	caps.Deref()
	caps.CurrentExtent.Deref()
	caps.MinImageExtent.Deref()
	caps.MaxImageExtent.Deref()

	var formatCount uint32
	vk.GetPhysicalDeviceSurfaceFormats(gpu, surface, &formatCount, nil)
	formats := make([]vk.SurfaceFormat, formatCount)
	vk.GetPhysicalDeviceSurfaceFormats(gpu, surface, &formatCount, formats)
	format := pickSurfaceFormat(formats)

	var modeCount uint32
	vk.GetPhysicalDeviceSurfacePresentModes(gpu, surface, &modeCount, nil)
	modes := make([]vk.PresentMode, modeCount)
	vk.GetPhysicalDeviceSurfacePresentModes(gpu, surface, &modeCount, modes)
	presentMode := pickPresentMode(modes)

	extent := pickExtent(caps, win)

	imageCount := caps.MinImageCount + 1
	if caps.MaxImageCount > 0 && imageCount > caps.MaxImageCount {
		imageCount = caps.MaxImageCount
	}

	gfxIdx := dev.FamilyIndex(QueueGraphics)
	presIdx := dev.FamilyIndex(QueuePresent)
	sharingMode := vk.SharingModeExclusive
	var familyIndices []uint32
	if gfxIdx != presIdx {
		sharingMode = vk.SharingModeConcurrent
		familyIndices = []uint32{gfxIdx, presIdx}
	}

	var handle vk.Swapchain
	ret = vk.CreateSwapchain(dev.Handle(), &vk.SwapchainCreateInfo{
		SType:                 vk.StructureTypeSwapchainCreateInfo,
		Surface:               surface,
		MinImageCount:         imageCount,
		ImageFormat:           format.Format,
		ImageColorSpace:       format.ColorSpace,
		ImageExtent:           extent,
		ImageArrayLayers:      1,
		ImageUsage:            vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		ImageSharingMode:      sharingMode,
		QueueFamilyIndexCount: uint32(len(familyIndices)),
		PQueueFamilyIndices:   familyIndices,
		PreTransform:          caps.CurrentTransform,
		CompositeAlpha:        vk.CompositeAlphaOpaqueBit,
		PresentMode:           presentMode,
		Clipped:               vk.True,
		OldSwapchain:          old,
	}, nil, &handle)
	if isError(ret) {
		return nil, wrap(ret, errcode.CreateSwapchainFail)
	}

	sc := &Swapchain{inst: inst, dev: dev, handle: handle, Format: format.Format, Extent: extent}

	var imgCount uint32
	ret = vk.GetSwapchainImages(dev.Handle(), handle, &imgCount, nil)
	if isError(ret) {
		vk.DestroySwapchain(dev.Handle(), handle, nil)
		return nil, wrap(ret, errcode.GetSwapchainImagesFail)
	}
	images := make([]vk.Image, imgCount)
	ret = vk.GetSwapchainImages(dev.Handle(), handle, &imgCount, images)
	if isError(ret) {
		vk.DestroySwapchain(dev.Handle(), handle, nil)
		return nil, wrap(ret, errcode.GetSwapchainImagesFail)
	}
	sc.Images = images

	for _, img := range images {
		view, err := createImageView(dev.Handle(), img, format.Format, vk.ImageAspectFlags(vk.ImageAspectColorBit))
		if err != nil {
			sc.Destroy()
			return nil, err
		}
		sc.Views = append(sc.Views, view)
	}
	return sc, nil
}

// Handle returns the raw swapchain.
func (s *Swapchain) Handle() vk.Swapchain { return s.handle }

// Destroy releases the image views and the swapchain. Swapchain images
// themselves are owned by the swapchain and need no explicit destroy.
func (s *Swapchain) Destroy() {
	for _, v := range s.Views {
		vk.DestroyImageView(s.dev.Handle(), v, nil)
	}
	if s.handle != vk.NullSwapchain {
		vk.DestroySwapchain(s.dev.Handle(), s.handle, nil)
	}
}

// createImageView builds a single 2D image view; the swapchain's color
// views are made with it.
func createImageView(device vk.Device, image vk.Image, format vk.Format, aspect vk.ImageAspectFlags) (vk.ImageView, error) {
	var view vk.ImageView
	ret := vk.CreateImageView(device, &vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    image,
		ViewType: vk.ImageViewType2d,
		Format:   format,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: aspect,
			LevelCount: 1,
			LayerCount: 1,
		},
	}, nil, &view)
	if isError(ret) {
		return vk.NullImageView, wrap(ret, errcode.CreateImageViewFail)
	}
	return view, nil
}

// BuildFramebuffers emits one framebuffer per swapchain image against
// renderPass, appending extra (e.g. depth) attachments after each
// image's color view.
func (s *Swapchain) BuildFramebuffers(renderPass vk.RenderPass, extra []vk.ImageView) ([]vk.Framebuffer, error) {
	out := make([]vk.Framebuffer, 0, len(s.Views))
	for _, colorView := range s.Views {
		attachments := append([]vk.ImageView{colorView}, extra...)
		var fb vk.Framebuffer
		ret := vk.CreateFramebuffer(s.dev.Handle(), &vk.FramebufferCreateInfo{
			SType:           vk.StructureTypeFramebufferCreateInfo,
			RenderPass:      renderPass,
			AttachmentCount: uint32(len(attachments)),
			PAttachments:    attachments,
			Width:           s.Extent.Width,
			Height:          s.Extent.Height,
			Layers:          1,
		}, nil, &fb)
		if isError(ret) {
			for _, b := range out {
				vk.DestroyFramebuffer(s.dev.Handle(), b, nil)
			}
			return nil, wrap(ret, errcode.CreateFramebufferFail)
		}
		out = append(out, fb)
	}
	return out, nil
}

func pickSurfaceFormat(formats []vk.SurfaceFormat) vk.SurfaceFormat {
	for _, f := range formats {
		f.Deref()
		if f.Format == vk.FormatB8g8r8a8Srgb && f.ColorSpace == vk.ColorSpaceSrgbNonlinear {
			return f
		}
	}
	if len(formats) > 0 {
		formats[0].Deref()
		return formats[0]
	}
	return vk.SurfaceFormat{Format: vk.FormatB8g8r8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear}
}

func pickPresentMode(modes []vk.PresentMode) vk.PresentMode {
	for _, m := range modes {
		if m == vk.PresentModeMailbox {
			return m
		}
	}
	return vk.PresentModeFifo
}

func pickExtent(caps vk.SurfaceCapabilities, win Window) vk.Extent2D {
	if caps.CurrentExtent.Width != vk.MaxUint32 {
		return caps.CurrentExtent
	}
	w, h := win.PixelSize()
	clampU32 := func(v, lo, hi uint32) uint32 {
		if v < lo {
			return lo
		}
		if v > hi {
			return hi
		}
		return v
	}
	return vk.Extent2D{
		Width:  clampU32(w, caps.MinImageExtent.Width, caps.MaxImageExtent.Width),
		Height: clampU32(h, caps.MinImageExtent.Height, caps.MaxImageExtent.Height),
	}
}
