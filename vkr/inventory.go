package vkr

import (
	vk "github.com/vulkan-go/vulkan"

	"github.com/andewx/vkforge/config"
	"github.com/andewx/vkforge/errcode"
	"github.com/andewx/vkforge/fileio"
)

// Inventory is the indexed-array resource store: each add-operation
// appends and returns a stable slot index; terminate destroys the
// underlying Vulkan object and zeroes the slot so a stale index reads
// back the zero value rather than a dangling handle.
type Inventory struct {
	dev  vk.Device
	gpu  *GPUAllocator
	host *HostAllocator

	buffers      []bufferSlot
	images       []imageSlot
	views        []vk.ImageView
	samplers     []vk.Sampler
	renderPasses []vk.RenderPass
	pipelines    []pipelineSlot
	framebuffers []vk.Framebuffer
}

type bufferSlot struct {
	Buffer vk.Buffer
	Memory vk.DeviceMemory
	Offset uint64
	Size   uint64

	alloc  GPUAlloc
	pooled bool
}

type imageSlot struct {
	Image  vk.Image
	Memory vk.DeviceMemory
	Format vk.Format
	Extent vk.Extent3D

	alloc  GPUAlloc
	pooled bool
}

type pipelineSlot struct {
	Layout     vk.PipelineLayout
	SetLayouts []vk.DescriptorSetLayout
	Pipeline   vk.Pipeline
}

// NewInventory builds an empty Inventory against dev. Buffer and image
// memory is allocated dedicated (one vk.DeviceMemory per resource);
// use NewInventoryWithAllocator to route it through the GPU-alloc
// bridge instead.
func NewInventory(dev vk.Device) *Inventory { return &Inventory{dev: dev} }

// NewInventoryWithAllocator builds an Inventory whose buffer and image
// memory is suballocated through gpu, so every device-local resource
// the renderer creates is tracked by the bridge's total-size counter,
// and whose shader blobs are staged through host's object scope so
// pipeline creation shows up in the host-allocation accounting.
func NewInventoryWithAllocator(dev vk.Device, gpu *GPUAllocator, host *HostAllocator) *Inventory {
	return &Inventory{dev: dev, gpu: gpu, host: host}
}

// AddBuffer creates a vk.Buffer of size/usage, allocates and binds
// memory satisfying memFlags, and appends it to the buffer array.
func (inv *Inventory) AddBuffer(memProps vk.PhysicalDeviceMemoryProperties, size uint64, usage vk.BufferUsageFlagBits, memFlags vk.MemoryPropertyFlagBits) (int, error) {
	var buf vk.Buffer
	ret := vk.CreateBuffer(inv.dev, &vk.BufferCreateInfo{
		SType: vk.StructureTypeBufferCreateInfo,
		Size:  vk.DeviceSize(size),
		Usage: vk.BufferUsageFlags(usage),
	}, nil, &buf)
	if isError(ret) {
		return -1, wrap(ret, errcode.CreateBufferFail)
	}

	var reqs vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(inv.dev, buf, &reqs)
	reqs.Deref()

	typeIdx, ok := FindRequiredMemoryType(memProps, vk.MemoryPropertyFlagBits(reqs.MemoryTypeBits), memFlags)
	if !ok {
		vk.DestroyBuffer(inv.dev, buf, nil)
		return -1, errcode.New(errcode.CreateBufferFail, nil)
	}

	slot := bufferSlot{Buffer: buf, Size: size}
	if inv.gpu != nil {
		alloc, err := inv.gpu.Alloc(typeIdx, uint64(reqs.Size), uint64(reqs.Alignment))
		if err != nil {
			vk.DestroyBuffer(inv.dev, buf, nil)
			return -1, err
		}
		slot.alloc = alloc
		slot.pooled = true
		slot.Memory = alloc.Memory
		slot.Offset = alloc.Offset
	} else {
		var mem vk.DeviceMemory
		ret = vk.AllocateMemory(inv.dev, &vk.MemoryAllocateInfo{
			SType:           vk.StructureTypeMemoryAllocateInfo,
			AllocationSize:  reqs.Size,
			MemoryTypeIndex: typeIdx,
		}, nil, &mem)
		if isError(ret) {
			vk.DestroyBuffer(inv.dev, buf, nil)
			return -1, wrap(ret, errcode.CreateBufferFail)
		}
		slot.Memory = mem
	}
	vk.BindBufferMemory(inv.dev, buf, slot.Memory, vk.DeviceSize(slot.Offset))

	inv.buffers = append(inv.buffers, slot)
	return len(inv.buffers) - 1, nil
}

// Buffer returns the slot at index.
func (inv *Inventory) Buffer(index int) bufferSlot { return inv.buffers[index] }

// TerminateBuffer destroys the buffer and memory at index and zeroes the
// slot.
func (inv *Inventory) TerminateBuffer(index int) {
	b := inv.buffers[index]
	vk.DestroyBuffer(inv.dev, b.Buffer, nil)
	if b.pooled {
		inv.gpu.Free(b.alloc)
	} else {
		vk.FreeMemory(inv.dev, b.Memory, nil)
	}
	inv.buffers[index] = bufferSlot{}
}

// AddImage creates a 2D image + memory, returning its inventory index.
func (inv *Inventory) AddImage(memProps vk.PhysicalDeviceMemoryProperties, extent vk.Extent3D, format vk.Format, usage vk.ImageUsageFlagBits) (int, error) {
	var img vk.Image
	ret := vk.CreateImage(inv.dev, &vk.ImageCreateInfo{
		SType:         vk.StructureTypeImageCreateInfo,
		ImageType:     vk.ImageType2d,
		Format:        format,
		Extent:        extent,
		MipLevels:     1,
		ArrayLayers:   1,
		Samples:       vk.SampleCount1Bit,
		Tiling:        vk.ImageTilingOptimal,
		Usage:         vk.ImageUsageFlags(usage),
		SharingMode:   vk.SharingModeExclusive,
		InitialLayout: vk.ImageLayoutUndefined,
	}, nil, &img)
	if isError(ret) {
		return -1, wrap(ret, errcode.CreateImageFail)
	}

	var reqs vk.MemoryRequirements
	vk.GetImageMemoryRequirements(inv.dev, img, &reqs)
	reqs.Deref()
	typeIdx, ok := FindRequiredMemoryType(memProps, vk.MemoryPropertyFlagBits(reqs.MemoryTypeBits), vk.MemoryPropertyDeviceLocalBit)
	if !ok {
		vk.DestroyImage(inv.dev, img, nil)
		return -1, errcode.New(errcode.CreateImageFail, nil)
	}

	slot := imageSlot{Image: img, Format: format, Extent: extent}
	var bindOffset uint64
	if inv.gpu != nil {
		alloc, err := inv.gpu.Alloc(typeIdx, uint64(reqs.Size), uint64(reqs.Alignment))
		if err != nil {
			vk.DestroyImage(inv.dev, img, nil)
			return -1, err
		}
		slot.alloc = alloc
		slot.pooled = true
		slot.Memory = alloc.Memory
		bindOffset = alloc.Offset
	} else {
		var mem vk.DeviceMemory
		ret = vk.AllocateMemory(inv.dev, &vk.MemoryAllocateInfo{
			SType:           vk.StructureTypeMemoryAllocateInfo,
			AllocationSize:  reqs.Size,
			MemoryTypeIndex: typeIdx,
		}, nil, &mem)
		if isError(ret) {
			vk.DestroyImage(inv.dev, img, nil)
			return -1, wrap(ret, errcode.CreateImageFail)
		}
		slot.Memory = mem
	}
	vk.BindImageMemory(inv.dev, img, slot.Memory, vk.DeviceSize(bindOffset))

	inv.images = append(inv.images, slot)
	return len(inv.images) - 1, nil
}

// Image returns the slot at index.
func (inv *Inventory) Image(index int) imageSlot { return inv.images[index] }

// TerminateImage destroys the image + memory at index.
func (inv *Inventory) TerminateImage(index int) {
	i := inv.images[index]
	vk.DestroyImage(inv.dev, i.Image, nil)
	if i.pooled {
		inv.gpu.Free(i.alloc)
	} else {
		vk.FreeMemory(inv.dev, i.Memory, nil)
	}
	inv.images[index] = imageSlot{}
}

// AddImageView creates a view over image/format/aspect and appends it.
func (inv *Inventory) AddImageView(image vk.Image, format vk.Format, aspect vk.ImageAspectFlags) (int, error) {
	view, err := createImageView(inv.dev, image, format, aspect)
	if err != nil {
		return -1, err
	}
	inv.views = append(inv.views, view)
	return len(inv.views) - 1, nil
}

// View returns the view at index.
func (inv *Inventory) View(index int) vk.ImageView { return inv.views[index] }

// TerminateView destroys the view at index.
func (inv *Inventory) TerminateView(index int) {
	vk.DestroyImageView(inv.dev, inv.views[index], nil)
	inv.views[index] = vk.NullImageView
}

// AddSampler creates a sampler per cfg and appends it.
func (inv *Inventory) AddSampler(cfg vk.SamplerCreateInfo) (int, error) {
	cfg.SType = vk.StructureTypeSamplerCreateInfo
	var s vk.Sampler
	ret := vk.CreateSampler(inv.dev, &cfg, nil, &s)
	if isError(ret) {
		return -1, wrap(ret, errcode.CreateSamplerFail)
	}
	inv.samplers = append(inv.samplers, s)
	return len(inv.samplers) - 1, nil
}

// Sampler returns the sampler at index.
func (inv *Inventory) Sampler(index int) vk.Sampler { return inv.samplers[index] }

// AddRenderPass creates a single-subpass render pass with one color
// attachment and an optional depth attachment.
func (inv *Inventory) AddRenderPass(colorFormat vk.Format, depthFormat vk.Format, hasDepth bool) (int, error) {
	attachments := []vk.AttachmentDescription{{
		Format:         colorFormat,
		Samples:        vk.SampleCount1Bit,
		LoadOp:         vk.AttachmentLoadOpClear,
		StoreOp:        vk.AttachmentStoreOpStore,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayoutUndefined,
		FinalLayout:    vk.ImageLayoutPresentSrc,
	}}
	colorRef := vk.AttachmentReference{Attachment: 0, Layout: vk.ImageLayoutColorAttachmentOptimal}
	subpass := vk.SubpassDescription{
		PipelineBindPoint:    vk.PipelineBindPointGraphics,
		ColorAttachmentCount: 1,
		PColorAttachments:    []vk.AttachmentReference{colorRef},
	}
	if hasDepth {
		attachments = append(attachments, vk.AttachmentDescription{
			Format:         depthFormat,
			Samples:        vk.SampleCount1Bit,
			LoadOp:         vk.AttachmentLoadOpClear,
			StoreOp:        vk.AttachmentStoreOpDontCare,
			StencilLoadOp:  vk.AttachmentLoadOpDontCare,
			StencilStoreOp: vk.AttachmentStoreOpDontCare,
			InitialLayout:  vk.ImageLayoutUndefined,
			FinalLayout:    vk.ImageLayoutDepthStencilAttachmentOptimal,
		})
		depthRef := vk.AttachmentReference{Attachment: 1, Layout: vk.ImageLayoutDepthStencilAttachmentOptimal}
		subpass.PDepthStencilAttachment = &depthRef
	}

	dependencies := []vk.SubpassDependency{{
		SrcSubpass:    vk.SubpassExternal,
		DstSubpass:    0,
		SrcStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		DstStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		SrcAccessMask: 0,
		DstAccessMask: vk.AccessFlags(vk.AccessColorAttachmentWriteBit),
	}}

	var rp vk.RenderPass
	ret := vk.CreateRenderPass(inv.dev, &vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
		SubpassCount:    1,
		PSubpasses:      []vk.SubpassDescription{subpass},
		DependencyCount: uint32(len(dependencies)),
		PDependencies:   dependencies,
	}, nil, &rp)
	if isError(ret) {
		return -1, wrap(ret, errcode.CreateRenderPassFail)
	}
	inv.renderPasses = append(inv.renderPasses, rp)
	return len(inv.renderPasses) - 1, nil
}

// RenderPass returns the render pass at index.
func (inv *Inventory) RenderPass(index int) vk.RenderPass { return inv.renderPasses[index] }

// TerminateRenderPass destroys the render pass at index.
func (inv *Inventory) TerminateRenderPass(index int) {
	vk.DestroyRenderPass(inv.dev, inv.renderPasses[index], nil)
	inv.renderPasses[index] = vk.NullRenderPass
}

// AddFramebuffer appends an externally-built framebuffer (produced by
// Swapchain.BuildFramebuffers) to the inventory so it shares the same
// terminate/lifecycle bookkeeping as every other resource kind.
func (inv *Inventory) AddFramebuffer(fb vk.Framebuffer) int {
	inv.framebuffers = append(inv.framebuffers, fb)
	return len(inv.framebuffers) - 1
}

// Framebuffer returns the framebuffer at index.
func (inv *Inventory) Framebuffer(index int) vk.Framebuffer { return inv.framebuffers[index] }

// TerminateFramebuffer destroys the framebuffer at index.
func (inv *Inventory) TerminateFramebuffer(index int) {
	vk.DestroyFramebuffer(inv.dev, inv.framebuffers[index], nil)
	inv.framebuffers[index] = vk.Framebuffer(vk.NullHandle)
}

// AddPipeline builds descriptor-set layouts, a pipeline layout, and a
// graphics pipeline from cfg, returning its inventory index. Every
// tunable comes from config.PipelineConfig rather than hardcoded
// demo state.
func (inv *Inventory) AddPipeline(cfg config.PipelineConfig, renderPass vk.RenderPass, bindings []DescriptorBinding, pushConstants []vk.PushConstantRange) (int, error) {
	setLayout, err := createDescriptorSetLayout(inv.dev, bindings)
	if err != nil {
		return -1, err
	}

	var layout vk.PipelineLayout
	ret := vk.CreatePipelineLayout(inv.dev, &vk.PipelineLayoutCreateInfo{
		SType:                  vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount:         1,
		PSetLayouts:            []vk.DescriptorSetLayout{setLayout},
		PushConstantRangeCount: uint32(len(pushConstants)),
		PPushConstantRanges:    pushConstants,
	}, nil, &layout)
	if isError(ret) {
		vk.DestroyDescriptorSetLayout(inv.dev, setLayout, nil)
		return -1, wrap(ret, errcode.CreatePipelineLayoutFail)
	}

	stages, modules, err := inv.buildShaderStages(cfg.Shaders)
	if err != nil {
		vk.DestroyPipelineLayout(inv.dev, layout, nil)
		vk.DestroyDescriptorSetLayout(inv.dev, setLayout, nil)
		return -1, err
	}
	defer func() {
		for _, m := range modules {
			vk.DestroyShaderModule(inv.dev, m, nil)
		}
	}()

	inputAssembly := vk.PipelineInputAssemblyStateCreateInfo{
		SType:                  vk.StructureTypePipelineInputAssemblyStateCreateInfo,
		Topology:               topologyFromName(cfg.Topology),
		PrimitiveRestartEnable: vkBool(cfg.PrimitiveRestart),
	}
	rasterizer := vk.PipelineRasterizationStateCreateInfo{
		SType:           vk.StructureTypePipelineRasterizationStateCreateInfo,
		PolygonMode:     polygonModeFromName(cfg.PolygonMode),
		CullMode:        vk.CullModeFlags(cullModeFromName(cfg.CullMode)),
		FrontFace:       frontFaceFromName(cfg.FrontFace),
		DepthBiasEnable: vkBool(cfg.DepthBiasEnable),
		LineWidth:       cfg.LineWidth,
	}
	if rasterizer.LineWidth == 0 {
		rasterizer.LineWidth = 1.0
	}
	multisample := vk.PipelineMultisampleStateCreateInfo{
		SType:                vk.StructureTypePipelineMultisampleStateCreateInfo,
		RasterizationSamples: vk.SampleCount1Bit,
	}
	depthStencil := vk.PipelineDepthStencilStateCreateInfo{
		SType:            vk.StructureTypePipelineDepthStencilStateCreateInfo,
		DepthTestEnable:  vkBool(cfg.DepthTestEnable),
		DepthWriteEnable: vkBool(cfg.DepthWriteEnable),
		DepthCompareOp:   vk.CompareOpLess,
	}
	blendAttachments := buildBlendAttachments(cfg.Blend)
	colorBlend := vk.PipelineColorBlendStateCreateInfo{
		SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
		AttachmentCount: uint32(len(blendAttachments)),
		PAttachments:    blendAttachments,
	}
	for i, c := range cfg.BlendConstants {
		if i < len(colorBlend.BlendConstants) {
			colorBlend.BlendConstants[i] = c
		}
	}
	dynamicStates := []vk.DynamicState{vk.DynamicStateViewport, vk.DynamicStateScissor}
	dynamicState := vk.PipelineDynamicStateCreateInfo{
		SType:             vk.StructureTypePipelineDynamicStateCreateInfo,
		DynamicStateCount: uint32(len(dynamicStates)),
		PDynamicStates:    dynamicStates,
	}
	viewportState := vk.PipelineViewportStateCreateInfo{
		SType:         vk.StructureTypePipelineViewportStateCreateInfo,
		ViewportCount: 1,
		ScissorCount:  1,
	}
	vertexBindings, vertexAttributes := buildVertexInput(cfg.VertexBindings, cfg.VertexAttributes)
	vertexInput := vk.PipelineVertexInputStateCreateInfo{
		SType:                           vk.StructureTypePipelineVertexInputStateCreateInfo,
		VertexBindingDescriptionCount:   uint32(len(vertexBindings)),
		PVertexBindingDescriptions:      vertexBindings,
		VertexAttributeDescriptionCount: uint32(len(vertexAttributes)),
		PVertexAttributeDescriptions:    vertexAttributes,
	}

	pipelines := make([]vk.Pipeline, 1)
	ret = vk.CreateGraphicsPipelines(inv.dev, vk.PipelineCache(vk.NullHandle), 1, []vk.GraphicsPipelineCreateInfo{{
		SType:               vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount:          uint32(len(stages)),
		PStages:             stages,
		PVertexInputState:   &vertexInput,
		PInputAssemblyState: &inputAssembly,
		PViewportState:      &viewportState,
		PRasterizationState: &rasterizer,
		PMultisampleState:   &multisample,
		PDepthStencilState:  &depthStencil,
		PColorBlendState:    &colorBlend,
		PDynamicState:       &dynamicState,
		Layout:              layout,
		RenderPass:          renderPass,
		Subpass:             0,
	}}, nil, pipelines)
	if isError(ret) {
		vk.DestroyPipelineLayout(inv.dev, layout, nil)
		vk.DestroyDescriptorSetLayout(inv.dev, setLayout, nil)
		return -1, wrap(ret, errcode.CreatePipelineFail)
	}

	inv.pipelines = append(inv.pipelines, pipelineSlot{Layout: layout, SetLayouts: []vk.DescriptorSetLayout{setLayout}, Pipeline: pipelines[0]})
	return len(inv.pipelines) - 1, nil
}

// Pipeline returns the pipeline slot at index.
func (inv *Inventory) Pipeline(index int) pipelineSlot { return inv.pipelines[index] }

// TerminatePipeline destroys the pipeline, its layout, and its set
// layouts at index.
func (inv *Inventory) TerminatePipeline(index int) {
	p := inv.pipelines[index]
	vk.DestroyPipeline(inv.dev, p.Pipeline, nil)
	vk.DestroyPipelineLayout(inv.dev, p.Layout, nil)
	for _, sl := range p.SetLayouts {
		vk.DestroyDescriptorSetLayout(inv.dev, sl, nil)
	}
	inv.pipelines[index] = pipelineSlot{}
}

// DescriptorBinding is one {binding, stage, descriptor type, count}
// descriptor-set-layout entry.
type DescriptorBinding struct {
	Binding        uint32
	Stage          vk.ShaderStageFlagBits
	DescriptorType vk.DescriptorType
	Count          uint32
}

func createDescriptorSetLayout(dev vk.Device, bindings []DescriptorBinding) (vk.DescriptorSetLayout, error) {
	vkBindings := make([]vk.DescriptorSetLayoutBinding, len(bindings))
	for i, b := range bindings {
		vkBindings[i] = vk.DescriptorSetLayoutBinding{
			Binding:         b.Binding,
			DescriptorType:  b.DescriptorType,
			DescriptorCount: b.Count,
			StageFlags:      vk.ShaderStageFlags(b.Stage),
		}
	}
	var layout vk.DescriptorSetLayout
	ret := vk.CreateDescriptorSetLayout(dev, &vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: uint32(len(vkBindings)),
		PBindings:    vkBindings,
	}, nil, &layout)
	if isError(ret) {
		return vk.DescriptorSetLayout(vk.NullHandle), wrap(ret, errcode.InitDescriptorSetLayoutFail)
	}
	return layout, nil
}

// readShaderBlob loads path's bytes, staging them through the host
// bridge's object scope when one is wired so shader loading shows up
// in the per-scope allocation accounting. The release closure returns
// the staging block; call it once the module has been created (the
// SPIR-V words are copied during creation).
func (inv *Inventory) readShaderBlob(path string) ([]byte, func(), error) {
	if inv.host == nil {
		data, err := fileio.ReadAll(path, 0)
		return data, func() {}, err
	}
	size, err := fileio.Size(path)
	if err != nil {
		return nil, nil, err
	}
	blk, err := inv.host.Alloc(uint64(size), 8, ScopeObject)
	if err != nil {
		return nil, nil, err
	}
	buf := inv.host.Payload(blk, ScopeObject)
	if err := fileio.Read(path, buf, 0); err != nil {
		_ = inv.host.Free(blk, ScopeObject)
		return nil, nil, err
	}
	return buf, func() { _ = inv.host.Free(blk, ScopeObject) }, nil
}

func (inv *Inventory) buildShaderStages(stages []config.ShaderStageConfig) ([]vk.PipelineShaderStageCreateInfo, []vk.ShaderModule, error) {
	out := make([]vk.PipelineShaderStageCreateInfo, 0, len(stages))
	modules := make([]vk.ShaderModule, 0, len(stages))
	for _, st := range stages {
		data, release, err := inv.readShaderBlob(st.Path)
		if err != nil {
			return nil, modules, errcode.New(errcode.LoadShadersFail, err)
		}
		module, err := LoadShaderModule(inv.dev, data)
		release()
		if err != nil {
			return nil, modules, err
		}
		modules = append(modules, module)
		out = append(out, vk.PipelineShaderStageCreateInfo{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  shaderStageFromName(st.Stage),
			Module: module,
			PName:  safeString(st.EntryPoint),
		})
	}
	return out, modules, nil
}

func buildVertexInput(bindingCfg []config.VertexBindingConfig, attrCfg []config.VertexAttributeConfig) ([]vk.VertexInputBindingDescription, []vk.VertexInputAttributeDescription) {
	bindings := make([]vk.VertexInputBindingDescription, len(bindingCfg))
	for i, b := range bindingCfg {
		rate := vk.VertexInputRateVertex
		if b.PerInstance {
			rate = vk.VertexInputRateInstance
		}
		bindings[i] = vk.VertexInputBindingDescription{
			Binding:   b.Binding,
			Stride:    b.Stride,
			InputRate: rate,
		}
	}
	attributes := make([]vk.VertexInputAttributeDescription, len(attrCfg))
	for i, a := range attrCfg {
		attributes[i] = vk.VertexInputAttributeDescription{
			Location: a.Location,
			Binding:  a.Binding,
			Format:   vertexFormatFromName(a.Format),
			Offset:   a.Offset,
		}
	}
	return bindings, attributes
}

// buildBlendAttachments converts the blend section into attachment
// states, defaulting to one write-all, blend-off attachment when the
// section is empty (every pipeline needs at least one for the color
// render pass).
func buildBlendAttachments(cfg []config.BlendConfig) []vk.PipelineColorBlendAttachmentState {
	writeAll := vk.ColorComponentFlags(vk.ColorComponentRBit | vk.ColorComponentGBit | vk.ColorComponentBBit | vk.ColorComponentABit)
	if len(cfg) == 0 {
		return []vk.PipelineColorBlendAttachmentState{{ColorWriteMask: writeAll}}
	}
	out := make([]vk.PipelineColorBlendAttachmentState, len(cfg))
	for i, b := range cfg {
		out[i] = vk.PipelineColorBlendAttachmentState{
			BlendEnable:         vkBool(b.Enable),
			SrcColorBlendFactor: blendFactorFromName(b.SrcColorFactor, vk.BlendFactorSrcAlpha),
			DstColorBlendFactor: blendFactorFromName(b.DstColorFactor, vk.BlendFactorOneMinusSrcAlpha),
			ColorBlendOp:        vk.BlendOpAdd,
			SrcAlphaBlendFactor: blendFactorFromName(b.SrcAlphaFactor, vk.BlendFactorOne),
			DstAlphaBlendFactor: blendFactorFromName(b.DstAlphaFactor, vk.BlendFactorZero),
			AlphaBlendOp:        vk.BlendOpAdd,
			ColorWriteMask:      writeAll,
		}
	}
	return out
}

func blendFactorFromName(name string, fallback vk.BlendFactor) vk.BlendFactor {
	switch name {
	case "zero":
		return vk.BlendFactorZero
	case "one":
		return vk.BlendFactorOne
	case "src_alpha":
		return vk.BlendFactorSrcAlpha
	case "one_minus_src_alpha":
		return vk.BlendFactorOneMinusSrcAlpha
	case "dst_alpha":
		return vk.BlendFactorDstAlpha
	case "one_minus_dst_alpha":
		return vk.BlendFactorOneMinusDstAlpha
	default:
		return fallback
	}
}

func vertexFormatFromName(name string) vk.Format {
	switch name {
	case "float":
		return vk.FormatR32Sfloat
	case "vec2":
		return vk.FormatR32g32Sfloat
	case "vec4":
		return vk.FormatR32g32b32a32Sfloat
	case "uvec4":
		return vk.FormatR32g32b32a32Uint
	case "u8vec4_norm":
		return vk.FormatR8g8b8a8Unorm
	default:
		return vk.FormatR32g32b32Sfloat // vec3
	}
}

func topologyFromName(name string) vk.PrimitiveTopology {
	switch name {
	case "line_list":
		return vk.PrimitiveTopologyLineList
	case "point_list":
		return vk.PrimitiveTopologyPointList
	default:
		return vk.PrimitiveTopologyTriangleList
	}
}

func polygonModeFromName(name string) vk.PolygonMode {
	switch name {
	case "line":
		return vk.PolygonModeLine
	case "point":
		return vk.PolygonModePoint
	default:
		return vk.PolygonModeFill
	}
}

func cullModeFromName(name string) vk.CullModeFlagBits {
	switch name {
	case "front":
		return vk.CullModeFrontBit
	case "front_and_back":
		return vk.CullModeFrontAndBack
	case "none":
		return vk.CullModeNone
	default:
		return vk.CullModeBackBit
	}
}

func frontFaceFromName(name string) vk.FrontFace {
	if name == "clockwise" {
		return vk.FrontFaceClockwise
	}
	return vk.FrontFaceCounterClockwise
}

func shaderStageFromName(name string) vk.ShaderStageFlagBits {
	switch name {
	case "fragment":
		return vk.ShaderStageFragmentBit
	case "compute":
		return vk.ShaderStageComputeBit
	case "geometry":
		return vk.ShaderStageGeometryBit
	case "tess_control":
		return vk.ShaderStageTessellationControlBit
	case "tess_eval":
		return vk.ShaderStageTessellationEvaluationBit
	default:
		return vk.ShaderStageVertexBit
	}
}
