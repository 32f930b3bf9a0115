// Package config decodes the engine's TOML configuration surface into
// typed structs: window init, memory init, Vulkan init, descriptor
// pool, and pipeline config.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// WindowFlag is a bit in WindowConfig.Flags.
type WindowFlag uint32

const (
	WindowFullscreen WindowFlag = 1 << iota
	WindowResizable
	WindowDecorated
	WindowHidden
	WindowMaximized
	WindowAlwaysOnTop
	WindowAllowHighDPI
	WindowVulkan
)

// WindowConfig is the window-init section of the document.
type WindowConfig struct {
	Flags  []string `toml:"flags"`
	Width  int      `toml:"width"`
	Height int      `toml:"height"`
	Title  string   `toml:"title"`
}

// ResolveFlags ORs WindowConfig.Flags's string names into a WindowFlag
// bitset, ignoring unrecognized names.
func (w WindowConfig) ResolveFlags() WindowFlag {
	names := map[string]WindowFlag{
		"fullscreen":    WindowFullscreen,
		"resizable":     WindowResizable,
		"decorated":     WindowDecorated,
		"hidden":        WindowHidden,
		"maximized":     WindowMaximized,
		"always_on_top": WindowAlwaysOnTop,
		"allow_highdpi": WindowAllowHighDPI,
		"vulkan":        WindowVulkan,
	}
	var f WindowFlag
	for _, n := range w.Flags {
		f |= names[n]
	}
	return f
}

// MemoryConfig is the memory-init section; defaults (when a field is
// zero/absent) come from mem.DefaultInitSizes.
type MemoryConfig struct {
	FreeListSize uint64 `toml:"free_list_size"`
	StackSize    uint64 `toml:"stack_size"`
	FrameLinear  uint64 `toml:"frame_linear_size"`
}

// VulkanConfig is the Vulkan-init section of the document.
type VulkanConfig struct {
	AppName                 string   `toml:"app_name"`
	VersionMajor            int      `toml:"version_major"`
	VersionMinor            int      `toml:"version_minor"`
	VersionPatch            int      `toml:"version_patch"`
	LogVerbosity            string   `toml:"log_verbosity"`
	InstanceCreateFlags     uint32   `toml:"instance_create_flags"`
	ExtraInstanceExtensions []string `toml:"extra_instance_extensions"`
	DeviceExtensions        []string `toml:"device_extensions"`
	ValidationLayers        []string `toml:"validation_layers"`
}

// DescriptorPoolConfig sizes the per-frame descriptor pools:
// per-descriptor-type max counts, keyed by Vulkan descriptor type name
// so TOML stays human-editable instead of positional.
type DescriptorPoolConfig struct {
	MaxDescPerType map[string]uint32 `toml:"max_desc_per_type"`
	MaxSets        uint32            `toml:"max_sets"`
	Flags          uint32            `toml:"flags"`
}

// ShaderStageConfig names one SPIR-V blob and its entry point for a
// pipeline config's shader-stage list.
type ShaderStageConfig struct {
	Stage      string `toml:"stage"`
	Path       string `toml:"path"`
	EntryPoint string `toml:"entry_point"`
}

// VertexBindingConfig describes one vertex buffer binding.
type VertexBindingConfig struct {
	Binding     uint32 `toml:"binding"`
	Stride      uint32 `toml:"stride"`
	PerInstance bool   `toml:"per_instance"`
}

// VertexAttributeConfig describes one vertex attribute: its shader
// location, source binding, format name, and byte offset within the
// binding's stride.
type VertexAttributeConfig struct {
	Location uint32 `toml:"location"`
	Binding  uint32 `toml:"binding"`
	Format   string `toml:"format"`
	Offset   uint32 `toml:"offset"`
}

// BlendConfig describes one color-blend attachment state.
type BlendConfig struct {
	Enable         bool   `toml:"enable"`
	SrcColorFactor string `toml:"src_color_factor"`
	DstColorFactor string `toml:"dst_color_factor"`
	SrcAlphaFactor string `toml:"src_alpha_factor"`
	DstAlphaFactor string `toml:"dst_alpha_factor"`
}

// PipelineConfig is one graphics-pipeline description.
type PipelineConfig struct {
	Name             string                  `toml:"name"`
	Topology         string                  `toml:"topology"`
	PrimitiveRestart bool                    `toml:"primitive_restart"`
	PolygonMode      string                  `toml:"polygon_mode"`
	CullMode         string                  `toml:"cull_mode"`
	FrontFace        string                  `toml:"front_face"`
	LineWidth        float32                 `toml:"line_width"`
	DepthBiasEnable  bool                    `toml:"depth_bias_enable"`
	DepthTestEnable  bool                    `toml:"depth_test_enable"`
	DepthWriteEnable bool                    `toml:"depth_write_enable"`
	BlendConstants   []float32               `toml:"blend_constants"`
	VertexBindings   []VertexBindingConfig   `toml:"vertex_bindings"`
	VertexAttributes []VertexAttributeConfig `toml:"vertex_attributes"`
	Blend            []BlendConfig           `toml:"blend"`
	Shaders          []ShaderStageConfig     `toml:"shaders"`
}

// Document is the top-level TOML document.
type Document struct {
	Window     WindowConfig         `toml:"window"`
	Memory     MemoryConfig         `toml:"memory"`
	Vulkan     VulkanConfig         `toml:"vulkan"`
	Descriptor DescriptorPoolConfig `toml:"descriptor_pool"`
	Pipelines  []PipelineConfig     `toml:"pipeline"`
}

// Load reads and decodes a TOML document at path.
func Load(path string) (*Document, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var doc Document
	if err := toml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}
	return &doc, nil
}
