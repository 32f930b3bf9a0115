package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleDoc = `
[window]
flags = ["resizable", "vulkan"]
width = 1280
height = 720
title = "forge"

[memory]
free_list_size = 1048576
stack_size = 65536
frame_linear_size = 65536

[vulkan]
app_name = "forge-app"
version_major = 1
version_minor = 2
version_patch = 3
log_verbosity = "warn"
validation_layers = ["VK_LAYER_KHRONOS_validation"]

[descriptor_pool]
max_sets = 32
[descriptor_pool.max_desc_per_type]
uniform_buffer = 16
combined_image_sampler = 8

[[pipeline]]
name = "forward"
topology = "triangle_list"
cull_mode = "back"
front_face = "counter_clockwise"
depth_test_enable = true
depth_write_enable = true

[[pipeline.vertex_bindings]]
binding = 0
stride = 24

[[pipeline.vertex_attributes]]
location = 0
binding = 0
format = "vec3"
offset = 0

[[pipeline.vertex_attributes]]
location = 1
binding = 0
format = "vec3"
offset = 12

[[pipeline.blend]]
enable = true
src_color_factor = "src_alpha"
dst_color_factor = "one_minus_src_alpha"

[[pipeline.shaders]]
stage = "vertex"
path = "shaders/forward.vert.spv"
entry_point = "main"

[[pipeline.shaders]]
stage = "fragment"
path = "shaders/forward.frag.spv"
entry_point = "main"
`

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "forge.toml")
	require.NoError(t, os.WriteFile(path, []byte(sampleDoc), 0o644))
	return path
}

func TestLoadDecodesFullDocument(t *testing.T) {
	doc, err := Load(writeSample(t))
	require.NoError(t, err)

	require.Equal(t, "forge", doc.Window.Title)
	require.Equal(t, 1280, doc.Window.Width)
	require.NotZero(t, doc.Window.ResolveFlags()&WindowResizable)
	require.NotZero(t, doc.Window.ResolveFlags()&WindowVulkan)
	require.Zero(t, doc.Window.ResolveFlags()&WindowFullscreen)

	require.Equal(t, uint64(1048576), doc.Memory.FreeListSize)

	require.Equal(t, "forge-app", doc.Vulkan.AppName)
	require.Equal(t, 2, doc.Vulkan.VersionMinor)
	require.Equal(t, []string{"VK_LAYER_KHRONOS_validation"}, doc.Vulkan.ValidationLayers)

	require.Equal(t, uint32(32), doc.Descriptor.MaxSets)
	require.Equal(t, uint32(16), doc.Descriptor.MaxDescPerType["uniform_buffer"])

	require.Len(t, doc.Pipelines, 1)
	p := doc.Pipelines[0]
	require.Equal(t, "forward", p.Name)
	require.True(t, p.DepthTestEnable)
	require.Len(t, p.Shaders, 2)
	require.Equal(t, "fragment", p.Shaders[1].Stage)

	require.Len(t, p.VertexBindings, 1)
	require.Equal(t, uint32(24), p.VertexBindings[0].Stride)
	require.Len(t, p.VertexAttributes, 2)
	require.Equal(t, uint32(12), p.VertexAttributes[1].Offset)
	require.Len(t, p.Blend, 1)
	require.True(t, p.Blend[0].Enable)
	require.Equal(t, "src_alpha", p.Blend[0].SrcColorFactor)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.Error(t, err)
}

func TestToUsageFlattensWindowAndVulkan(t *testing.T) {
	doc, err := Load(writeSample(t))
	require.NoError(t, err)

	u := doc.ToUsage()
	require.Equal(t, "forge-app", u.StringProps["app_name"])
	require.Equal(t, 720, u.IntProps["height"])
	require.True(t, u.BoolProps["resizable"])
	require.False(t, u.BoolProps["fullscreen"])
	require.False(t, u.HasNext())
}
