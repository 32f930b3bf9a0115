package renderer

import (
	"testing"

	"github.com/stretchr/testify/require"
	lin "github.com/xlab/linmath"
)

func TestVulkanProjectionMatFlipsYAndRemapsDepth(t *testing.T) {
	var proj, out lin.Mat4x4
	proj.Identity()

	VulkanProjectionMat(&out, &proj)

	require.InDelta(t, -1.0, out[1][1], 1e-6, "Y axis must be flipped for Vulkan's top-left clip origin")
	require.InDelta(t, 0.5, out[2][2], 1e-6, "Z scale must remap GL's [-1,1] depth to Vulkan's [0,1]")
}
