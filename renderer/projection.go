package renderer

import lin "github.com/xlab/linmath"

// VulkanProjectionMat converts an OpenGL-style projection matrix (as
// produced by linmath's perspective/ortho builders, clip space Y-up and
// Z in [-1,1]) to Vulkan's clip-space convention: Y flipped (Vulkan's
// NDC has +Y pointing down) and depth remapped to [0,1]. Kept as a
// renderer-owned helper rather than folded into the scene package's
// mgl32-based Camera: the clip-space fixup is a renderer concern, not a
// general math-library concern.
func VulkanProjectionMat(m *lin.Mat4x4, proj *lin.Mat4x4) {
	// Column-major correction: y' = -y, z' = 0.5*z + 0.5*w.
	clip := lin.Mat4x4{
		{1, 0, 0, 0},
		{0, -1, 0, 0},
		{0, 0, 0.5, 0},
		{0, 0, 0.5, 1},
	}
	m.Mult(&clip, proj)
}
