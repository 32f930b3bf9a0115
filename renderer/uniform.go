package renderer

import (
	"github.com/go-gl/mathgl/mgl32"
	lin "github.com/xlab/linmath"

	"github.com/andewx/vkforge/scene"
)

// linFromMgl reinterprets a column-major mgl32 matrix as linmath's
// column-array layout.
func linFromMgl(m mgl32.Mat4) lin.Mat4x4 {
	var out lin.Mat4x4
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			out[c][r] = m[c*4+r]
		}
	}
	return out
}

// BuildCameraMVP composes the model-view-projection matrix for cam and
// model, with the projection run through the Vulkan clip-space fixup
// first: scene cameras build GL-convention projections, and the
// correction must be applied exactly once, here, before the matrix
// reaches a uniform buffer.
func BuildCameraMVP(cam scene.Camera, model mgl32.Mat4) lin.Mat4x4 {
	proj := linFromMgl(cam.Proj)
	view := linFromMgl(cam.View)
	mdl := linFromMgl(model)

	var fixed lin.Mat4x4
	VulkanProjectionMat(&fixed, &proj)

	var mvp lin.Mat4x4
	mvp.Mult(&fixed, &view)
	mvp.Mult(&mvp, &mdl)
	return mvp
}

// WriteCameraUniform records cam's corrected MVP for model as this
// tick's uniform payload. The run-frame callback executes before the
// frame's fence wait, so the payload is staged here and the scheduler
// copies it into the mapped uniform buffer only after the fence has
// signalled.
func (r *Renderer) WriteCameraUniform(cam scene.Camera, model mgl32.Mat4) {
	mvp := BuildCameraMVP(cam, model)
	r.pendingUniform = append(r.pendingUniform[:0], mvp.Data()...)
}
