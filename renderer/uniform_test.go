package renderer

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"

	"github.com/andewx/vkforge/scene"
)

func TestBuildCameraMVPAppliesClipSpaceFixup(t *testing.T) {
	cam := scene.Camera{Proj: mgl32.Ident4(), View: mgl32.Ident4()}

	mvp := BuildCameraMVP(cam, mgl32.Ident4())

	require.InDelta(t, -1.0, float64(mvp[1][1]), 1e-6, "Y axis must be flipped")
	require.InDelta(t, 0.5, float64(mvp[2][2]), 1e-6, "depth must be remapped to [0,1]")
}

func TestBuildCameraMVPThreadsModelTranslation(t *testing.T) {
	cam := scene.Camera{Proj: mgl32.Ident4(), View: mgl32.Ident4()}
	model := mgl32.Translate3D(3, 0, 0)

	mvp := BuildCameraMVP(cam, model)

	require.InDelta(t, 3.0, float64(mvp[3][0]), 1e-6, "model translation must survive the fixup")
}

func TestLinFromMglLayout(t *testing.T) {
	m := mgl32.Translate3D(1, 2, 3)
	l := linFromMgl(m)

	require.InDelta(t, 1.0, float64(l[3][0]), 1e-6)
	require.InDelta(t, 2.0, float64(l[3][1]), 1e-6)
	require.InDelta(t, 3.0, float64(l[3][2]), 1e-6)
	require.InDelta(t, 1.0, float64(l[0][0]), 1e-6)
}
