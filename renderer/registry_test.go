package renderer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
)

func testCapacities() StreamCapacities {
	return StreamCapacities{
		PositionColor:   1 << 16,
		NormalTangentUV: 1 << 16,
		BoneWeights:     1 << 16,
		Index:           1 << 16,
	}
}

func TestRegistryDebugNamesAreKindPrefixedAndUnique(t *testing.T) {
	r := NewRegistry(testCapacities())

	tex1 := r.AddTexture(vk.Image(vk.NullHandle), vk.NullImageView)
	tex2 := r.AddTexture(vk.Image(vk.NullHandle), vk.NullImageView)
	mat := r.AddMaterial(0, nil)

	require.True(t, strings.HasPrefix(r.DebugName(tex1), "texture-"))
	require.True(t, strings.HasPrefix(r.DebugName(tex2), "texture-"))
	require.NotEqual(t, r.DebugName(tex1), r.DebugName(tex2))
	require.True(t, strings.HasPrefix(r.DebugName(mat), "material-"))
}

func TestRegistryRemoveMeshClearsDebugName(t *testing.T) {
	r := NewRegistry(testCapacities())

	h, err := r.UploadMesh(DecodedMesh{
		VertexCount: 3,
		Streams:     [streamCount][]byte{StreamPositionColor: make([]byte, 16)},
	})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(r.DebugName(h), "mesh-"))

	require.True(t, r.RemoveMesh(h))
	require.Empty(t, r.DebugName(h))
}
