// Package renderer ties the vkr Vulkan layer, the arena-backed geometry
// buffers, and the containers.SlotPool resource registries into the
// top-level frame renderer. Instead of one map-of-strings per resource
// kind, it keeps one generation-tagged slot pool per kind, each pool
// entry pointing at ranges carved from a handful of shared geometry
// buffers.
package renderer

import (
	"github.com/google/uuid"
	vk "github.com/vulkan-go/vulkan"

	"github.com/andewx/vkforge/containers"
	"github.com/andewx/vkforge/mem"
)

// StreamKind names one of the four vertex/index stream buffers:
// position+color, normal+tangent+UV, bone weights+ids, and indices,
// each suballocated independently so a mesh upload never has to move
// unrelated streams to make room.
type StreamKind int

const (
	StreamPositionColor StreamKind = iota
	StreamNormalTangentUV
	StreamBoneWeights
	StreamIndex
	streamCount
)

// SubmeshRange is one stream's virtual allocation: a base offset and
// byte length inside that stream's shared geometry buffer.
type SubmeshRange struct {
	Offset uint64
	Size   uint64
}

// MeshEntry is the per-slot payload of the mesh registry: submesh counts
// plus one SubmeshRange per stream that actually holds data for this
// mesh (a stream with Size == 0 was not used, e.g. a mesh with no bone
// weights).
type MeshEntry struct {
	VertexCount uint32
	IndexCount  uint32
	Ranges      [streamCount]SubmeshRange
}

// TextureEntry is the per-slot payload of the texture registry.
type TextureEntry struct {
	Image vk.Image
	View  vk.ImageView
}

// MaterialEntry references a technique and the texture handles bound to
// its sampler slots.
type MaterialEntry struct {
	Technique containers.Handle
	Textures  []containers.Handle
}

// TechniqueEntry is a per-render-pass-type array of pipeline handles, so
// a material's technique can resolve to a different concrete pipeline
// depending on which render pass is currently recording it (e.g. a
// shadow pass vs. the main color pass).
type TechniqueEntry struct {
	PipelinesByPass map[string]int // render-pass-type name -> vkr.Inventory pipeline index
}

// Registry is the slot-pool resource registry: one SlotPool per
// resource kind, plus one OffsetAllocator per geometry stream.
type Registry struct {
	Meshes     *containers.SlotPool[MeshEntry]
	Textures   *containers.SlotPool[TextureEntry]
	Materials  *containers.SlotPool[MaterialEntry]
	Techniques *containers.SlotPool[TechniqueEntry]

	streams [streamCount]*mem.OffsetAllocator

	// debugNames tags each registered handle with a human-distinguishable
	// label independent of its reused generation-tagged handle; a slot
	// index gets reused across uploads, but its label does not.
	debugNames map[containers.Handle]string
}

// StreamCapacities sizes each of the four geometry stream buffers in
// bytes; callers typically size these from a config document's memory
// section.
type StreamCapacities struct {
	PositionColor   uint64
	NormalTangentUV uint64
	BoneWeights     uint64
	Index           uint64
}

// NewRegistry builds empty slot pools and one OffsetAllocator per stream
// sized by caps.
func NewRegistry(caps StreamCapacities) *Registry {
	r := &Registry{
		Meshes:     containers.NewSlotPool[MeshEntry](64),
		Textures:   containers.NewSlotPool[TextureEntry](64),
		Materials:  containers.NewSlotPool[MaterialEntry](64),
		Techniques: containers.NewSlotPool[TechniqueEntry](16),
		debugNames: make(map[containers.Handle]string),
	}
	r.streams[StreamPositionColor] = mem.NewOffsetAllocator(caps.PositionColor)
	r.streams[StreamNormalTangentUV] = mem.NewOffsetAllocator(caps.NormalTangentUV)
	r.streams[StreamBoneWeights] = mem.NewOffsetAllocator(caps.BoneWeights)
	r.streams[StreamIndex] = mem.NewOffsetAllocator(caps.Index)
	return r
}

// DecodedMesh is the upload-time shape a loader hands to UploadMesh: one
// byte slice per stream that actually carries data for this mesh (a nil
// slice means the mesh has no data for that stream).
type DecodedMesh struct {
	VertexCount uint32
	IndexCount  uint32
	Streams     [streamCount][]byte
}

// UploadMesh allocates one virtual range per non-empty stream in mesh
// and registers a new mesh slot, returning its handle. The caller is
// responsible for actually writing mesh.Streams[k] into the
// corresponding device buffer at the returned ranges (via the transfer
// service) — the registry only owns the virtual address space.
func (r *Registry) UploadMesh(mesh DecodedMesh) (containers.Handle, error) {
	var entry MeshEntry
	entry.VertexCount = mesh.VertexCount
	entry.IndexCount = mesh.IndexCount

	allocated := make([]StreamKind, 0, streamCount)
	for k := StreamKind(0); k < streamCount; k++ {
		data := mesh.Streams[k]
		if len(data) == 0 {
			continue
		}
		off, err := r.streams[k].Alloc(uint64(len(data)))
		if err != nil {
			for _, done := range allocated {
				r.streams[done].Free(entry.Ranges[done].Offset, entry.Ranges[done].Size)
			}
			return 0, err
		}
		entry.Ranges[k] = SubmeshRange{Offset: off, Size: uint64(len(data))}
		allocated = append(allocated, k)
	}

	h := r.Meshes.Acquire(entry)
	r.tag(h, "mesh")
	return h, nil
}

// RemoveMesh returns a mesh's stream ranges to their free lists and
// releases its slot. Device-side data is left in place; it is simply
// eligible to be overwritten by the next UploadMesh that reuses the
// range.
func (r *Registry) RemoveMesh(h containers.Handle) bool {
	entry, ok := r.Meshes.Get(h)
	if !ok {
		return false
	}
	for k := StreamKind(0); k < streamCount; k++ {
		rng := entry.Ranges[k]
		if rng.Size == 0 {
			continue
		}
		r.streams[k].Free(rng.Offset, rng.Size)
	}
	released := r.Meshes.Release(h)
	if released {
		delete(r.debugNames, h)
	}
	return released
}

// AddTexture registers a new texture slot.
func (r *Registry) AddTexture(image vk.Image, view vk.ImageView) containers.Handle {
	h := r.Textures.Acquire(TextureEntry{Image: image, View: view})
	r.tag(h, "texture")
	return h
}

// AddMaterial registers a new material slot referencing technique and
// textures.
func (r *Registry) AddMaterial(technique containers.Handle, textures []containers.Handle) containers.Handle {
	h := r.Materials.Acquire(MaterialEntry{Technique: technique, Textures: textures})
	r.tag(h, "material")
	return h
}

// AddTechnique registers a new technique slot.
func (r *Registry) AddTechnique(pipelinesByPass map[string]int) containers.Handle {
	h := r.Techniques.Acquire(TechniqueEntry{PipelinesByPass: pipelinesByPass})
	r.tag(h, "technique")
	return h
}

// tag assigns h a stable debug label, kind plus a fresh UUID so two
// handles of the same kind never collide even after an earlier one's
// index and generation are reused.
func (r *Registry) tag(h containers.Handle, kind string) {
	r.debugNames[h] = kind + "-" + uuid.NewString()
}

// DebugName returns the label tag assigned h, or "" if h is not a
// currently-registered handle.
func (r *Registry) DebugName(h containers.Handle) string {
	return r.debugNames[h]
}
