package vkr

import (
	vk "github.com/vulkan-go/vulkan"

	"github.com/andewx/vkforge/errcode"
)

// AllocateDescriptorSets allocates one descriptor set per layout from
// pool. Per-frame pools are sized up front, so exhaustion here is a
// configuration error, not a recoverable condition.
func AllocateDescriptorSets(dev vk.Device, pool vk.DescriptorPool, layouts []vk.DescriptorSetLayout) ([]vk.DescriptorSet, error) {
	sets := make([]vk.DescriptorSet, len(layouts))
	ret := vk.AllocateDescriptorSets(dev, &vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     pool,
		DescriptorSetCount: uint32(len(layouts)),
		PSetLayouts:        layouts,
	}, &sets[0])
	if isError(ret) {
		return nil, wrap(ret, errcode.CreateDescriptorSetsFail)
	}
	return sets, nil
}

// WriteUniformBufferDescriptor points set's binding at a range of a
// uniform buffer.
func WriteUniformBufferDescriptor(dev vk.Device, set vk.DescriptorSet, binding uint32, buffer vk.Buffer, offset, size uint64) {
	vk.UpdateDescriptorSets(dev, 1, []vk.WriteDescriptorSet{{
		SType:           vk.StructureTypeWriteDescriptorSet,
		DstSet:          set,
		DstBinding:      binding,
		DescriptorCount: 1,
		DescriptorType:  vk.DescriptorTypeUniformBuffer,
		PBufferInfo: []vk.DescriptorBufferInfo{{
			Buffer: buffer,
			Offset: vk.DeviceSize(offset),
			Range:  vk.DeviceSize(size),
		}},
	}}, 0, nil)
}

// WriteImageSamplerDescriptor points set's binding at a combined
// image sampler over view, which must already be in shader-read-only
// layout.
func WriteImageSamplerDescriptor(dev vk.Device, set vk.DescriptorSet, binding uint32, view vk.ImageView, sampler vk.Sampler) {
	vk.UpdateDescriptorSets(dev, 1, []vk.WriteDescriptorSet{{
		SType:           vk.StructureTypeWriteDescriptorSet,
		DstSet:          set,
		DstBinding:      binding,
		DescriptorCount: 1,
		DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
		PImageInfo: []vk.DescriptorImageInfo{{
			Sampler:     sampler,
			ImageView:   view,
			ImageLayout: vk.ImageLayoutShaderReadOnlyOptimal,
		}},
	}}, 0, nil)
}
