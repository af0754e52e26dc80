package session

import "github.com/gogpu/gputypes"

// Vertex input needs of the renderer: one interleaved buffer holding a
// vec2 position and a vec3 color.
const (
	RequiredVertexAttributes = 2
	RequiredVertexBuffers    = 1
	RequiredVertexStride     = 5 * 4
)

// RequiredLimits returns the limits requested at device creation. They are
// the WebGPU defaults with the vertex limits lowered to what the renderer
// uses, and with the buffer offset alignments copied from the adapter
// since a device may not request an alignment its adapter cannot honor.
func RequiredLimits(supported gputypes.Limits) gputypes.Limits {
	l := gputypes.DefaultLimits()
	l.MaxVertexAttributes = RequiredVertexAttributes
	l.MaxVertexBuffers = RequiredVertexBuffers
	l.MaxVertexBufferArrayStride = RequiredVertexStride
	l.MinUniformBufferOffsetAlignment = supported.MinUniformBufferOffsetAlignment
	l.MinStorageBufferOffsetAlignment = supported.MinStorageBufferOffsetAlignment
	return l
}
