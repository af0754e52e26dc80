package geometry

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu"
)

// BufferCreator creates GPU buffers. *wgpu.Device satisfies it.
type BufferCreator interface {
	CreateBuffer(desc *wgpu.BufferDescriptor) (*wgpu.Buffer, error)
}

// BufferWriter writes host data into GPU buffers. *wgpu.Queue satisfies it.
type BufferWriter interface {
	WriteBuffer(buffer *wgpu.Buffer, offset uint64, data []byte) error
}

// Buffers is a mesh resident on the GPU.
//
// Vertex is nil for a mesh without points; Index is nil for a mesh without
// indices, which is then drawn non-indexed.
type Buffers struct {
	Vertex *wgpu.Buffer
	Index  *wgpu.Buffer

	// VertexCount is the number of complete vertices in Vertex.
	VertexCount uint32

	// IndexCount is the unpadded number of indices to draw from Index.
	IndexCount uint32
}

// Indexed reports whether draws should use the index buffer.
func (b *Buffers) Indexed() bool {
	return b.Index != nil && b.IndexCount > 0
}

// Release releases both buffers. Safe to call more than once.
func (b *Buffers) Release() {
	if b == nil {
		return
	}
	if b.Vertex != nil {
		b.Vertex.Release()
		b.Vertex = nil
	}
	if b.Index != nil {
		b.Index.Release()
		b.Index = nil
	}
}

// Upload creates the vertex and index buffers for m and writes the mesh data
// through the queue. Writes are ordered before any later submission on the
// same queue, so the buffers can be drawn from immediately.
func Upload(device BufferCreator, queue BufferWriter, m *Mesh) (*Buffers, error) {
	b := &Buffers{
		VertexCount: uint32(m.VertexCount()), //nolint:gosec // vertex count is bounded by file size
		IndexCount:  uint32(m.IndexCount),    //nolint:gosec // index count is bounded by file size
	}

	if len(m.Points) > 0 {
		buf, err := createAndWrite(device, queue, "Vertex Buffer",
			gputypes.BufferUsageCopyDst|gputypes.BufferUsageVertex, m.VertexBytes())
		if err != nil {
			return nil, fmt.Errorf("geometry: vertex buffer: %w", err)
		}
		b.Vertex = buf
	}

	if len(m.Indices) > 0 {
		buf, err := createAndWrite(device, queue, "Index Buffer",
			gputypes.BufferUsageCopyDst|gputypes.BufferUsageIndex, m.IndexBytes())
		if err != nil {
			b.Release()
			return nil, fmt.Errorf("geometry: index buffer: %w", err)
		}
		b.Index = buf
	}

	return b, nil
}

func createAndWrite(device BufferCreator, queue BufferWriter, label string, usage gputypes.BufferUsage, data []byte) (*wgpu.Buffer, error) {
	buf, err := device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: usage,
	})
	if err != nil {
		return nil, err
	}
	if err := queue.WriteBuffer(buf, 0, data); err != nil {
		buf.Release()
		return nil, err
	}
	return buf, nil
}
