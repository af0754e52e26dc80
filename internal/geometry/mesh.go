package geometry

import (
	"encoding/binary"
	"math"
)

// FloatsPerVertex is the number of float32 values per vertex: x, y, r, g, b.
const FloatsPerVertex = 5

// VertexStride is the byte size of one interleaved vertex.
const VertexStride = FloatsPerVertex * 4

// IndexSize is the byte size of one index.
const IndexSize = 2

// Mesh is a host-side mesh: interleaved vertex floats and triangle indices.
type Mesh struct {
	// Points holds FloatsPerVertex floats per vertex.
	Points []float32

	// Indices holds the triangle indices, padded to an even length.
	Indices []uint16

	// IndexCount is the number of indices read from the source, before padding.
	IndexCount int
}

// Triangle returns the built-in RGB triangle drawn when no geometry file is set.
func Triangle() *Mesh {
	m := &Mesh{
		Points: []float32{
			-0.5, -0.5, 1.0, 0.0, 0.0,
			+0.5, -0.5, 0.0, 1.0, 0.0,
			+0.0, +0.5, 0.0, 0.0, 1.0,
		},
		Indices: []uint16{0, 1, 2},
	}
	m.pad()
	return m
}

// VertexCount returns the number of complete vertices in Points.
func (m *Mesh) VertexCount() int {
	return len(m.Points) / FloatsPerVertex
}

// Indexed reports whether the mesh is drawn with an index buffer.
func (m *Mesh) Indexed() bool {
	return m.IndexCount > 0
}

// pad records the unpadded index count and rounds Indices up to even length.
func (m *Mesh) pad() {
	m.IndexCount = len(m.Indices)
	if len(m.Indices)%2 != 0 {
		m.Indices = append(m.Indices, 0)
	}
}

// VertexBytes returns Points as little-endian bytes.
func (m *Mesh) VertexBytes() []byte {
	buf := make([]byte, len(m.Points)*4)
	for i, f := range m.Points {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// IndexBytes returns Indices as little-endian bytes.
func (m *Mesh) IndexBytes() []byte {
	buf := make([]byte, len(m.Indices)*IndexSize)
	for i, idx := range m.Indices {
		binary.LittleEndian.PutUint16(buf[i*IndexSize:], idx)
	}
	return buf
}
