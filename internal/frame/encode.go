package frame

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu"

	"github.com/gogpu/beany/internal/geometry"
)

// EncoderLabel is the debug label of every per-frame command encoder.
const EncoderLabel = "Encoder"

// CommandEncoderCreator creates command encoders. *wgpu.Device satisfies it.
type CommandEncoderCreator interface {
	CreateCommandEncoder(desc *wgpu.CommandEncoderDescriptor) (*wgpu.CommandEncoder, error)
}

// renderPass is the part of *wgpu.RenderPassEncoder used to record a draw.
type renderPass interface {
	SetPipeline(pipeline *wgpu.RenderPipeline)
	SetVertexBuffer(slot uint32, buffer *wgpu.Buffer, offset uint64)
	SetIndexBuffer(buffer *wgpu.Buffer, format gputypes.IndexFormat, offset uint64)
	Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32)
	DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32)
}

var (
	_ renderPass = (*wgpu.RenderPassEncoder)(nil)
	_ Encoder    = (*PassEncoder)(nil)
)

// PassEncoder records one render pass per frame: clear the view, then
// draw the mesh with the pipeline.
type PassEncoder struct {
	Device   CommandEncoderCreator
	Pipeline *wgpu.RenderPipeline
	Mesh     *geometry.Buffers
	Clear    gputypes.Color
}

// PassDescriptor returns the render pass with a single color attachment
// on view that is cleared to clear and stored.
func PassDescriptor(view *wgpu.TextureView, clear gputypes.Color) *wgpu.RenderPassDescriptor {
	return &wgpu.RenderPassDescriptor{
		Label: "Render Pass",
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       view,
				LoadOp:     gputypes.LoadOpClear,
				StoreOp:    gputypes.StoreOpStore,
				ClearValue: clear,
			},
		},
	}
}

// Encode records the frame into a command buffer targeting view.
// On failure nothing is left for the caller to release.
func (e *PassEncoder) Encode(view *wgpu.TextureView) (*wgpu.CommandBuffer, error) {
	enc, err := e.Device.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{Label: EncoderLabel})
	if err != nil {
		return nil, fmt.Errorf("frame: create encoder: %w", err)
	}

	pass, err := enc.BeginRenderPass(PassDescriptor(view, e.Clear))
	if err != nil {
		enc.DiscardEncoding()
		return nil, fmt.Errorf("frame: begin render pass: %w", err)
	}
	recordDraw(pass, e.Pipeline, e.Mesh)
	if err := pass.End(); err != nil {
		enc.DiscardEncoding()
		return nil, fmt.Errorf("frame: end render pass: %w", err)
	}

	// Finish releases the encoder itself when it fails.
	cb, err := enc.Finish()
	if err != nil {
		return nil, fmt.Errorf("frame: finish encoder: %w", err)
	}
	return cb, nil
}

// recordDraw binds the pipeline and mesh and issues one draw covering
// every vertex, or every unpadded index when the mesh is indexed.
// A mesh without vertices records nothing, leaving a clear-only pass.
func recordDraw(p renderPass, pipeline *wgpu.RenderPipeline, mesh *geometry.Buffers) {
	if pipeline == nil || mesh == nil || mesh.Vertex == nil || mesh.VertexCount == 0 {
		return
	}
	p.SetPipeline(pipeline)
	p.SetVertexBuffer(0, mesh.Vertex, 0)
	if mesh.Indexed() {
		p.SetIndexBuffer(mesh.Index, gputypes.IndexFormatUint16, 0)
		p.DrawIndexed(mesh.IndexCount, 1, 0, 0, 0)
		return
	}
	p.Draw(mesh.VertexCount, 1, 0, 0)
}
