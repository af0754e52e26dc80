// Package pipeline builds the render pipeline that rasterizes interleaved
// position/color meshes into the surface's color target.
package pipeline

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu"
)

// DefaultLabel is the debug label of pipelines built from DefaultConfig.
const DefaultLabel = "Render Pipeline"

// Vertex layout of the position/color format: vec2 position, vec3 color.
const (
	positionOffset = 0
	colorOffset    = 2 * 4

	// VertexStride is the byte stride of one interleaved vertex.
	VertexStride = 5 * 4
)

// ErrNoFormat is returned when Config.Format is undefined.
var ErrNoFormat = errors.New("pipeline: color target format is undefined")

// ErrNoModule is returned when a shader stage has no module.
var ErrNoModule = errors.New("pipeline: shader module is nil")

// Creator creates render pipelines. *wgpu.Device satisfies it.
type Creator interface {
	CreateRenderPipeline(desc *wgpu.RenderPipelineDescriptor) (*wgpu.RenderPipeline, error)
}

// Config lists every option the pipeline builder recognizes.
//
// The zero values of Topology, FrontFace and CullMode are triangle list,
// counter-clockwise and none.
type Config struct {
	Label string

	// Format is the color target format, normally the surface's negotiated format.
	Format gputypes.TextureFormat

	VertexModule   *wgpu.ShaderModule
	VertexEntry    string
	FragmentModule *wgpu.ShaderModule
	FragmentEntry  string

	// VertexLayouts describes the vertex buffers bound at draw time.
	VertexLayouts []gputypes.VertexBufferLayout

	Topology  gputypes.PrimitiveTopology
	FrontFace gputypes.FrontFace
	CullMode  gputypes.CullMode

	// Blend is the color target blend state; nil disables blending.
	Blend *gputypes.BlendState

	// DepthStencil is nil when the pass has no depth/stencil attachment.
	DepthStencil *wgpu.DepthStencilState

	// SampleCount defaults to 1.
	SampleCount uint32
}

// DefaultConfig returns the configuration for the position/color mesh
// pipeline: one interleaved vertex buffer, triangle list, counter-clockwise
// front faces, no culling, alpha-over blending, no depth and no multisampling.
func DefaultConfig(format gputypes.TextureFormat, vs *wgpu.ShaderModule, vsEntry string, fs *wgpu.ShaderModule, fsEntry string) Config {
	blend := AlphaBlend()
	return Config{
		Label:          DefaultLabel,
		Format:         format,
		VertexModule:   vs,
		VertexEntry:    vsEntry,
		FragmentModule: fs,
		FragmentEntry:  fsEntry,
		VertexLayouts:  []gputypes.VertexBufferLayout{PositionColorLayout()},
		Topology:       gputypes.PrimitiveTopologyTriangleList,
		FrontFace:      gputypes.FrontFaceCCW,
		CullMode:       gputypes.CullModeNone,
		Blend:          &blend,
		SampleCount:    1,
	}
}

// PositionColorLayout describes the interleaved vertex format:
// float32x2 position at location 0 and float32x3 color at location 1.
func PositionColorLayout() gputypes.VertexBufferLayout {
	return gputypes.VertexBufferLayout{
		ArrayStride: VertexStride,
		StepMode:    gputypes.VertexStepModeVertex,
		Attributes: []gputypes.VertexAttribute{
			{
				Format:         gputypes.VertexFormatFloat32x2,
				Offset:         positionOffset,
				ShaderLocation: 0,
			},
			{
				Format:         gputypes.VertexFormatFloat32x3,
				Offset:         colorOffset,
				ShaderLocation: 1,
			},
		},
	}
}

// AlphaBlend returns standard alpha-over blending for color
// (src*srcAlpha + dst*(1-srcAlpha)) with the destination alpha kept.
func AlphaBlend() gputypes.BlendState {
	return gputypes.BlendState{
		Color: gputypes.BlendComponent{
			SrcFactor: gputypes.BlendFactorSrcAlpha,
			DstFactor: gputypes.BlendFactorOneMinusSrcAlpha,
			Operation: gputypes.BlendOperationAdd,
		},
		Alpha: gputypes.BlendComponent{
			SrcFactor: gputypes.BlendFactorZero,
			DstFactor: gputypes.BlendFactorOne,
			Operation: gputypes.BlendOperationAdd,
		},
	}
}

// Descriptor converts cfg into a render pipeline descriptor. The layout is
// left nil so it is derived from the shader's bindings.
func Descriptor(cfg Config) (*wgpu.RenderPipelineDescriptor, error) {
	if cfg.Format == gputypes.TextureFormatUndefined {
		return nil, ErrNoFormat
	}
	if cfg.VertexModule == nil || cfg.FragmentModule == nil {
		return nil, ErrNoModule
	}

	samples := cfg.SampleCount
	if samples == 0 {
		samples = 1
	}

	return &wgpu.RenderPipelineDescriptor{
		Label: cfg.Label,
		Vertex: wgpu.VertexState{
			Module:     cfg.VertexModule,
			EntryPoint: cfg.VertexEntry,
			Buffers:    cfg.VertexLayouts,
		},
		Primitive: gputypes.PrimitiveState{
			Topology:  cfg.Topology,
			FrontFace: cfg.FrontFace,
			CullMode:  cfg.CullMode,
		},
		DepthStencil: cfg.DepthStencil,
		Multisample: gputypes.MultisampleState{
			Count: samples,
			Mask:  0xFFFFFFFF,
		},
		Fragment: &wgpu.FragmentState{
			Module:     cfg.FragmentModule,
			EntryPoint: cfg.FragmentEntry,
			Targets: []gputypes.ColorTargetState{
				{
					Format:    cfg.Format,
					Blend:     cfg.Blend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
	}, nil
}

// Build creates an immutable render pipeline from cfg. The pipeline stays
// valid for every frame until the device is released or the target format
// changes.
func Build(device Creator, cfg Config) (*wgpu.RenderPipeline, error) {
	desc, err := Descriptor(cfg)
	if err != nil {
		return nil, err
	}
	p, err := device.CreateRenderPipeline(desc)
	if err != nil {
		return nil, fmt.Errorf("pipeline: create %q: %w", cfg.Label, err)
	}
	return p, nil
}
