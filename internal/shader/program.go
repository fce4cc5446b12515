// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

package shader

import (
	"errors"
	"fmt"

	"github.com/gogpu/dither"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// TargetFormat is the color format of the render target.
const TargetFormat = gputypes.TextureFormatRGBA8Unorm

// Program is a linked dither pipeline for one variant.
type Program struct {
	device  hal.Device
	variant dither.Variant

	vertex     hal.ShaderModule
	fragment   hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.RenderPipeline
}

// Compile builds the program for v on device. Compilation failures are
// returned as *dither.ShaderError carrying the compiler diagnostic; no
// resources are leaked on failure.
func Compile(device hal.Device, v dither.Variant) (*Program, error) {
	if device == nil {
		return nil, fmt.Errorf("shader: nil device: %w", dither.ErrGraphicsUnavailable)
	}
	p := &Program{device: device, variant: v}
	if err := p.build(); err != nil {
		p.Destroy()
		return nil, err
	}
	dither.Logger().Debug("shader: program linked", "variant", v.String())
	return p, nil
}

func (p *Program) build() error {
	label := "dither_" + p.variant.String()

	vertex, err := p.module(label+"_vertex", dither.StageVertex, VertexSource())
	if err != nil {
		return err
	}
	p.vertex = vertex

	fragment, err := p.module(label+"_fragment", dither.StageFragment, FragmentSource(p.variant))
	if err != nil {
		return err
	}
	p.fragment = fragment

	bindLayout, err := p.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   label + "_bind_layout",
		Entries: BindGroupLayoutEntries(),
	})
	if err != nil {
		return linkError("create bind group layout", err)
	}
	p.bindLayout = bindLayout

	pipeLayout, err := p.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            label + "_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.bindLayout},
	})
	if err != nil {
		return linkError("create pipeline layout", err)
	}
	p.pipeLayout = pipeLayout

	pipeline, err := p.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  label + "_pipeline",
		Layout: p.pipeLayout,
		Vertex: hal.VertexState{
			Module:     p.vertex,
			EntryPoint: VertexEntry,
			Buffers:    VertexLayout(),
		},
		Fragment: &hal.FragmentState{
			Module:     p.fragment,
			EntryPoint: FragmentEntry,
			Targets: []gputypes.ColorTargetState{
				{
					Format:    TargetFormat,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleStrip,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return linkError("create render pipeline", err)
	}
	p.pipeline = pipeline
	return nil
}

func (p *Program) module(label, stage, wgsl string) (hal.ShaderModule, error) {
	words, err := ToSPIRV(wgsl)
	if err != nil {
		dither.Logger().Error("shader: compile failed", "stage", stage, "log", err.Error())
		return nil, &dither.ShaderError{Stage: stage, Log: err.Error(), Err: err}
	}
	mod, err := p.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  label,
		Source: hal.ShaderSource{SPIRV: words},
	})
	if err != nil {
		dither.Logger().Error("shader: module rejected", "stage", stage, "log", err.Error())
		return nil, &dither.ShaderError{Stage: stage, Log: err.Error(), Err: err}
	}
	return mod, nil
}

func linkError(what string, err error) error {
	dither.Logger().Error("shader: link failed", "step", what, "log", err.Error())
	return &dither.ShaderError{Stage: dither.StageLink, Log: what + ": " + err.Error(), Err: err}
}

// Variant returns the variant the program was built for.
func (p *Program) Variant() dither.Variant { return p.variant }

// Pipeline returns the render pipeline.
func (p *Program) Pipeline() hal.RenderPipeline { return p.pipeline }

// BindGroupLayout returns the layout of group 0.
func (p *Program) BindGroupLayout() hal.BindGroupLayout { return p.bindLayout }

// Destroy releases the program in reverse creation order. Safe to call
// multiple times.
func (p *Program) Destroy() {
	if p.device == nil {
		return
	}
	if p.pipeline != nil {
		p.device.DestroyRenderPipeline(p.pipeline)
		p.pipeline = nil
	}
	if p.pipeLayout != nil {
		p.device.DestroyPipelineLayout(p.pipeLayout)
		p.pipeLayout = nil
	}
	if p.bindLayout != nil {
		p.device.DestroyBindGroupLayout(p.bindLayout)
		p.bindLayout = nil
	}
	if p.fragment != nil {
		p.device.DestroyShaderModule(p.fragment)
		p.fragment = nil
	}
	if p.vertex != nil {
		p.device.DestroyShaderModule(p.vertex)
		p.vertex = nil
	}
}

// BindGroupLayoutEntries returns the layout of group 0.
func BindGroupLayoutEntries() []gputypes.BindGroupLayoutEntry {
	return []gputypes.BindGroupLayoutEntry{
		{
			Binding:    0,
			Visibility: gputypes.ShaderStageFragment,
			Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
		},
		{
			Binding:    1,
			Visibility: gputypes.ShaderStageFragment,
			Texture: &gputypes.TextureBindingLayout{
				SampleType:    gputypes.TextureSampleTypeFloat,
				ViewDimension: gputypes.TextureViewDimension2D,
			},
		},
		{
			Binding:    2,
			Visibility: gputypes.ShaderStageFragment,
			Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
		},
		{
			Binding:    3,
			Visibility: gputypes.ShaderStageFragment,
			Texture: &gputypes.TextureBindingLayout{
				SampleType:    gputypes.TextureSampleTypeFloat,
				ViewDimension: gputypes.TextureViewDimension2D,
			},
		},
	}
}

// VertexLayout returns the two vertex buffer layouts:
//
//	slot 0, location 0: position (vec2<f32>)
//	slot 1, location 1: tex_coord (vec2<f32>)
func VertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: VertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
			},
		},
		{
			ArrayStride: VertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 1},
			},
		},
	}
}

// IsShaderError reports whether err carries a shader diagnostic.
func IsShaderError(err error) bool {
	var se *dither.ShaderError
	return errors.As(err, &se)
}
