// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

// Package device obtains the GPU device and queue a render surface draws
// with: either shared from a host through a gpucontext.DeviceProvider, or
// opened standalone on the Vulkan backend.
package device

import (
	"fmt"
	"sync"

	"github.com/gogpu/dither"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Register the Vulkan backend for standalone devices.
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// halProvider is implemented by hosts (such as gogpu) that expose their
// HAL device and queue.
type halProvider interface {
	HalDevice() any
	HalQueue() any
}

// Context owns, or borrows, a device and queue.
type Context struct {
	mu       sync.Mutex
	instance hal.Instance
	device   hal.Device
	queue    hal.Queue
	external bool
	released bool
	name     string
}

// Open returns a device context. A provider exposing HAL types is shared
// and never destroyed by the context; with a nil or foreign provider a
// standalone device is opened. Every failure wraps
// dither.ErrGraphicsUnavailable.
func Open(provider gpucontext.DeviceProvider) (*Context, error) {
	if provider != nil {
		c, err := fromProvider(provider)
		if err == nil {
			dither.Logger().Debug("device: using shared GPU device")
			return c, nil
		}
		dither.Logger().Debug("device: provider not usable, opening standalone", "reason", err)
	}
	return openStandalone()
}

func fromProvider(provider any) (*Context, error) {
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, fmt.Errorf("device: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("device: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("device: provider HalQueue is not hal.Queue")
	}
	return &Context{device: device, queue: queue, external: true, name: "shared"}, nil
}

func openStandalone() (*Context, error) {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, fmt.Errorf("vulkan backend not available: %w", dither.ErrGraphicsUnavailable)
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("create instance: %v: %w", err, dither.ErrGraphicsUnavailable)
	}
	selected := selectAdapter(instance.EnumerateAdapters(nil))
	if selected == nil {
		instance.Destroy()
		return nil, fmt.Errorf("no GPU adapters found: %w", dither.ErrGraphicsUnavailable)
	}
	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("open device: %v: %w", err, dither.ErrGraphicsUnavailable)
	}
	dither.Logger().Info("device: GPU device opened", "adapter", selected.Info.Name)
	return &Context{
		instance: instance,
		device:   openDev.Device,
		queue:    openDev.Queue,
		name:     selected.Info.Name,
	}, nil
}

// selectAdapter prefers a hardware GPU and falls back to the first adapter.
func selectAdapter(adapters []hal.ExposedAdapter) *hal.ExposedAdapter {
	if len(adapters) == 0 {
		return nil
	}
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			return &adapters[i]
		}
	}
	return &adapters[0]
}

// FromHAL wraps an existing device and queue. The context does not own
// them.
func FromHAL(device hal.Device, queue hal.Queue) (*Context, error) {
	if device == nil || queue == nil {
		return nil, fmt.Errorf("device: nil device or queue: %w", dither.ErrGraphicsUnavailable)
	}
	return &Context{device: device, queue: queue, external: true, name: "external"}, nil
}

// Device returns the HAL device, or nil after Release.
func (c *Context) Device() hal.Device {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.device
}

// Queue returns the HAL queue, or nil after Release.
func (c *Context) Queue() hal.Queue {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queue
}

// Name returns the adapter name, or "shared"/"external" for borrowed
// devices.
func (c *Context) Name() string { return c.name }

// Shared reports whether the device is borrowed from a host.
func (c *Context) Shared() bool { return c.external }

// Release destroys an owned device and instance. Borrowed devices are only
// forgotten. Safe to call multiple times.
func (c *Context) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.released {
		return
	}
	c.released = true
	if !c.external && c.device != nil {
		c.device.Destroy()
	}
	if c.instance != nil {
		c.instance.Destroy()
		c.instance = nil
	}
	c.device = nil
	c.queue = nil
}
