package gi_test

import (
	"encoding/binary"
	"errors"
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-gi/common"
	"github.com/Carmen-Shannon/oxy-gi/engine/camera"
	"github.com/Carmen-Shannon/oxy-gi/engine/gi"
	"github.com/Carmen-Shannon/oxy-gi/engine/renderer"
	"github.com/Carmen-Shannon/oxy-gi/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// renderCall records one RenderCube.
type renderCall struct {
	target   string
	mode     renderer.CaptureMode
	position common.Vec3
	keys     []string
	lighting int
	released bool
}

// dispatchCall records one DispatchCompute.
type dispatchCall struct {
	key      string
	uniform  []byte
	textures []string
	output   uint64
	groups   [3]uint32
}

// fakeDevice is a gi.Device without a GPU. Readbacks are synthesized from the last dispatch:
// surfel kernels return surfels at the params position with the seed in Albedo[0], the SH kernel
// returns seed+k in every coefficient.
type fakeDevice struct {
	mu          sync.Mutex
	mode        renderer.CaptureMode
	liveTargets int
	targets     int
	targetSizes []uint32
	liveBuffers int
	renders     []renderCall
	dispatches  []dispatchCall
	flushes     int

	failTarget   int
	failDispatch error
	panicRender  bool

	gateOnce sync.Once
	started  chan struct{}
	gate     chan struct{}
}

var _ gi.Device = &fakeDevice{}

type fakeTarget struct {
	dev      *fakeDevice
	label    string
	res      uint32
	released bool
}

func (t *fakeTarget) Label() string                              { return t.label }
func (t *fakeTarget) Resolution() uint32                         { return t.res }
func (t *fakeTarget) Format() wgpu.TextureFormat                 { return wgpu.TextureFormatRGBA32Float }
func (t *fakeTarget) FaceView(common.CubeFace) *wgpu.TextureView { return nil }
func (t *fakeTarget) ArrayView() *wgpu.TextureView               { return nil }
func (t *fakeTarget) DepthView() *wgpu.TextureView               { return nil }
func (t *fakeTarget) Released() bool                             { return t.released }

func (t *fakeTarget) Release() {
	t.dev.mu.Lock()
	defer t.dev.mu.Unlock()
	if !t.released {
		t.released = true
		t.dev.liveTargets--
	}
}

type fakeBuffer struct {
	dev      *fakeDevice
	label    string
	size     uint64
	released bool
	data     []byte
}

func (b *fakeBuffer) Label() string        { return b.label }
func (b *fakeBuffer) Size() uint64         { return b.size }
func (b *fakeBuffer) Buffer() *wgpu.Buffer { return nil }

func (b *fakeBuffer) Release() {
	b.dev.mu.Lock()
	defer b.dev.mu.Unlock()
	if !b.released {
		b.released = true
		b.dev.liveBuffers--
	}
}

func (d *fakeDevice) CreateCubeTarget(label string, resolution uint32) (renderer.CubeTarget, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.targets++
	if d.failTarget > 0 && d.targets == d.failTarget {
		return nil, errors.New("out of memory")
	}
	d.liveTargets++
	d.targetSizes = append(d.targetSizes, resolution)
	return &fakeTarget{dev: d, label: label, res: resolution}, nil
}

func (d *fakeDevice) SetCaptureMode(mode renderer.CaptureMode) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.mode = mode
}

func (d *fakeDevice) RenderCube(target renderer.CubeTarget, cam camera.Camera, scene renderer.CubeScene) error {
	if d.gate != nil {
		d.gateOnce.Do(func() {
			d.started <- struct{}{}
			<-d.gate
		})
	}
	if d.panicRender {
		panic("device lost")
	}
	call := renderCall{target: target.Label(), position: cam.Position(), lighting: len(scene.Lighting)}
	for _, item := range scene.Draws {
		call.keys = append(call.keys, item.PipelineKey)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	call.mode = d.mode
	if ft, ok := target.(*fakeTarget); ok {
		call.released = ft.released
	}
	d.renders = append(d.renders, call)
	return nil
}

func (d *fakeDevice) CreateStorageBuffer(label string, size uint64) (renderer.GPUBuffer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.liveBuffers++
	return &fakeBuffer{dev: d, label: label, size: size}, nil
}

func (d *fakeDevice) DispatchCompute(key string, bindings renderer.ComputeBindings, groups [3]uint32) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	call := dispatchCall{key: key, uniform: append([]byte(nil), bindings.Uniform...), output: bindings.Output.Size(), groups: groups}
	for _, t := range bindings.Textures {
		call.textures = append(call.textures, t.Label())
	}
	d.dispatches = append(d.dispatches, call)
	if d.failDispatch != nil {
		return d.failDispatch
	}

	buf := bindings.Output.(*fakeBuffer)
	buf.data = make([]byte, buf.size)
	switch key {
	case pipeline.KeySurfelSample:
		seed := math.Float32frombits(binary.LittleEndian.Uint32(bindings.Uniform[12:]))
		for i := range gi.RayNum {
			s := gi.Surfel{Validity: 1}
			for c := range 3 {
				s.Position[c] = math.Float32frombits(binary.LittleEndian.Uint32(bindings.Uniform[c*4:]))
			}
			s.Normal = [3]float32{0, 1, 0}
			s.Albedo = [3]float32{seed, float32(i), 0}
			s.MarshalTo(buf.data[i*gi.SurfelStride:])
		}
	case pipeline.KeySHProject:
		seed := math.Float32frombits(binary.LittleEndian.Uint32(bindings.Uniform[0:]))
		for k := range gi.SHCount {
			binary.LittleEndian.PutUint32(buf.data[k*4:], math.Float32bits(seed+float32(k)))
		}
	}
	return nil
}

func (d *fakeDevice) ReadBuffer(buf renderer.GPUBuffer) ([]byte, error) {
	fb := buf.(*fakeBuffer)
	if fb.data == nil {
		return make([]byte, fb.size), nil
	}
	return fb.data, nil
}

func (d *fakeDevice) Flush() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.flushes++
}

func (d *fakeDevice) counts() (renders, dispatches, liveTargets, liveBuffers int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.renders), len(d.dispatches), d.liveTargets, d.liveBuffers
}
