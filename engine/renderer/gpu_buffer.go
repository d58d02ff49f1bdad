package renderer

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-gi/common"
	"github.com/cogentcore/webgpu/wgpu"
)

type gpuBuffer struct {
	label  string
	size   uint64
	buffer *wgpu.Buffer

	once      sync.Once
	onRelease func()
}

// GPUBuffer is a storage buffer written by a compute kernel and read back to the host.
type GPUBuffer interface {
	// Label returns the debug label of the buffer.
	//
	// Returns:
	//   - string: the label
	Label() string

	// Size returns the buffer size in bytes.
	//
	// Returns:
	//   - uint64: the size
	Size() uint64

	// Buffer returns the underlying GPU buffer.
	//
	// Returns:
	//   - *wgpu.Buffer: the buffer, nil after Release
	Buffer() *wgpu.Buffer

	// Release releases the GPU buffer. Calling it more than once is a no-op.
	Release()
}

var _ GPUBuffer = &gpuBuffer{}

func (b *gpuBuffer) Label() string {
	return b.label
}

func (b *gpuBuffer) Size() uint64 {
	return b.size
}

func (b *gpuBuffer) Buffer() *wgpu.Buffer {
	return b.buffer
}

func (b *gpuBuffer) Release() {
	b.once.Do(func() {
		if b.buffer != nil {
			b.buffer.Release()
			b.buffer = nil
		}
		if b.onRelease != nil {
			b.onRelease()
		}
		common.Logger().Debug("storage buffer released", "label", b.label, "size", b.size)
	})
}
