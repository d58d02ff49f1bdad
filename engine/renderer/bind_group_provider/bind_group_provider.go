// Package bind_group_provider holds the GPU handles a drawable owns: its uniform buffers, the
// bind group over them and, for meshes, the vertex and index buffers.
package bind_group_provider

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// BufferWrite is a pending upload of Data into the uniform buffer at Binding of Provider,
// starting Offset bytes in. Writes whose target buffer has not been allocated are skipped.
type BufferWrite struct {
	Provider BindGroupProvider
	Binding  int
	Offset   uint64
	Data     []byte
}

// BindGroupProvider is the GPU-side half of a capture camera, a game object or a model. The
// owner only creates it with a label; the renderer allocates everything else lazily the
// first time the owner is drawn, and the owner calls Release when it is torn down.
type BindGroupProvider interface {
	// Label returns the name used for every GPU object allocated on this provider.
	//
	// Returns:
	//   - string: the label
	Label() string

	// BindGroup returns the bind group over the uniform buffers, nil until allocated.
	//
	// Returns:
	//   - *wgpu.BindGroup: the bind group or nil
	BindGroup() *wgpu.BindGroup

	// Buffer returns the uniform buffer at a binding, nil until allocated.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - *wgpu.Buffer: the buffer or nil
	Buffer(binding int) *wgpu.Buffer

	// VertexBuffer returns the mesh vertex buffer, nil until uploaded.
	//
	// Returns:
	//   - *wgpu.Buffer: the vertex buffer or nil
	VertexBuffer() *wgpu.Buffer

	// IndexBuffer returns the mesh index buffer, nil until uploaded.
	//
	// Returns:
	//   - *wgpu.Buffer: the index buffer or nil
	IndexBuffer() *wgpu.Buffer

	// IndexCount returns how many indices a draw of this mesh consumes.
	//
	// Returns:
	//   - int: the index count
	IndexCount() int

	SetBindGroup(bg *wgpu.BindGroup)
	SetBuffer(binding int, buf *wgpu.Buffer)
	SetVertexBuffer(buf *wgpu.Buffer)
	SetIndexBuffer(buf *wgpu.Buffer)
	SetIndexCount(count int)

	// Release frees every GPU handle and resets the provider to its unallocated state. It is
	// safe to call repeatedly.
	Release()
}

type bindGroupProvider struct {
	label     string
	bindGroup *wgpu.BindGroup
	uniforms  map[int]*wgpu.Buffer

	vertices   *wgpu.Buffer
	indices    *wgpu.Buffer
	indexCount int
}

var _ BindGroupProvider = &bindGroupProvider{}

// NewBindGroupProvider returns an unallocated provider.
//
// Parameters:
//   - label: the GPU object label
//   - options: optional BindGroupProviderOption values
//
// Returns:
//   - BindGroupProvider: the provider
func NewBindGroupProvider(label string, options ...BindGroupProviderOption) BindGroupProvider {
	p := &bindGroupProvider{label: label, uniforms: map[int]*wgpu.Buffer{}}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *bindGroupProvider) Label() string                    { return p.label }
func (p *bindGroupProvider) BindGroup() *wgpu.BindGroup       { return p.bindGroup }
func (p *bindGroupProvider) Buffer(b int) *wgpu.Buffer        { return p.uniforms[b] }
func (p *bindGroupProvider) VertexBuffer() *wgpu.Buffer       { return p.vertices }
func (p *bindGroupProvider) IndexBuffer() *wgpu.Buffer        { return p.indices }
func (p *bindGroupProvider) IndexCount() int                  { return p.indexCount }
func (p *bindGroupProvider) SetBindGroup(bg *wgpu.BindGroup)  { p.bindGroup = bg }
func (p *bindGroupProvider) SetVertexBuffer(buf *wgpu.Buffer) { p.vertices = buf }
func (p *bindGroupProvider) SetIndexBuffer(buf *wgpu.Buffer)  { p.indices = buf }
func (p *bindGroupProvider) SetIndexCount(count int)          { p.indexCount = count }

func (p *bindGroupProvider) SetBuffer(binding int, buf *wgpu.Buffer) {
	if p.uniforms == nil {
		p.uniforms = map[int]*wgpu.Buffer{}
	}
	p.uniforms[binding] = buf
}

func (p *bindGroupProvider) Release() {
	if p.bindGroup != nil {
		p.bindGroup.Release()
	}
	for _, buf := range []*wgpu.Buffer{p.vertices, p.indices} {
		if buf != nil {
			buf.Release()
		}
	}
	for _, buf := range p.uniforms {
		if buf != nil {
			buf.Release()
		}
	}
	p.bindGroup, p.vertices, p.indices, p.indexCount = nil, nil, nil, 0
	clear(p.uniforms)
}
