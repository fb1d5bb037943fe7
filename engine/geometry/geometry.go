package geometry

import (
	"encoding/binary"
	"sync/atomic"

	"github.com/Carmen-Shannon/cubefall/common"
	bgp "github.com/Carmen-Shannon/cubefall/engine/renderer/bind_group_provider"
	"github.com/chewxy/math32"
)

var geometryCount atomic.Uint64

type geometry struct {
	id             uint64
	name           string
	vertices       []GPUVertex
	indices        []uint32
	boundingRadius float32
	meshProvider   bgp.BindGroupProvider
}

// Geometry is immutable vertex and index data shared by any number of meshes.
// The GPU copy of the data lives in the mesh provider and is uploaded once by the renderer.
type Geometry interface {
	// ID returns the geometry's process-unique identifier.
	ID() uint64

	// Name returns the geometry's name.
	Name() string

	// Vertices returns the vertex list. Callers must not modify it.
	Vertices() []GPUVertex

	// Indices returns the triangle index list. Callers must not modify it.
	Indices() []uint32

	// IndexCount returns len(Indices()).
	IndexCount() int

	// VertexData returns the vertices as raw bytes for GPU upload.
	//
	// Returns:
	//   - []byte: a view over the vertex memory
	VertexData() []byte

	// IndexData returns the indices as little-endian uint32 bytes for GPU upload.
	//
	// Returns:
	//   - []byte: the encoded index buffer
	IndexData() []byte

	// BoundingRadius returns the radius of a sphere centred on the origin enclosing every vertex.
	BoundingRadius() float32

	// MeshProvider returns the provider holding this geometry's GPU vertex and index buffers.
	MeshProvider() bgp.BindGroupProvider
}

var _ Geometry = &geometry{}

// NewGeometry creates a Geometry from raw vertex and index data.
//
// Parameters:
//   - vertices: the vertex list
//   - indices: triangle-list indices into vertices
//   - options: functional options
//
// Returns:
//   - Geometry: the new geometry
func NewGeometry(vertices []GPUVertex, indices []uint32, options ...GeometryBuilderOption) Geometry {
	g := &geometry{
		id:       geometryCount.Add(1),
		name:     "geometry",
		vertices: vertices,
		indices:  indices,
	}
	for _, opt := range options {
		opt(g)
	}
	for _, v := range vertices {
		r := math32.Sqrt(v.Position[0]*v.Position[0] + v.Position[1]*v.Position[1] + v.Position[2]*v.Position[2])
		g.boundingRadius = max(g.boundingRadius, r)
	}
	if g.meshProvider == nil {
		g.meshProvider = bgp.NewBindGroupProvider(g.name + "_mesh")
	}
	return g
}

// NewBoxGeometry creates an axis-aligned box centred on the origin with 24 vertices (4 per face,
// so every face has its own normal) and 36 indices.
//
// Parameters:
//   - width, height, depth: box extents along X, Y and Z
//   - options: functional options
//
// Returns:
//   - Geometry: the box geometry
func NewBoxGeometry(width, height, depth float32, options ...GeometryBuilderOption) Geometry {
	x, y, z := width/2, height/2, depth/2

	type face struct {
		corners [4][3]float32
		normal  [3]float32
	}
	faces := [6]face{
		{[4][3]float32{{x, -y, -z}, {x, y, -z}, {x, y, z}, {x, -y, z}}, [3]float32{1, 0, 0}},
		{[4][3]float32{{-x, -y, z}, {-x, y, z}, {-x, y, -z}, {-x, -y, -z}}, [3]float32{-1, 0, 0}},
		{[4][3]float32{{-x, y, -z}, {-x, y, z}, {x, y, z}, {x, y, -z}}, [3]float32{0, 1, 0}},
		{[4][3]float32{{-x, -y, z}, {-x, -y, -z}, {x, -y, -z}, {x, -y, z}}, [3]float32{0, -1, 0}},
		{[4][3]float32{{-x, -y, z}, {x, -y, z}, {x, y, z}, {-x, y, z}}, [3]float32{0, 0, 1}},
		{[4][3]float32{{x, -y, -z}, {-x, -y, -z}, {-x, y, -z}, {x, y, -z}}, [3]float32{0, 0, -1}},
	}
	uvs := [4][2]float32{{0, 1}, {1, 1}, {1, 0}, {0, 0}}

	vertices := make([]GPUVertex, 0, 24)
	indices := make([]uint32, 0, 36)
	for fi, f := range faces {
		for ci, c := range f.corners {
			vertices = append(vertices, GPUVertex{Position: c, Normal: f.normal, TexCoord: uvs[ci]})
		}
		base := uint32(fi * 4)
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}

	return NewGeometry(vertices, indices, append([]GeometryBuilderOption{WithName("box")}, options...)...)
}

func (g *geometry) ID() uint64 {
	return g.id
}

func (g *geometry) Name() string {
	return g.name
}

func (g *geometry) Vertices() []GPUVertex {
	return g.vertices
}

func (g *geometry) Indices() []uint32 {
	return g.indices
}

func (g *geometry) IndexCount() int {
	return len(g.indices)
}

func (g *geometry) VertexData() []byte {
	return common.SliceToBytes(g.vertices)
}

func (g *geometry) IndexData() []byte {
	buf := make([]byte, len(g.indices)*4)
	for i, idx := range g.indices {
		binary.LittleEndian.PutUint32(buf[i*4:], idx)
	}
	return buf
}

func (g *geometry) BoundingRadius() float32 {
	return g.boundingRadius
}

func (g *geometry) MeshProvider() bgp.BindGroupProvider {
	return g.meshProvider
}
