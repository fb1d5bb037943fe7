package shader

import (
	_ "embed"

	"github.com/cogentcore/webgpu/wgpu"
)

//go:embed assets/mesh.wgsl
var meshWGSLSource string

//go:embed assets/mesh.vert.glsl
var meshVertexGLSLSource string

//go:embed assets/mesh.frag.glsl
var meshFragmentGLSLSource string

const (
	// MeshShaderKey identifies the unlit instanced mesh program.
	MeshShaderKey = "mesh_unlit"

	// CameraGroup is the bind group holding the camera uniform.
	CameraGroup = 0

	// InstanceGroup is the bind group holding the per-instance storage buffer.
	InstanceGroup = 1

	// CameraUniformSize is the byte size of the CameraUniform struct.
	CameraUniformSize = 80

	// InstanceStride is the byte size of one Instance struct (model matrix + colour).
	InstanceStride = 80
)

// GLSL vertex attribute locations of the mesh program. The model matrix occupies four
// consecutive locations starting at AttribModel.
const (
	AttribPosition = 0
	AttribNormal   = 1
	AttribUV       = 2
	AttribModel    = 3
	AttribColor    = 7
)

// ViewProjUniform is the GLSL uniform name of the view-projection matrix.
const ViewProjUniform = "u_view_proj"

// MeshWGSL returns the WebGPU version of the unlit instanced mesh program.
//
// Returns:
//   - Shader: the shader with its bind group and vertex layouts populated
func MeshWGSL() Shader {
	camera := wgpu.BindGroupLayoutEntry{
		Binding:    0,
		Visibility: wgpu.ShaderStageVertex,
	}
	camera.Buffer.Type = wgpu.BufferBindingTypeUniform
	camera.Buffer.MinBindingSize = CameraUniformSize

	instances := wgpu.BindGroupLayoutEntry{
		Binding:    0,
		Visibility: wgpu.ShaderStageVertex,
	}
	instances.Buffer.Type = wgpu.BufferBindingTypeReadOnlyStorage
	instances.Buffer.MinBindingSize = InstanceStride

	return NewShader(MeshShaderKey, LanguageWGSL, meshWGSLSource, meshWGSLSource,
		WithEntryPoints("vs_main", "fs_main"),
		WithBindGroupLayouts(
			wgpu.BindGroupLayoutDescriptor{Label: "camera_bgl", Entries: []wgpu.BindGroupLayoutEntry{camera}},
			wgpu.BindGroupLayoutDescriptor{Label: "instance_bgl", Entries: []wgpu.BindGroupLayoutEntry{instances}},
		),
		WithVertexLayouts(wgpu.VertexBufferLayout{
			ArrayStride: 32,
			StepMode:    wgpu.VertexStepModeVertex,
			Attributes: []wgpu.VertexAttribute{
				{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: AttribPosition},
				{Format: wgpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: AttribNormal},
				{Format: wgpu.VertexFormatFloat32x2, Offset: 24, ShaderLocation: AttribUV},
			},
		}),
	)
}

// MeshGLSL returns the OpenGL 4.1 version of the unlit instanced mesh program.
//
// Returns:
//   - Shader: the shader; GLSL programs carry no wgpu layouts
func MeshGLSL() Shader {
	return NewShader(MeshShaderKey, LanguageGLSL, meshVertexGLSLSource, meshFragmentGLSLSource)
}
