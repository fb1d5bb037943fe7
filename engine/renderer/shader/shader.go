package shader

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// Language identifies the shading language a Shader's sources are written in.
type Language int

const (
	// LanguageWGSL is WebGPU Shading Language; vertex and fragment stages share one module.
	LanguageWGSL Language = iota

	// LanguageGLSL is OpenGL Shading Language 4.10 core; each stage has its own source.
	LanguageGLSL
)

// String returns the language name.
func (l Language) String() string {
	switch l {
	case LanguageWGSL:
		return "wgsl"
	case LanguageGLSL:
		return "glsl"
	default:
		return "unknown"
	}
}

// shader is the implementation of the Shader interface.
type shader struct {
	key                        string
	language                   Language
	vertexSource               string
	fragmentSource             string
	vertexEntryPoint           string
	fragmentEntryPoint         string
	bindGroupLayoutDescriptors []wgpu.BindGroupLayoutDescriptor
	vertexLayouts              []wgpu.VertexBufferLayout
}

// Shader is a vertex/fragment program together with the resource layout the renderer must build
// to drive it. For WGSL the vertex and fragment sources are the same module.
type Shader interface {
	// Key retrieves the unique identifier for this shader, used for caching and lookups.
	//
	// Returns:
	//   - string: the shader's unique key
	Key() string

	// Language reports which shading language the sources use.
	//
	// Returns:
	//   - Language: the shading language
	Language() Language

	// VertexSource retrieves the vertex stage source code.
	//
	// Returns:
	//   - string: the source code
	VertexSource() string

	// FragmentSource retrieves the fragment stage source code.
	//
	// Returns:
	//   - string: the source code
	FragmentSource() string

	// VertexEntryPoint returns the vertex stage entry point name.
	//
	// Returns:
	//   - string: the entry point (e.g. "vs_main", "main")
	VertexEntryPoint() string

	// FragmentEntryPoint returns the fragment stage entry point name.
	//
	// Returns:
	//   - string: the entry point (e.g. "fs_main", "main")
	FragmentEntryPoint() string

	// BindGroupLayoutDescriptor retrieves the layout descriptor of one bind group.
	//
	// Parameters:
	//   - group: the bind group index
	//
	// Returns:
	//   - wgpu.BindGroupLayoutDescriptor: the descriptor, or an empty descriptor if the group is not used
	BindGroupLayoutDescriptor(group int) wgpu.BindGroupLayoutDescriptor

	// BindGroupLayoutDescriptors retrieves the layout descriptors of every bind group, indexed by group.
	//
	// Returns:
	//   - []wgpu.BindGroupLayoutDescriptor: descriptors in group order
	BindGroupLayoutDescriptors() []wgpu.BindGroupLayoutDescriptor

	// VertexLayouts retrieves the vertex buffer layouts, indexed by vertex buffer slot.
	//
	// Returns:
	//   - []wgpu.VertexBufferLayout: the layouts
	VertexLayouts() []wgpu.VertexBufferLayout
}

var _ Shader = &shader{}

// NewShader creates a Shader from its sources.
//
// Parameters:
//   - key: unique identifier for the shader
//   - language: the shading language of the sources
//   - vertexSource: vertex stage source
//   - fragmentSource: fragment stage source (the same module for WGSL)
//   - options: functional options
//
// Returns:
//   - Shader: the new shader
func NewShader(key string, language Language, vertexSource, fragmentSource string, options ...ShaderBuilderOption) Shader {
	s := &shader{
		key:                key,
		language:           language,
		vertexSource:       vertexSource,
		fragmentSource:     fragmentSource,
		vertexEntryPoint:   "main",
		fragmentEntryPoint: "main",
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Language() Language {
	return s.language
}

func (s *shader) VertexSource() string {
	return s.vertexSource
}

func (s *shader) FragmentSource() string {
	return s.fragmentSource
}

func (s *shader) VertexEntryPoint() string {
	return s.vertexEntryPoint
}

func (s *shader) FragmentEntryPoint() string {
	return s.fragmentEntryPoint
}

func (s *shader) BindGroupLayoutDescriptor(group int) wgpu.BindGroupLayoutDescriptor {
	if group < 0 || group >= len(s.bindGroupLayoutDescriptors) {
		return wgpu.BindGroupLayoutDescriptor{}
	}
	return s.bindGroupLayoutDescriptors[group]
}

func (s *shader) BindGroupLayoutDescriptors() []wgpu.BindGroupLayoutDescriptor {
	return s.bindGroupLayoutDescriptors
}

func (s *shader) VertexLayouts() []wgpu.VertexBufferLayout {
	return s.vertexLayouts
}
