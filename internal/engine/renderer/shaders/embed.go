// Package shaders provides embedded GLSL shader sources.
package shaders

import _ "embed"

// PhongVertexShader transforms lit meshes and their shadow coordinates.
//
//go:embed phong.vert
var PhongVertexShader string

// PhongFragmentShader shades meshes with Blinn-Phong, fog and shadows.
//
//go:embed phong.frag
var PhongFragmentShader string

// DepthVertexShader renders casters into the shadow map.
//
//go:embed depth.vert
var DepthVertexShader string

// DepthFragmentShader is the empty fragment stage of the depth pass.
//
//go:embed depth.frag
var DepthFragmentShader string
