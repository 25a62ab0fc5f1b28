package renderer

import "github.com/vexrender/core/driver"

// ShaderLoader resolves a shader's name to its compiled bytecode.
// Locating and compiling shader source is an external concern (asset
// pipeline, shader compiler invocation); this package only needs the
// resulting bytes, mirroring how config.RenderConfig treats
// EnvironmentMapPath and BRDFLUTPath as opaque paths for an external
// loader to resolve.
type ShaderLoader func(name string) ([]byte, error)

// shaderNames lists every shader binary a Renderer's pipeline set
// needs, keyed by the name a ShaderLoader receives.
var shaderNames = []string{
	"gbuffer.vert", "gbuffer.frag",
	"shadow.vert", "shadow.frag",
	"visibility_cull.comp",
	"depth_pyramid.comp",
	"ambient.frag",
	"light_volume.vert",
	"direct_point.frag", "direct_spot.frag", "direct_directional.frag",
	"fullscreen.vert",
	"forward_opaque.vert", "forward_opaque.frag",
	"forward_transparent.vert", "forward_transparent.frag",
	"forward_wireframe.vert", "forward_wireframe.frag",
	"forward_random_color.vert", "forward_random_color.frag",
	"forward_line_strip.vert", "forward_line_strip.frag",
	"forward_sprite.vert", "forward_sprite.frag",
	"present.frag",
	"ui_overlay.vert", "ui_overlay.frag",
}

// shaderSet holds every compiled driver.ShaderCode a Renderer's
// pipeline set draws from, keyed by name.
type shaderSet map[string]driver.ShaderCode

func loadShaders(gpu driver.GPU, load ShaderLoader) (shaderSet, error) {
	set := make(shaderSet, len(shaderNames))
	for _, name := range shaderNames {
		data, err := load(name)
		if err != nil {
			return nil, newRendErr("loading shader " + name + ": " + err.Error())
		}
		code, err := gpu.NewShaderCode(data)
		if err != nil {
			return nil, err
		}
		set[name] = code
	}
	return set, nil
}

func (s shaderSet) fn(name string) driver.ShaderFunc {
	return driver.ShaderFunc{Code: s[name], Name: "main"}
}

func (s shaderSet) destroy() {
	for _, code := range s {
		if code != nil {
			code.Destroy()
		}
	}
}
