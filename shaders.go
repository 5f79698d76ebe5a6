package vfx

import (
	_ "embed"
)

//go:embed shaders/particles_init.wgsl
var initTemplateWGSL string

//go:embed shaders/particles_update.wgsl
var updateTemplateWGSL string

//go:embed shaders/particles_render.wgsl
var renderTemplateWGSL string
