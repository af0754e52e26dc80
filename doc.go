// Package beany is a minimal real-time WebGPU renderer.
//
// An Application opens a window, acquires a GPU session (instance, surface,
// adapter, device, queue), builds one render pipeline from a WGSL shader,
// uploads a small 2D mesh and then draws it every frame until the window is
// closed or Escape is pressed.
//
// Geometry files are line based. A "[points]" section holds one vertex per
// line as x y r g b; a "[indices]" section holds one triangle per line as
// three vertex indices. Missing or malformed fields read as zero.
//
//	[points]
//	-0.5 -0.5 1.0 0.0 0.0
//	 0.5 -0.5 0.0 1.0 0.0
//	 0.0  0.5 0.0 0.0 1.0
//	[indices]
//	0 1 2
//
// Logging is silent by default; see SetLogger.
package beany
