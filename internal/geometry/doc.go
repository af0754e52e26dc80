// Package geometry loads 2D meshes from the line-oriented geometry text format
// and uploads them into GPU vertex and index buffers.
//
// # File Format
//
// A geometry file holds two sections introduced by literal header lines:
//
//	# comments start with '#'
//	[points]
//	-0.5 -0.5  1.0 0.0 0.0
//	+0.5 -0.5  0.0 1.0 0.0
//	+0.0 +0.5  0.0 0.0 1.0
//
//	[indices]
//	0 1 2
//
// Each point line carries five floats (x, y, r, g, b). Each index line carries
// three unsigned 16-bit vertex indices, one triangle per line. Comment and
// blank lines are skipped everywhere; lines before the first header are
// ignored. The parser is lenient: every other line in a section yields exactly
// five floats or three indices. Missing fields and every field from the first
// malformed one on read as zero, so a bad line never shifts later vertices.
//
// After parsing, the index list is padded with a zero to an even length so the
// index buffer size stays a multiple of four bytes. [Mesh.IndexCount] reports
// the unpadded count used for drawing.
package geometry
