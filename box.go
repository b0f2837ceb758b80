package scenery

import (
	"fmt"
	"io/fs"

	"github.com/solarlune/tetra3d"
	"github.com/solarlune/tetra3d/colors"
)

// BoxKind tags which of the two box renditions NewBox produced.
type BoxKind int

const (
	// BoxSolid is a filled box with one material (or one per face, when
	// textured).
	BoxSolid BoxKind = iota
	// BoxWireframe is a box rendered as its 12 edges only, as a flat-colored
	// line set.
	BoxWireframe
)

// Box is the result of NewBox: the created Model tagged with whether it is a
// solid box or a wireframe line set.
type Box struct {
	Kind  BoxKind
	Model *tetra3d.Model
}

// BoxOptions configures NewBox.
type BoxOptions struct {
	Name string // Name of the resulting Model; defaults to "box"

	Width  float64 // Size along X; defaults to 1
	Height float64 // Size along Y; defaults to 1
	Depth  float64 // Size along Z; defaults to 1

	SegmentsX int // Subdivisions along X; defaults to 1
	SegmentsY int // Subdivisions along Y; defaults to 1
	SegmentsZ int // Subdivisions along Z; defaults to 1

	// Solid selects between a filled box and a wireframe of its edges.
	// A wireframe box ignores Textures and renders only the edge outline.
	Solid bool

	// Textures are image files tiled across the six faces in the face order
	// +Z, -Z, +X, -X, +Y, -Y; a list shorter than six repeats. Each face
	// gets its own material.
	Textures []string
	FS       fs.FS // Filesystem Textures are read from; nil reads from the OS

	Color     tetra3d.Color // Flat color, used when Textures is empty and for wireframes
	LineWidth float64       // Thickness of wireframe edges; defaults to 0.02

	Scale    tetra3d.Vector
	Position tetra3d.Vector

	OnFrame  AnimationFunc
	Registry *Registry
	Scene    *tetra3d.Scene
}

// DefaultBoxOptions creates a BoxOptions for a solid white unit cube.
func DefaultBoxOptions() BoxOptions {
	return BoxOptions{
		Name:      "box",
		Width:     1,
		Height:    1,
		Depth:     1,
		SegmentsX: 1,
		SegmentsY: 1,
		SegmentsZ: 1,
		Solid:     true,
		Color:     colors.White(),
		LineWidth: 0.02,
		Scale:     tetra3d.NewVector(1, 1, 1),
	}
}

// NewBox builds a solid or wireframe box Model, applies the transform,
// animation registration and scene attachment, and returns it tagged with
// its kind. Textured faces are decoded off-thread when a Registry is given.
func NewBox(options BoxOptions) (*Box, error) {

	if options.Width < 0 || options.Height < 0 || options.Depth < 0 || options.LineWidth < 0 {
		logger().Warn("scenery: box dimensions must not be negative")
		return nil, fmt.Errorf("%w: negative box dimensions", ErrInvalidOptions)
	}

	if options.Name == "" {
		options.Name = "box"
	}
	if options.Width == 0 {
		options.Width = 1
	}
	if options.Height == 0 {
		options.Height = 1
	}
	if options.Depth == 0 {
		options.Depth = 1
	}
	if options.SegmentsX < 1 {
		options.SegmentsX = 1
	}
	if options.SegmentsY < 1 {
		options.SegmentsY = 1
	}
	if options.SegmentsZ < 1 {
		options.SegmentsZ = 1
	}
	if options.LineWidth == 0 {
		options.LineWidth = 0.02
	}
	if options.Color == (tetra3d.Color{}) {
		options.Color = colors.White()
	}

	var (
		mesh *tetra3d.Mesh
		kind BoxKind
	)

	if options.Solid {
		kind = BoxSolid
		mesh = newBoxMesh(options)
	} else {
		kind = BoxWireframe
		mesh = newBoxEdgeMesh(options)
	}

	model := tetra3d.NewModel(options.Name, mesh)
	finishNode(model, options.Scale, options.Position, options.OnFrame, options.Registry, options.Scene)

	return &Box{Kind: kind, Model: model}, nil

}

// boxFace describes one face of a box: its outward axis and the in-face
// basis used to lay out the vertex grid.
type boxFace struct {
	normal, uAxis, vAxis tetra3d.Vector
	uSize, vSize         float64
	uSegs, vSegs         int
}

func boxFaces(options BoxOptions) []boxFace {

	w, h, d := options.Width, options.Height, options.Depth
	sx, sy, sz := options.SegmentsX, options.SegmentsY, options.SegmentsZ

	x := tetra3d.NewVector(1, 0, 0)
	y := tetra3d.NewVector(0, 1, 0)
	z := tetra3d.NewVector(0, 0, 1)

	// Face order: +Z, -Z, +X, -X, +Y, -Y.
	return []boxFace{
		{z, x, y, w, h, sx, sy},
		{z.Invert(), x.Invert(), y, w, h, sx, sy},
		{x, z.Invert(), y, d, h, sz, sy},
		{x.Invert(), z, y, d, h, sz, sy},
		{y, x, z.Invert(), w, d, sx, sz},
		{y.Invert(), x, z, w, d, sx, sz},
	}

}

// faceOffset returns how far along its normal a face sits.
func faceOffset(face boxFace, options BoxOptions) float64 {
	switch {
	case face.normal.X != 0:
		return options.Width / 2
	case face.normal.Y != 0:
		return options.Height / 2
	default:
		return options.Depth / 2
	}
}

// newBoxMesh builds a solid box out of six subdivided faces. With textures,
// each face becomes its own MeshPart with its own textured material; without,
// all faces share one flat-shaded color material.
func newBoxMesh(options BoxOptions) *tetra3d.Mesh {

	mesh := tetra3d.NewMesh(options.Name)

	var sharedMaterial *tetra3d.Material
	if len(options.Textures) == 0 {
		sharedMaterial = tetra3d.NewMaterial(options.Name)
		sharedMaterial.Color = options.Color
		sharedMaterial.Shadeless = true
	}

	vertexCount := 0
	var sharedIndices []int

	for faceIndex, face := range boxFaces(options) {

		offset := faceOffset(face, options)

		verts := make([]tetra3d.VertexInfo, 0, (face.uSegs+1)*(face.vSegs+1))

		for vi := 0; vi <= face.vSegs; vi++ {
			for ui := 0; ui <= face.uSegs; ui++ {

				u := float64(ui)/float64(face.uSegs) - 0.5
				v := float64(vi)/float64(face.vSegs) - 0.5

				pos := face.normal.Scale(offset).
					Add(face.uAxis.Scale(u * face.uSize)).
					Add(face.vAxis.Scale(v * face.vSize))

				verts = append(verts, tetra3d.NewVertex(pos.X, pos.Y, pos.Z,
					float64(ui)/float64(face.uSegs), 1-float64(vi)/float64(face.vSegs)))

			}
		}

		indices := make([]int, 0, face.uSegs*face.vSegs*6)
		stride := face.uSegs + 1
		for vi := 0; vi < face.vSegs; vi++ {
			for ui := 0; ui < face.uSegs; ui++ {
				a := vertexCount + vi*stride + ui
				b := a + 1
				c := a + stride + 1
				d := a + stride
				indices = append(indices, a, b, c, a, c, d)
			}
		}

		mesh.AddVertices(verts...)
		vertexCount += len(verts)

		if sharedMaterial != nil {
			sharedIndices = append(sharedIndices, indices...)
			continue
		}

		material := tetra3d.NewMaterial(fmt.Sprintf("%s face %d", options.Name, faceIndex))
		material.Color = options.Color
		applyTexture(material, options.FS, options.Textures[faceIndex%len(options.Textures)], options.Registry)
		mesh.AddMeshPart(material, indices...)

	}

	if sharedMaterial != nil {
		mesh.AddMeshPart(sharedMaterial, sharedIndices...)
	}

	mesh.UpdateBounds()
	mesh.AutoNormal()

	return mesh

}

// newBoxEdgeMesh builds the box's 12 edges as a line set: one thin,
// double-sided quad per edge, LineWidth thick, with a single flat color
// material and no texture.
func newBoxEdgeMesh(options BoxOptions) *tetra3d.Mesh {

	hw, hh, hd := options.Width/2, options.Height/2, options.Depth/2

	type edge struct{ from, to tetra3d.Vector }

	edges := make([]edge, 0, 12)

	// Four edges along each axis, at the four corners of the perpendicular
	// cross-section.
	for _, sy := range []float64{-1, 1} {
		for _, sz := range []float64{-1, 1} {
			edges = append(edges, edge{tetra3d.NewVector(-hw, sy*hh, sz*hd), tetra3d.NewVector(hw, sy*hh, sz*hd)})
		}
	}
	for _, sx := range []float64{-1, 1} {
		for _, sz := range []float64{-1, 1} {
			edges = append(edges, edge{tetra3d.NewVector(sx*hw, -hh, sz*hd), tetra3d.NewVector(sx*hw, hh, sz*hd)})
		}
	}
	for _, sx := range []float64{-1, 1} {
		for _, sy := range []float64{-1, 1} {
			edges = append(edges, edge{tetra3d.NewVector(sx*hw, sy*hh, -hd), tetra3d.NewVector(sx*hw, sy*hh, hd)})
		}
	}

	verts := make([]tetra3d.VertexInfo, 0, len(edges)*4)
	indices := make([]int, 0, len(edges)*6)

	for i, e := range edges {

		dir := e.to.Sub(e.from).Unit()
		mid := e.from.Add(e.to).Scale(0.5)

		// Thicken perpendicular to both the edge and its outward direction,
		// so the quad faces away from the box body.
		thick := dir.Cross(mid)
		if thick.Magnitude() == 0 {
			thick = tetra3d.NewVector(0, 0, 1)
		}
		thick = thick.Unit().Scale(options.LineWidth / 2)

		a := e.from.Add(thick)
		b := e.from.Sub(thick)
		c := e.to.Sub(thick)
		d := e.to.Add(thick)

		verts = append(verts,
			tetra3d.NewVertex(a.X, a.Y, a.Z, 0, 0),
			tetra3d.NewVertex(b.X, b.Y, b.Z, 0, 1),
			tetra3d.NewVertex(c.X, c.Y, c.Z, 1, 1),
			tetra3d.NewVertex(d.X, d.Y, d.Z, 1, 0),
		)

		base := i * 4
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)

	}

	mesh := tetra3d.NewMesh(options.Name, verts...)

	material := tetra3d.NewMaterial(options.Name)
	material.Color = options.Color
	material.Shadeless = true
	material.BackfaceCulling = false
	mesh.AddMeshPart(material, indices...)

	mesh.UpdateBounds()
	mesh.AutoNormal()

	return mesh

}
