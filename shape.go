package scenery

import (
	"fmt"
	"io/fs"
	"math"

	"github.com/solarlune/tetra3d"
	"github.com/solarlune/tetra3d/colors"
)

// HalfTurn is the angle unit used by ShapeOptions' ThetaStart and
// ThetaLength: a half revolution, in radians. A full circle is 2 HalfTurns.
const HalfTurn = math.Pi

// ShapeOptions configures NewShape. The geometry is chosen by precedence:
// a positive Radius produces a ring or disc, otherwise positive Width and
// Height produce a plane, otherwise a Draw callback produces a filled custom
// outline, and otherwise the default circle of radius 10 is built.
type ShapeOptions struct {
	Name string // Name of the resulting Model; defaults to "shape"

	Radius      float64 // Outer radius of the ring / disc
	InnerRadius float64 // Inner radius of the ring; 0 produces a solid disc
	Segments    int     // Segment count around the ring; 3 produces a triangle, and so on
	ThetaStart  float64 // Start angle of the ring's sweep, in HalfTurns
	ThetaLength float64 // Length of the ring's sweep, in HalfTurns

	Width  float64 // Width of the plane
	Height float64 // Height of the plane

	Draw        func(*Outline) // Callback drawing a custom flat outline
	CurveDetail int            // Segments used to flatten each curve of the outline

	Color   tetra3d.Color // Flat material color
	Texture string        // Image file replacing the flat color
	FS      fs.FS         // Filesystem Texture is read from; nil reads from the OS

	Scale    tetra3d.Vector
	Position tetra3d.Vector

	OnFrame  AnimationFunc
	Registry *Registry
	Scene    *tetra3d.Scene
}

// DefaultShapeOptions creates a ShapeOptions with the default circle
// configuration: 32 segments, a full sweep, white color, identity transform.
func DefaultShapeOptions() ShapeOptions {
	return ShapeOptions{
		Name:        "shape",
		Segments:    32,
		ThetaLength: 2,
		CurveDetail: 8,
		Color:       colors.White(),
		Scale:       tetra3d.NewVector(1, 1, 1),
	}
}

// NewShape builds a flat shape Model according to the options' geometry
// precedence (ring > plane > drawn outline > default circle), applies the
// material, transform, animation registration and scene attachment, and
// returns the Model. The Model is returned synchronously; a Texture given
// together with a Registry is decoded off-thread and fills in later.
func NewShape(options ShapeOptions) (*tetra3d.Model, error) {

	if options.Radius < 0 || options.Width < 0 || options.Height < 0 || options.InnerRadius < 0 {
		logger().Warn("scenery: shape dimensions must not be negative")
		return nil, fmt.Errorf("%w: negative shape dimensions", ErrInvalidOptions)
	}

	if options.Name == "" {
		options.Name = "shape"
	}
	if options.Segments < 3 {
		options.Segments = 32
	}
	if options.ThetaLength == 0 {
		options.ThetaLength = 2
	}
	if options.Color == (tetra3d.Color{}) {
		options.Color = colors.White()
	}

	var mesh *tetra3d.Mesh

	switch {

	case options.Radius > 0:
		if options.InnerRadius >= options.Radius {
			logger().Warn("scenery: ring inner radius must be smaller than the outer radius")
			return nil, fmt.Errorf("%w: inner radius %g >= radius %g", ErrInvalidOptions, options.InnerRadius, options.Radius)
		}
		mesh = newRingMesh(options.Name, options.Radius, options.InnerRadius, options.Segments,
			options.ThetaStart*HalfTurn, options.ThetaLength*HalfTurn)

	case options.Width > 0 && options.Height > 0:
		mesh = newShapePlaneMesh(options.Name, options.Width, options.Height)

	case options.Draw != nil:
		outline := newOutline(options.CurveDetail)
		options.Draw(outline)
		var err error
		mesh, err = newOutlineMesh(options.Name, outline)
		if err != nil {
			logger().Warn("scenery: drawn outline could not be filled", "error", err)
			return nil, err
		}

	default:
		mesh = newRingMesh(options.Name, 10, 0, options.Segments, 0, 2*HalfTurn)

	}

	material := mesh.MeshParts[0].Material
	material.BackfaceCulling = false
	material.Color = options.Color
	if options.Texture != "" {
		applyTexture(material, options.FS, options.Texture, options.Registry)
	}

	model := tetra3d.NewModel(options.Name, mesh)
	finishNode(model, options.Scale, options.Position, options.OnFrame, options.Registry, options.Scene)

	return model, nil

}

// newShapeMesh assembles a Mesh from flat vertex data and triangle indices,
// with a fresh Material on a single MeshPart.
func newShapeMesh(name string, verts []tetra3d.VertexInfo, indices []int) *tetra3d.Mesh {
	mesh := tetra3d.NewMesh(name, verts...)
	mesh.AddMeshPart(tetra3d.NewMaterial(name), indices...)
	mesh.UpdateBounds()
	mesh.AutoNormal()
	return mesh
}

// newRingMesh builds a flat ring (or, with innerRadius 0, a disc) in the XY
// plane. thetaStart and thetaLength are in radians. UVs map the full outer
// circle into the unit square.
func newRingMesh(name string, radius, innerRadius float64, segments int, thetaStart, thetaLength float64) *tetra3d.Mesh {
	verts, indices := ringGeometry(radius, innerRadius, segments, thetaStart, thetaLength)
	return newShapeMesh(name, verts, indices)
}

func ringGeometry(radius, innerRadius float64, segments int, thetaStart, thetaLength float64) ([]tetra3d.VertexInfo, []int) {

	verts := make([]tetra3d.VertexInfo, 0, (segments+1)*2)

	uv := func(x, y float64) (float64, float64) {
		return x/(radius*2) + 0.5, y/(radius*2) + 0.5
	}

	for i := 0; i <= segments; i++ {

		angle := thetaStart + thetaLength*float64(i)/float64(segments)
		sin, cos := math.Sin(angle), math.Cos(angle)

		ix, iy := cos*innerRadius, sin*innerRadius
		ox, oy := cos*radius, sin*radius

		iu, iv := uv(ix, iy)
		ou, ov := uv(ox, oy)

		verts = append(verts,
			tetra3d.NewVertex(ix, iy, 0, iu, iv),
			tetra3d.NewVertex(ox, oy, 0, ou, ov),
		)

	}

	indices := make([]int, 0, segments*6)
	for i := 0; i < segments; i++ {
		in, out := i*2, i*2+1
		nextIn, nextOut := in+2, out+2
		indices = append(indices,
			in, out, nextOut,
			in, nextOut, nextIn,
		)
	}

	return verts, indices

}

// newShapePlaneMesh builds a single w x h quad in the XY plane, facing +Z.
func newShapePlaneMesh(name string, w, h float64) *tetra3d.Mesh {
	verts, indices := planeGeometry(w, h)
	return newShapeMesh(name, verts, indices)
}

func planeGeometry(w, h float64) ([]tetra3d.VertexInfo, []int) {

	hw, hh := w/2, h/2

	verts := []tetra3d.VertexInfo{
		tetra3d.NewVertex(-hw, -hh, 0, 0, 1),
		tetra3d.NewVertex(hw, -hh, 0, 1, 1),
		tetra3d.NewVertex(hw, hh, 0, 1, 0),
		tetra3d.NewVertex(-hw, hh, 0, 0, 0),
	}

	return verts, []int{0, 1, 2, 0, 2, 3}

}

// newOutlineMesh fills a drawn outline into a flat mesh, with each vertex's
// UV computed by normalizing its position into the outline's bounding box.
func newOutlineMesh(name string, outline *Outline) (*tetra3d.Mesh, error) {
	verts, indices, err := outlineGeometry(outline)
	if err != nil {
		return nil, err
	}
	return newShapeMesh(name, verts, indices), nil
}

func outlineGeometry(outline *Outline) ([]tetra3d.VertexInfo, []int, error) {

	points := outline.finalized()
	if len(points) < 3 {
		return nil, nil, fmt.Errorf("%w: drawn outline needs at least 3 points", ErrInvalidOptions)
	}

	triangles := triangulate(points)
	if len(triangles) == 0 {
		return nil, nil, fmt.Errorf("%w: drawn outline could not be triangulated", ErrInvalidOptions)
	}

	minX, minY, maxX, maxY := outlineBounds(points)
	spanX, spanY := maxX-minX, maxY-minY
	if spanX == 0 {
		spanX = 1
	}
	if spanY == 0 {
		spanY = 1
	}

	verts := make([]tetra3d.VertexInfo, 0, len(points))
	for _, p := range points {
		u := (p[0] - minX) / spanX
		v := 1 - (p[1]-minY)/spanY
		verts = append(verts, tetra3d.NewVertex(p[0], p[1], 0, u, v))
	}

	indices := make([]int, 0, len(triangles)*3)
	for _, tri := range triangles {
		indices = append(indices, tri[0], tri[1], tri[2])
	}

	return verts, indices, nil

}
