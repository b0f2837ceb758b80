package scenery

import (
	"fmt"
	"io/fs"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/solarlune/tetra3d"
	"github.com/solarlune/tetra3d/colors"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
)

// TextOptions configures NewText and LoadTextAsync.
type TextOptions struct {
	Text string // The string to render; required
	Name string // Name of the resulting Model; defaults to "text"

	// Typeface selection: FontData (raw TTF/OTF bytes) wins over Font (a
	// TTF/OTF file read from FS or the OS filesystem); with neither, a
	// built-in bitmap face is used.
	Font     string
	FontData []byte
	FS       fs.FS

	FontSize float64 // Rasterized glyph size in pixels; defaults to 48
	Size     float64 // World-space height of the text; defaults to 1

	// Flat renders the text as a single textured quad. Otherwise the text is
	// extruded into a slab of the given Depth, with an optional beveled
	// front rim.
	Flat           bool
	Depth          float64 // Extrusion depth; defaults to 0.2
	BevelEnabled   bool
	BevelThickness float64 // How far the beveled front sticks out; defaults to 0.02
	BevelSize      float64 // How far the beveled front is inset; defaults to 0.05

	FgColor tetra3d.Color // Glyph color; defaults to white
	BgColor tetra3d.Color // Texture background; defaults to transparent

	// AutoCenter positions the text so it is horizontally centered on the
	// origin, overriding Position's X with the text's negative half-width.
	AutoCenter bool
	Position   tetra3d.Vector
	Scale      tetra3d.Vector

	OnFrame  AnimationFunc
	Registry *Registry
	Scene    *tetra3d.Scene
}

// DefaultTextOptions creates a TextOptions with the defaults described on
// the fields, with AutoCenter on.
func DefaultTextOptions() TextOptions {
	return TextOptions{
		Name:           "text",
		FontSize:       48,
		Size:           1,
		Depth:          0.2,
		BevelThickness: 0.02,
		BevelSize:      0.05,
		FgColor:        colors.White(),
		AutoCenter:     true,
		Scale:          tetra3d.NewVector(1, 1, 1),
	}
}

// Text is the result of NewText: the created Model, the texture the string
// was rendered into, and the text's world-space dimensions.
type Text struct {
	Model   *tetra3d.Model
	Texture *ebiten.Image
	Width   float64 // World-space width of the text
	Height  float64 // World-space height of the text
}

// NewText rasterizes the options' string with its typeface into a texture
// and builds either a flat textured quad or an extruded slab carrying the
// texture on its front and back faces. With AutoCenter, the Model's X
// position is set to the text's negative half-width so the text is centered
// on the origin. The typeface file, if any, is read synchronously; see
// LoadTextAsync for the non-blocking variant.
func NewText(options TextOptions) (*Text, error) {

	if options.Text == "" {
		logger().Warn("scenery: text string is required")
		return nil, fmt.Errorf("%w: empty text", ErrInvalidOptions)
	}

	face, err := resolveFace(options)
	if err != nil {
		logger().Warn("scenery: typeface could not be loaded", "font", options.Font, "error", err)
		return nil, err
	}

	return newTextWithFace(options, face), nil

}

// LoadTextAsync reads and parses the options' typeface off-thread, then
// builds the text through the Registry's queue on a following
// Registry.Update and calls onLoaded with the result. The Registry is
// required; everything NewText validates applies here too.
func LoadTextAsync(options TextOptions, onLoaded func(*Text, error)) error {

	if options.Registry == nil {
		logger().Warn("scenery: async text loading requires a Registry")
		return fmt.Errorf("%w: nil Registry", ErrInvalidOptions)
	}
	if options.Text == "" {
		logger().Warn("scenery: text string is required")
		return fmt.Errorf("%w: empty text", ErrInvalidOptions)
	}

	go func() {

		face, err := resolveFace(options)

		options.Registry.Queue(func() {
			if err != nil {
				logger().Warn("scenery: typeface could not be loaded", "font", options.Font, "error", err)
				if onLoaded != nil {
					onLoaded(nil, err)
				}
				return
			}
			result := newTextWithFace(options, face)
			if onLoaded != nil {
				onLoaded(result, nil)
			}
		})

	}()

	return nil

}

func resolveFace(options TextOptions) (font.Face, error) {

	data := options.FontData

	if data == nil && options.Font != "" {
		var err error
		if options.FS != nil {
			data, err = fs.ReadFile(options.FS, options.Font)
		} else {
			data, err = os.ReadFile(options.Font)
		}
		if err != nil {
			return nil, err
		}
	}

	if data == nil {
		return basicfont.Face7x13, nil
	}

	parsed, err := opentype.Parse(data)
	if err != nil {
		return nil, err
	}

	fontSize := options.FontSize
	if fontSize <= 0 {
		fontSize = 48
	}

	return opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    fontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})

}

func newTextWithFace(options TextOptions, face font.Face) *Text {

	if options.Name == "" {
		options.Name = "text"
	}
	if options.Size <= 0 {
		options.Size = 1
	}
	if options.Depth <= 0 {
		options.Depth = 0.2
	}
	if options.BevelThickness <= 0 {
		options.BevelThickness = 0.02
	}
	if options.BevelSize <= 0 {
		options.BevelSize = 0.05
	}
	if options.FgColor == (tetra3d.Color{}) {
		options.FgColor = colors.White()
	}

	texture := renderTextTexture(options, face)

	bounds := texture.Bounds()
	worldHeight := options.Size
	worldWidth := worldHeight * float64(bounds.Dx()) / float64(bounds.Dy())

	var mesh *tetra3d.Mesh
	if options.Flat {
		mesh = newShapePlaneMesh(options.Name, worldWidth, worldHeight)
		material := mesh.MeshParts[0].Material
		material.BackfaceCulling = false
		material.Shadeless = true
		material.TransparencyMode = tetra3d.TransparencyModeTransparent
		material.Texture = texture
	} else {
		mesh = newTextSlabMesh(options, texture, worldWidth, worldHeight)
	}

	model := tetra3d.NewModel(options.Name, mesh)

	position := options.Position
	if options.AutoCenter {
		position.X = -worldWidth / 2
	}

	finishNode(model, options.Scale, position, options.OnFrame, options.Registry, options.Scene)

	return &Text{
		Model:   model,
		Texture: texture,
		Width:   worldWidth,
		Height:  worldHeight,
	}

}

// renderTextTexture draws the string into a fresh texture sized to its
// bounds, over the background color.
func renderTextTexture(options TextOptions, face font.Face) *ebiten.Image {

	measure := text.BoundString(face, options.Text)

	w, h := measure.Dx(), measure.Dy()
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	texture := ebiten.NewImage(w, h)
	if options.BgColor != (tetra3d.Color{}) {
		texture.Fill(options.BgColor.ToRGBA64())
	}

	text.Draw(texture, options.Text, face, -measure.Min.X, -measure.Min.Y, options.FgColor.ToRGBA64())

	return texture

}

// newTextSlabMesh extrudes the text quad into a slab: textured front and
// back faces, flat-colored side walls, and, when beveling is on, a rim
// connecting the slab body to a raised, inset front face.
func newTextSlabMesh(options TextOptions, texture *ebiten.Image, w, h float64) *tetra3d.Mesh {

	hw, hh, hd := w/2, h/2, options.Depth/2

	frontZ := hd
	frontW, frontH := hw, hh
	if options.BevelEnabled {
		frontZ += options.BevelThickness
		frontW -= options.BevelSize
		frontH -= options.BevelSize
		if frontW <= 0 {
			frontW = hw
		}
		if frontH <= 0 {
			frontH = hh
		}
	}

	mesh := tetra3d.NewMesh(options.Name)

	faceMaterial := tetra3d.NewMaterial(options.Name + " face")
	faceMaterial.Shadeless = true
	faceMaterial.TransparencyMode = tetra3d.TransparencyModeTransparent
	faceMaterial.Texture = texture

	sideMaterial := tetra3d.NewMaterial(options.Name + " side")
	sideMaterial.Color = options.FgColor
	sideMaterial.BackfaceCulling = false

	vertexCount := 0
	quad := func(indices *[]int, a, b, c, d tetra3d.VertexInfo) {
		base := vertexCount
		mesh.AddVertices(a, b, c, d)
		vertexCount += 4
		*indices = append(*indices, base, base+1, base+2, base, base+2, base+3)
	}

	var faceIndices, sideIndices []int

	// Front (+Z) and back (-Z) textured faces.
	quad(&faceIndices,
		tetra3d.NewVertex(-frontW, -frontH, frontZ, 0, 1),
		tetra3d.NewVertex(frontW, -frontH, frontZ, 1, 1),
		tetra3d.NewVertex(frontW, frontH, frontZ, 1, 0),
		tetra3d.NewVertex(-frontW, frontH, frontZ, 0, 0),
	)
	quad(&faceIndices,
		tetra3d.NewVertex(hw, -hh, -hd, 0, 1),
		tetra3d.NewVertex(-hw, -hh, -hd, 1, 1),
		tetra3d.NewVertex(-hw, hh, -hd, 1, 0),
		tetra3d.NewVertex(hw, hh, -hd, 0, 0),
	)

	// Side walls of the slab body.
	sides := [][4]tetra3d.Vector{
		{tetra3d.NewVector(-hw, -hh, -hd), tetra3d.NewVector(hw, -hh, -hd), tetra3d.NewVector(hw, -hh, hd), tetra3d.NewVector(-hw, -hh, hd)}, // bottom
		{tetra3d.NewVector(hw, hh, -hd), tetra3d.NewVector(-hw, hh, -hd), tetra3d.NewVector(-hw, hh, hd), tetra3d.NewVector(hw, hh, hd)},     // top
		{tetra3d.NewVector(-hw, hh, -hd), tetra3d.NewVector(-hw, -hh, -hd), tetra3d.NewVector(-hw, -hh, hd), tetra3d.NewVector(-hw, hh, hd)}, // left
		{tetra3d.NewVector(hw, -hh, -hd), tetra3d.NewVector(hw, hh, -hd), tetra3d.NewVector(hw, hh, hd), tetra3d.NewVector(hw, -hh, hd)},     // right
	}
	for _, s := range sides {
		quad(&sideIndices,
			tetra3d.NewVertex(s[0].X, s[0].Y, s[0].Z, 0, 1),
			tetra3d.NewVertex(s[1].X, s[1].Y, s[1].Z, 1, 1),
			tetra3d.NewVertex(s[2].X, s[2].Y, s[2].Z, 1, 0),
			tetra3d.NewVertex(s[3].X, s[3].Y, s[3].Z, 0, 0),
		)
	}

	// Bevel rim.
	if options.BevelEnabled {
		rim := [][4]tetra3d.Vector{
			{tetra3d.NewVector(-hw, -hh, hd), tetra3d.NewVector(hw, -hh, hd), tetra3d.NewVector(frontW, -frontH, frontZ), tetra3d.NewVector(-frontW, -frontH, frontZ)},
			{tetra3d.NewVector(hw, hh, hd), tetra3d.NewVector(-hw, hh, hd), tetra3d.NewVector(-frontW, frontH, frontZ), tetra3d.NewVector(frontW, frontH, frontZ)},
			{tetra3d.NewVector(-hw, hh, hd), tetra3d.NewVector(-hw, -hh, hd), tetra3d.NewVector(-frontW, -frontH, frontZ), tetra3d.NewVector(-frontW, frontH, frontZ)},
			{tetra3d.NewVector(hw, -hh, hd), tetra3d.NewVector(hw, hh, hd), tetra3d.NewVector(frontW, frontH, frontZ), tetra3d.NewVector(frontW, -frontH, frontZ)},
		}
		for _, s := range rim {
			quad(&sideIndices,
				tetra3d.NewVertex(s[0].X, s[0].Y, s[0].Z, 0, 1),
				tetra3d.NewVertex(s[1].X, s[1].Y, s[1].Z, 1, 1),
				tetra3d.NewVertex(s[2].X, s[2].Y, s[2].Z, 1, 0),
				tetra3d.NewVertex(s[3].X, s[3].Y, s[3].Z, 0, 0),
			)
		}
	}

	mesh.AddMeshPart(faceMaterial, faceIndices...)
	mesh.AddMeshPart(sideMaterial, sideIndices...)

	mesh.UpdateBounds()
	mesh.AutoNormal()

	return mesh

}
