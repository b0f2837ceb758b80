package scenery

import (
	"fmt"
	"image"
	"io/fs"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/mdouchement/hdr"
	"github.com/solarlune/tetra3d"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// BackgroundOptions configures SetBackground. Exactly one background source
// is honored, chosen by precedence: Dark+Light pair, then Image, then HDR,
// then EXR, then the solid Color.
type BackgroundOptions struct {
	Scene    *tetra3d.Scene
	Registry *Registry

	// Dark and Light, when both set, pick the clear color by the host color
	// scheme, re-evaluated every frame through the Registry (required in
	// that case); scheme changes crossfade over FadeDuration seconds.
	Dark  *tetra3d.Color
	Light *tetra3d.Color

	Image string // Equirectangular image (PNG/JPEG) shown as a sky sphere
	HDR   string // Equirectangular Radiance HDR; also sets the environment light
	EXR   string // Equirectangular OpenEXR; also sets the environment light
	FS    fs.FS  // Filesystem image files are read from; nil reads from the OS

	Color tetra3d.Color // Solid clear color fallback

	SchemeFunc   func() ColorScheme // Color scheme source; defaults to SystemColorScheme
	FadeDuration float64            // Scheme crossfade length in seconds; defaults to 0.25

	SphereDetail int // Vertical subdivisions of the sky sphere; defaults to 24
}

// DefaultBackgroundOptions creates a BackgroundOptions with Tetra3D's
// default clear color as the solid fallback.
func DefaultBackgroundOptions() BackgroundOptions {
	return BackgroundOptions{
		Color:        tetra3d.NewColor(0.08, 0.09, 0.1, 1),
		SchemeFunc:   SystemColorScheme,
		FadeDuration: 0.25,
		SphereDetail: 24,
	}
}

// SetBackground applies one background source to the Scene. The dark/light
// pair installs a permanent per-frame Registry entry that follows the host
// color scheme; image sources build a sky sphere Model named "background"
// parented to the Scene's root (decoded off-thread when a Registry is
// given); HDR and EXR sources additionally derive the World's ambient light
// from the image's average radiance; the solid color applies synchronously.
func SetBackground(options BackgroundOptions) error {

	if options.Scene == nil {
		logger().Warn("scenery: background requires a Scene")
		return fmt.Errorf("%w: nil Scene", ErrInvalidOptions)
	}

	if options.SchemeFunc == nil {
		options.SchemeFunc = SystemColorScheme
	}
	if options.FadeDuration <= 0 {
		options.FadeDuration = 0.25
	}
	if options.SphereDetail < 3 {
		options.SphereDetail = 24
	}

	switch {

	case options.Dark != nil && options.Light != nil:
		if options.Registry == nil {
			logger().Warn("scenery: a dark/light background requires a Registry")
			return fmt.Errorf("%w: nil Registry for dark/light background", ErrInvalidOptions)
		}
		bindSchemeBackground(options)

	case options.Image != "":
		applyImageBackground(options, options.Image, false)

	case options.HDR != "":
		applyImageBackground(options, options.HDR, true)

	case options.EXR != "":
		applyImageBackground(options, options.EXR, true)

	default:
		options.Scene.World.ClearColor = options.Color

	}

	return nil

}

// bindSchemeBackground installs the registry entry that keeps the clear
// color in step with the host color scheme, tweening between the light and
// dark colors on every scheme change. The entry lives for the lifetime of
// the Registry.
func bindSchemeBackground(options BackgroundOptions) {

	dark := *options.Dark
	light := *options.Light

	scheme := options.SchemeFunc()
	blend := float32(0)
	if scheme == SchemeDark {
		blend = 1
	}
	options.Scene.World.ClearColor = mixColors(light, dark, blend)

	var (
		tween       *gween.Tween
		lastElapsed float64
	)

	options.Registry.Add(options.Scene.Root, func(node tetra3d.INode, elapsed float64) {

		dt := elapsed - lastElapsed
		lastElapsed = elapsed

		if current := options.SchemeFunc(); current != scheme {
			scheme = current
			target := float32(0)
			if scheme == SchemeDark {
				target = 1
			}
			tween = gween.New(blend, target, float32(options.FadeDuration), ease.Linear)
		}

		if tween != nil {
			value, finished := tween.Update(float32(dt))
			blend = value
			if finished {
				tween = nil
			}
			options.Scene.World.ClearColor = mixColors(light, dark, blend)
		}

	})

}

func mixColors(from, to tetra3d.Color, blend float32) tetra3d.Color {
	lerp := func(a, b float32) float32 { return a + (b-a)*blend }
	return tetra3d.NewColor(
		lerp(from.R, to.R),
		lerp(from.G, to.G),
		lerp(from.B, to.B),
		lerp(from.A, to.A),
	)
}

// applyImageBackground decodes the equirectangular image at path and wraps
// it around the scene as an inward-facing sky sphere. With a Registry the
// decode runs off-thread and the sphere is attached through the queue;
// without one, everything happens synchronously. Load failures log a
// diagnostic and leave the scene untouched.
func applyImageBackground(options BackgroundOptions, path string, environment bool) {

	apply := func(img image.Image) {

		mesh := newSkySphereMesh("background", options.SphereDetail)

		material := mesh.MeshParts[0].Material
		material.Shadeless = true
		material.BackfaceCulling = false
		material.Texture = ebiten.NewImageFromImage(img)

		sky := tetra3d.NewModel("background", mesh)
		options.Scene.Root.AddChildren(sky)

		if environment {
			r, g, b := averageRadiance(img)
			options.Scene.World.AmbientLight = tetra3d.NewAmbientLight("environment", r, g, b, 1)
		}

	}

	if options.Registry == nil {
		img, err := decodeImage(options.FS, path)
		if err != nil {
			logger().Warn("scenery: background image load failed", "path", path, "error", err)
			return
		}
		apply(img)
		return
	}

	go func() {
		img, err := decodeImage(options.FS, path)
		if err != nil {
			logger().Warn("scenery: background image load failed", "path", path, "error", err)
			return
		}
		options.Registry.Queue(func() {
			apply(img)
		})
	}()

}

// newSkySphereMesh builds a latitude/longitude sphere with equirectangular
// UVs and triangles wound to face inward, sized well past any reasonable
// scene content.
func newSkySphereMesh(name string, rings int) *tetra3d.Mesh {

	const radius = 500.0

	segments := rings * 2

	verts := make([]tetra3d.VertexInfo, 0, (rings+1)*(segments+1))

	for ring := 0; ring <= rings; ring++ {

		phi := math.Pi * float64(ring) / float64(rings)

		for segment := 0; segment <= segments; segment++ {

			theta := 2 * math.Pi * float64(segment) / float64(segments)

			x := radius * math.Sin(phi) * math.Cos(theta)
			y := radius * math.Cos(phi)
			z := radius * math.Sin(phi) * math.Sin(theta)

			u := float64(segment) / float64(segments)
			v := float64(ring) / float64(rings)

			verts = append(verts, tetra3d.NewVertex(x, y, z, u, v))

		}

	}

	stride := segments + 1
	indices := make([]int, 0, rings*segments*6)

	for ring := 0; ring < rings; ring++ {
		for segment := 0; segment < segments; segment++ {
			a := ring*stride + segment
			b := a + 1
			c := a + stride + 1
			d := a + stride
			// Inward winding; the camera sits inside the sphere.
			indices = append(indices, a, c, b, a, d, c)
		}
	}

	mesh := tetra3d.NewMesh(name, verts...)
	mesh.AddMeshPart(tetra3d.NewMaterial(name), indices...)
	mesh.UpdateBounds()

	return mesh

}

// averageRadiance samples the image on a coarse grid and returns its mean
// color, used as the environment's ambient light level. Radiance HDR images
// are sampled through their floating-point channels, so the mean can exceed
// 1 for bright environments; other images clamp to display range.
func averageRadiance(img image.Image) (r, g, b float32) {

	bounds := img.Bounds()

	stepX := bounds.Dx() / 64
	if stepX < 1 {
		stepX = 1
	}
	stepY := bounds.Dy() / 64
	if stepY < 1 {
		stepY = 1
	}

	sample := func(x, y int) (float64, float64, float64) {
		pr, pg, pb, _ := img.At(x, y).RGBA()
		return float64(pr) / 0xffff, float64(pg) / 0xffff, float64(pb) / 0xffff
	}
	if hdrImg, ok := img.(hdr.Image); ok {
		sample = func(x, y int) (float64, float64, float64) {
			pr, pg, pb, _ := hdrImg.HDRAt(x, y).HDRRGBA()
			return pr, pg, pb
		}
	}

	var sumR, sumG, sumB, count float64

	for y := bounds.Min.Y; y < bounds.Max.Y; y += stepY {
		for x := bounds.Min.X; x < bounds.Max.X; x += stepX {
			pr, pg, pb := sample(x, y)
			sumR += pr
			sumG += pg
			sumB += pb
			count++
		}
	}

	if count == 0 {
		return 1, 1, 1
	}

	return float32(sumR / count), float32(sumG / count), float32(sumB / count)

}
