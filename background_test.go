package scenery

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mdouchement/hdr"
	"github.com/mdouchement/hdr/hdrcolor"
	"github.com/solarlune/tetra3d"
	"github.com/solarlune/tetra3d/colors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestPNG(t *testing.T, c color.NRGBA) string {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, 8, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 8; x++ {
			img.SetNRGBA(x, y, c)
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	path := filepath.Join(t.TempDir(), "bg.png")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
	return path
}

func TestBackgroundSolidColor(t *testing.T) {

	scene := tetra3d.NewScene("test scene")

	options := DefaultBackgroundOptions()
	options.Scene = scene
	options.Color = colors.SkyBlue()

	require.NoError(t, SetBackground(options))

	assert.Equal(t, colors.SkyBlue(), scene.World.ClearColor)

}

func TestBackgroundRequiresScene(t *testing.T) {

	options := DefaultBackgroundOptions()

	err := SetBackground(options)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidOptions))

}

func TestBackgroundSchemePairBeatsImageAndColor(t *testing.T) {

	scene := tetra3d.NewScene("test scene")
	registry := NewRegistry()

	dark := colors.Black()
	light := colors.White()

	options := DefaultBackgroundOptions()
	options.Scene = scene
	options.Registry = registry
	options.Dark = &dark
	options.Light = &light
	options.Image = writeTestPNG(t, color.NRGBA{R: 255, A: 255})
	options.Color = colors.Red()
	options.SchemeFunc = func() ColorScheme { return SchemeDark }

	require.NoError(t, SetBackground(options))

	// The pair wins immediately and no sky sphere is built.
	assert.Equal(t, dark, scene.World.ClearColor)
	assert.Zero(t, len(scene.Root.Children()))

	registry.Update(1.0 / 60)
	assert.Equal(t, dark, scene.World.ClearColor)

}

func TestBackgroundSchemeChangeCrossfades(t *testing.T) {

	scene := tetra3d.NewScene("test scene")
	registry := NewRegistry()

	dark := colors.Black()
	light := colors.White()
	scheme := SchemeDark

	options := DefaultBackgroundOptions()
	options.Scene = scene
	options.Registry = registry
	options.Dark = &dark
	options.Light = &light
	options.FadeDuration = 0.5
	options.SchemeFunc = func() ColorScheme { return scheme }

	require.NoError(t, SetBackground(options))
	require.Equal(t, dark, scene.World.ClearColor)

	scheme = SchemeLight

	// Halfway through the fade the clear color sits between the two.
	registry.Update(0.25)
	mid := scene.World.ClearColor
	assert.InDelta(t, 0.5, float64(mid.R), 0.05)

	// Past the fade it has fully arrived at the light color.
	registry.Update(0.5)
	assert.InDelta(t, 1, float64(scene.World.ClearColor.R), 1e-3)

}

func TestBackgroundImageBuildsSkySphere(t *testing.T) {

	scene := tetra3d.NewScene("test scene")

	options := DefaultBackgroundOptions()
	options.Scene = scene
	options.Image = writeTestPNG(t, color.NRGBA{G: 255, A: 255})

	require.NoError(t, SetBackground(options))

	require.Equal(t, 1, len(scene.Root.Children()))

	sky := scene.Root.Children()[0]
	assert.Equal(t, "background", sky.Name())

	model, ok := sky.(*tetra3d.Model)
	require.True(t, ok)
	assert.NotNil(t, model.Mesh.MeshParts[0].Material.Texture)
	assert.True(t, model.Mesh.MeshParts[0].Material.Shadeless)

}

func TestBackgroundImageAsyncResolvesThroughRegistry(t *testing.T) {

	scene := tetra3d.NewScene("test scene")
	registry := NewRegistry()

	options := DefaultBackgroundOptions()
	options.Scene = scene
	options.Registry = registry
	options.Image = writeTestPNG(t, color.NRGBA{B: 255, A: 255})

	require.NoError(t, SetBackground(options))

	// Nothing is attached until the decode lands through the queue.
	assert.Zero(t, len(scene.Root.Children()))

	deadline := 200
	for len(scene.Root.Children()) == 0 && deadline > 0 {
		registry.Update(1.0 / 60)
		time.Sleep(time.Millisecond)
		deadline--
	}

	assert.Equal(t, 1, len(scene.Root.Children()))

}

func TestBackgroundMissingImageLeavesSceneUntouched(t *testing.T) {

	scene := tetra3d.NewScene("test scene")
	before := scene.World.ClearColor

	options := DefaultBackgroundOptions()
	options.Scene = scene
	options.HDR = filepath.Join(t.TempDir(), "missing.hdr")

	require.NoError(t, SetBackground(options))

	assert.Zero(t, len(scene.Root.Children()))
	assert.Equal(t, before, scene.World.ClearColor)

}

func TestAverageRadiance(t *testing.T) {

	img := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 255, G: 128, B: 0, A: 255})
		}
	}

	r, g, b := averageRadiance(img)
	assert.InDelta(t, 1, float64(r), 0.01)
	assert.InDelta(t, 0.5, float64(g), 0.01)
	assert.InDelta(t, 0, float64(b), 0.01)

}

func TestAverageRadianceKeepsExtendedRange(t *testing.T) {

	// A uniformly bright environment, well above display white.
	img := hdr.NewRGB(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.SetRGB(x, y, hdrcolor.RGB{R: 4, G: 2, B: 0.25})
		}
	}

	r, g, b := averageRadiance(img)
	assert.InDelta(t, 4, float64(r), 0.01, "radiance above 1 must survive sampling")
	assert.InDelta(t, 2, float64(g), 0.01)
	assert.InDelta(t, 0.25, float64(b), 0.01)

}

func TestMixColors(t *testing.T) {

	mixed := mixColors(colors.White(), colors.Black(), 0.5)
	assert.InDelta(t, 0.5, float64(mixed.R), 1e-6)
	assert.InDelta(t, 0.5, float64(mixed.G), 1e-6)

	assert.Equal(t, colors.White(), mixColors(colors.White(), colors.Black(), 0))
	assert.Equal(t, colors.Black(), mixColors(colors.White(), colors.Black(), 1))

}
