package scenery

import (
	"errors"
	"testing"
	"time"

	"github.com/solarlune/tetra3d"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextAutoCentersHorizontally(t *testing.T) {

	options := DefaultTextOptions()
	options.Text = "Hello"

	txt, err := NewText(options)
	require.NoError(t, err)
	require.NotNil(t, txt.Model)

	assert.Greater(t, txt.Width, 0.0)
	assert.InDelta(t, -txt.Width/2, txt.Model.LocalPosition().X, 1e-9,
		"with no explicit X, text centers on the origin")

}

func TestTextExplicitPositionWins(t *testing.T) {

	options := DefaultTextOptions()
	options.Text = "Hello"
	options.AutoCenter = false
	options.Position = tetra3d.NewVector(3, 1, -2)

	txt, err := NewText(options)
	require.NoError(t, err)

	assert.True(t, txt.Model.LocalPosition().Equals(tetra3d.NewVector(3, 1, -2)))

}

func TestTextFlatBuildsSingleQuad(t *testing.T) {

	options := DefaultTextOptions()
	options.Text = "Hi"
	options.Flat = true

	txt, err := NewText(options)
	require.NoError(t, err)

	require.Len(t, txt.Model.Mesh.MeshParts, 1)
	material := txt.Model.Mesh.MeshParts[0].Material
	assert.Same(t, txt.Texture, material.Texture)
	assert.Equal(t, tetra3d.TransparencyModeTransparent, material.TransparencyMode)

}

func TestTextSlabHasFaceAndSideMaterials(t *testing.T) {

	options := DefaultTextOptions()
	options.Text = "Hi"
	options.Depth = 0.5
	options.BevelEnabled = true

	txt, err := NewText(options)
	require.NoError(t, err)

	require.Len(t, txt.Model.Mesh.MeshParts, 2)
	assert.Same(t, txt.Texture, txt.Model.Mesh.MeshParts[0].Material.Texture)
	assert.Nil(t, txt.Model.Mesh.MeshParts[1].Material.Texture)

	// The slab spans the extrusion depth plus the raised bevel front.
	assert.InDelta(t, 0.5+0.02, txt.Model.Mesh.Dimensions.Depth(), 1e-6)

}

func TestTextScalesWorldSize(t *testing.T) {

	options := DefaultTextOptions()
	options.Text = "Hello"
	options.Size = 2

	txt, err := NewText(options)
	require.NoError(t, err)

	assert.InDelta(t, 2, txt.Height, 1e-9)

	bounds := txt.Texture.Bounds()
	assert.InDelta(t, txt.Height*float64(bounds.Dx())/float64(bounds.Dy()), txt.Width, 1e-9)

}

func TestTextInvalidOptions(t *testing.T) {

	scene := tetra3d.NewScene("test scene")
	before := len(scene.Root.Children())

	options := DefaultTextOptions()
	options.Scene = scene

	txt, err := NewText(options)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidOptions))
	assert.Nil(t, txt)
	assert.Equal(t, before, len(scene.Root.Children()))

	options.Text = "Hello"
	options.Font = "does-not-exist.ttf"
	_, err = NewText(options)
	require.Error(t, err)
	assert.Equal(t, before, len(scene.Root.Children()))

}

func TestLoadTextAsyncResolvesThroughRegistry(t *testing.T) {

	scene := tetra3d.NewScene("test scene")
	registry := NewRegistry()

	options := DefaultTextOptions()
	options.Text = "Hello"
	options.Registry = registry
	options.Scene = scene

	var result *Text
	err := LoadTextAsync(options, func(txt *Text, err error) {
		require.NoError(t, err)
		result = txt
	})
	require.NoError(t, err)

	// The result arrives through the registry queue on a later Update.
	deadline := 200
	for result == nil && deadline > 0 {
		registry.Update(1.0 / 60)
		time.Sleep(time.Millisecond)
		deadline--
	}

	require.NotNil(t, result)
	assert.Equal(t, 1, len(scene.Root.Children()))

}

func TestLoadTextAsyncRequiresRegistry(t *testing.T) {

	options := DefaultTextOptions()
	options.Text = "Hello"

	err := LoadTextAsync(options, nil)
	assert.True(t, errors.Is(err, ErrInvalidOptions))

}
