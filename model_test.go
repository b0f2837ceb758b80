package scenery

import (
	"errors"
	"testing"

	"github.com/solarlune/tetra3d"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadModelRequiresPath(t *testing.T) {

	loaded, err := LoadModel(ModelOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidOptions))
	assert.Nil(t, loaded)

}

func TestLoadModelMissingFile(t *testing.T) {

	loaded, err := LoadModel(ModelOptions{Path: "does-not-exist.glb"})
	require.Error(t, err)
	assert.Nil(t, loaded)

}

func TestLoadModelAsyncRequiresRegistry(t *testing.T) {

	err := LoadModelAsync(ModelOptions{Path: "model.glb"}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidOptions))

}

func TestSelectClipsDefaultsToAllInStableOrder(t *testing.T) {

	library := tetra3d.NewLibrary()
	library.Animations["walk"] = tetra3d.NewAnimation("walk")
	library.Animations["idle"] = tetra3d.NewAnimation("idle")
	library.Animations["run"] = tetra3d.NewAnimation("run")

	clips := selectClips(library, nil)
	require.Len(t, clips, 3)

	names := []string{clips[0].Name, clips[1].Name, clips[2].Name}
	assert.Equal(t, []string{"idle", "run", "walk"}, names)

}

func TestSelectClipsFiltersByName(t *testing.T) {

	library := tetra3d.NewLibrary()
	library.Animations["walk"] = tetra3d.NewAnimation("walk")
	library.Animations["idle"] = tetra3d.NewAnimation("idle")

	clips := selectClips(library, []string{"walk", "missing"})
	require.Len(t, clips, 1, "unknown clip names are skipped")
	assert.Equal(t, "walk", clips[0].Name)

}
