package scenery

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/solarlune/tetra3d"
)

// ModelOptions configures LoadModel and LoadModelAsync.
type ModelOptions struct {
	Path string // The .gltf / .glb file to load; required
	FS   fs.FS  // Filesystem Path is read from; nil reads from the OS
	Name string // Name given to the instantiated root; defaults to the Path

	// GLTF forwards loading options to Tetra3D's GLTF loader; nil uses its
	// defaults.
	GLTF *tetra3d.GLTFLoadOptions

	// Clips names the animation clips to start. An empty list starts every
	// clip the file carries, which is also what happens when the list is
	// omitted.
	Clips []string

	// OnFrame, together with a Registry, registers the loaded model for
	// per-frame animation: every started clip is advanced first, then
	// OnFrame runs.
	OnFrame  AnimationFunc
	Registry *Registry

	Scale    tetra3d.Vector
	Position tetra3d.Vector

	Scene *tetra3d.Scene
}

// LoadedModel is the result of LoadModel: the full loaded Library, the
// instantiated root node, and the animation players driving the started
// clips (one per clip; empty when the file has no animations or no OnFrame
// was given).
type LoadedModel struct {
	Library *tetra3d.Library
	Root    tetra3d.INode
	Players []*tetra3d.AnimationPlayer
}

// LoadModel loads a GLTF model, instantiates its exported scene's root,
// applies the transform and scene attachment, and, when OnFrame and a
// Registry are given and the file carries animation clips, starts the
// selected clips immediately and registers the root (not any sub-mesh) for
// per-frame driving. See LoadModelAsync for the non-blocking variant.
func LoadModel(options ModelOptions) (*LoadedModel, error) {

	if options.Path == "" {
		logger().Warn("scenery: model loading requires a Path")
		return nil, fmt.Errorf("%w: empty model path", ErrInvalidOptions)
	}

	var (
		library *tetra3d.Library
		err     error
	)

	if options.FS != nil {
		library, err = tetra3d.LoadGLTFFileSystem(options.FS, options.Path, options.GLTF)
	} else {
		library, err = tetra3d.LoadGLTFFileSystem(os.DirFS(filepath.Dir(options.Path)), filepath.Base(options.Path), options.GLTF)
	}
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", options.Path, err)
	}

	return instantiateModel(options, library), nil

}

// LoadModelAsync reads the model file off-thread, then parses and
// instantiates it through the Registry's queue on a following
// Registry.Update and calls onLoaded with the result. The Registry is
// required.
func LoadModelAsync(options ModelOptions, onLoaded func(*LoadedModel, error)) error {

	if options.Registry == nil {
		logger().Warn("scenery: async model loading requires a Registry")
		return fmt.Errorf("%w: nil Registry", ErrInvalidOptions)
	}
	if options.Path == "" {
		logger().Warn("scenery: model loading requires a Path")
		return fmt.Errorf("%w: empty model path", ErrInvalidOptions)
	}

	go func() {

		var (
			data []byte
			err  error
		)

		if options.FS != nil {
			data, err = fs.ReadFile(options.FS, options.Path)
		} else {
			data, err = os.ReadFile(options.Path)
		}

		options.Registry.Queue(func() {

			if err != nil {
				logger().Warn("scenery: model load failed", "path", options.Path, "error", err)
				if onLoaded != nil {
					onLoaded(nil, fmt.Errorf("loading %s: %w", options.Path, err))
				}
				return
			}

			library, err := tetra3d.LoadGLTFData(bytes.NewReader(data), options.GLTF)
			if err != nil {
				logger().Warn("scenery: model parse failed", "path", options.Path, "error", err)
				if onLoaded != nil {
					onLoaded(nil, fmt.Errorf("loading %s: %w", options.Path, err))
				}
				return
			}

			if onLoaded != nil {
				onLoaded(instantiateModel(options, library), nil)
			}

		})

	}()

	return nil

}

func instantiateModel(options ModelOptions, library *tetra3d.Library) *LoadedModel {

	name := options.Name
	if name == "" {
		name = options.Path
	}

	root := library.ExportedScene.Root.Clone()
	root.SetName(name)

	loaded := &LoadedModel{
		Library: library,
		Root:    root,
	}

	if options.OnFrame != nil && options.Registry == nil {
		logger().Warn("scenery: model OnFrame requires a Registry; callback not registered", "path", options.Path)
	}

	if options.OnFrame != nil && options.Registry != nil && len(library.Animations) > 0 {

		for _, animation := range selectClips(library, options.Clips) {
			player := tetra3d.NewAnimationPlayer(root)
			player.PlayAnim(animation)
			loaded.Players = append(loaded.Players, player)
		}

		players := loaded.Players
		onFrame := options.OnFrame
		lastElapsed := 0.0

		options.Registry.Add(root, func(node tetra3d.INode, elapsed float64) {
			dt := elapsed - lastElapsed
			lastElapsed = elapsed
			for _, player := range players {
				player.Update(dt)
			}
			onFrame(node, elapsed)
		})

	}

	finishNode(root, options.Scale, options.Position, nil, nil, options.Scene)

	return loaded

}

// selectClips resolves the Clips filter against the library's animations,
// in a stable name order. Unknown names log a diagnostic and are skipped.
func selectClips(library *tetra3d.Library, names []string) []*tetra3d.Animation {

	if len(names) == 0 {
		all := make([]string, 0, len(library.Animations))
		for name := range library.Animations {
			all = append(all, name)
		}
		sort.Strings(all)
		names = all
	}

	clips := make([]*tetra3d.Animation, 0, len(names))
	for _, name := range names {
		animation, ok := library.Animations[name]
		if !ok {
			logger().Warn("scenery: model has no animation clip with this name", "clip", name)
			continue
		}
		clips = append(clips, animation)
	}

	return clips

}
