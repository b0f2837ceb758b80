package scenery

import (
	"fmt"
	"image"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/solarlune/tetra3d"

	"github.com/mokiat/goexr/exr"

	_ "github.com/mdouchement/hdr/codec/rgbe"
	_ "image/jpeg"
	_ "image/png"
)

// decodeImage decodes the image at path, read from fsys if non-nil and from
// the OS filesystem otherwise. PNG, JPEG, Radiance HDR and OpenEXR files are
// supported.
func decodeImage(fsys fs.FS, path string) (image.Image, error) {

	var (
		file fs.File
		err  error
	)

	if fsys != nil {
		file, err = fsys.Open(path)
	} else {
		file, err = os.Open(path)
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	if strings.EqualFold(filepath.Ext(path), ".exr") {
		img, err := exr.Decode(file)
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", path, err)
		}
		return img, nil
	}

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return img, nil

}

// loadTexture decodes the image at path into a texture usable by a Material.
func loadTexture(fsys fs.FS, path string) (*ebiten.Image, error) {
	img, err := decodeImage(fsys, path)
	if err != nil {
		return nil, err
	}
	return ebiten.NewImageFromImage(img), nil
}

// applyTexture fills in the Material's texture from the image file at path.
// With a Registry, decoding happens off-thread and the texture is assigned
// through the Registry's queue on a later Update; without one, the texture
// is decoded synchronously. Load failures are reported through the package
// logger, leaving the Material on its flat color.
func applyTexture(material *tetra3d.Material, fsys fs.FS, path string, registry *Registry) {

	if registry == nil {
		texture, err := loadTexture(fsys, path)
		if err != nil {
			logger().Warn("scenery: texture load failed", "path", path, "error", err)
			return
		}
		material.Texture = texture
		return
	}

	go func() {
		img, err := decodeImage(fsys, path)
		if err != nil {
			logger().Warn("scenery: texture load failed", "path", path, "error", err)
			return
		}
		registry.Queue(func() {
			material.Texture = ebiten.NewImageFromImage(img)
		})
	}()

}
