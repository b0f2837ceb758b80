package scenery

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/solarlune/tetra3d"
)

// ResizePolicy maps the window's size to the size the camera should render
// at. The default policy fills the window.
type ResizePolicy func(windowWidth, windowHeight int) (int, int)

// FillWindow is the default ResizePolicy: the camera renders at the full
// window size.
func FillWindow(windowWidth, windowHeight int) (int, int) {
	return windowWidth, windowHeight
}

// ViewportOptions configures BindViewport.
type ViewportOptions struct {
	Camera   *tetra3d.Camera
	Registry *Registry // When set, the viewport follows the window size every frame

	Policy ResizePolicy // Defaults to FillWindow

	// HiDPI scales the camera's backing buffer by the device scale factor,
	// so rendering stays crisp on high-density displays.
	HiDPI bool
}

// Viewport keeps a Camera's render size in step with the window (or with
// whatever sizes are handed to Resize or Layout). Sizing is applied to the
// camera's backing buffer first; Tetra3D then rebuilds the projection from
// the new size, so the aspect ratio always matches the displayed size.
type Viewport struct {
	camera *tetra3d.Camera
	policy ResizePolicy
	hiDPI  bool

	lastWidth  int
	lastHeight int
}

// BindViewport creates a Viewport for the options' Camera. With a Registry,
// the Viewport also installs a per-frame entry that reads the window size
// and device scale factor and resizes the camera whenever they change; the
// entry lives for the lifetime of the Registry.
func BindViewport(options ViewportOptions) (*Viewport, error) {

	if options.Camera == nil {
		logger().Warn("scenery: viewport requires a Camera")
		return nil, fmt.Errorf("%w: nil Camera", ErrInvalidOptions)
	}

	if options.Policy == nil {
		options.Policy = FillWindow
	}

	viewport := &Viewport{
		camera: options.Camera,
		policy: options.Policy,
		hiDPI:  options.HiDPI,
	}

	if options.Registry != nil {
		options.Registry.Add(options.Camera, func(tetra3d.INode, float64) {
			w, h := ebiten.WindowSize()
			if w > 0 && h > 0 {
				viewport.Resize(w, h)
			}
		})
	}

	return viewport, nil

}

// Resize applies the policy to the given window size and resizes the
// camera's backing buffer (and so its projection) to the result. Unchanged
// sizes are skipped.
func (viewport *Viewport) Resize(windowWidth, windowHeight int) {

	w, h := viewport.policy(windowWidth, windowHeight)

	if viewport.hiDPI {
		scale := ebiten.DeviceScaleFactor()
		w = int(float64(w) * scale)
		h = int(float64(h) * scale)
	}

	if w < 1 || h < 1 || (w == viewport.lastWidth && h == viewport.lastHeight) {
		return
	}

	viewport.lastWidth, viewport.lastHeight = w, h
	viewport.camera.Resize(w, h)

}

// Layout slots into an ebiten.Game's Layout method: it resizes the camera
// for the outside size and returns the camera's render size.
func (viewport *Viewport) Layout(outsideWidth, outsideHeight int) (int, int) {
	viewport.Resize(outsideWidth, outsideHeight)
	return viewport.camera.Size()
}
