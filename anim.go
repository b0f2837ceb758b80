package scenery

import (
	"math"

	"github.com/solarlune/tetra3d"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Spin creates an AnimationFunc that turns its element around the Y axis at
// the given number of revolutions per second.
func Spin(turnsPerSecond float64) AnimationFunc {
	last := 0.0
	return func(node tetra3d.INode, elapsed float64) {
		dt := elapsed - last
		last = elapsed
		node.Rotate(0, 1, 0, 2*math.Pi*turnsPerSecond*dt)
	}
}

// Bob creates an AnimationFunc that floats its element up and down around
// its starting height, amplitude world units over period seconds.
func Bob(amplitude, period float64) AnimationFunc {
	if period <= 0 {
		period = 1
	}
	var baseY float64
	started := false
	return func(node tetra3d.INode, elapsed float64) {
		if !started {
			baseY = node.LocalPosition().Y
			started = true
		}
		offset := amplitude * math.Sin(2*math.Pi*elapsed/period)
		position := node.LocalPosition()
		node.SetLocalPosition(position.X, baseY+offset, position.Z)
	}
}

// Pulse creates an AnimationFunc that eases its element's scale between 1
// and peak and back over period seconds, repeating forever.
func Pulse(peak float64, period float64) AnimationFunc {

	if period <= 0 {
		period = 1
	}

	sequence := gween.NewSequence(
		gween.New(1, float32(peak), float32(period/2), ease.InOutQuad),
		gween.New(float32(peak), 1, float32(period/2), ease.InOutQuad),
	)

	last := 0.0

	return func(node tetra3d.INode, elapsed float64) {
		dt := elapsed - last
		last = elapsed
		value, _, finished := sequence.Update(float32(dt))
		if finished {
			sequence.Reset()
		}
		scale := float64(value)
		node.SetLocalScale(scale, scale, scale)
	}

}
