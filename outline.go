package scenery

// Outline accumulates a 2D polygonal outline for the Draw callback of
// NewShape. Quadratic curve segments are flattened into line segments as
// they are added; the finished outline is triangulated into a filled shape.
type Outline struct {
	points       [][2]float64
	curveDetail  int
	startX       float64
	startY       float64
	started      bool
	lastX, lastY float64
}

func newOutline(curveDetail int) *Outline {
	if curveDetail < 1 {
		curveDetail = 8
	}
	return &Outline{curveDetail: curveDetail}
}

// MoveTo starts the outline at the given point. Calling MoveTo after points
// have been added restarts the outline.
func (outline *Outline) MoveTo(x, y float64) {
	outline.points = outline.points[:0]
	outline.points = append(outline.points, [2]float64{x, y})
	outline.startX, outline.startY = x, y
	outline.lastX, outline.lastY = x, y
	outline.started = true
}

// LineTo adds a straight segment from the current point.
func (outline *Outline) LineTo(x, y float64) {
	if !outline.started {
		outline.MoveTo(x, y)
		return
	}
	outline.points = append(outline.points, [2]float64{x, y})
	outline.lastX, outline.lastY = x, y
}

// QuadTo adds a quadratic curve from the current point through the control
// point (cx, cy) to (x, y), flattened into the outline's curve detail count
// of straight segments.
func (outline *Outline) QuadTo(cx, cy, x, y float64) {
	if !outline.started {
		outline.MoveTo(x, y)
		return
	}
	sx, sy := outline.lastX, outline.lastY
	for i := 1; i <= outline.curveDetail; i++ {
		t := float64(i) / float64(outline.curveDetail)
		mt := 1 - t
		px := mt*mt*sx + 2*mt*t*cx + t*t*x
		py := mt*mt*sy + 2*mt*t*cy + t*t*y
		outline.points = append(outline.points, [2]float64{px, py})
	}
	outline.lastX, outline.lastY = x, y
}

// Close connects the outline back to its starting point.
func (outline *Outline) Close() {
	if outline.started && (outline.lastX != outline.startX || outline.lastY != outline.startY) {
		outline.points = append(outline.points, [2]float64{outline.startX, outline.startY})
		outline.lastX, outline.lastY = outline.startX, outline.startY
	}
}

// finalized returns the outline's points with any duplicated closing point
// removed. The result is only usable if it holds at least 3 points.
func (outline *Outline) finalized() [][2]float64 {
	points := outline.points
	for len(points) > 1 {
		first, last := points[0], points[len(points)-1]
		if first == last {
			points = points[:len(points)-1]
		} else {
			break
		}
	}
	return points
}

// bounds returns the outline's bounding box as (minX, minY, maxX, maxY).
func outlineBounds(points [][2]float64) (minX, minY, maxX, maxY float64) {
	minX, minY = points[0][0], points[0][1]
	maxX, maxY = minX, minY
	for _, p := range points[1:] {
		if p[0] < minX {
			minX = p[0]
		}
		if p[0] > maxX {
			maxX = p[0]
		}
		if p[1] < minY {
			minY = p[1]
		}
		if p[1] > maxY {
			maxY = p[1]
		}
	}
	return
}

func signedArea(points [][2]float64) float64 {
	area := 0.0
	for i := range points {
		j := (i + 1) % len(points)
		area += points[i][0]*points[j][1] - points[j][0]*points[i][1]
	}
	return area / 2
}

// triangulate ear-clips a simple polygon into triangle index triplets. The
// polygon may be wound either way; the returned triangles are
// counter-clockwise.
func triangulate(points [][2]float64) [][3]int {

	n := len(points)
	if n < 3 {
		return nil
	}

	indices := make([]int, n)
	if signedArea(points) >= 0 {
		for i := range indices {
			indices[i] = i
		}
	} else {
		for i := range indices {
			indices[i] = n - 1 - i
		}
	}

	cross := func(a, b, c [2]float64) float64 {
		return (b[0]-a[0])*(c[1]-a[1]) - (b[1]-a[1])*(c[0]-a[0])
	}

	inTriangle := func(p, a, b, c [2]float64) bool {
		return cross(a, b, p) >= 0 && cross(b, c, p) >= 0 && cross(c, a, p) >= 0
	}

	triangles := make([][3]int, 0, n-2)

	for len(indices) > 3 {

		clipped := false

		for i := 0; i < len(indices); i++ {

			i0 := indices[(i+len(indices)-1)%len(indices)]
			i1 := indices[i]
			i2 := indices[(i+1)%len(indices)]

			a, b, c := points[i0], points[i1], points[i2]

			if cross(a, b, c) <= 0 {
				continue // Reflex corner; not an ear
			}

			ear := true
			for _, idx := range indices {
				if idx == i0 || idx == i1 || idx == i2 {
					continue
				}
				if inTriangle(points[idx], a, b, c) {
					ear = false
					break
				}
			}
			if !ear {
				continue
			}

			triangles = append(triangles, [3]int{i0, i1, i2})
			indices = append(indices[:i], indices[i+1:]...)
			clipped = true
			break

		}

		if !clipped {
			// Degenerate outline (self-intersecting or collinear); stop
			// rather than loop forever.
			break
		}

	}

	if len(indices) == 3 {
		triangles = append(triangles, [3]int{indices[0], indices[1], indices[2]})
	}

	return triangles

}
