package perforation

import (
	"math"
	"sort"

	"github.com/philatools/perf-gauge-mcp/internal/imaging"
)

// EdgeDetector locates perforation points along one side of a stamp.
// Implementations are interchangeable strategies selected by the engine.
type EdgeDetector interface {
	// Detect returns perforation points along the given side, ordered
	// along the edge's primary axis. An empty result means the edge is
	// unmeasurable, not an error.
	Detect(plane [][]uint8, side Side) []Hole

	// EdgeConfidence combines the gauge calculator's spacing confidence
	// with any strategy-specific quality signal.
	EdgeConfidence(spacingConfidence float64, points []Hole) float64

	// Name identifies the strategy in technical notes.
	Name() string
}

// HoleDetector finds perforations as circular holes using a Hough
// circle transform run at several sensitivity levels. It works best on
// clean scans where the holes kept their round shape.
type HoleDetector struct {
	DPI        int
	Background Background
	Config     DetectionConfig
}

func (d *HoleDetector) Name() string { return "hole-based detection" }

// EdgeConfidence passes the spacing confidence through unchanged; the
// circle search already gated each hole on its own confidence.
func (d *HoleDetector) EdgeConfidence(spacingConfidence float64, _ []Hole) float64 {
	return spacingConfidence
}

type circle struct {
	x, y, r int
	votes   int
}

// score normalizes accumulator votes by circumference so candidates at
// different radii compare fairly.
func (c circle) score() float64 {
	return float64(c.votes) / float64(2*c.r)
}

// Detect runs the multi-level circle search on a region near the given
// side, then filters candidates down to plausible perforation holes.
func (d *HoleDetector) Detect(plane [][]uint8, side Side) []Hole {
	h := len(plane)
	if h == 0 {
		return nil
	}
	w := len(plane[0])

	line := searchLine(w, h, side, edgeMargin(w, h, d.Config))
	if len(line) == 0 {
		return nil
	}

	x1, y1, x2, y2 := roiBounds(line, d.Config.ROIMargin, w, h)
	roi := subPlane(plane, x1, y1, x2, y2)
	if len(roi) == 0 || len(roi[0]) == 0 {
		return nil
	}
	blurred := imaging.BlurPlane(roi, d.Config.BlurRadius)

	var candidates []circle
	for _, params := range d.Config.HoughSets {
		candidates = append(candidates, houghCircles(blurred, params, d.Config.VoteFraction)...)
	}
	candidates = dedupeCircles(candidates)

	var holes []Hole
	for _, c := range candidates {
		fx, fy := c.x+x1, c.y+y1

		if nearestLineDistance(line, fx, fy) >= math.Max(d.Config.SearchLineSlack, float64(c.r)*d.Config.SearchLineRadiusFactor) {
			continue
		}

		proximity := math.Min(math.Min(float64(fx), float64(fy)),
			math.Min(float64(w-fx), float64(h-fy)))
		maxProximity := d.Config.BoundaryProximityH
		if !side.Horizontal() {
			maxProximity = d.Config.BoundaryProximityV
		}
		if proximity >= maxProximity {
			continue
		}

		if !d.validateHole(plane, fx, fy, c.r, side) {
			continue
		}

		confidence := holeConfidence(plane, fx, fy, c.r)
		backgroundMatch := d.Background.MatchesHoleIntensity(
			regionMean(plane, fx-c.r/2, fy-c.r/2, fx+c.r/2, fy+c.r/2))

		if confidence > d.Config.ConfidenceFloor ||
			(confidence > d.Config.RelaxedConfidenceFloor && backgroundMatch) {
			holes = append(holes, Hole{
				CenterX:     float64(fx),
				CenterY:     float64(fy),
				Diameter:    float64(2 * c.r),
				Confidence:  confidence,
				EdgeQuality: holeEdgeQuality(plane, fx, fy, c.r),
			})
		}
	}

	sortHolesAlong(holes, side)
	return holes
}

// validateHole separates true perforation holes from ink blobs, pen
// cancels, and signatures that the circle search also picks up.
func (d *HoleDetector) validateHole(plane [][]uint8, x, y, r int, side Side) bool {
	h := len(plane)
	w := len(plane[0])

	// A hole must sit in the band of the image belonging to its side.
	band := d.Config.PositionBand
	switch side {
	case SideTop:
		if float64(y) > float64(h)*band {
			return false
		}
	case SideBottom:
		if float64(y) < float64(h)*(1-band) {
			return false
		}
	case SideLeft:
		if float64(x) > float64(w)*band {
			return false
		}
	case SideRight:
		if float64(x) < float64(w)*(1-band) {
			return false
		}
	}

	// On a black mat the background shows through as near-black; ink
	// spots read gray.
	if d.Background == BackgroundBlack {
		interior := regionMean(plane, x-r/2, y-r/2, x+r/2, y+r/2)
		if interior > d.Config.BlackInteriorCeiling {
			return false
		}
	}

	// True perforations show ring contrast: background through the
	// hole, paper around it.
	analysisRadius := r * 2
	if analysisRadius < 15 {
		analysisRadius = 15
	}
	var innerSum, outerSum float64
	var innerN, outerN int
	for py := y - analysisRadius; py <= y+analysisRadius; py++ {
		for px := x - analysisRadius; px <= x+analysisRadius; px++ {
			if px < 0 || px >= w || py < 0 || py >= h {
				continue
			}
			dist := math.Hypot(float64(px-x), float64(py-y))
			v := float64(plane[py][px])
			switch {
			case dist <= float64(r)*0.5:
				innerSum += v
				innerN++
			case dist > float64(r)*0.8 && dist <= float64(r)*1.2:
				outerSum += v
				outerN++
			}
		}
	}
	if innerN > 0 && outerN > 0 {
		contrast := (outerSum/float64(outerN) - innerSum/float64(innerN)) / 255.0
		if contrast < d.Config.RingContrastMin {
			return false
		}
	}

	return true
}

// holeConfidence scores a candidate from local contrast: the variance
// of the surrounding region times how much darker the center is than
// the rim. Flat regions and bright centers score near zero.
func holeConfidence(plane [][]uint8, x, y, r int) float64 {
	region, cx, cy := regionAround(plane, x, y, r)
	if len(region) == 0 || len(region[0]) == 0 {
		return 0
	}

	variance := regionVariance(region)

	center := 128.0
	if cy >= 0 && cy < len(region) && cx >= 0 && cx < len(region[0]) {
		center = float64(region[cy][cx])
	}

	var rimSum float64
	var rimN int
	for py := range region {
		for px := range region[py] {
			if math.Hypot(float64(px-cx), float64(py-cy)) > float64(r)*0.8 {
				rimSum += float64(region[py][px])
				rimN++
			}
		}
	}
	if rimN == 0 {
		return 0
	}
	darkness := (rimSum/float64(rimN) - center) / 255.0

	confidence := math.Min(1.0, variance/1000.0*darkness)
	return math.Max(0.0, confidence)
}

// holeEdgeQuality estimates rim cleanliness from the mean Sobel
// gradient magnitude around the hole.
func holeEdgeQuality(plane [][]uint8, x, y, r int) float64 {
	region, _, _ := regionAround(plane, x, y, r)
	rh := len(region)
	if rh < 3 {
		return 0
	}
	rw := len(region[0])
	if rw < 3 {
		return 0
	}

	var sum float64
	var n int
	for py := 1; py < rh-1; py++ {
		for px := 1; px < rw-1; px++ {
			gx := -float64(region[py-1][px-1]) + float64(region[py-1][px+1]) +
				-2*float64(region[py][px-1]) + 2*float64(region[py][px+1]) +
				-float64(region[py+1][px-1]) + float64(region[py+1][px+1])
			gy := -float64(region[py-1][px-1]) - 2*float64(region[py-1][px]) - float64(region[py-1][px+1]) +
				float64(region[py+1][px-1]) + 2*float64(region[py+1][px]) + float64(region[py+1][px+1])
			sum += math.Hypot(gx, gy)
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return math.Min(1.0, sum/float64(n)/255.0)
}

// houghCircles finds circle centers in a grayscale plane using
// gradient-direction accumulator voting: each edge pixel votes only for
// the two potential centers that lie along its local gradient at the
// searched radius, and vote peaks that are local maxima become
// detections.
//
// Voting along the gradient rather than over all angles is what keeps
// the rim of a large circle from fabricating small tangent circles: a
// rim pixel's gradient points radially, so its votes land on the true
// center line, never beside the rim.
func houghCircles(plane [][]uint8, params HoughParams, voteFraction float64) []circle {
	h := len(plane)
	if h == 0 {
		return nil
	}
	w := len(plane[0])

	points := gradientPoints(plane, params.EdgeThreshold)

	var found []circle
	for r := params.MinRadius; r <= params.MaxRadius; r++ {
		if 2*r >= w || 2*r >= h {
			break
		}
		rf := float64(r)

		accumulator := make([][]int, h)
		for y := range accumulator {
			accumulator[y] = make([]int, w)
		}

		for _, p := range points {
			// A hole can be darker or brighter than its surround
			// depending on the mat, so both gradient senses vote.
			for _, s := range [2]float64{-1, 1} {
				cx := int(math.Round(float64(p.x) + s*rf*p.dx))
				cy := int(math.Round(float64(p.y) + s*rf*p.dy))
				if cx >= 0 && cx < w && cy >= 0 && cy < h {
					accumulator[cy][cx]++
				}
			}
		}

		threshold := int(float64(2*r) * voteFraction)
		if threshold < params.MinVotes {
			threshold = params.MinVotes
		}

		for y := r; y < h-r; y++ {
			for x := r; x < w-r; x++ {
				if accumulator[y][x] < threshold {
					continue
				}
				isMax := true
				for dy := -5; dy <= 5 && isMax; dy++ {
					for dx := -5; dx <= 5 && isMax; dx++ {
						if dy == 0 && dx == 0 {
							continue
						}
						ny, nx := y+dy, x+dx
						if ny >= 0 && ny < h && nx >= 0 && nx < w &&
							accumulator[ny][nx] > accumulator[y][x] {
							isMax = false
						}
					}
				}
				if isMax {
					found = append(found, circle{x: x, y: y, r: r, votes: accumulator[y][x]})
				}
			}
		}
	}

	return found
}

type gradientPoint struct {
	x, y   int
	dx, dy float64 // unit gradient direction
}

// gradientPoints returns edge pixels whose Sobel magnitude exceeds the
// threshold, each with its unit gradient direction. The magnitude is
// normalized to per-pixel step size so thresholds stay comparable to a
// simple difference. Border pixels are never edges.
func gradientPoints(plane [][]uint8, threshold float64) []gradientPoint {
	h := len(plane)
	w := len(plane[0])

	var points []gradientPoint
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			gx := -float64(plane[y-1][x-1]) + float64(plane[y-1][x+1]) +
				-2*float64(plane[y][x-1]) + 2*float64(plane[y][x+1]) +
				-float64(plane[y+1][x-1]) + float64(plane[y+1][x+1])
			gy := -float64(plane[y-1][x-1]) - 2*float64(plane[y-1][x]) - float64(plane[y-1][x+1]) +
				float64(plane[y+1][x-1]) + 2*float64(plane[y+1][x]) + float64(plane[y+1][x+1])

			norm := math.Hypot(gx, gy)
			if norm/4 <= threshold {
				continue
			}
			points = append(points, gradientPoint{x: x, y: y, dx: gx / norm, dy: gy / norm})
		}
	}
	return points
}

// dedupeCircles collapses detections of the same hole across radii and
// sensitivity levels: candidates whose center sits within the larger of
// the two radii of an already-kept circle are dropped. Candidates are
// considered strongest-first (votes per unit circumference, larger
// radius on ties), so the best-supported circle survives rather than
// whichever sensitivity level happened to run first.
func dedupeCircles(circles []circle) []circle {
	ranked := append([]circle(nil), circles...)
	sort.Slice(ranked, func(i, j int) bool {
		si, sj := ranked[i].score(), ranked[j].score()
		if si != sj {
			return si > sj
		}
		if ranked[i].r != ranked[j].r {
			return ranked[i].r > ranked[j].r
		}
		if ranked[i].y != ranked[j].y {
			return ranked[i].y < ranked[j].y
		}
		return ranked[i].x < ranked[j].x
	})

	var kept []circle
	for _, c := range ranked {
		duplicate := false
		for _, k := range kept {
			dist := math.Hypot(float64(c.x-k.x), float64(c.y-k.y))
			limit := float64(c.r)
			if float64(k.r) > limit {
				limit = float64(k.r)
			}
			if dist < limit {
				duplicate = true
				break
			}
		}
		if !duplicate {
			kept = append(kept, c)
		}
	}
	return kept
}

// edgeMargin is the inset of the edge search line from the image
// boundary. Inputs are pre-cropped to the stamp, so it stays tight.
func edgeMargin(w, h int, cfg DetectionConfig) int {
	m := min(w, h) / cfg.EdgeMarginDivisor
	if m > cfg.EdgeMarginCap {
		m = cfg.EdgeMarginCap
	}
	return m
}

type gridPoint struct {
	x, y int
}

// searchLine returns the nominal perforation search line for a side:
// a row or column of points inset by the margin.
func searchLine(w, h int, side Side, margin int) []gridPoint {
	var line []gridPoint
	switch side {
	case SideTop:
		for x := margin; x < w-margin; x++ {
			line = append(line, gridPoint{x, margin})
		}
	case SideBottom:
		for x := margin; x < w-margin; x++ {
			line = append(line, gridPoint{x, h - margin - 1})
		}
	case SideLeft:
		for y := margin; y < h-margin; y++ {
			line = append(line, gridPoint{margin, y})
		}
	case SideRight:
		for y := margin; y < h-margin; y++ {
			line = append(line, gridPoint{w - margin - 1, y})
		}
	}
	return line
}

// lineLength is the straight-line span of a search line in pixels.
func lineLength(line []gridPoint) float64 {
	if len(line) < 2 {
		return 0
	}
	first, last := line[0], line[len(line)-1]
	return math.Hypot(float64(last.x-first.x), float64(last.y-first.y))
}

func nearestLineDistance(line []gridPoint, x, y int) float64 {
	best := math.MaxFloat64
	for _, p := range line {
		d := math.Hypot(float64(x-p.x), float64(y-p.y))
		if d < best {
			best = d
		}
	}
	return best
}

func roiBounds(line []gridPoint, margin, w, h int) (x1, y1, x2, y2 int) {
	minX, minY := line[0].x, line[0].y
	maxX, maxY := minX, minY
	for _, p := range line {
		if p.x < minX {
			minX = p.x
		}
		if p.x > maxX {
			maxX = p.x
		}
		if p.y < minY {
			minY = p.y
		}
		if p.y > maxY {
			maxY = p.y
		}
	}
	x1 = max(0, minX-margin)
	y1 = max(0, minY-margin)
	x2 = min(w, maxX+margin)
	y2 = min(h, maxY+margin)
	return x1, y1, x2, y2
}

// subPlane copies the [x1,x2)×[y1,y2) window of a plane.
func subPlane(plane [][]uint8, x1, y1, x2, y2 int) [][]uint8 {
	if x2 <= x1 || y2 <= y1 {
		return nil
	}
	out := make([][]uint8, y2-y1)
	for y := y1; y < y2; y++ {
		row := make([]uint8, x2-x1)
		copy(row, plane[y][x1:x2])
		out[y-y1] = row
	}
	return out
}

// regionAround extracts the box of radius r around (x, y), clamped to
// the plane, and returns the center's position within the box.
func regionAround(plane [][]uint8, x, y, r int) (region [][]uint8, cx, cy int) {
	h := len(plane)
	w := len(plane[0])
	x1 := max(0, x-r)
	y1 := max(0, y-r)
	x2 := min(w, x+r)
	y2 := min(h, y+r)
	return subPlane(plane, x1, y1, x2, y2), x - x1, y - y1
}

func regionMean(plane [][]uint8, x1, y1, x2, y2 int) float64 {
	h := len(plane)
	w := len(plane[0])
	x1 = max(0, x1)
	y1 = max(0, y1)
	x2 = min(w, x2)
	y2 = min(h, y2)

	var sum float64
	var n int
	for y := y1; y < y2; y++ {
		for x := x1; x < x2; x++ {
			sum += float64(plane[y][x])
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func regionVariance(region [][]uint8) float64 {
	var sum float64
	var n int
	for _, row := range region {
		for _, v := range row {
			sum += float64(v)
			n++
		}
	}
	if n == 0 {
		return 0
	}
	mean := sum / float64(n)

	var sq float64
	for _, row := range region {
		for _, v := range row {
			d := float64(v) - mean
			sq += d * d
		}
	}
	return sq / float64(n)
}

func sortHolesAlong(holes []Hole, side Side) {
	if side.Horizontal() {
		sort.Slice(holes, func(i, j int) bool { return holes[i].CenterX < holes[j].CenterX })
	} else {
		sort.Slice(holes, func(i, j int) bool { return holes[i].CenterY < holes[j].CenterY })
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
