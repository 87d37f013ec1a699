package perforation

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// LineTicDetector finds perforations by tracing the scalloped inner
// edge line of the stamp and locating its indentations. Unlike the
// circle search it does not assume holes kept their round shape, which
// makes it the better strategy for torn, aged, or irregular
// perforations.
type LineTicDetector struct {
	DPI        int
	Background Background
	Config     DetectionConfig
}

func (d *LineTicDetector) Name() string { return "line-based tic detection" }

// EdgeConfidence blends spacing consistency with the mean tic
// confidence: a perfectly regular line of shallow, uncertain tics
// should not score as high as deep, unambiguous ones.
func (d *LineTicDetector) EdgeConfidence(spacingConfidence float64, points []Hole) float64 {
	if len(points) == 0 {
		return 0
	}
	var sum float64
	for _, p := range points {
		sum += p.Confidence
	}
	return spacingConfidence*0.7 + (sum/float64(len(points)))*0.3
}

// Detect traces the edge line for the given side and converts its
// indentations to the common point representation.
func (d *LineTicDetector) Detect(plane [][]uint8, side Side) []Hole {
	tics := d.DetectTics(plane, side)
	holes := make([]Hole, 0, len(tics))
	for _, t := range tics {
		holes = append(holes, t.Hole())
	}
	return holes
}

// DetectTics runs the full tracing pipeline for one side: trace the
// stamp/background transition, follow the darkest pixels a short depth
// inward, smooth, fit a trend line, and keep deviation peaks.
func (d *LineTicDetector) DetectTics(plane [][]uint8, side Side) []Tic {
	traced := d.traceEdgeLine(plane, side)
	if len(traced) < d.Config.MinTracePoints {
		return nil
	}

	sortTracedAlong(traced, side)
	smoothed := smoothLine(traced, d.Config.SmoothWindow)
	tics := d.findIndentations(smoothed, side)
	return d.filterCloseTics(tics)
}

type tracePoint struct {
	x, y float64
}

// traceEdgeLine samples every TraceStep-th column (or row), walks
// inward from the image boundary to the first stamp pixel, then
// continues up to TraceDepth pixels looking for the locally darkest
// point. The result follows the scalloped inner perforation line.
func (d *LineTicDetector) traceEdgeLine(plane [][]uint8, side Side) []tracePoint {
	h := len(plane)
	if h == 0 {
		return nil
	}
	w := len(plane[0])

	region := traceRegion(w, h, side, d.Config)
	step := d.Config.TraceStep
	depth := d.Config.TraceDepth

	var line []tracePoint
	if side.Horizontal() {
		for x := region.x1; x < region.x2; x += step {
			y, ok := d.innerDarkest(columnScanner(plane, x, region, side), depth)
			if ok {
				line = append(line, tracePoint{float64(x), float64(y)})
			}
		}
	} else {
		for y := region.y1; y < region.y2; y += step {
			x, ok := d.innerDarkest(rowScanner(plane, y, region, side), depth)
			if ok {
				line = append(line, tracePoint{float64(x), float64(y)})
			}
		}
	}
	return line
}

type traceBox struct {
	x1, y1, x2, y2 int
}

// traceRegion is the strip near one image boundary the tracer scans.
// It reaches TraceBandDepth pixels inward (or dimension over
// TraceBandDivisor on small scans), skipping TraceCornerMargin along
// the edge axis.
func traceRegion(w, h int, side Side, cfg DetectionConfig) traceBox {
	margin := cfg.TraceCornerMargin
	switch side {
	case SideTop:
		return traceBox{x1: margin, y1: 0, x2: w - margin, y2: min(cfg.TraceBandDepth, h/cfg.TraceBandDivisor)}
	case SideBottom:
		return traceBox{x1: margin, y1: max(h-cfg.TraceBandDepth, h*(cfg.TraceBandDivisor-1)/cfg.TraceBandDivisor), x2: w - margin, y2: h}
	case SideLeft:
		return traceBox{x1: 0, y1: margin, x2: min(cfg.TraceBandDepth, w/cfg.TraceBandDivisor), y2: h - margin}
	default: // SideRight
		return traceBox{x1: max(w-cfg.TraceBandDepth, w*(cfg.TraceBandDivisor-1)/cfg.TraceBandDivisor), y1: margin, x2: w, y2: h - margin}
	}
}

// scanStep yields pixels walking inward from the image boundary; pos is
// the coordinate along the walk axis in full-image space.
type scanStep struct {
	pos int
	val uint8
}

func columnScanner(plane [][]uint8, x int, box traceBox, side Side) []scanStep {
	var steps []scanStep
	if side == SideTop {
		for y := box.y1; y < box.y2; y++ {
			steps = append(steps, scanStep{y, plane[y][x]})
		}
	} else {
		for y := box.y2 - 1; y >= box.y1; y-- {
			steps = append(steps, scanStep{y, plane[y][x]})
		}
	}
	return steps
}

func rowScanner(plane [][]uint8, y int, box traceBox, side Side) []scanStep {
	var steps []scanStep
	if side == SideLeft {
		for x := box.x1; x < box.x2; x++ {
			steps = append(steps, scanStep{x, plane[y][x]})
		}
	} else {
		for x := box.x2 - 1; x >= box.x1; x-- {
			steps = append(steps, scanStep{x, plane[y][x]})
		}
	}
	return steps
}

// innerDarkest finds the stamp/background transition along a scan and
// returns the position of the darkest pixel within depth steps past it.
// The darkest pixel marks the deepest point of a perforation
// indentation; on a plain edge it stays at the transition itself.
func (d *LineTicDetector) innerDarkest(scan []scanStep, depth int) (int, bool) {
	start := -1
	for i, s := range scan {
		if d.Background.IsStampPixel(s.val) {
			start = i
			break
		}
	}
	if start < 0 {
		return 0, false
	}

	darkestPos := scan[start].pos
	darkestVal := scan[start].val
	for i := start; i < len(scan) && i < start+depth; i++ {
		if scan[i].val < darkestVal {
			darkestVal = scan[i].val
			darkestPos = scan[i].pos
		}
	}
	return darkestPos, true
}

// smoothLine applies a small sliding-window average. The window stays
// narrow so indentation shape survives while pixel noise averages out.
func smoothLine(line []tracePoint, window int) []tracePoint {
	if len(line) < 5 {
		return line
	}
	if w := len(line) / 3; w < window {
		window = w
	}

	smoothed := make([]tracePoint, len(line))
	for i := range line {
		start := max(0, i-window/2)
		end := min(len(line), i+window/2+1)

		var sx, sy float64
		for _, p := range line[start:end] {
			sx += p.x
			sy += p.y
		}
		n := float64(end - start)
		smoothed[i] = tracePoint{sx / n, sy / n}
	}
	return smoothed
}

// findIndentations fits a linear trend to the smoothed line and keeps
// points that deviate toward the stamp interior and are the deviation
// maximum of their local window.
func (d *LineTicDetector) findIndentations(line []tracePoint, side Side) []Tic {
	if len(line) < d.Config.MinTracePoints {
		return nil
	}

	alpha, beta := trendLine(line, side)

	depths := make([]float64, len(line))
	for i, p := range line {
		depths[i] = inwardDeviation(p, side, alpha, beta)
	}

	var tics []Tic
	window := d.Config.PeakWindow
	for i := window; i < len(line)-window; i++ {
		depth := depths[i]
		if depth <= d.Config.DeviationThreshold {
			continue
		}

		isPeak := depth > d.Config.PeakThreshold
		for j := i - window; j <= i+window && isPeak; j++ {
			if depths[j] > depth {
				isPeak = false
			}
		}
		if !isPeak {
			continue
		}

		tics = append(tics, Tic{
			X:          line[i].x,
			Y:          line[i].y,
			Depth:      depth,
			Confidence: math.Min(1.0, depth/d.Config.TicDepthScale),
			Side:       side,
		})
	}
	return tics
}

// trendLine regresses the cross-axis coordinate on the edge-axis
// coordinate, giving the nominal straight edge the indentations deviate
// from.
func trendLine(line []tracePoint, side Side) (alpha, beta float64) {
	xs := make([]float64, len(line))
	ys := make([]float64, len(line))
	for i, p := range line {
		if side.Horizontal() {
			xs[i], ys[i] = p.x, p.y
		} else {
			xs[i], ys[i] = p.y, p.x
		}
	}
	return stat.LinearRegression(xs, ys, nil, false)
}

// inwardDeviation is how far a point sits past the trend line toward
// the stamp interior; points deviating outward return a negative value.
func inwardDeviation(p tracePoint, side Side, alpha, beta float64) float64 {
	var expected, actual float64
	if side.Horizontal() {
		expected = alpha + beta*p.x
		actual = p.y
	} else {
		expected = alpha + beta*p.y
		actual = p.x
	}

	deviation := actual - expected
	// Top and left edges indent toward larger coordinates; bottom and
	// right toward smaller ones.
	if side == SideBottom || side == SideRight {
		deviation = -deviation
	}
	return deviation
}

// filterCloseTics enforces the minimum spacing between kept tics,
// preferring the higher-confidence tic when two crowd each other.
func (d *LineTicDetector) filterCloseTics(tics []Tic) []Tic {
	if len(tics) <= 1 {
		return tics
	}

	horizontal := tics[0].Side.Horizontal()
	sort.Slice(tics, func(i, j int) bool {
		if horizontal {
			return tics[i].X < tics[j].X
		}
		return tics[i].Y < tics[j].Y
	})

	minSpacing := float64(d.Config.TicSpacingFloor)
	if s := float64(d.DPI / d.Config.TicSpacingDPIDivisor); s > minSpacing {
		minSpacing = s
	}

	filtered := []Tic{tics[0]}
	for _, t := range tics[1:] {
		last := filtered[len(filtered)-1]

		var distance float64
		if horizontal {
			distance = math.Abs(t.X - last.X)
		} else {
			distance = math.Abs(t.Y - last.Y)
		}

		switch {
		case distance >= minSpacing:
			filtered = append(filtered, t)
		case t.Confidence > last.Confidence:
			filtered[len(filtered)-1] = t
		}
	}
	return filtered
}

func sortTracedAlong(line []tracePoint, side Side) {
	if side.Horizontal() {
		sort.Slice(line, func(i, j int) bool { return line[i].x < line[j].x })
	} else {
		sort.Slice(line, func(i, j int) bool { return line[i].y < line[j].y })
	}
}
