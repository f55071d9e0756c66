package usecase

import (
	"image"
	"math"

	"github.com/disintegration/imaging"

	"github.com/torus-io/assetpipe/pkg/domain/model"
)

// Classifier thresholds. These are fixed policy constants tuned against the
// production photo corpus; changing them changes which photos get flagged.
const (
	thumbnailMax = 200

	whiteChannelMin = 220

	bgMinEdgeWhiteRatio = 0.8
	bgMaxContrast       = 25.0
	bgMaxCornerSpread   = 15.0
	bgMaxCenterEdgeDiff = 20.0
	// Any image with this much internal variation is presumed not to be a
	// flat-background shot, whatever the other signals say.
	bgContrastOverride = 40.0

	detailMinContrast       = 40.0
	detailMinEdgeDensity    = 0.15
	detailCenterFocusRatio  = 1.2
	detailMinEdgeWhiteRatio = 0.6
	edgeFilterThreshold     = 50

	qualityPixelNorm      = 2000 * 2000
	qualityEfficiencyNorm = 1_000_000
	minQualityScore       = 0.3
)

// Classify computes the heuristic verdicts for one decoded image. The pixel
// statistics run on a Lanczos downsample of at most 200x200; the quality
// score uses the original dimensions and the on-disk size. Deterministic:
// the same pixels and size always yield the same verdicts.
func Classify(img image.Image, sizeBytes int64) model.Classification {
	bounds := img.Bounds()
	thumb := imaging.Fit(img, thumbnailMax, thumbnailMax, imaging.Lanczos)
	grid := newPixelGrid(thumb)

	return model.Classification{
		HasBackground: detectBackground(grid),
		IsDetailShot:  detectDetailShot(grid, thumb),
		QualityScore:  qualityScore(bounds.Dx(), bounds.Dy(), sizeBytes),
	}
}

// detectBackground flags flat, cluttered-background shots: near-white border
// pixels, low global contrast, uniform corners and little difference between
// the center block and the border. High contrast overrides everything.
func detectBackground(g *pixelGrid) bool {
	edge := g.edgePixels()

	uniformEdges := edge.whiteRatio() > bgMinEdgeWhiteRatio
	contrast := stddev(g.gray)
	lowContrast := contrast < bgMaxContrast
	uniformCorners := g.cornerSpread() < bgMaxCornerSpread
	lowCenterEdgeDiff := math.Abs(g.centerMean()-edge.mean()) < bgMaxCenterEdgeDiff

	isBackground := uniformEdges && lowContrast && uniformCorners && lowCenterEdgeDiff

	if contrast > bgContrastOverride {
		isBackground = false
	}
	return isBackground
}

// detectDetailShot flags close-up shots: high contrast plus either dense
// edges or a center sharper than the border, on a clean background.
func detectDetailShot(g *pixelGrid, thumb image.Image) bool {
	edge := g.edgePixels()

	highContrast := stddev(g.gray) > detailMinContrast
	denseEdges := edgeDensity(thumb) > detailMinEdgeDensity
	centerFocus := g.centerContrast() > stddev(edge.grays())*detailCenterFocusRatio
	cleanBackground := edge.whiteRatio() > detailMinEdgeWhiteRatio

	return highContrast && (denseEdges || centerFocus) && cleanBackground
}

// qualityScore blends a pixel-count score normalized to 2MP with a
// bytes-per-pixel efficiency score, clamped to [0,1]. A zero file size
// contributes a zero efficiency term.
func qualityScore(width, height int, sizeBytes int64) float64 {
	pixels := float64(width) * float64(height)

	pixelScore := math.Min(1.0, pixels/qualityPixelNorm)

	var efficiencyScore float64
	if sizeBytes > 0 {
		efficiencyScore = math.Min(1.0, pixels/float64(sizeBytes)/qualityEfficiencyNorm)
	}

	score := pixelScore*0.7 + efficiencyScore*0.3
	return math.Min(1.0, math.Max(0.0, score))
}

// edgeDensity is the fraction of pixels whose edge-filtered grayscale value
// exceeds the filter threshold. The 3x3 kernel matches a standard
// find-edges Laplacian.
func edgeDensity(thumb image.Image) float64 {
	gray := imaging.Grayscale(thumb)
	edges := imaging.Convolve3x3(gray, [9]float64{
		-1, -1, -1,
		-1, 8, -1,
		-1, -1, -1,
	}, nil)

	bounds := edges.Bounds()
	total := bounds.Dx() * bounds.Dy()
	if total == 0 {
		return 0
	}

	count := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if edges.NRGBAAt(x, y).R > edgeFilterThreshold {
				count++
			}
		}
	}
	return float64(count) / float64(total)
}

// pixelGrid holds the downsampled RGB plane plus per-pixel luminance
// (mean of the three channels), row-major
type pixelGrid struct {
	w, h    int
	r, g, b []float64
	gray    []float64
}

func newPixelGrid(img image.Image) *pixelGrid {
	nrgba := imaging.Clone(img)
	bounds := nrgba.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	grid := &pixelGrid{
		w: w, h: h,
		r:    make([]float64, w*h),
		g:    make([]float64, w*h),
		b:    make([]float64, w*h),
		gray: make([]float64, w*h),
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := nrgba.NRGBAAt(x, y)
			i := y*w + x
			grid.r[i] = float64(c.R)
			grid.g[i] = float64(c.G)
			grid.b[i] = float64(c.B)
			grid.gray[i] = (grid.r[i] + grid.g[i] + grid.b[i]) / 3.0
		}
	}
	return grid
}

// edgeSet is the pixels forming the four border lines of the grid. The
// traversal order (top, bottom, left, right) counts each corner twice,
// matching how the ratios were originally tuned.
type edgeSet struct {
	grid    *pixelGrid
	indices []int
}

func (g *pixelGrid) edgePixels() *edgeSet {
	indices := make([]int, 0, 2*g.w+2*g.h)
	for x := 0; x < g.w; x++ {
		indices = append(indices, x) // top row
	}
	for x := 0; x < g.w; x++ {
		indices = append(indices, (g.h-1)*g.w+x) // bottom row
	}
	for y := 0; y < g.h; y++ {
		indices = append(indices, y*g.w) // left column
	}
	for y := 0; y < g.h; y++ {
		indices = append(indices, y*g.w+g.w-1) // right column
	}
	return &edgeSet{grid: g, indices: indices}
}

// whiteRatio is the fraction of edge pixels with all channels above the
// white threshold
func (e *edgeSet) whiteRatio() float64 {
	if len(e.indices) == 0 {
		return 0
	}
	white := 0
	for _, i := range e.indices {
		if e.grid.r[i] > whiteChannelMin && e.grid.g[i] > whiteChannelMin && e.grid.b[i] > whiteChannelMin {
			white++
		}
	}
	return float64(white) / float64(len(e.indices))
}

// mean is the average over every channel of every edge pixel
func (e *edgeSet) mean() float64 {
	if len(e.indices) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, i := range e.indices {
		sum += e.grid.r[i] + e.grid.g[i] + e.grid.b[i]
	}
	return sum / float64(len(e.indices)*3)
}

// grays returns the per-pixel channel means along the border
func (e *edgeSet) grays() []float64 {
	out := make([]float64, len(e.indices))
	for n, i := range e.indices {
		out[n] = (e.grid.r[i] + e.grid.g[i] + e.grid.b[i]) / 3.0
	}
	return out
}

// cornerSpread is the standard deviation of the mean luminances of the four
// corner blocks. Degenerate block sizes yield NaN, which fails every
// threshold comparison.
func (g *pixelGrid) cornerSpread() float64 {
	size := min(20, g.h/4, g.w/4)
	if size < 1 {
		return math.NaN()
	}

	means := []float64{
		g.blockMean(0, 0, size, size),
		g.blockMean(0, g.w-size, size, g.w),
		g.blockMean(g.h-size, 0, g.h, size),
		g.blockMean(g.h-size, g.w-size, g.h, g.w),
	}
	return stddev(means)
}

// centerMean is the mean over every channel of a centered block of size
// min(40, h/3, w/3)
func (g *pixelGrid) centerMean() float64 {
	size := min(40, g.h/3, g.w/3)
	return g.centerBlockMean(size)
}

// centerContrast is the luminance standard deviation within a centered block
// of size min(60, h/2, w/2)
func (g *pixelGrid) centerContrast() float64 {
	size := min(60, g.h/2, g.w/2)
	y0, y1, x0, x1 := g.centerBounds(size)
	if y1 <= y0 || x1 <= x0 {
		return math.NaN()
	}

	var grays []float64
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			grays = append(grays, g.gray[y*g.w+x])
		}
	}
	return stddev(grays)
}

func (g *pixelGrid) centerBounds(size int) (y0, y1, x0, x1 int) {
	cy, cx := g.h/2, g.w/2
	return cy - size/2, cy + size/2, cx - size/2, cx + size/2
}

func (g *pixelGrid) centerBlockMean(size int) float64 {
	y0, y1, x0, x1 := g.centerBounds(size)
	if y1 <= y0 || x1 <= x0 {
		return math.NaN()
	}
	return g.blockMean(y0, x0, y1, x1)
}

// blockMean averages every channel of the pixels in [y0,y1) x [x0,x1)
func (g *pixelGrid) blockMean(y0, x0, y1, x1 int) float64 {
	sum := 0.0
	count := 0
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			i := y*g.w + x
			sum += g.r[i] + g.g[i] + g.b[i]
			count += 3
		}
	}
	if count == 0 {
		return math.NaN()
	}
	return sum / float64(count)
}

// stddev is the population standard deviation
func stddev(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	variance := 0.0
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	return math.Sqrt(variance / float64(len(values)))
}
