package imaging

import (
	"image"
	"testing"
)

func TestGrayPlane_Dimensions(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 30, 20))
	plane := GrayPlane(img)

	if len(plane) != 20 {
		t.Fatalf("rows: got %d, want 20", len(plane))
	}
	if len(plane[0]) != 30 {
		t.Fatalf("columns: got %d, want 30", len(plane[0]))
	}
}

func TestGrayPlane_Values(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 10, 10))
	for i := range img.Pix {
		img.Pix[i] = 180
	}
	img.Pix[5*img.Stride+3] = 20

	plane := GrayPlane(img)

	// Grayscale conversion of an already-gray image keeps values,
	// within a unit of rounding.
	if diff := int(plane[0][0]) - 180; diff < -1 || diff > 1 {
		t.Errorf("plane[0][0]: got %d, want ~180", plane[0][0])
	}
	if diff := int(plane[5][3]) - 20; diff < -1 || diff > 1 {
		t.Errorf("plane[5][3]: got %d, want ~20", plane[5][3])
	}
}

func TestGrayPlane_EmptyImage(t *testing.T) {
	plane := GrayPlane(image.NewGray(image.Rect(0, 0, 0, 0)))
	if len(plane) != 0 {
		t.Errorf("empty image produced %d rows", len(plane))
	}
}

func TestBlurPlane_SmoothsStep(t *testing.T) {
	// A hard 0/200 step softens: the pixels flanking the boundary move
	// toward each other.
	plane := make([][]uint8, 20)
	for y := range plane {
		row := make([]uint8, 20)
		for x := 10; x < 20; x++ {
			row[x] = 200
		}
		plane[y] = row
	}

	blurred := BlurPlane(plane, 1.4)

	if len(blurred) != 20 || len(blurred[0]) != 20 {
		t.Fatalf("dimensions changed: %dx%d", len(blurred[0]), len(blurred))
	}
	if blurred[10][9] == 0 {
		t.Error("dark side of step unchanged by blur")
	}
	if blurred[10][10] == 200 {
		t.Error("bright side of step unchanged by blur")
	}
	if blurred[10][0] != 0 || blurred[10][19] < 190 {
		t.Errorf("far field disturbed: %d, %d", blurred[10][0], blurred[10][19])
	}
}

func TestBlurPlane_DoesNotModifyInput(t *testing.T) {
	plane := [][]uint8{
		{0, 0, 200, 200},
		{0, 0, 200, 200},
		{0, 0, 200, 200},
		{0, 0, 200, 200},
	}

	BlurPlane(plane, 1.4)

	if plane[0][1] != 0 || plane[0][2] != 200 {
		t.Error("input plane was modified")
	}
}

func TestBlurPlane_ZeroRadius(t *testing.T) {
	plane := [][]uint8{{10, 20}, {30, 40}}

	out := BlurPlane(plane, 0)

	if out[0][0] != 10 || out[1][1] != 40 {
		t.Errorf("zero radius should copy values: %v", out)
	}

	// The copy is independent of the input.
	out[0][0] = 99
	if plane[0][0] != 10 {
		t.Error("zero-radius output aliases the input")
	}
}

func TestBlurPlane_Empty(t *testing.T) {
	if out := BlurPlane(nil, 1.4); out != nil {
		t.Errorf("nil plane: got %v", out)
	}
}
