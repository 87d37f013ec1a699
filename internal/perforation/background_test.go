package perforation

import (
	"image"
	"image/color"
	"testing"
)

func solidImage(c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 120, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 120; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestEstimateBackground(t *testing.T) {
	tests := []struct {
		name string
		c    color.Color
		want Background
	}{
		{"black mat", color.RGBA{0, 0, 0, 255}, BackgroundBlack},
		{"near black", color.RGBA{20, 20, 20, 255}, BackgroundBlack},
		{"dark gray mat", color.RGBA{64, 64, 64, 255}, BackgroundDarkGray},
		{"light gray mat", color.RGBA{160, 160, 160, 255}, BackgroundLightGray},
		{"white mat", color.RGBA{255, 255, 255, 255}, BackgroundWhite},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EstimateBackground(solidImage(tt.c)); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestEstimateBackground_IgnoresStampInterior(t *testing.T) {
	// A bright stamp filling the frame must not sway the estimate; only
	// the border band matters.
	img := image.NewRGBA(image.Rect(0, 0, 200, 200))
	for y := 0; y < 200; y++ {
		for x := 0; x < 200; x++ {
			if x < 5 || x >= 195 || y < 5 || y >= 195 {
				img.Set(x, y, color.RGBA{0, 0, 0, 255})
			} else {
				img.Set(x, y, color.RGBA{240, 230, 210, 255})
			}
		}
	}

	if got := EstimateBackground(img); got != BackgroundBlack {
		t.Errorf("got %s, want black from the border band", got)
	}
}

func TestEstimateBackground_EmptyImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 0, 0))
	if got := EstimateBackground(img); got != BackgroundBlack {
		t.Errorf("empty image: got %s, want black default", got)
	}
}

func TestBackgroundIsStampPixel(t *testing.T) {
	tests := []struct {
		bg   Background
		v    uint8
		want bool
	}{
		{BackgroundBlack, 150, true},
		{BackgroundBlack, 50, false},
		{BackgroundDarkGray, 150, true},
		{BackgroundDarkGray, 110, false},
		{BackgroundWhite, 150, true},
		{BackgroundWhite, 230, false},
		{BackgroundLightGray, 150, true},
		{BackgroundLightGray, 190, false},
	}

	for _, tt := range tests {
		if got := tt.bg.IsStampPixel(tt.v); got != tt.want {
			t.Errorf("%s.IsStampPixel(%d): got %v, want %v", tt.bg, tt.v, got, tt.want)
		}
	}
}

func TestBackgroundMatchesHoleIntensity(t *testing.T) {
	tests := []struct {
		bg   Background
		mean float64
		want bool
	}{
		{BackgroundBlack, 30, true},
		{BackgroundBlack, 150, false},
		{BackgroundWhite, 220, true},
		{BackgroundWhite, 100, false},
		{BackgroundLightGray, 150, true},
		{BackgroundLightGray, 100, false},
	}

	for _, tt := range tests {
		if got := tt.bg.MatchesHoleIntensity(tt.mean); got != tt.want {
			t.Errorf("%s.MatchesHoleIntensity(%v): got %v, want %v", tt.bg, tt.mean, got, tt.want)
		}
	}
}
