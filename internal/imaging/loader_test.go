package imaging

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"sync"
	"testing"
)

// createTestScan writes a solid-color PNG and returns its path.
// The caller is responsible for removing the file.
func createTestScan(t *testing.T, width, height int, c color.Color) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}

	tmpFile, err := os.CreateTemp("", "test-scan-*.png")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer tmpFile.Close()

	if err := png.Encode(tmpFile, img); err != nil {
		os.Remove(tmpFile.Name())
		t.Fatalf("failed to encode image: %v", err)
	}

	return tmpFile.Name()
}

func TestNewImageCache(t *testing.T) {
	cache := NewImageCache()
	if cache == nil {
		t.Fatal("NewImageCache returned nil")
	}
	if cache.images == nil {
		t.Fatal("NewImageCache did not initialize images map")
	}
}

func TestImageCache_Load(t *testing.T) {
	cache := NewImageCache()
	path := createTestScan(t, 100, 100, color.RGBA{255, 0, 0, 255})
	defer os.Remove(path)

	img1, err := cache.Load(path)
	if err != nil {
		t.Fatalf("first load failed: %v", err)
	}
	if img1.Bounds().Dx() != 100 {
		t.Errorf("width: got %d, want 100", img1.Bounds().Dx())
	}

	// Second load must come from the cache: same image value even
	// after the file disappears.
	os.Remove(path)
	img2, err := cache.Load(path)
	if err != nil {
		t.Fatalf("cached load failed: %v", err)
	}
	if img1 != img2 {
		t.Error("cached load returned a different image")
	}
}

func TestImageCache_Load_MissingFile(t *testing.T) {
	cache := NewImageCache()
	if _, err := cache.Load("/nonexistent/scan.png"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestImageCache_Load_InvalidData(t *testing.T) {
	tmpFile, err := os.CreateTemp("", "not-an-image-*.png")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())
	tmpFile.WriteString("not image data")
	tmpFile.Close()

	cache := NewImageCache()
	if _, err := cache.Load(tmpFile.Name()); err == nil {
		t.Error("expected decode error for non-image data")
	}
}

func TestImageCache_Evict(t *testing.T) {
	cache := NewImageCache()
	path := createTestScan(t, 50, 50, color.RGBA{0, 255, 0, 255})
	defer os.Remove(path)

	if _, err := cache.Load(path); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	cache.Evict(path)

	cache.mu.RLock()
	_, cached := cache.images[path]
	cache.mu.RUnlock()
	if cached {
		t.Error("image still cached after Evict")
	}

	// Evicting an unknown path is a no-op.
	cache.Evict("/never/loaded.png")
}

func TestImageCache_Clear(t *testing.T) {
	cache := NewImageCache()
	path1 := createTestScan(t, 40, 40, color.RGBA{0, 0, 255, 255})
	path2 := createTestScan(t, 60, 60, color.RGBA{255, 255, 0, 255})
	defer os.Remove(path1)
	defer os.Remove(path2)

	cache.Load(path1)
	cache.Load(path2)
	cache.Clear()

	cache.mu.RLock()
	n := len(cache.images)
	cache.mu.RUnlock()
	if n != 0 {
		t.Errorf("cache holds %d images after Clear", n)
	}
}

func TestImageCache_ConcurrentLoad(t *testing.T) {
	cache := NewImageCache()
	path := createTestScan(t, 80, 80, color.RGBA{128, 128, 128, 255})
	defer os.Remove(path)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.Load(path); err != nil {
				t.Errorf("concurrent load failed: %v", err)
			}
		}()
	}
	wg.Wait()
}

func TestLoadImageInfo(t *testing.T) {
	cache := NewImageCache()
	path := createTestScan(t, 120, 80, color.RGBA{200, 200, 200, 255})
	defer os.Remove(path)

	info, err := LoadImageInfo(cache, path)
	if err != nil {
		t.Fatalf("LoadImageInfo failed: %v", err)
	}

	if info.Width != 120 || info.Height != 80 {
		t.Errorf("dimensions: got %dx%d, want 120x80", info.Width, info.Height)
	}
	if info.Format != "png" {
		t.Errorf("format: got %q, want png", info.Format)
	}
	if info.FileSizeBytes <= 0 {
		t.Errorf("file size: got %d", info.FileSizeBytes)
	}
}

func TestGetDimensions(t *testing.T) {
	cache := NewImageCache()
	path := createTestScan(t, 300, 200, color.RGBA{10, 10, 10, 255})
	defer os.Remove(path)

	dims, err := GetDimensions(cache, path)
	if err != nil {
		t.Fatalf("GetDimensions failed: %v", err)
	}
	if dims.Width != 300 || dims.Height != 200 {
		t.Errorf("got %dx%d, want 300x200", dims.Width, dims.Height)
	}
}
