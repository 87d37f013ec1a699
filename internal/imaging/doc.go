// Package imaging provides raster support for the perforation engine:
// scan loading with caching, luminance plane extraction, and Gaussian
// smoothing.
//
// # Coordinate System
//
// Pixel coordinates are 0-based with (0,0) at the top-left corner, X
// increasing rightward and Y increasing downward. Luminance planes are
// indexed plane[y][x].
//
// # Formats
//
// The loader decodes PNG, JPEG, GIF, TIFF, and BMP. TIFF matters here:
// philatelic scans are usually archived as TIFF at 600-2400 DPI.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. GrayPlane and BlurPlane are
// pure functions over their inputs.
package imaging
