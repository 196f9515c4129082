// Package kernel implements the pure image operations the SOM engine runs
// per training step: crop, flip, rotate-and-crop, and Euclidean distance,
// all over row-major float32 buffers.
package kernel

import "math"

// Crop copies the centred hd x wd sub-image of src (hs x ws) into dst.
// Precondition: hd <= hs and wd <= ws.
func Crop(src []float32, hs, ws int, dst []float32, hd, wd int) {
	offY := (hs - hd) / 2
	offX := (ws - wd) / 2
	for y := 0; y < hd; y++ {
		srcRow := (y + offY) * ws
		dstRow := y * wd
		copy(dst[dstRow:dstRow+wd], src[srcRow+offX:srcRow+offX+wd])
	}
}

// Flip performs a horizontal flip: dst[y,x] = src[y, w-1-x].
func Flip(src []float32, h, w int, dst []float32) {
	for y := 0; y < h; y++ {
		row := y * w
		for x := 0; x < w; x++ {
			dst[row+x] = src[row+(w-1-x)]
		}
	}
}

// RotateAndCrop rotates src (hs x ws) about its centre by theta radians
// using nearest-neighbour sampling, then crops to the centred hd x wd
// region. Out-of-range source samples are treated as 0.
func RotateAndCrop(src []float32, hs, ws int, dst []float32, hd, wd int, theta float64) {
	cxSrc := float64(ws-1) / 2.0
	cySrc := float64(hs-1) / 2.0

	offY := (hs - hd) / 2
	offX := (ws - wd) / 2

	cosT := math.Cos(theta)
	sinT := math.Sin(theta)

	for y := 0; y < hd; y++ {
		// Destination pixel (y,x) maps to source pixel (y+offY, x+offX)
		// prior to rotation; sample the rotated image at that location by
		// rotating the offset vector backwards (inverse rotation) about
		// the source centre.
		dyFromCentre := float64(y+offY) - cySrc
		for x := 0; x < wd; x++ {
			dxFromCentre := float64(x+offX) - cxSrc

			srcX := cxSrc + dxFromCentre*cosT - dyFromCentre*sinT
			srcY := cySrc + dxFromCentre*sinT + dyFromCentre*cosT

			ix := int(math.Round(srcX))
			iy := int(math.Round(srcY))

			var v float32
			if ix >= 0 && ix < ws && iy >= 0 && iy < hs {
				v = src[iy*ws+ix]
			}
			dst[y*wd+x] = v
		}
	}
}

// EuclideanDistance returns sqrt(sum((a[i]-b[i])^2)) over the first n
// elements of a and b.
func EuclideanDistance(a, b []float32, n int) float64 {
	sum := 0.0
	for i := 0; i < n; i++ {
		d := float64(a[i] - b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}
