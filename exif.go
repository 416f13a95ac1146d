package follicle

import (
	"bytes"
	"encoding/binary"
	"image"
)

// Orientation is an EXIF orientation tag value.
type Orientation int

// The eight EXIF orientations. Values 2-8 require a flip and/or rotation
// to display upright.
const (
	OrientNormal      Orientation = 1
	OrientFlipH       Orientation = 2
	OrientRotate180   Orientation = 3
	OrientFlipV       Orientation = 4
	OrientTranspose   Orientation = 5
	OrientRotate90CW  Orientation = 6
	OrientTransverse  Orientation = 7
	OrientRotate270CW Orientation = 8
)

// ReadOrientation extracts the EXIF orientation tag from JPEG bytes.
// Camera scalp photos are frequently rotated; without this the brightness
// and sharpness statistics would run on sideways pixels. Returns
// OrientNormal when the data is not JPEG or carries no orientation.
// Only the orientation tag is parsed, not the full EXIF tree.
func ReadOrientation(data []byte) Orientation {
	if len(data) < 4 || data[0] != 0xFF || data[1] != 0xD8 {
		return OrientNormal
	}

	// Walk JPEG segments looking for APP1 (EXIF).
	pos := 2
	for pos+4 <= len(data) {
		if data[pos] != 0xFF {
			return OrientNormal
		}
		marker := data[pos+1]
		pos += 2
		for marker == 0xFF && pos < len(data) {
			marker = data[pos]
			pos++
		}
		if marker == 0xDA { // start of scan: no metadata beyond this
			return OrientNormal
		}
		if pos+2 > len(data) {
			return OrientNormal
		}
		segLen := int(binary.BigEndian.Uint16(data[pos:pos+2])) - 2
		pos += 2
		if segLen < 0 || pos+segLen > len(data) {
			return OrientNormal
		}
		if marker == 0xE1 {
			return orientationFromAPP1(data[pos : pos+segLen])
		}
		pos += segLen
	}
	return OrientNormal
}

// orientationFromAPP1 scans an APP1 payload's IFD0 for tag 0x0112.
func orientationFromAPP1(seg []byte) Orientation {
	if len(seg) < 14 || !bytes.Equal(seg[:6], []byte("Exif\x00\x00")) {
		return OrientNormal
	}
	tiff := seg[6:]

	var bo binary.ByteOrder
	switch string(tiff[:2]) {
	case "II":
		bo = binary.LittleEndian
	case "MM":
		bo = binary.BigEndian
	default:
		return OrientNormal
	}
	if bo.Uint16(tiff[2:4]) != 42 {
		return OrientNormal
	}

	ifd := int(bo.Uint32(tiff[4:8]))
	if ifd < 8 || ifd+2 > len(tiff) {
		return OrientNormal
	}
	entries := int(bo.Uint16(tiff[ifd : ifd+2]))
	ifd += 2

	for i := 0; i < entries; i++ {
		off := ifd + i*12
		if off+12 > len(tiff) {
			break
		}
		if bo.Uint16(tiff[off:off+2]) != 0x0112 {
			continue
		}
		if bo.Uint16(tiff[off+2:off+4]) != 3 { // SHORT
			return OrientNormal
		}
		if v := bo.Uint16(tiff[off+8 : off+10]); v >= 1 && v <= 8 {
			return Orientation(v)
		}
		return OrientNormal
	}
	return OrientNormal
}

// ApplyOrientation returns pixels transformed so the image displays as
// orientation 1. The input is never modified.
func ApplyOrientation(img *image.NRGBA, orient Orientation) *image.NRGBA {
	switch orient {
	case OrientFlipH:
		return flipH(img)
	case OrientRotate180:
		return rotate180(img)
	case OrientFlipV:
		return flipV(img)
	case OrientTranspose:
		return flipH(rotate270(img))
	case OrientRotate90CW:
		return rotate90(img)
	case OrientTransverse:
		return flipH(rotate90(img))
	case OrientRotate270CW:
		return rotate270(img)
	default:
		return img
	}
}

func rotate90(img *image.NRGBA) *image.NRGBA {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	dst := image.NewNRGBA(image.Rect(0, 0, h, w))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			src := y*img.Stride + x*4
			off := x*dst.Stride + (h-1-y)*4
			copy(dst.Pix[off:off+4], img.Pix[src:src+4])
		}
	}
	return dst
}

func rotate180(img *image.NRGBA) *image.NRGBA {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			src := y*img.Stride + x*4
			off := (h-1-y)*dst.Stride + (w-1-x)*4
			copy(dst.Pix[off:off+4], img.Pix[src:src+4])
		}
	}
	return dst
}

func rotate270(img *image.NRGBA) *image.NRGBA {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	dst := image.NewNRGBA(image.Rect(0, 0, h, w))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			src := y*img.Stride + x*4
			off := (w-1-x)*dst.Stride + y*4
			copy(dst.Pix[off:off+4], img.Pix[src:src+4])
		}
	}
	return dst
}

func flipH(img *image.NRGBA) *image.NRGBA {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			src := y*img.Stride + x*4
			off := y*dst.Stride + (w-1-x)*4
			copy(dst.Pix[off:off+4], img.Pix[src:src+4])
		}
	}
	return dst
}

func flipV(img *image.NRGBA) *image.NRGBA {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		srcRow := y * img.Stride
		dstRow := (h - 1 - y) * dst.Stride
		copy(dst.Pix[dstRow:dstRow+w*4], img.Pix[srcRow:srcRow+w*4])
	}
	return dst
}
