// Package phototest builds small JPEG fixtures with EXIF metadata for tests.
package phototest

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"
)

// Options describe the fixture
type Options struct {
	Width       int
	Height      int
	Caption     string // raw bytes written to ImageDescription
	Orientation int    // 0 omits the tag
}

// JPEG encodes a gradient image and injects an EXIF block when a caption or
// orientation is requested
func JPEG(opts Options) []byte {
	if opts.Width == 0 {
		opts.Width = 60
	}
	if opts.Height == 0 {
		opts.Height = 40
	}

	img := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	for y := 0; y < opts.Height; y++ {
		for x := 0; x < opts.Width; x++ {
			img.Set(x, y, color.RGBA{uint8(x * 4), uint8(y * 4), 128, 255})
		}
	}
	var buf bytes.Buffer
	jpeg.Encode(&buf, img, &jpeg.Options{Quality: 80})
	data := buf.Bytes()

	if opts.Caption == "" && opts.Orientation == 0 {
		return data
	}

	tiff := exifTIFF(opts.Caption, opts.Orientation)
	payload := append([]byte("Exif\x00\x00"), tiff...)

	var out bytes.Buffer
	out.Write(data[:2]) // SOI
	out.Write([]byte{0xFF, 0xE1})
	binary.Write(&out, binary.BigEndian, uint16(len(payload)+2))
	out.Write(payload)
	out.Write(data[2:])
	return out.Bytes()
}

// exifTIFF builds a little-endian TIFF header with a single IFD
func exifTIFF(caption string, orientation int) []byte {
	type entry struct {
		tag   uint16
		typ   uint16
		count uint32
		data  []byte
	}

	var entries []entry
	if caption != "" {
		entries = append(entries, entry{tag: 0x010E, typ: 2, count: uint32(len(caption) + 1), data: append([]byte(caption), 0)})
	}
	if orientation != 0 {
		v := make([]byte, 2)
		binary.LittleEndian.PutUint16(v, uint16(orientation))
		entries = append(entries, entry{tag: 0x0112, typ: 3, count: 1, data: v})
	}

	le := binary.LittleEndian
	ifdSize := 2 + len(entries)*12 + 4
	dataOffset := uint32(8 + ifdSize)

	var head, extra bytes.Buffer
	head.Write([]byte("II"))
	binary.Write(&head, le, uint16(42))
	binary.Write(&head, le, uint32(8))
	binary.Write(&head, le, uint16(len(entries)))

	for _, e := range entries {
		binary.Write(&head, le, e.tag)
		binary.Write(&head, le, e.typ)
		binary.Write(&head, le, e.count)
		if len(e.data) <= 4 {
			inline := make([]byte, 4)
			copy(inline, e.data)
			head.Write(inline)
			continue
		}
		binary.Write(&head, le, dataOffset+uint32(extra.Len()))
		extra.Write(e.data)
		if extra.Len()%2 == 1 {
			extra.WriteByte(0)
		}
	}
	binary.Write(&head, le, uint32(0)) // no next IFD

	return append(head.Bytes(), extra.Bytes()...)
}

// WriteJPEG writes a fixture into dir and returns its path
func WriteJPEG(t testing.TB, dir, name string, opts Options) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, JPEG(opts), 0644); err != nil {
		t.Fatalf("failed to write fixture %s: %v", name, err)
	}
	return path
}
