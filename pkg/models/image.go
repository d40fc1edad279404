package models

import (
	"bufio"
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/webp"
)

// decoders maps a lowercase file extension to its decoder. TGA has no
// magic number, so formats are picked by name rather than sniffed.
var decoders = map[string]func(io.Reader) (image.Image, error){
	".png":  png.Decode,
	".jpg":  jpeg.Decode,
	".jpeg": jpeg.Decode,
	".bmp":  bmp.Decode,
	".webp": webp.Decode,
	".tga":  tga.Decode,
}

// mimeExt maps glTF image MIME types to extensions.
var mimeExt = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/bmp":  ".bmp",
	"image/webp": ".webp",
}

// DecodeImage decodes r as the format named by ext (".png", ".tga", ...)
// into 8-bit non-premultiplied RGBA. An empty or unknown ext is resolved
// from the content's magic bytes; TGA has none and needs its extension.
func DecodeImage(r io.Reader, ext string) (*Image, error) {
	dec, ok := decoders[strings.ToLower(ext)]
	if !ok {
		br := bufio.NewReader(r)
		head, _ := br.Peek(sniffLen)
		mime := http.DetectContentType(head)
		if dec, ok = decoders[mimeExt[mime]]; !ok {
			return nil, fmt.Errorf("decode image: %w: %s", ErrUnsupportedFormat, mime)
		}
		r = br
	}
	src, err := dec(r)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return fromImage(src), nil
}

// sniffLen is the most content http.DetectContentType considers.
const sniffLen = 512

// LoadImage reads and decodes an image file.
func LoadImage(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	img, err := DecodeImage(bytes.NewReader(data), filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

func fromImage(src image.Image) *Image {
	b := src.Bounds()
	dst, ok := src.(*image.NRGBA)
	if !ok || b.Min != (image.Point{}) || dst.Stride != b.Dx()*4 {
		dst = image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	}
	return &Image{Width: b.Dx(), Height: b.Dy(), Channels: 4, Pix: dst.Pix}
}

// imageCache decodes each texture file once per load.
type imageCache map[string]*Image

func (c imageCache) load(path string) (*Image, error) {
	if img, ok := c[path]; ok {
		return img, nil
	}
	img, err := LoadImage(path)
	if err != nil {
		return nil, err
	}
	c[path] = img
	return img, nil
}
