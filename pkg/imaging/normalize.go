package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/nfnt/resize"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Size is the spatial resolution every X-ray model was trained on.
const Size = 224

const channels = 3

// DefaultMaxPixels is the largest width*height accepted before decoding.
const DefaultMaxPixels = 178956970

var ErrInvalidImage = errors.New("invalid image")

// Tensor is a dense float32 batch in NHWC layout.
type Tensor struct {
	Shape []int64
	Data  []float32
}

// At returns the value at batch 0, row y, column x, channel c.
func (t Tensor) At(y, x, c int) float32 {
	width := int(t.Shape[2])
	return t.Data[(y*width+x)*channels+c]
}

// Decode reads any registered image format. The header is checked first so
// images larger than maxPixels are rejected before any pixel is allocated.
// A non-positive maxPixels disables the check.
func Decode(r io.Reader, maxPixels int) (image.Image, string, error) {
	var header bytes.Buffer
	cfg, _, err := image.DecodeConfig(io.TeeReader(r, &header))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if maxPixels > 0 && int64(cfg.Width)*int64(cfg.Height) > int64(maxPixels) {
		return nil, "", fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrInvalidImage, cfg.Width, cfg.Height, maxPixels)
	}

	img, format, err := image.Decode(io.MultiReader(&header, r))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	return img, format, nil
}

// Normalize decodes the upload and converts it into the (1, 224, 224, 3)
// tensor the image models consume.
func Normalize(r io.Reader, maxPixels int) (Tensor, error) {
	img, _, err := Decode(r, maxPixels)
	if err != nil {
		return Tensor{}, err
	}
	return FromImage(img), nil
}

// FromImage drops alpha, stretches to 224x224 without keeping the aspect
// ratio and scales every channel to [0, 1].
func FromImage(img image.Image) Tensor {
	src := img
	if o, ok := img.(interface{ Opaque() bool }); !ok || !o.Opaque() {
		src = opaque{img}
	}
	resized := resize.Resize(Size, Size, src, resize.Bicubic)

	t := Tensor{
		Shape: []int64{1, Size, Size, channels},
		Data:  make([]float32, Size*Size*channels),
	}
	bounds := resized.Bounds()
	for y := 0; y < Size; y++ {
		for x := 0; x < Size; x++ {
			c := color.NRGBAModel.Convert(resized.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			idx := (y*Size + x) * channels
			t.Data[idx] = float32(c.R) / 255
			t.Data[idx+1] = float32(c.G) / 255
			t.Data[idx+2] = float32(c.B) / 255
		}
	}
	return t
}

// opaque reads the wrapped image with alpha forced to 255. Colour channels
// are taken unpremultiplied, so transparency is discarded rather than blended.
type opaque struct {
	image.Image
}

func (o opaque) ColorModel() color.Model { return color.NRGBAModel }

func (o opaque) At(x, y int) color.Color {
	c := color.NRGBAModel.Convert(o.Image.At(x, y)).(color.NRGBA)
	c.A = 0xff
	return c
}
