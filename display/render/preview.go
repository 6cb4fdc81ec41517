package render

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/disintegration/imaging"
)

const kittyChunkSize = 4096

// ErrCorruptImage is returned for image data that cannot be decoded.
var ErrCorruptImage = errors.New("render: corrupt or unreadable image data")

// Preview renders PNG data inline for the given protocol, sized to
// cols x rows terminal cells. ProtocolNone yields an empty string.
func Preview(p ImageProtocol, data []byte, cols, rows int) (string, error) {
	if len(data) == 0 {
		return "", ErrCorruptImage
	}
	switch p {
	case ProtocolKitty:
		return renderKitty(data, cols, rows), nil
	case ProtocolITerm2:
		return renderITerm2(data, cols, rows), nil
	case ProtocolUnicode:
		return renderUnicode(data, cols, rows)
	default:
		return "", nil
	}
}

// renderKitty encodes image data using the Kitty Graphics Protocol,
// splitting the payload into 4096-byte chunks.
func renderKitty(data []byte, cols, rows int) string {
	encoded := base64.StdEncoding.EncodeToString(data)

	var b strings.Builder
	if len(encoded) <= kittyChunkSize {
		fmt.Fprintf(&b, "\033_Gf=100,a=T,t=d,c=%d,r=%d,m=0;%s\033\\", cols, rows, encoded)
		return b.String()
	}

	for i := 0; i < len(encoded); i += kittyChunkSize {
		end := min(i+kittyChunkSize, len(encoded))
		chunk := encoded[i:end]
		isLast := end >= len(encoded)

		switch {
		case i == 0:
			fmt.Fprintf(&b, "\033_Gf=100,a=T,t=d,c=%d,r=%d,m=1;%s\033\\", cols, rows, chunk)
		case isLast:
			fmt.Fprintf(&b, "\033_Gm=0;%s\033\\", chunk)
		default:
			fmt.Fprintf(&b, "\033_Gm=1;%s\033\\", chunk)
		}
	}
	return b.String()
}

// renderITerm2 encodes image data as OSC 1337 ; File=<args>:<base64> BEL.
func renderITerm2(data []byte, cols, rows int) string {
	encoded := base64.StdEncoding.EncodeToString(data)
	args := fmt.Sprintf("name=%s;size=%d;width=%d;height=%d;inline=1",
		base64.StdEncoding.EncodeToString([]byte("histogram.png")), len(data), cols, rows)
	return fmt.Sprintf("\033]1337;File=%s:%s\007", args, encoded)
}

// renderUnicode resizes the image and draws two pixel rows per text row
// with the upper half-block: foreground is the top pixel, background the
// bottom one.
func renderUnicode(data []byte, cols, rows int) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCorruptImage, err)
	}

	resized := imaging.Fit(img, cols, rows*2, imaging.Lanczos)
	bounds := resized.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	var b strings.Builder
	for y := 0; y < h; y += 2 {
		if y > 0 {
			b.WriteByte('\n')
		}
		for x := 0; x < w; x++ {
			tr, tg, tb := rgb(resized.At(bounds.Min.X+x, bounds.Min.Y+y))
			var br, bg, bb uint8
			if y+1 < h {
				br, bg, bb = rgb(resized.At(bounds.Min.X+x, bounds.Min.Y+y+1))
			}
			fmt.Fprintf(&b, "\033[38;2;%d;%d;%dm\033[48;2;%d;%d;%dm▀\033[0m",
				tr, tg, tb, br, bg, bb)
		}
	}
	return b.String(), nil
}

func rgb(c color.Color) (r, g, b uint8) {
	r32, g32, b32, _ := c.RGBA()
	return uint8(r32 >> 8), uint8(g32 >> 8), uint8(b32 >> 8)
}
