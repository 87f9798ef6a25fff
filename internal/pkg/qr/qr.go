// Package qr renders ticket identifiers as QR codes and reads them back from photos.
package qr

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // Door scanners upload camera photos as JPEG.
	_ "image/png"
	"io"

	"github.com/makiuchi-d/gozxing"
	zxingqr "github.com/makiuchi-d/gozxing/qrcode"
	"github.com/skip2/go-qrcode"
)

const DefaultSize = 512

var ErrNoCode = errors.New("no qr code found in image")

// Encode returns a PNG of size x size pixels encoding content.
func Encode(content string, size int) ([]byte, error) {
	if size <= 0 {
		size = DefaultSize
	}

	png, err := qrcode.Encode(content, qrcode.High, size)
	if err != nil {
		return nil, fmt.Errorf("qrcode.Encode -> %w", err)
	}

	return png, nil
}

// Decode reads the first QR code found in a PNG or JPEG image.
func Decode(r io.Reader) (string, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return "", fmt.Errorf("image.Decode -> %w", err)
	}

	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", fmt.Errorf("gozxing.NewBinaryBitmapFromImage -> %w", err)
	}

	hints := map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_TRY_HARDER: true,
	}
	result, err := zxingqr.NewQRCodeReader().Decode(bmp, hints)
	if err != nil {
		var notFound gozxing.NotFoundException
		if errors.As(err, &notFound) {
			return "", ErrNoCode
		}

		return "", fmt.Errorf("reader.Decode -> %w", err)
	}

	return result.GetText(), nil
}
