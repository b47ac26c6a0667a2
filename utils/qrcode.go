package utils

import (
	"encoding/base64"

	qrcode "github.com/skip2/go-qrcode"
)

// GenerateQRCodeImage renders the payload as a 300px PNG and returns it as
// a base64 data URL, the format the frontend renders directly into an img
// tag.
func GenerateQRCodeImage(payload QRPayload) (string, error) {
	data, err := payload.Encode()
	if err != nil {
		return "", err
	}

	png, err := qrcode.Encode(data, qrcode.Medium, 300)
	if err != nil {
		return "", err
	}

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
