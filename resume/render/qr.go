package render

import (
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// PublicURL is the share link encoded in a resume's QR code.
func PublicURL(origin, resumeID string) string {
	return strings.TrimRight(origin, "/") + "/resume/" + resumeID
}

// QRCode returns a PNG encoding content.
func QRCode(content string, size int) ([]byte, error) {
	if size <= 0 {
		size = 256
	}
	return qrcode.Encode(content, qrcode.Medium, size)
}
