// services/qrcode_service.go
package services

import (
	"fmt"

	"github.com/skip2/go-qrcode"
)

// GenerateBoardQRCode creates a QR code pointing a viewer at the live
// board for one quarter, so spectators can join by scanning.
func GenerateBoardQRCode(applicationURL, matchClubID, quarterID string, size int) ([]byte, error) {
	if size <= 0 {
		size = 256
	}
	target := fmt.Sprintf("%s/board/%s/quarters/%s", applicationURL, matchClubID, quarterID)
	png, err := qrcode.Encode(target, qrcode.Medium, size)
	if err != nil {
		return nil, err
	}
	return png, nil
}
