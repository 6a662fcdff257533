// Package pix builds static PIX BRCode payloads (EMV "copia e cola")
// and their QR images.
package pix

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

var (
	ErrMissingKey = errors.New("pix key is required")
)

// EMV field length limits
const (
	maxPayeeName = 25
	maxPayeeCity = 15
	maxTxID      = 25
)

// BRCode describes a static PIX charge
type BRCode struct {
	Key       string
	PayeeName string
	PayeeCity string
	Amount    float64
	TxID      string
}

// Payload renders the EMV payload, CRC16 included
func (b BRCode) Payload() (string, error) {
	if b.Key == "" {
		return "", ErrMissingKey
	}

	name := sanitize(b.PayeeName, maxPayeeName)
	city := sanitize(b.PayeeCity, maxPayeeCity)
	txid := sanitize(b.TxID, maxTxID)
	if txid == "" {
		txid = "***"
	}

	var sb strings.Builder
	sb.WriteString(emv("00", "01")) // payload format indicator

	// Merchant account information: GUI + key
	account := emv("00", "br.gov.bcb.pix") + emv("01", b.Key)
	sb.WriteString(emv("26", account))

	sb.WriteString(emv("52", "0000")) // merchant category code
	sb.WriteString(emv("53", "986"))  // BRL
	if b.Amount > 0 {
		sb.WriteString(emv("54", fmt.Sprintf("%.2f", b.Amount)))
	}
	sb.WriteString(emv("58", "BR"))
	sb.WriteString(emv("59", name))
	sb.WriteString(emv("60", city))
	sb.WriteString(emv("62", emv("05", txid))) // additional data: txid

	// CRC covers everything up to and including its own id+length
	sb.WriteString("6304")
	payload := sb.String()
	return payload + crc16(payload), nil
}

// QRCodeBase64 renders a payload as a PNG QR, base64 data URL
func QRCodeBase64(payload string) (string, error) {
	png, err := qrcode.Encode(payload, qrcode.Medium, 256)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

// emv renders one TLV field: id, two-digit length, value
func emv(id, value string) string {
	return fmt.Sprintf("%s%02d%s", id, len(value), value)
}

// sanitize uppercases, strips diacritic-prone characters and truncates
func sanitize(s string, max int) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	var sb strings.Builder
	for _, r := range s {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == ' ' || r == '-' || r == '.' {
			sb.WriteRune(r)
		}
	}
	out := sb.String()
	if len(out) > max {
		out = out[:max]
	}
	return out
}

// crc16 computes CRC16-CCITT (poly 0x1021, init 0xFFFF) as 4 hex chars
func crc16(s string) string {
	crc := uint16(0xFFFF)
	for i := 0; i < len(s); i++ {
		crc ^= uint16(s[i]) << 8
		for bit := 0; bit < 8; bit++ {
			if crc&0x8000 != 0 {
				crc = (crc << 1) ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return fmt.Sprintf("%04X", crc)
}
