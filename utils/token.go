package utils

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"regexp"
	"strings"
	"time"
)

var tokenPattern = regexp.MustCompile(`^TKN\d{8}[A-F0-9]{4}$`)

// GenerateTokenNumber returns an entry token number of the form
// TKN<yyyymmdd><4 hex chars>.
func GenerateTokenNumber(now time.Time) (string, error) {
	byt := make([]byte, 2)
	if _, err := rand.Read(byt); err != nil {
		return "", err
	}
	date := now.Format("20060102")
	return "TKN" + date + strings.ToUpper(hex.EncodeToString(byt)), nil
}

// ValidateTokenNumber checks the token number format.
func ValidateTokenNumber(tokenNumber string) bool {
	return tokenPattern.MatchString(tokenNumber)
}

// GenerateParkingToken returns a short reference for a parking assignment.
func GenerateParkingToken(slotNumber, zone string, now time.Time) string {
	ts := strings.ToUpper(strconv36(now.UnixMilli()))
	return "PARK" + zone + slotNumber + ts
}

func strconv36(n int64) string {
	const digits = "0123456789abcdefghijklmnopqrstuvwxyz"
	if n == 0 {
		return "0"
	}
	var b []byte
	for n > 0 {
		b = append([]byte{digits[n%36]}, b...)
		n /= 36
	}
	return string(b)
}

// QRPayload is the JSON document embedded in a booking's QR code, checked
// again at the entrance gate.
type QRPayload struct {
	TokenNumber      string `json:"token_number"`
	UserID           string `json:"user_id"`
	TempleID         string `json:"temple_id"`
	VisitDate        string `json:"visit_date"`
	TimeSlot         string `json:"time_slot"`
	NumberOfVisitors int    `json:"number_of_visitors"`
	Timestamp        int64  `json:"timestamp"`
}

func (p QRPayload) Encode() (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func DecodeQRPayload(data string) (*QRPayload, error) {
	var payload QRPayload
	if err := json.Unmarshal([]byte(data), &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}
