package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

// GenerateOTP generates a 6-digit OTP
func GenerateOTP() string {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		// crypto/rand does not fail on supported platforms
		panic(err)
	}
	return fmt.Sprintf("%06d", n.Int64())
}

// GenerateCertificateNumber returns a unique, human readable certificate number like IS-2026-3F9A1C7B
func GenerateCertificateNumber(year int) string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return fmt.Sprintf("IS-%d-%s", year, id[:8])
}

// ClientDevice returns a short device label from a user agent
func ClientDevice(userAgent string) string {
	ua := strings.ToLower(userAgent)
	switch {
	case ua == "":
		return "unknown"
	case strings.Contains(ua, "android"):
		return "android"
	case strings.Contains(ua, "iphone"), strings.Contains(ua, "ipad"):
		return "ios"
	case strings.Contains(ua, "windows"):
		return "windows"
	case strings.Contains(ua, "mac os"):
		return "mac"
	case strings.Contains(ua, "linux"):
		return "linux"
	}
	if len(userAgent) > 60 {
		return userAgent[:60]
	}
	return userAgent
}
