package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	mathrand "math/rand"
	"time"
)

// ==================== OTP ====================

func GenerateOTP(length int) string {
	if length <= 0 {
		length = 6
	}

	mathrand.New(mathrand.NewSource(time.Now().UnixNano()))

	otp := ""
	for i := 0; i < length; i++ {
		otp += fmt.Sprintf("%d", mathrand.Intn(10))
	}

	return otp
}

// ==================== RESET TOKEN ====================

func GenerateResetToken() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the process has bigger problems
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}

// ==================== RECEIPT ====================

// GenerateReceiptID builds the receipt reference passed to the payment gateway.
// Format: RCPT-YYYYMMDD-HHMMSS-RANDOM
func GenerateReceiptID() string {
	mathrand.New(mathrand.NewSource(time.Now().UnixNano()))
	now := time.Now()

	datePart := now.Format("20060102")
	timePart := now.Format("150405")
	randomPart := fmt.Sprintf("%04d", mathrand.Intn(10000))

	return fmt.Sprintf("RCPT-%s-%s-%s", datePart, timePart, randomPart)
}
