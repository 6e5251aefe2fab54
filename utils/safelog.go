// utils/safelog.go
// ============================================================================
// SAFE LOGGING - masks money amounts and account names in production
// ============================================================================

package utils

import (
	"fmt"
	"log"
	"os"
	"regexp"
	"strings"
)

var (
	// IsProduction controls masking of sensitive values in logs.
	IsProduction = os.Getenv("GIN_MODE") == "release" ||
		os.Getenv("ENVIRONMENT") == "production" ||
		os.Getenv("ENV") == "production"

	LogLevel = getLogLevel()
)

const (
	LogLevelDebug = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

func getLogLevel() int {
	switch strings.ToUpper(os.Getenv("LOG_LEVEL")) {
	case "DEBUG":
		return LogLevelDebug
	case "WARN", "WARNING":
		return LogLevelWarn
	case "ERROR":
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

var amountRegex = regexp.MustCompile(`\b\d+([.,]\d{1,2})?\s*(€|EUR)\b`)

// MaskString hides money amounts in production logs.
func MaskString(input string) string {
	if !IsProduction {
		return input
	}
	return amountRegex.ReplaceAllString(input, "***€")
}

// MaskAmount hides a monetary value in production.
func MaskAmount(amount float64) string {
	if IsProduction {
		return "***"
	}
	return fmt.Sprintf("%.2f", amount)
}

// MaskUser shortens a username in production.
func MaskUser(username string) string {
	if !IsProduction || len(username) <= 2 {
		return username
	}
	return username[:2] + "***"
}

func SafeLog(format string, args ...interface{}) {
	log.Print(MaskString(fmt.Sprintf(format, args...)))
}

func SafeDebug(format string, args ...interface{}) {
	if LogLevel > LogLevelDebug {
		return
	}
	log.Printf("[DEBUG] %s", MaskString(fmt.Sprintf(format, args...)))
}

func SafeInfo(format string, args ...interface{}) {
	if LogLevel > LogLevelInfo {
		return
	}
	log.Printf("[INFO] %s", MaskString(fmt.Sprintf(format, args...)))
}

func SafeWarn(format string, args ...interface{}) {
	if LogLevel > LogLevelWarn {
		return
	}
	log.Printf("[WARN] %s", MaskString(fmt.Sprintf(format, args...)))
}

func SafeError(format string, args ...interface{}) {
	log.Printf("[ERROR] %s", MaskString(fmt.Sprintf(format, args...)))
}

// LogStateAction logs a mutation of the shared document.
func LogStateAction(action, username, mode string) {
	log.Printf("[State] %s - User: %s Mode: %s", action, MaskUser(username), mode)
}

// LogAuthAction logs a login attempt.
func LogAuthAction(action, username string, success bool) {
	status := "SUCCESS"
	if !success {
		status = "FAILED"
	}
	log.Printf("[Auth] %s - User: %s Status: %s", action, MaskUser(username), status)
}

// LogWebSocket logs a websocket lifecycle event.
func LogWebSocket(action, clientID string) {
	log.Printf("[WS] %s - Client: %s", action, clientID)
}
