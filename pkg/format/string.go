package format

import (
	"math/rand"
	"runtime"
	"strings"

	"github.com/acarl005/stripansi"
)

func ContainsI(a string, b string) bool {
	return strings.Contains(
		strings.ToLower(a),
		strings.ToLower(b),
	)
}

// SanitizeTerminalText strips ANSI escape sequences from server generated
// text before it reaches the console. An embedded escape could rewrite or
// hide log lines.
func SanitizeTerminalText(s string) string {
	return stripansi.Strip(s)
}

func GetPlatformAgnosticNewline() string {
	newline := "\n"
	if runtime.GOOS == "windows" {
		newline = "\r\n"
	}
	return newline
}

// RandomStringN generates display names, the values are not secrets.
func RandomStringN(n int) string {
	letterBytes := "abcdefghijklmnopqrstuvwxyz"
	b := make([]byte, n)
	for i := range b {
		b[i] = letterBytes[rand.Intn(len(letterBytes))] // #nosec G404
	}
	return string(b)
}
