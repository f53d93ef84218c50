// README: Standardised log line helper shared by the service modules.
package utils

import (
	"fmt"
	"log"
	"strings"
)

// LogEvent prints "[MODULE] action=... msg=..." lines. Keep messages short
// and never include payment keys or tokens.
func LogEvent(module, action, format string, args ...any) {
	log.Printf("[%s] action=%s msg=%s", strings.ToUpper(module), action, fmt.Sprintf(format, args...))
}
