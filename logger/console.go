package logger

import (
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
)

// ANSI colour per level tag.
var levelColors = map[string]string{
	"DBG": "36",
	"INF": "32",
	"WRN": "33",
	"ERR": "31",
	"FTL": "35",
}

func consoleWriter(w io.Writer, noColor bool) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: "15:04:05",
		NoColor:    noColor,
		FormatLevel: func(i any) string {
			tag := levelTag(fmt.Sprint(i))
			if color, ok := levelColors[tag]; ok && !noColor {
				return "\033[" + color + "m[" + tag + "]\033[0m"
			}
			return "[" + tag + "]"
		},
		FormatFieldName: func(i any) string { return fmt.Sprint(i) + ":" },
	}
}

func levelTag(level string) string {
	switch strings.ToLower(level) {
	case "debug":
		return "DBG"
	case "info":
		return "INF"
	case "warn":
		return "WRN"
	case "error":
		return "ERR"
	case "fatal":
		return "FTL"
	default:
		return strings.ToUpper(level)
	}
}
