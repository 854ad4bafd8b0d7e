package terminal

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"github.com/spinifex/uvarint/pkg/config"
)

const (
	terminalHighlightEscapeCode string = "\033[%2dm"
	terminalResetEscapeCode     string = "\033[0m"

	ansiRed    = 31
	ansiYellow = 33
	ansiCyan   = 36
)

// getColorableWriter returns a writer for standard output and whether escape
// codes should be written to it.
func getColorableWriter() (io.Writer, bool) {
	dumb := strings.ToLower(os.Getenv("TERM")) == "dumb"
	tty := isatty.IsTerminal(os.Stdout.Fd())
	if dumb || !tty {
		return os.Stdout, false
	}
	return colorable.NewColorableStdout(), true
}

func (t *Term) colorize(color int, s string) string {
	if !t.color {
		return s
	}
	return fmt.Sprintf(terminalHighlightEscapeCode, color) + s + terminalResetEscapeCode
}

// FormatBytes renders an encoded varint using one of the config output
// formats.
func FormatBytes(b []byte, format string) string {
	switch format {
	case config.FormatDec:
		return fmt.Sprint(b)
	case config.FormatRaw:
		return string(b)
	default:
		return fmt.Sprintf("% x", b)
	}
}

// ParseHexBytes parses a byte sequence written in hexadecimal. Bytes may be
// separated by spaces, commas or colons and may carry a 0x prefix, so ac02,
// "ac 02" and 0xac,0x02 are all the same sequence.
func ParseHexBytes(s string) ([]byte, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == ',' || r == ':' || r == '\t'
	})
	var out []byte
	for _, f := range fields {
		f = strings.TrimPrefix(strings.TrimPrefix(f, "0x"), "0X")
		if len(f) == 1 {
			f = "0" + f
		}
		b, err := hex.DecodeString(f)
		if err != nil {
			return nil, fmt.Errorf("invalid byte sequence %q: %v", s, err)
		}
		out = append(out, b...)
	}
	return out, nil
}
