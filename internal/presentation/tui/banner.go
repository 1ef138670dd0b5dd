package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the startup banner and listening address.
func PrintBanner(w io.Writer, addr string) {
	p := termenv.EnvColorProfile()
	s1 := termenv.String(" _       _        _        ").Foreground(p.Color("#34d399"))
	s2 := termenv.String("(_)_ __ | |_ __ _| | _____ ").Foreground(p.Color("#10b981"))
	s3 := termenv.String("| | '_ \\| __/ _` | |/ / _ \\").Foreground(p.Color("#059669"))
	s4 := termenv.String("| | | | | || (_| |   <  __/").Foreground(p.Color("#047857"))
	s5 := termenv.String("|_|_| |_|\\__\\__,_|_|\\_\\___|").Foreground(p.Color("#065f46"))

	fmt.Fprintln(w)
	for _, s := range []termenv.Style{s1, s2, s3, s4, s5} {
		fmt.Fprintln(w, s)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  listening on %s\n\n", addr)
}

// Verdict returns ACCEPTED in green or REJECTED in red.
// The Ascii profile gets the bare word, with no escape sequences at all.
func Verdict(p termenv.Profile, accepted bool) string {
	if p == termenv.Ascii {
		if accepted {
			return "ACCEPTED"
		}
		return "REJECTED"
	}
	if accepted {
		return termenv.String("ACCEPTED").Foreground(p.Color("#22c55e")).Bold().String()
	}
	return termenv.String("REJECTED").Foreground(p.Color("#ef4444")).Bold().String()
}
