package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/aretw0/intake/internal/presentation/tui"
	"github.com/aretw0/intake/pkg/domain"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// WriteReport prints a report: rendered markdown on terminals, plain lines otherwise.
func WriteReport(w io.Writer, r domain.Report) error {
	profile := termenv.Ascii
	if IsTerminal(w) {
		out, err := tui.NewRenderer()(r.Markdown())
		if err == nil {
			_, err = io.WriteString(w, out)
			return err
		}
		profile = termenv.EnvColorProfile()
	}

	if _, err := fmt.Fprintf(w, "%s %s\n", r.FileName, tui.Verdict(profile, r.Accepted)); err != nil {
		return err
	}
	for _, o := range r.Outcomes {
		if _, err := fmt.Fprintf(w, "  %-12s %s\n", o.Rule, o.Message); err != nil {
			return err
		}
	}
	return nil
}

// WriteRecords prints records as an aligned table, or as JSON when asJSON is set.
func WriteRecords(w io.Writer, recs []domain.Record, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(recs)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CREATED\tFILE\tRULE\tRESULT")
	for _, r := range recs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.CreatedAt.Format("2006-01-02 15:04:05"), r.FileName, r.Rule, r.Result)
	}
	return tw.Flush()
}
