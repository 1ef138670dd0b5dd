package domain

import (
	"fmt"
	"html"
	"strings"
)

// Report is the verdict for one upload.
type Report struct {
	FileName string    `json:"file_name"`
	FileType FileType  `json:"file_type"`
	Outcomes []Outcome `json:"outcomes"`
	Accepted bool      `json:"accepted"`
}

// Failures returns the outcomes that did not pass, in rule order.
func (r Report) Failures() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if !o.Passed {
			out = append(out, o)
		}
	}
	return out
}

// Messages returns every outcome message, in rule order.
func (r Report) Messages() []string {
	msgs := make([]string, len(r.Outcomes))
	for i, o := range r.Outcomes {
		msgs[i] = o.Message
	}
	return msgs
}

// TypeMismatch reports whether the upload was stopped at the file type check.
func (r Report) TypeMismatch() bool {
	return len(r.Outcomes) == 1 && r.Outcomes[0].Rule == RuleFileType && !r.Outcomes[0].Passed
}

// HTML renders the fragment shown by the upload page.
// Rejected reports list only failures; accepted reports list every outcome.
// A type mismatch is a bare message.
func (r Report) HTML() string {
	if r.TypeMismatch() {
		return r.Outcomes[0].Message
	}
	if !r.Accepted {
		return htmlList(`<h3 style="color: red;">File Rejected:</h3>`, r.Failures())
	}
	return htmlList(`<h3 style="color: #4CAF50;">File Validation Results:</h3>`, r.Outcomes)
}

func htmlList(title string, outcomes []Outcome) string {
	var b strings.Builder
	b.WriteString(title)
	b.WriteString("<ul>")
	for _, o := range outcomes {
		fmt.Fprintf(&b, "<li>%s</li>", html.EscapeString(o.Message))
	}
	b.WriteString("</ul>")
	return b.String()
}

// Markdown renders the report for terminals.
func (r Report) Markdown() string {
	var b strings.Builder
	if r.Accepted {
		fmt.Fprintf(&b, "# %s accepted\n\n", r.FileName)
	} else {
		fmt.Fprintf(&b, "# %s rejected\n\n", r.FileName)
	}
	b.WriteString("| Rule | Result |\n|---|---|\n")
	for _, o := range r.Outcomes {
		fmt.Fprintf(&b, "| %s | %s |\n", o.Rule, o.Message)
	}
	return b.String()
}
