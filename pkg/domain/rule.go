package domain

// Rule names a single validation check.
// The string values are persisted as-is, so they must not change.
type Rule string

const (
	RuleFileType   Rule = "File Type"
	RuleFileName   Rule = "File Name"
	RuleFileSize   Rule = "File Size"
	RuleHeaders    Rule = "Headers"
	RuleNullValues Rule = "Null Values"
	RuleEmptyRows  Rule = "Empty Rows"

	// RuleSummary is recorded once per outcome after a file passes every rule.
	RuleSummary Rule = "Validation"
)

const (
	PassMark = "✅"
	FailMark = "❌"
)

// FileType is the declared format of an upload.
type FileType string

const (
	FileTypeCSV  FileType = "csv"
	FileTypeText FileType = "txt"
)

// Supported reports whether the pipeline knows how to parse the type.
func (t FileType) Supported() bool {
	return t == FileTypeCSV || t == FileTypeText
}

// DefaultHeaders is the exact header row a report file must carry.
var DefaultHeaders = []string{"CUSTOMER", "ADDRESS", "PRODUCT", "PRODUCT_TYPE", "PRICE"}

// Outcome is the result of applying one rule.
type Outcome struct {
	Rule    Rule   `json:"rule"`
	Passed  bool   `json:"passed"`
	Message string `json:"message"`
}

// Pass builds a passing outcome, appending the pass mark to msg.
func Pass(rule Rule, msg string) Outcome {
	return Outcome{Rule: rule, Passed: true, Message: msg + " " + PassMark}
}

// Fail builds a failing outcome, appending the fail mark to msg.
func Fail(rule Rule, msg string) Outcome {
	return Outcome{Rule: rule, Passed: false, Message: msg + " " + FailMark}
}
