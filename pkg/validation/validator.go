package validation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/intake/pkg/domain"
	"github.com/aretw0/intake/pkg/ports"
	"github.com/google/uuid"
)

// Observer receives pipeline events. The metrics package provides one.
type Observer interface {
	ObserveOutcome(o domain.Outcome)
	ObserveReport(r domain.Report, elapsed time.Duration)
	ObserveError(fileType domain.FileType, elapsed time.Duration)
}

// Upload is a file submitted for validation.
type Upload struct {
	FileName string
	FileType domain.FileType
	Data     []byte
}

// Validator runs the validation pipeline and records every outcome.
// Safe for concurrent use.
type Validator struct {
	store     ports.ResultStore
	locker    ports.Locker
	observer  Observer
	logger    *slog.Logger
	headers   []string
	maxFileKB int64
	lockTTL   time.Duration
	now       func() time.Time
	newID     func() string
}

// Option configures a Validator.
type Option func(*Validator)

// WithLocker serializes uploads sharing a file name.
func WithLocker(l ports.Locker) Option {
	return func(v *Validator) {
		v.locker = l
	}
}

// WithLockTTL bounds how long a per-file lock may be held.
func WithLockTTL(ttl time.Duration) Option {
	return func(v *Validator) {
		v.lockTTL = ttl
	}
}

// WithObserver registers an Observer (e.g. Prometheus metrics).
func WithObserver(o Observer) Option {
	return func(v *Validator) {
		v.observer = o
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(v *Validator) {
		v.logger = l
	}
}

// WithHeaders overrides the expected header row.
func WithHeaders(headers []string) Option {
	return func(v *Validator) {
		if len(headers) > 0 {
			v.headers = append([]string(nil), headers...)
		}
	}
}

// WithMaxFileKB overrides the size limit.
func WithMaxFileKB(kb int64) Option {
	return func(v *Validator) {
		if kb > 0 {
			v.maxFileKB = kb
		}
	}
}

// WithClock replaces the time source used for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(v *Validator) {
		v.now = now
	}
}

// New creates a Validator recording into store.
func New(store ports.ResultStore, opts ...Option) *Validator {
	v := &Validator{
		store:     store,
		headers:   append([]string(nil), domain.DefaultHeaders...),
		maxFileKB: DefaultMaxFileKB,
		lockTTL:   30 * time.Second,
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.logger == nil {
		v.logger = slog.Default()
	}
	return v
}

// Headers returns the expected header row.
func (v *Validator) Headers() []string {
	return append([]string(nil), v.headers...)
}

// Process validates the upload and records each outcome as it is produced.
//
// A declared type that differs from the file extension yields a rejected report
// holding only the File Type outcome. Parse failures return the partial report
// together with a *domain.ParseError. Store failures abort the pipeline.
func (v *Validator) Process(ctx context.Context, u Upload) (domain.Report, error) {
	start := time.Now()
	report, err := v.process(ctx, u)
	elapsed := time.Since(start)

	if v.observer != nil {
		for _, o := range report.Outcomes {
			v.observer.ObserveOutcome(o)
		}
		if err != nil {
			v.observer.ObserveError(u.FileType, elapsed)
		} else {
			v.observer.ObserveReport(report, elapsed)
		}
	}

	if err != nil {
		v.logger.Warn("Upload not processed", "file_name", u.FileName, "file_type", u.FileType, "error", err)
	} else {
		v.logger.Info("Upload processed",
			"file_name", u.FileName,
			"file_type", u.FileType,
			"accepted", report.Accepted,
			"failures", len(report.Failures()),
			"duration", elapsed,
		)
	}
	return report, err
}

func (v *Validator) process(ctx context.Context, u Upload) (domain.Report, error) {
	report := domain.Report{FileName: u.FileName, FileType: u.FileType}

	if v.locker != nil {
		unlock, err := v.locker.Lock(ctx, "upload:"+u.FileName, v.lockTTL)
		if err != nil {
			return report, fmt.Errorf("failed to lock %q: %w", u.FileName, err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				v.logger.Error("Failed to release upload lock", "file_name", u.FileName, "error", err)
			}
		}()
	}

	if ext := Extension(u.FileName); ext != string(u.FileType) {
		o := domain.Fail(domain.RuleFileType, fmt.Sprintf("File type mismatch. Expected %s file.", u.FileType))
		report.Outcomes = append(report.Outcomes, o)
		return report, v.record(ctx, u.FileName, o)
	}
	if !u.FileType.Supported() {
		return report, fmt.Errorf("%w: %s", domain.ErrUnsupportedFileType, u.FileType)
	}

	add := func(o domain.Outcome) error {
		report.Outcomes = append(report.Outcomes, o)
		return v.record(ctx, u.FileName, o)
	}

	if err := add(ValidateFileName(u.FileName)); err != nil {
		return report, err
	}
	if err := add(ValidateFileSize(int64(len(u.Data)), v.maxFileKB)); err != nil {
		return report, err
	}

	var (
		table Table
		err   error
	)
	switch u.FileType {
	case domain.FileTypeCSV:
		table, err = ParseCSV(u.Data)
	case domain.FileTypeText:
		table, err = ParseText(u.Data, v.headers)
	}
	if err != nil {
		return report, err
	}

	for _, check := range []func() domain.Outcome{
		func() domain.Outcome { return ValidateHeaders(table, v.headers) },
		func() domain.Outcome { return CheckNullValues(table) },
		func() domain.Outcome { return CheckEmptyRows(table) },
	} {
		if err := add(check()); err != nil {
			return report, err
		}
	}

	if len(report.Failures()) > 0 {
		return report, nil
	}

	for _, o := range report.Outcomes {
		if err := v.recordAs(ctx, u.FileName, domain.RuleSummary, o.Message); err != nil {
			return report, err
		}
	}
	report.Accepted = true
	return report, nil
}

func (v *Validator) record(ctx context.Context, fileName string, o domain.Outcome) error {
	return v.recordAs(ctx, fileName, o.Rule, o.Message)
}

func (v *Validator) recordAs(ctx context.Context, fileName string, rule domain.Rule, result string) error {
	rec := domain.Record{
		ID:        v.newID(),
		FileName:  fileName,
		Rule:      rule,
		Result:    result,
		CreatedAt: v.now().UTC(),
	}
	if err := v.store.Save(ctx, rec); err != nil {
		return fmt.Errorf("failed to record %s outcome: %w", rule, err)
	}
	return nil
}
