package validation_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/intake/internal/logging"
	"github.com/aretw0/intake/pkg/adapters/memory"
	"github.com/aretw0/intake/pkg/domain"
	"github.com/aretw0/intake/pkg/ports"
	"github.com/aretw0/intake/pkg/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const goodCSV = header + "\nAlice,1 Main St,Widget,Tool,9.99\nBob,2 Side Rd,Gadget,Toy,4.50\n"

func newValidator(store ports.ResultStore, opts ...validation.Option) *validation.Validator {
	opts = append([]validation.Option{validation.WithLogger(logging.NewNop())}, opts...)
	return validation.New(store, opts...)
}

func rules(recs []domain.Record) []domain.Rule {
	out := make([]domain.Rule, len(recs))
	// Stores list newest first; report in insertion order.
	for i, r := range recs {
		out[len(recs)-1-i] = r.Rule
	}
	return out
}

func TestValidator_Accepted(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	v := newValidator(store)

	report, err := v.Process(ctx, validation.Upload{FileName: "report.csv", FileType: domain.FileTypeCSV, Data: []byte(goodCSV)})
	require.NoError(t, err)

	assert.True(t, report.Accepted)
	assert.Equal(t, []string{
		"File name is valid. ✅",
		"File size is valid. ✅",
		"Headers matched. ✅",
		"Uploaded file does not contain null values. ✅",
		"Uploaded file does not contain empty rows. ✅",
	}, report.Messages())

	recs, err := store.List(ctx, domain.Filter{FileName: "report.csv"})
	require.NoError(t, err)
	assert.Equal(t, []domain.Rule{
		domain.RuleFileName, domain.RuleFileSize, domain.RuleHeaders, domain.RuleNullValues, domain.RuleEmptyRows,
		domain.RuleSummary, domain.RuleSummary, domain.RuleSummary, domain.RuleSummary, domain.RuleSummary,
	}, rules(recs))
	for _, r := range recs {
		assert.NotEmpty(t, r.ID)
		assert.False(t, r.CreatedAt.IsZero())
	}
}

func TestValidator_TypeMismatch(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	v := newValidator(store)

	report, err := v.Process(ctx, validation.Upload{FileName: "report.txt", FileType: domain.FileTypeCSV, Data: []byte(goodCSV)})
	require.NoError(t, err)
	assert.False(t, report.Accepted)
	assert.True(t, report.TypeMismatch())
	assert.Equal(t, "File type mismatch. Expected csv file. ❌", report.HTML())

	recs, _ := store.List(ctx, domain.Filter{})
	require.Len(t, recs, 1)
	assert.Equal(t, domain.RuleFileType, recs[0].Rule)
}

func TestValidator_DotFileHasNoExtension(t *testing.T) {
	v := newValidator(memory.NewStore())

	report, err := v.Process(context.Background(), validation.Upload{FileName: ".csv", FileType: domain.FileTypeCSV, Data: []byte(goodCSV)})
	require.NoError(t, err)
	assert.True(t, report.TypeMismatch())
	assert.False(t, report.Accepted)
}

func TestValidator_Rejections(t *testing.T) {
	big := header + "\n" + strings.Repeat("Alice,1 Main St,Widget,Tool,9.99\n", 400)

	cases := []struct {
		name     string
		fileName string
		data     string
		failures []domain.Rule
	}{
		{"Bad Name", "report_v2.csv", goodCSV, []domain.Rule{domain.RuleFileName}},
		{"Too Big", "report.csv", big, []domain.Rule{domain.RuleFileSize}},
		{"Wrong Headers", "report.csv", "NAME,ADDRESS,PRODUCT,PRODUCT_TYPE,PRICE\nA,B,C,D,1\n", []domain.Rule{domain.RuleHeaders}},
		{"Null Cell", "report.csv", header + "\nAlice,,Widget,Tool,9.99\n", []domain.Rule{domain.RuleNullValues}},
		{"Blank Line", "report.csv", header + "\nAlice,1 Main St,Widget,Tool,9.99\n\nBob,2,Gadget,Toy,1\n", []domain.Rule{domain.RuleNullValues, domain.RuleEmptyRows}},
		{"Whitespace Row", "report.csv", header + "\n , , , , \n", []domain.Rule{domain.RuleEmptyRows}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			store := memory.NewStore()
			v := newValidator(store)

			report, err := v.Process(ctx, validation.Upload{FileName: tc.fileName, FileType: domain.FileTypeCSV, Data: []byte(tc.data)})
			require.NoError(t, err)
			assert.False(t, report.Accepted)

			var got []domain.Rule
			for _, o := range report.Failures() {
				got = append(got, o.Rule)
			}
			assert.Equal(t, tc.failures, got)
			assert.Len(t, report.Outcomes, 5)
			assert.Equal(t, 5, store.Len(), "rejected uploads are not summarized")
			assert.Contains(t, report.HTML(), `<h3 style="color: red;">File Rejected:</h3>`)
		})
	}
}

func TestValidator_Text(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	v := newValidator(store)

	data := "CUSTOMER\tADDRESS\tPRODUCT\tPRODUCT_TYPE\tPRICE\nAlice\t1 Main St\tWidget\tTool\t9.99\n"
	report, err := v.Process(ctx, validation.Upload{FileName: "Report 7.TXT", FileType: domain.FileTypeText, Data: []byte(data)})
	require.NoError(t, err)
	assert.True(t, report.Accepted)
	assert.Contains(t, report.HTML(), "File Validation Results:")
}

func TestValidator_UnparseableText(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	v := newValidator(store)

	report, err := v.Process(ctx, validation.Upload{FileName: "report.txt", FileType: domain.FileTypeText, Data: []byte("a|b|c\n")})
	require.Error(t, err)
	var perr *domain.ParseError
	require.ErrorAs(t, err, &perr)
	assert.ErrorIs(t, err, domain.ErrUnparseableText)

	assert.Len(t, report.Outcomes, 2, "name and size are checked before parsing")
	assert.Equal(t, 2, store.Len())
}

func TestValidator_UnsupportedType(t *testing.T) {
	store := memory.NewStore()
	v := newValidator(store)

	_, err := v.Process(context.Background(), validation.Upload{FileName: "report.xlsx", FileType: "xlsx", Data: []byte("x")})
	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
	assert.Equal(t, 0, store.Len())
}

func TestValidator_CustomLimits(t *testing.T) {
	store := memory.NewStore()
	v := newValidator(store,
		validation.WithHeaders([]string{"ID", "NAME"}),
		validation.WithMaxFileKB(1),
	)
	assert.Equal(t, []string{"ID", "NAME"}, v.Headers())

	report, err := v.Process(context.Background(), validation.Upload{
		FileName: "people.csv", FileType: domain.FileTypeCSV, Data: []byte("ID,NAME\n1,Ann\n"),
	})
	require.NoError(t, err)
	assert.True(t, report.Accepted)

	report, err = v.Process(context.Background(), validation.Upload{
		FileName: "people.csv", FileType: domain.FileTypeCSV, Data: []byte("ID,NAME\n" + strings.Repeat("1,Ann\n", 200)),
	})
	require.NoError(t, err)
	assert.Equal(t, "File size must be under 1 KB. ❌", report.Failures()[0].Message)
}

type failingStore struct{ memory.Store }

func (f *failingStore) Save(ctx context.Context, rec domain.Record) error {
	return errors.New("disk full")
}

func TestValidator_StoreFailure(t *testing.T) {
	v := newValidator(&failingStore{})
	_, err := v.Process(context.Background(), validation.Upload{FileName: "report.csv", FileType: domain.FileTypeCSV, Data: []byte(goodCSV)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Contains(t, err.Error(), "File Name")
}

type spyLocker struct {
	mu       sync.Mutex
	keys     []string
	released int
}

func (s *spyLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys = append(s.keys, key)
	return func(context.Context) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.released++
		return nil
	}, nil
}

func TestValidator_LocksPerFile(t *testing.T) {
	spy := &spyLocker{}
	v := newValidator(memory.NewStore(), validation.WithLocker(spy), validation.WithLockTTL(time.Second))

	_, err := v.Process(context.Background(), validation.Upload{FileName: "report.csv", FileType: domain.FileTypeCSV, Data: []byte(goodCSV)})
	require.NoError(t, err)
	assert.Equal(t, []string{"upload:report.csv"}, spy.keys)
	assert.Equal(t, 1, spy.released)
}

func TestValidator_ConcurrentUploadsStayContiguous(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	v := newValidator(store, validation.WithLocker(memory.NewLocker()))

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := v.Process(ctx, validation.Upload{FileName: "report.csv", FileType: domain.FileTypeCSV, Data: []byte(goodCSV)})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	recs, err := store.List(ctx, domain.Filter{})
	require.NoError(t, err)
	require.Len(t, recs, 40)

	// Each upload writes five rule records then five summaries.
	order := rules(recs)
	for i := 0; i < len(order); i += 10 {
		assert.Equal(t, domain.RuleFileName, order[i])
		assert.Equal(t, domain.RuleSummary, order[i+9])
	}
}

type countingObserver struct {
	outcomes, reports, errors int
}

func (c *countingObserver) ObserveOutcome(domain.Outcome) { c.outcomes++ }
func (c *countingObserver) ObserveReport(domain.Report, time.Duration) { c.reports++ }
func (c *countingObserver) ObserveError(domain.FileType, time.Duration) { c.errors++ }

func TestValidator_Observer(t *testing.T) {
	obs := &countingObserver{}
	v := newValidator(memory.NewStore(), validation.WithObserver(obs))

	_, _ = v.Process(context.Background(), validation.Upload{FileName: "report.csv", FileType: domain.FileTypeCSV, Data: []byte(goodCSV)})
	_, _ = v.Process(context.Background(), validation.Upload{FileName: "report.txt", FileType: domain.FileTypeText, Data: []byte("junk")})

	assert.Equal(t, 1, obs.reports)
	assert.Equal(t, 1, obs.errors)
	assert.Equal(t, 7, obs.outcomes)
}
