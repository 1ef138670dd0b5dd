/*
Package intake validates tabular report files (CSV or delimited text) and
records the outcome of every validation rule.

An upload goes through a fixed pipeline: its declared type must match its
extension, its name must be alphanumeric, its size bounded, its header row
exact, and it must contain neither missing cells nor empty rows. Each outcome
is persisted as soon as it is known, so rejected files leave the same audit
trail as accepted ones.

# Layout

  - pkg/domain: rules, outcomes, records and sentinel errors.
  - pkg/validation: table parsing, the rules and the recording pipeline.
  - pkg/ports: the ResultStore and Locker interfaces, with shared contract tests.
  - pkg/adapters: memory, Redis, SQL Server and DynamoDB stores; HTTP and MCP transports.
  - cmd/intake: the command line (serve, validate, results, mcp, version).

# Usage

	store := memory.NewStore()
	v := validation.New(store, validation.WithLocker(memory.NewLocker()))

	report, err := v.Process(ctx, validation.Upload{
		FileName: "report.csv",
		FileType: domain.FileTypeCSV,
		Data:     data,
	})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(report.Accepted)
*/
package intake
