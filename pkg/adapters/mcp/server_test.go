package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/intake/internal/logging"
	"github.com/aretw0/intake/pkg/adapters/memory"
	"github.com/aretw0/intake/pkg/domain"
	"github.com/aretw0/intake/pkg/validation"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer() (*Server, *memory.Store) {
	store := memory.NewStore()
	v := validation.New(store, validation.WithLogger(logging.NewNop()))
	return NewServer(v, store), store
}

func TestHandleValidate(t *testing.T) {
	s, store := newTestServer()
	ctx := context.Background()

	resp, err := s.handleValidate(ctx, mcp.CallToolRequest{}, ValidateArgs{
		FileName: "report.csv",
		FileType: "csv",
		Content:  "CUSTOMER,ADDRESS,PRODUCT,PRODUCT_TYPE,PRICE\nAlice,1 Main St,Widget,Tool,9.99\n",
	})
	require.NoError(t, err)
	assert.True(t, resp.Report.Accepted)
	assert.Empty(t, resp.Error)
	assert.Equal(t, 10, store.Len())
}

func TestHandleValidate_ParseError(t *testing.T) {
	s, _ := newTestServer()

	resp, err := s.handleValidate(context.Background(), mcp.CallToolRequest{}, ValidateArgs{
		FileName: "report.txt",
		FileType: "txt",
		Content:  "nothing useful",
	})
	require.NoError(t, err)
	assert.False(t, resp.Report.Accepted)
	assert.Contains(t, resp.Error, "Failed to parse the .txt file")
}

func TestHandleValidate_MissingArgs(t *testing.T) {
	s, _ := newTestServer()
	_, err := s.handleValidate(context.Background(), mcp.CallToolRequest{}, ValidateArgs{Content: "x"})
	assert.Error(t, err)
}

func TestHandleListAndResource(t *testing.T) {
	s, store := newTestServer()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, domain.Record{ID: "1", FileName: "a.csv", Rule: domain.RuleFileName, Result: "File name is valid. ✅"}))
	require.NoError(t, store.Save(ctx, domain.Record{ID: "2", FileName: "b.csv", Rule: domain.RuleFileName, Result: "File name is valid. ✅"}))

	resp, err := s.handleList(ctx, mcp.CallToolRequest{}, ListArgs{FileName: "b.csv"})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "2", resp.Results[0].ID)

	contents, err := s.readResults(ctx, mcp.ReadResourceRequest{})
	require.NoError(t, err)
	require.Len(t, contents, 1)
	text, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)

	var recs []domain.Record
	require.NoError(t, json.Unmarshal([]byte(text.Text), &recs))
	assert.Len(t, recs, 2)
}
