package schema

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/contoso-bi/nlsql-engine/pkg/apperrors"
)

func TestCatalog_Lookup(t *testing.T) {
	c := NewCatalog(ContosoTables())

	tests := []struct {
		name  string
		found bool
		want  string
	}{
		{"FactSales", true, "FactSales"},
		{"factsales", true, "FactSales"},
		{"FACTONLINESALES", true, "FactOnlineSales"},
		{"NoSuchTable", false, ""},
	}
	for _, tt := range tests {
		table, ok := c.Lookup(tt.name)
		if ok != tt.found {
			t.Errorf("Lookup(%q) found = %v, want %v", tt.name, ok, tt.found)
			continue
		}
		if ok && table.Name != tt.want {
			t.Errorf("Lookup(%q).Name = %q, want %q", tt.name, table.Name, tt.want)
		}
	}
}

func TestCatalog_TableNames(t *testing.T) {
	c := NewCatalog([]Table{{Name: "FactSales"}, {Name: "DimDate"}})

	names := c.TableNames()
	if len(names) != 2 || names[0] != "FactSales" || names[1] != "DimDate" {
		t.Errorf("TableNames() = %v", names)
	}
}

func TestStore_CurrentBeforeSeed(t *testing.T) {
	s := NewStore(nil, zap.NewNop())
	if _, err := s.Current(); !errors.Is(err, apperrors.ErrCatalogUnavailable) {
		t.Fatalf("expected ErrCatalogUnavailable, got %v", err)
	}
}

func TestStore_SeedAndCurrent(t *testing.T) {
	s := NewStore(nil, zap.NewNop())
	s.Seed(NewCatalog(ContosoTables()))

	c, err := s.Current()
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if _, ok := c.Lookup("DimDate"); !ok {
		t.Error("seeded catalog missing DimDate")
	}
}

type fakeProvider struct {
	tables    map[string][]Column
	listErr   error
	colErr    error
	listCalls int
}

func (p *fakeProvider) ListTables(ctx context.Context) ([]string, error) {
	p.listCalls++
	if p.listErr != nil {
		return nil, p.listErr
	}
	names := make([]string, 0, len(p.tables))
	for name := range p.tables {
		names = append(names, name)
	}
	return names, nil
}

func (p *fakeProvider) Columns(ctx context.Context, table string) ([]Column, error) {
	if p.colErr != nil {
		return nil, p.colErr
	}
	return p.tables[table], nil
}

func TestStore_Refresh(t *testing.T) {
	provider := &fakeProvider{tables: map[string][]Column{
		"FactSales": {{Name: "SalesAmount", DataType: "money"}},
	}}
	s := NewStore(provider, zap.NewNop())

	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	c, err := s.Current()
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	table, ok := c.Lookup("FactSales")
	if !ok || len(table.Columns) != 1 || table.Columns[0].Name != "SalesAmount" {
		t.Errorf("unexpected catalog contents: %+v", table)
	}
}

// A transient warehouse hiccup is retried inside Refresh.
func TestStore_RefreshRetriesTransientFailure(t *testing.T) {
	provider := &fakeProvider{tables: map[string][]Column{
		"DimDate": {{Name: "DateKey", DataType: "int"}},
	}}
	flaky := &flakyProvider{inner: provider, failures: 1, err: errors.New("i/o timeout")}
	s := NewStore(flaky, zap.NewNop())

	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh should survive one transient failure: %v", err)
	}
	if flaky.calls != 2 {
		t.Errorf("expected 2 ListTables calls, got %d", flaky.calls)
	}
}

type flakyProvider struct {
	inner    *fakeProvider
	failures int
	err      error
	calls    int
}

func (p *flakyProvider) ListTables(ctx context.Context) ([]string, error) {
	p.calls++
	if p.calls <= p.failures {
		return nil, p.err
	}
	return p.inner.ListTables(ctx)
}

func (p *flakyProvider) Columns(ctx context.Context, table string) ([]Column, error) {
	return p.inner.Columns(ctx, table)
}

// A failed refresh keeps serving the previous snapshot. The error text is
// non-transient, so Refresh gives up on the first call.
func TestStore_RefreshFailureKeepsSnapshot(t *testing.T) {
	provider := &fakeProvider{listErr: errors.New("warehouse down")}
	s := NewStore(provider, zap.NewNop())
	s.Seed(NewCatalog([]Table{{Name: "FactSales"}}))

	if err := s.Refresh(context.Background()); err == nil {
		t.Fatal("expected refresh error")
	}
	if provider.listCalls != 1 {
		t.Errorf("permanent failure should not be retried, got %d calls", provider.listCalls)
	}

	c, err := s.Current()
	if err != nil {
		t.Fatalf("Current after failed refresh: %v", err)
	}
	if _, ok := c.Lookup("FactSales"); !ok {
		t.Error("previous snapshot lost after failed refresh")
	}
}

func TestStaticProvider(t *testing.T) {
	p := NewStaticProvider(ContosoTables())

	names, err := p.ListTables(context.Background())
	if err != nil || len(names) == 0 {
		t.Fatalf("ListTables: %v (%d names)", err, len(names))
	}

	cols, err := p.Columns(context.Background(), "DimDate")
	if err != nil || len(cols) == 0 {
		t.Fatalf("Columns: %v (%d cols)", err, len(cols))
	}
}
