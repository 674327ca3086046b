package sink

import (
	"context"
	"reflect"
	"testing"
)

func TestMemory_FullReplace(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	big := Table{
		Header: []string{"Ticker"},
		Rows:   [][]string{{"2330"}, {"2317"}, {"2454"}},
	}
	small := Table{
		Header: []string{"Ticker"},
		Rows:   [][]string{{"2881"}},
	}

	if err := m.ReplaceTable(ctx, "TW50", big, "t1"); err != nil {
		t.Fatal(err)
	}
	if err := m.ReplaceTable(ctx, "TW50", small, "t2"); err != nil {
		t.Fatal(err)
	}

	got, ok := m.Get("TW50")
	if !ok {
		t.Fatal("destination missing")
	}
	// No residual rows from the prior, larger result set.
	if !reflect.DeepEqual(got.Table, small) {
		t.Errorf("visible content = %+v, want the smaller replacement", got.Table)
	}
	if got.Freshness != "t2" {
		t.Errorf("freshness = %q, want t2", got.Freshness)
	}
}

func TestMemory_Idempotent(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	table := Table{Header: []string{"Ticker"}, Rows: [][]string{{"2330"}}}

	m.ReplaceTable(ctx, "Top 10", table, "t")
	first, _ := m.Get("Top 10")
	m.ReplaceTable(ctx, "Top 10", table, "t")
	second, _ := m.Get("Top 10")

	if !reflect.DeepEqual(first.Table, second.Table) || first.Freshness != second.Freshness {
		t.Error("identical writes changed the visible end state")
	}
}

func TestMemory_DestinationsIndependent(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	m.ReplaceTable(ctx, "TW50", Table{Rows: [][]string{{"a"}}}, "t")
	m.ReplaceTable(ctx, "Top 10", Table{Rows: [][]string{{"b"}}}, "t")

	tw, _ := m.Get("TW50")
	top, _ := m.Get("Top 10")
	if reflect.DeepEqual(tw.Table, top.Table) {
		t.Error("destinations share content")
	}
}
