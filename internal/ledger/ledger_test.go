package ledger

import (
	"testing"
	"time"
)

func TestParseGUIDRoundTrip(t *testing.T) {
	g := NewGUID()
	s := g.String()
	if len(s) != GUIDEncodingLength {
		t.Fatalf("encoding length = %d, want %d", len(s), GUIDEncodingLength)
	}
	parsed, err := ParseGUID(s)
	if err != nil {
		t.Fatalf("ParseGUID: %v", err)
	}
	if parsed != g {
		t.Errorf("round trip: got %s, want %s", parsed, g)
	}
}

func TestParseGUIDAcceptsDashedForm(t *testing.T) {
	g, err := ParseGUID("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	if err != nil {
		t.Fatalf("ParseGUID: %v", err)
	}
	if g.String() != "6ba7b8109dad11d180b400c04fd430c8" {
		t.Errorf("got %s", g)
	}
}

func TestParseGUIDRejectsGarbage(t *testing.T) {
	for _, s := range []string{"", "xyz", "6ba7b8109dad11d180b400c04fd430cZ"} {
		if _, err := ParseGUID(s); err == nil {
			t.Errorf("ParseGUID(%q) must fail", s)
		}
	}
}

func TestDateEncoding(t *testing.T) {
	d := Date{Year: 2024, Month: time.February, Day: 9}
	if got := d.String(); got != "20240209" {
		t.Errorf("String = %q", got)
	}
	if (Date{}).IsZero() != true {
		t.Error("zero date must report IsZero")
	}
	if d.IsZero() {
		t.Error("non-zero date must not report IsZero")
	}
}

func TestInstanceLifecycle(t *testing.T) {
	a := NewAccount("Checking", "BANK")
	if !a.IsInfant() {
		t.Error("fresh instance must be infant")
	}
	if a.IsDirty() {
		t.Error("fresh instance must be clean")
	}

	a.SetProperty("description", "changed")
	if !a.IsDirty() {
		t.Error("property change must mark dirty")
	}

	a.MarkClean()
	if a.IsInfant() {
		t.Error("MarkClean must retire infant status")
	}

	a.BeginEdit()
	a.SetProperty("description", "bulk load")
	a.CommitEdit()
	if a.IsDirty() {
		t.Error("changes inside an edit bracket must not mark dirty")
	}
}

func TestCommodityTableDeduplicates(t *testing.T) {
	table := NewCommodityTable()
	usd := table.Insert(NewCommodity("CURRENCY", "USD"))
	dup := NewCommodity("CURRENCY", "USD")
	if got := table.Insert(dup); got != usd {
		t.Error("duplicate namespace/mnemonic must return the existing commodity")
	}
	if len(table.All()) != 1 {
		t.Errorf("table size = %d, want 1", len(table.All()))
	}
	if table.LookupGUID(usd.GUID()) != usd {
		t.Error("lookup by identifier failed")
	}
}

func TestBookFindsAccountsInBothTrees(t *testing.T) {
	book := NewBook()
	a := NewAccount("Checking", "BANK")
	book.RootAccount().Append(a)
	tmpl := NewAccount("Template", "BANK")
	book.TemplateRoot().Append(tmpl)

	if book.FindAccount(a.GUID()) != a {
		t.Error("main tree lookup failed")
	}
	if book.FindAccount(tmpl.GUID()) != tmpl {
		t.Error("template tree lookup failed")
	}
	if book.FindAccount(NewGUID()) != nil {
		t.Error("unknown identifier must return nil")
	}
}

func TestAccountDescendantsDepthFirst(t *testing.T) {
	root := NewAccount("Root", "ROOT")
	assets := NewAccount("Assets", "ASSET")
	bank := NewAccount("Bank", "BANK")
	income := NewAccount("Income", "INCOME")
	root.Append(assets)
	assets.Append(bank)
	root.Append(income)

	got := root.Descendants()
	want := []*Account{assets, bank, income}
	if len(got) != len(want) {
		t.Fatalf("descendants = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("descendant %d = %s, want %s", i, got[i].Name, want[i].Name)
		}
	}
}
