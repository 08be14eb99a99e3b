package schema

import (
	"testing"
	"time"

	"github.com/finbooks/ledgersql/internal/core"
	"github.com/finbooks/ledgersql/internal/ledger"
)

// gadget exercises every column kind through explicit accessors.
type gadget struct {
	id     ledger.GUID
	label  string
	active bool
	count  int32
	total  int64
	ratio  float64
	when   time.Time
	day    ledger.Date
	amount ledger.Numeric
	rowID  int64
}

func field[T any](get func(*gadget) T, set func(*gadget, T)) Access {
	return FuncPair(
		func(obj any) any { return get(obj.(*gadget)) },
		func(obj any, value any) {
			if v, ok := value.(T); ok {
				set(obj.(*gadget), v)
			}
		},
	)
}

var gadgetColumns = Table{
	{Name: "guid", Kind: KindGUID, Flags: FlagPrimaryKey | FlagNotNull,
		Access: field(func(g *gadget) ledger.GUID { return g.id },
			func(g *gadget, v ledger.GUID) { g.id = v })},
	{Name: "label", Kind: KindString, Size: 256,
		Access: field(func(g *gadget) string { return g.label },
			func(g *gadget, v string) { g.label = v })},
	{Name: "active", Kind: KindBoolean,
		Access: field(func(g *gadget) bool { return g.active },
			func(g *gadget, v bool) { g.active = v })},
	{Name: "count", Kind: KindInt,
		Access: field(func(g *gadget) int32 { return g.count },
			func(g *gadget, v int32) { g.count = v })},
	{Name: "total", Kind: KindInt64,
		Access: field(func(g *gadget) int64 { return g.total },
			func(g *gadget, v int64) { g.total = v })},
	{Name: "ratio", Kind: KindDouble,
		Access: field(func(g *gadget) float64 { return g.ratio },
			func(g *gadget, v float64) { g.ratio = v })},
	{Name: "when", Kind: KindTimestamp,
		Access: field(func(g *gadget) time.Time { return g.when },
			func(g *gadget, v time.Time) { g.when = v })},
	{Name: "day", Kind: KindDate,
		Access: field(func(g *gadget) ledger.Date { return g.day },
			func(g *gadget, v ledger.Date) { g.day = v })},
	{Name: "amount", Kind: KindNumeric,
		Access: field(func(g *gadget) ledger.Numeric { return g.amount },
			func(g *gadget, v ledger.Numeric) { g.amount = v })},
	{Name: "row_id", Kind: KindInt64, Flags: FlagAutoInc,
		Access: field(func(g *gadget) int64 { return g.rowID },
			func(g *gadget, v int64) { g.rowID = v })},
}

func newTestEnv() *Env {
	r := NewRegistry()
	RegisterStandardKinds(r)
	return &Env{Kinds: r, TimestampFormat: TimestampLayout}
}

func pairsByColumn(pairs Pairs) map[string]string {
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		out[p.Column] = p.Value
	}
	return out
}

func TestSerializeThenLoadRoundTrip(t *testing.T) {
	env := newTestEnv()
	src := &gadget{
		id:     ledger.NewGUID(),
		label:  "conveyor",
		active: true,
		count:  42,
		total:  1 << 40,
		ratio:  2.5,
		when:   time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC),
		day:    ledger.Date{Year: 2024, Month: time.March, Day: 15},
		amount: ledger.NewNumeric(12345, 100),
	}

	pairs := env.ObjectValues(src, gadgetColumns)
	row := make(core.Row, len(pairs))
	for _, p := range pairs {
		row[p.Column] = p.Value
	}

	var dst gadget
	env.LoadObject(row, &dst, gadgetColumns)

	if dst.id != src.id {
		t.Errorf("guid: got %s, want %s", dst.id, src.id)
	}
	if dst.label != src.label || dst.active != src.active || dst.count != src.count ||
		dst.total != src.total || dst.ratio != src.ratio {
		t.Errorf("scalar fields differ: got %+v", dst)
	}
	if !dst.when.Equal(src.when) {
		t.Errorf("timestamp: got %v, want %v", dst.when, src.when)
	}
	if dst.day != src.day {
		t.Errorf("date: got %v, want %v", dst.day, src.day)
	}
	if dst.amount != src.amount {
		t.Errorf("numeric: got %v, want %v", dst.amount, src.amount)
	}
}

func TestSerializeIsDeterministic(t *testing.T) {
	env := newTestEnv()
	g := &gadget{id: ledger.NewGUID(), label: "x", amount: ledger.NewNumeric(1, 2)}

	first := env.ObjectValues(g, gadgetColumns)
	second := env.ObjectValues(g, gadgetColumns)
	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("pair %d differs: %v vs %v", i, first[i], second[i])
		}
	}
}

func TestSerializeSkipsAutoincColumns(t *testing.T) {
	env := newTestEnv()
	g := &gadget{id: ledger.NewGUID(), rowID: 99}

	got := pairsByColumn(env.ObjectValues(g, gadgetColumns))
	if _, ok := got["row_id"]; ok {
		t.Error("autoincrement column must not be serialized")
	}
}

func TestNumericSpansTwoColumns(t *testing.T) {
	env := newTestEnv()
	g := &gadget{amount: ledger.NewNumeric(-7, 100)}

	got := pairsByColumn(env.ObjectValues(g, gadgetColumns))
	if got["amount_num"] != "-7" || got["amount_denom"] != "100" {
		t.Errorf("numeric pairs = %v", got)
	}

	specs := env.DescribeTable(Table{gadgetColumns[8]})
	if len(specs) != 2 || specs[0].Name != "amount_num" || specs[1].Name != "amount_denom" {
		t.Errorf("numeric describe = %+v", specs)
	}
}

func TestNumericLoadDenomDefaultsToOne(t *testing.T) {
	env := newTestEnv()
	var g gadget
	env.LoadObject(core.Row{"amount_num": int64(5)}, &g, gadgetColumns)
	if g.amount != ledger.NewNumeric(5, 1) {
		t.Errorf("amount = %v, want 5/1", g.amount)
	}

	g = gadget{amount: ledger.NewNumeric(9, 9)}
	env.LoadObject(core.Row{"amount_denom": int64(10)}, &g, gadgetColumns)
	if g.amount != ledger.NewNumeric(9, 9) {
		t.Errorf("missing numerator must leave the property alone, got %v", g.amount)
	}
}

func TestNullHandling(t *testing.T) {
	env := newTestEnv()
	g := gadget{label: "keep", active: true, count: 3, total: 4, ratio: 1.5}

	// An entirely empty row: strings and doubles stay, integers and
	// booleans fall back to zero.
	env.LoadObject(core.Row{}, &g, gadgetColumns)
	if g.label != "keep" {
		t.Errorf("NULL string must not clear the property, got %q", g.label)
	}
	if g.ratio != 1.5 {
		t.Errorf("NULL double must not clear the property, got %v", g.ratio)
	}
	if g.active != false {
		t.Error("NULL boolean must read as false")
	}
	if g.count != 0 || g.total != 0 {
		t.Errorf("NULL integers must read as zero, got %d/%d", g.count, g.total)
	}
}

func TestMalformedGUIDLeavesPropertyUnset(t *testing.T) {
	env := newTestEnv()
	keep := ledger.NewGUID()
	g := gadget{id: keep}

	env.LoadObject(core.Row{"guid": "not-a-guid"}, &g, gadgetColumns)
	if g.id != keep {
		t.Errorf("malformed guid must be ignored, got %s", g.id)
	}
}

func TestTimestampTextEncoding(t *testing.T) {
	env := newTestEnv()
	g := &gadget{when: time.Date(2006, 1, 2, 15, 4, 5, 0, time.UTC)}

	got := pairsByColumn(env.ObjectValues(g, gadgetColumns))
	if got["when"] != "20060102150405" {
		t.Errorf("timestamp encoding = %q", got["when"])
	}

	var loaded gadget
	env.LoadObject(core.Row{"when": "20060102150405"}, &loaded, gadgetColumns)
	if !loaded.when.Equal(g.when) {
		t.Errorf("timestamp round trip = %v", loaded.when)
	}
}

func TestTimestampHonorsConfiguredFormat(t *testing.T) {
	env := newTestEnv()
	env.TimestampFormat = "2006-01-02 15:04:05"
	g := &gadget{when: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}

	got := pairsByColumn(env.ObjectValues(g, gadgetColumns))
	if got["when"] != "2024-03-01 12:00:00" {
		t.Fatalf("timestamp encoding = %q", got["when"])
	}

	var loaded gadget
	env.LoadObject(core.Row{"when": got["when"]}, &loaded, gadgetColumns)
	if !loaded.when.Equal(g.when) {
		t.Errorf("timestamp round trip = %v, want %v", loaded.when, g.when)
	}
}

func TestZeroTimestampIsSkipped(t *testing.T) {
	env := newTestEnv()
	g := &gadget{}
	got := pairsByColumn(env.ObjectValues(g, gadgetColumns))
	if _, ok := got["when"]; ok {
		t.Error("zero timestamp must not be serialized")
	}
}

func TestDateTextEncoding(t *testing.T) {
	env := newTestEnv()
	g := &gadget{day: ledger.Date{Year: 2024, Month: time.December, Day: 5}}
	got := pairsByColumn(env.ObjectValues(g, gadgetColumns))
	if got["day"] != "20241205" {
		t.Errorf("date encoding = %q", got["day"])
	}

	var loaded gadget
	env.LoadObject(core.Row{"day": "20241205"}, &loaded, gadgetColumns)
	if loaded.day != g.day {
		t.Errorf("date round trip = %v", loaded.day)
	}
}

func TestMissingKindPanics(t *testing.T) {
	env := &Env{Kinds: NewRegistry()}
	defer func() {
		if recover() == nil {
			t.Error("an unregistered kind must panic")
		}
	}()
	env.DescribeTable(Table{{Name: "x", Kind: Kind("nope")}})
}

func TestPropertyAccessResolvesThroughHolder(t *testing.T) {
	env := newTestEnv()
	c := ledger.NewCommodity("CURRENCY", "USD")
	c.FullName = "US Dollar"

	table := Table{{Name: "fullname", Kind: KindString, Size: 256,
		Access: Property("fullname")}}
	got := pairsByColumn(env.ObjectValues(c, table))
	if got["fullname"] != "US Dollar" {
		t.Errorf("property getter = %q", got["fullname"])
	}

	env.LoadObject(core.Row{"fullname": "Euro"}, c, table)
	if c.FullName != "Euro" {
		t.Errorf("property setter = %q", c.FullName)
	}
}
