package schema

import (
	"log"
	"strconv"
	"time"

	"github.com/finbooks/ledgersql/internal/core"
	"github.com/finbooks/ledgersql/internal/ledger"
)

// Physical sizes of the fixed-width text encodings.
const (
	timestampColSize = 14 // YYYYMMDDHHMMSS
	dateColSize      = 8  // YYYYMMDD
)

// TimestampLayout is the reference layout for the default fixed-width
// timestamp text encoding.
const TimestampLayout = "20060102150405"

// RegisterStandardKinds populates a registry with the built-in column kinds.
// It must run before any marshalling; the embedding application may add
// extension kinds afterwards.
func RegisterStandardKinds(r *Registry) {
	r.Register(KindString, stringHandler)
	r.Register(KindBoolean, booleanHandler)
	r.Register(KindInt, intHandler)
	r.Register(KindInt64, int64Handler)
	r.Register(KindDouble, doubleHandler)
	r.Register(KindGUID, guidHandler)
	r.Register(KindTimestamp, timestampHandler)
	r.Register(KindDate, dateHandler)
	r.Register(KindNumeric, numericHandler)
}

// columnSpec builds the single-column spec shared by most Describe
// implementations.
func columnSpec(d Descriptor, t core.BasicType, size int, unicode bool) core.ColumnSpec {
	return core.ColumnSpec{
		Name:       d.Name,
		Type:       t,
		Size:       size,
		Unicode:    unicode,
		AutoInc:    d.Flags&FlagAutoInc != 0,
		PrimaryKey: d.Flags&FlagPrimaryKey != 0,
		NotNull:    d.Flags&FlagNotNull != 0,
	}
}

/* ----------------------------------------------------------------- */

var stringHandler = Handler{
	Load: func(env *Env, row core.Row, set SetterFunc, obj any, d Descriptor) {
		if s, ok := row.StringAt(d.Name); ok {
			set(obj, s)
		}
	},
	Describe: func(env *Env, d Descriptor) []core.ColumnSpec {
		return []core.ColumnSpec{columnSpec(d, core.TypeString, d.Size, true)}
	},
	Serialize: func(env *Env, obj any, d Descriptor, out *Pairs) {
		v := getter(d)(obj)
		if s, ok := v.(string); ok {
			out.Add(d.Name, s)
		}
	},
}

/* ----------------------------------------------------------------- */

// Booleans ride in an integer column; a NULL column reads back as false.
var booleanHandler = Handler{
	Load: func(env *Env, row core.Row, set SetterFunc, obj any, d Descriptor) {
		i, _ := row.Int64At(d.Name)
		set(obj, i != 0)
	},
	Describe: func(env *Env, d Descriptor) []core.ColumnSpec {
		return []core.ColumnSpec{columnSpec(d, core.TypeInt, 0, false)}
	},
	Serialize: func(env *Env, obj any, d Descriptor, out *Pairs) {
		if b, ok := getter(d)(obj).(bool); ok {
			if b {
				out.Add(d.Name, "1")
			} else {
				out.Add(d.Name, "0")
			}
		}
	},
}

/* ----------------------------------------------------------------- */

// A NULL integer column reads back as zero.
var intHandler = Handler{
	Load: func(env *Env, row core.Row, set SetterFunc, obj any, d Descriptor) {
		i, _ := row.Int64At(d.Name)
		set(obj, int32(i))
	},
	Describe: func(env *Env, d Descriptor) []core.ColumnSpec {
		return []core.ColumnSpec{columnSpec(d, core.TypeInt, 0, false)}
	},
	Serialize: func(env *Env, obj any, d Descriptor, out *Pairs) {
		switch v := getter(d)(obj).(type) {
		case int32:
			out.Add(d.Name, strconv.FormatInt(int64(v), 10))
		case int:
			out.Add(d.Name, strconv.Itoa(v))
		case int64:
			out.Add(d.Name, strconv.FormatInt(v, 10))
		}
	},
}

var int64Handler = Handler{
	Load: func(env *Env, row core.Row, set SetterFunc, obj any, d Descriptor) {
		i, _ := row.Int64At(d.Name)
		set(obj, i)
	},
	Describe: func(env *Env, d Descriptor) []core.ColumnSpec {
		return []core.ColumnSpec{columnSpec(d, core.TypeInt64, 0, false)}
	},
	Serialize: func(env *Env, obj any, d Descriptor, out *Pairs) {
		switch v := getter(d)(obj).(type) {
		case int64:
			out.Add(d.Name, strconv.FormatInt(v, 10))
		case int:
			out.Add(d.Name, strconv.Itoa(v))
		}
	},
}

/* ----------------------------------------------------------------- */

var doubleHandler = Handler{
	Load: func(env *Env, row core.Row, set SetterFunc, obj any, d Descriptor) {
		if f, ok := row.Float64At(d.Name); ok {
			set(obj, f)
		}
	},
	Describe: func(env *Env, d Descriptor) []core.ColumnSpec {
		return []core.ColumnSpec{columnSpec(d, core.TypeDouble, 0, false)}
	},
	Serialize: func(env *Env, obj any, d Descriptor, out *Pairs) {
		if f, ok := getter(d)(obj).(float64); ok {
			out.Add(d.Name, strconv.FormatFloat(f, 'g', -1, 64))
		}
	},
}

/* ----------------------------------------------------------------- */

// GUID parsing is deliberately lenient: malformed text is logged and the
// target property left unset rather than failing the surrounding load.
var guidHandler = Handler{
	Load: func(env *Env, row core.Row, set SetterFunc, obj any, d Descriptor) {
		s, ok := row.StringAt(d.Name)
		if !ok {
			return
		}
		g, err := ledger.ParseGUID(s)
		if err != nil {
			log.Printf("[SQL] ignoring malformed guid in column %s: %v", d.Name, err)
			return
		}
		set(obj, g)
	},
	Describe: func(env *Env, d Descriptor) []core.ColumnSpec {
		return []core.ColumnSpec{columnSpec(d, core.TypeString, ledger.GUIDEncodingLength, false)}
	},
	Serialize: func(env *Env, obj any, d Descriptor, out *Pairs) {
		if g, ok := getter(d)(obj).(ledger.GUID); ok {
			out.Add(d.Name, g.String())
		}
	},
}

/* ----------------------------------------------------------------- */

// Timestamps accept a native epoch integer, a driver-materialized time, or
// the fixed-width text encoding. A NULL column leaves the property alone;
// serialization skips zero times entirely.
var timestampHandler = Handler{
	Load: func(env *Env, row core.Row, set SetterFunc, obj any, d Descriptor) {
		if t, ok := row.TimeAt(d.Name); ok {
			set(obj, t.UTC())
			return
		}
		if s, ok := row.StringAt(d.Name); ok {
			format := env.TimestampFormat
			if format == "" {
				format = TimestampLayout
			}
			if t, err := time.ParseInLocation(format, s, time.UTC); err == nil {
				set(obj, t)
			}
			return
		}
		if i, ok := row.Int64At(d.Name); ok {
			set(obj, time.Unix(i, 0).UTC())
		}
	},
	Describe: func(env *Env, d Descriptor) []core.ColumnSpec {
		return []core.ColumnSpec{columnSpec(d, core.TypeDatetime, timestampColSize, false)}
	},
	Serialize: func(env *Env, obj any, d Descriptor, out *Pairs) {
		t, ok := getter(d)(obj).(time.Time)
		if !ok || t.IsZero() {
			return
		}
		format := env.TimestampFormat
		if format == "" {
			format = TimestampLayout
		}
		out.Add(d.Name, t.UTC().Format(format))
	},
}

/* ----------------------------------------------------------------- */

// Calendar dates accept a Unix epoch integer or YYYYMMDD text.
var dateHandler = Handler{
	Load: func(env *Env, row core.Row, set SetterFunc, obj any, d Descriptor) {
		if s, ok := row.StringAt(d.Name); ok {
			if len(s) < dateColSize {
				return
			}
			year, err1 := strconv.Atoi(s[0:4])
			month, err2 := strconv.Atoi(s[4:6])
			day, err3 := strconv.Atoi(s[6:8])
			if err1 != nil || err2 != nil || err3 != nil {
				return
			}
			if year == 0 && month == 0 && day == 0 {
				return
			}
			set(obj, ledger.Date{Year: year, Month: time.Month(month), Day: day})
			return
		}
		if i, ok := row.Int64At(d.Name); ok {
			set(obj, ledger.DateOf(time.Unix(i, 0)))
		}
	},
	Describe: func(env *Env, d Descriptor) []core.ColumnSpec {
		return []core.ColumnSpec{columnSpec(d, core.TypeDate, dateColSize, false)}
	},
	Serialize: func(env *Env, obj any, d Descriptor, out *Pairs) {
		if date, ok := getter(d)(obj).(ledger.Date); ok && !date.IsZero() {
			out.Add(d.Name, date.String())
		}
	},
}

/* ----------------------------------------------------------------- */

// The fixed-point rational spans two physical integer columns. A row
// carrying a numerator but no denominator reads back with denominator 1;
// a row with no numerator leaves the property unmodified.
var numericHandler = Handler{
	Load: func(env *Env, row core.Row, set SetterFunc, obj any, d Descriptor) {
		num, ok := row.Int64At(d.Name + "_num")
		if !ok {
			return
		}
		denom, ok := row.Int64At(d.Name + "_denom")
		if !ok {
			denom = 1
		}
		set(obj, ledger.NewNumeric(num, denom))
	},
	Describe: func(env *Env, d Descriptor) []core.ColumnSpec {
		specs := make([]core.ColumnSpec, 0, 2)
		for _, suffix := range []string{"_num", "_denom"} {
			specs = append(specs, core.ColumnSpec{
				Name:       d.Name + suffix,
				Type:       core.TypeInt64,
				PrimaryKey: d.Flags&FlagPrimaryKey != 0,
				NotNull:    d.Flags&FlagNotNull != 0,
			})
		}
		return specs
	},
	Serialize: func(env *Env, obj any, d Descriptor, out *Pairs) {
		n, ok := getter(d)(obj).(ledger.Numeric)
		if !ok {
			n = ledger.ZeroNumeric()
		}
		out.Add(d.Name+"_num", strconv.FormatInt(n.Num, 10))
		out.Add(d.Name+"_denom", strconv.FormatInt(n.Denom, 10))
	},
}
