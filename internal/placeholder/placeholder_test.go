package placeholder

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/nebel/CurrencyWatchdog/internal/subject"
)

func TestRender(t *testing.T) {
	plain := subject.NewDetails("Storm Seal", 65004, 10000, 5263, nil)
	aliased := plain.WithAlias("Seals")
	pct := subject.NewDetails("Poetics", 65023, 1000, 83, nil)
	limited := subject.NewDetails("Heliometry", 65086, 2000, 1500, nil).WithLimited(450, 300)
	fractional := subject.NewDetails("Frac", 1, 1000, 42, nil)

	tests := []struct {
		name string
		d    subject.Details
		text string
		want string
	}{
		{name: "held no format", d: plain, text: "{h}", want: "5263"},
		{name: "abbreviated", d: plain, text: "{h:Z}", want: "5.26K"},
		{name: "abbreviated one digit", d: plain, text: "{h:Z1}", want: "5K"},
		{name: "abbreviated lowercase", d: plain, text: "{c:z}", want: "10k"},
		{name: "custom pattern", d: pct, text: "{p:0.000}%", want: "8.300%"},
		{name: "percent truncated", d: pct, text: "{p}", want: "8"},
		{name: "ceil before format", d: fractional, text: "{p:^}", want: "5"},
		{name: "floor before format", d: fractional, text: "{p:_}", want: "4"},
		{name: "ceil then fixed", d: fractional, text: "{p:^F1}", want: "5.0"},
		{name: "grouped", d: plain, text: "{h:N0} / {c:N0}", want: "5,263 / 10,000"},
		{name: "grouped default decimals", d: plain, text: "{m:N}", want: "4,737.00"},
		{name: "fixed", d: pct, text: "{p:F2}", want: "8.30"},
		{name: "name", d: aliased, text: "{n}", want: "Storm Seal"},
		{name: "alias", d: aliased, text: "{a}: ", want: "Seals: "},
		{name: "alias falls back to name", d: plain, text: "{a}", want: "Storm Seal"},
		{name: "text keys ignore format", d: plain, text: "{n:Z}", want: "Storm Seal"},
		{name: "limited metrics", d: limited, text: "{H}/{C} {P:F1} {M}", want: "300/450 66.7 150"},
		{name: "limited undefined", d: plain, text: "{H} of {C:Z} ({P:F1}) {M}", want: "? of ? (?) ?"},
		{name: "invalid format", d: plain, text: "[{h:Q}] {c}", want: "[<ERR>] 10000"},
		{name: "unknown key passes through", d: plain, text: "{x} {N}", want: "{x} {N}"},
		{name: "unmatched braces pass through", d: plain, text: "{h {h} }", want: "{h 5263 }"},
		{name: "empty", d: plain, text: "", want: ""},
		{name: "missing floored", d: subject.NewDetails("Over", 1, 100, 150, nil), text: "{m}", want: "0"},
		{name: "zero cap percent", d: subject.NewDetails("Zero", 1, 0, 5, nil), text: "{p}", want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Render(tt.d, tt.text); got != tt.want {
				t.Errorf("Render(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestAbbreviate(t *testing.T) {
	tests := []struct {
		value  string
		digits int
		want   string
	}{
		{value: "0", digits: 3, want: "0"},
		{value: "999", digits: 3, want: "999"},
		{value: "100", digits: 3, want: "100"},
		{value: "1000", digits: 3, want: "1K"},
		{value: "1500", digits: 3, want: "1.5K"},
		{value: "12345", digits: 3, want: "12.3K"},
		{value: "12355", digits: 3, want: "12.4K"},
		{value: "123456", digits: 3, want: "123K"},
		{value: "1234567", digits: 4, want: "1.235M"},
		{value: "2500000000", digits: 3, want: "2.5G"},
		{value: "7000000000000", digits: 3, want: "7T"},
		{value: "7000000000000000", digits: 3, want: "7000T"},
		{value: "0.5", digits: 3, want: "0.5"},
		{value: "1.25", digits: 2, want: "1.3"},
		{value: "5263", digits: 0, want: "5K"},
		{value: "5263", digits: 40, want: "5.263K"},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			v := decimal.RequireFromString(tt.value)
			if got := Abbreviate(v, tt.digits, upperSuffixes); got != tt.want {
				t.Errorf("Abbreviate(%s, %d) = %q, want %q", tt.value, tt.digits, got, tt.want)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		value string
		spec  string
		want  string
	}{
		{spec: "N", want: "12,345.68"},
		{spec: "N0", want: "12,346"},
		{spec: "n1", want: "12,345.7"},
		{spec: "F0", want: "12346"},
		{spec: "F3", want: "12345.678"},
		{spec: "0", want: "12346"},
		{spec: "0.0", want: "12345.7"},
		{spec: "0.##", want: "12345.68"},
		{spec: "#,##0", want: "12,346"},
		{spec: "#,##0.0", want: "12,345.7"},
		{spec: "#,###.##", want: "12,345.68"},
		{spec: "+0.0", want: "+12345.7"},
		{value: "5263", spec: "0", want: "5263"},
		{value: "5263", spec: "#,##0", want: "5,263"},
		{value: "5263", spec: "0.##", want: "5263"},
		{value: "2.5", spec: "0", want: "3"},
		{value: "0.5", spec: "0.00#", want: "0.50"},
		{value: "0.25", spec: "#.##", want: ".25"},
		{value: "0", spec: "#", want: "0"},
		{value: "7", spec: "000", want: "007"},
		{value: "5", spec: "00,000", want: "00,005"},
		{value: "-1234.5", spec: "#,##0.0", want: "-1,234.5"},
		{value: "-0.01", spec: "0.0", want: "0.0"},
		{value: "1234567", spec: "N0", want: "1,234,567"},
		{spec: "N16", want: Invalid},
		{spec: "X2", want: Invalid},
		{spec: "0.0.0.0", want: Invalid},
		{spec: "0.#,#", want: Invalid},
		{spec: ",##0", want: Invalid},
		{spec: "#,##0,", want: Invalid},
		{spec: "0,,000", want: Invalid},
		{spec: "0.0000000000000000", want: Invalid},
		{spec: "+", want: Invalid},
		{spec: "abc", want: Invalid},
	}

	for _, tt := range tests {
		value := tt.value
		if value == "" {
			value = "12345.678"
		}
		t.Run(value+" "+tt.spec, func(t *testing.T) {
			if got := FormatValue(decimal.RequireFromString(value), tt.spec); got != tt.want {
				t.Errorf("FormatValue(%s, %s) = %q, want %q", value, tt.spec, got, tt.want)
			}
		})
	}
}
