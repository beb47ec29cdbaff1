package placeholder

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

var standardPattern = regexp.MustCompile(`^([NnFf])(\d{0,2})$`)

// Format renders v with a standard or custom numeric spec. Output is the same
// regardless of locale.
//
//	N<d>     grouped thousands, d decimals (default 2)
//	F<d>     fixed point, d decimals (default 2)
//	#,##0.0# digit pattern: optional leading +, integer places with optional
//	         ',' grouping, then '.' and fractional places. '0' places are
//	         always printed, '#' places only when significant.
//
// Any other spec yields Invalid.
func Format(v decimal.Decimal, spec string) string {
	if m := standardPattern.FindStringSubmatch(spec); m != nil {
		decimals := 2
		if m[2] != "" {
			n, err := strconv.Atoi(m[2])
			if err != nil || n > maxDecimals {
				return Invalid
			}
			decimals = n
		}

		switch strings.ToUpper(m[1]) {
		case "N":
			return digitPattern{grouped: true, minInt: 1, minFrac: decimals, maxFrac: decimals}.format(v)
		case "F":
			return v.StringFixed(int32(decimals))
		}
	}

	p, ok := parseDigitPattern(spec)
	if !ok {
		return Invalid
	}
	return p.format(v)
}

// digitPattern is a parsed custom numeric format.
type digitPattern struct {
	plus    bool
	grouped bool
	minInt  int
	minFrac int
	maxFrac int
}

// parseDigitPattern accepts [+]<int places>[.<frac places>]. A ',' may only
// sit between integer places.
func parseDigitPattern(spec string) (digitPattern, bool) {
	var p digitPattern
	if rest, ok := strings.CutPrefix(spec, "+"); ok {
		p.plus = true
		spec = rest
	}

	intPart, fracPart, _ := strings.Cut(spec, ".")
	if intPart == "" && fracPart == "" {
		return p, false
	}

	places := 0
	firstZero := -1
	for i, r := range intPart {
		switch r {
		case '0':
			if firstZero < 0 {
				firstZero = places
			}
			places++
		case '#':
			places++
		case ',':
			if i == 0 || i == len(intPart)-1 || intPart[i-1] == ',' {
				return p, false
			}
			p.grouped = true
		default:
			return p, false
		}
	}
	if firstZero >= 0 {
		p.minInt = places - firstZero
	}

	for i, r := range fracPart {
		switch r {
		case '0':
			p.minFrac = i + 1
		case '#':
		default:
			return p, false
		}
	}
	p.maxFrac = len(fracPart)
	if p.maxFrac > maxDecimals {
		return p, false
	}

	return p, true
}

func (p digitPattern) format(v decimal.Decimal) string {
	fixed := v.Abs().StringFixed(int32(p.maxFrac))
	intDigits, frac, _ := strings.Cut(fixed, ".")

	frac = strings.TrimRight(frac, "0")
	if len(frac) < p.minFrac {
		frac += strings.Repeat("0", p.minFrac-len(frac))
	}
	zero := strings.Trim(intDigits+frac, "0") == ""

	if p.minInt == 0 && intDigits == "0" {
		intDigits = ""
	}

	var out string
	switch {
	case p.grouped && intDigits != "":
		n, err := strconv.ParseInt(intDigits, 10, 64)
		if err != nil {
			return Invalid
		}
		out = padGrouped(humanize.Comma(n), len(intDigits), p.minInt)
	default:
		out = strings.Repeat("0", max(p.minInt-len(intDigits), 0)) + intDigits
	}

	if frac != "" {
		out += "." + frac
	}
	if out == "" {
		out = "0"
	}

	switch {
	case v.Sign() < 0 && !zero:
		out = "-" + out
	case p.plus:
		out = "+" + out
	}
	return out
}

// padGrouped left-pads a grouped integer with zeros up to minInt digits.
func padGrouped(s string, digits, minInt int) string {
	for ; digits < minInt; digits++ {
		if digits%3 == 0 {
			s = "," + s
		}
		s = "0" + s
	}
	return s
}
