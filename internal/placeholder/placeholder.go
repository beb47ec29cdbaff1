// Package placeholder renders alert text templates. A template is plain text
// with tokens of the form {key} or {key:spec}:
//
//	n  name               a  alias, or name when no alias is set
//	c  cap                C  limited cap
//	h  held               H  limited held
//	p  held percent       P  limited held percent
//	m  missing            M  limited missing
//
// Numeric keys without a spec print the value truncated to an integer. A spec
// may start with ^ (round up) or _ (round down). Z and z specs abbreviate by
// magnitude ("5.26K"); the digits after them set the significant digits shown.
// Anything else goes to the numeric formatter (see Format).
package placeholder

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/nebel/CurrencyWatchdog/internal/subject"
)

const (
	// Undefined is printed for a limited metric on a subject without limits.
	Undefined = "?"
	// Invalid is printed for a spec the formatter cannot apply.
	Invalid = "<ERR>"

	defaultSignificantDigits = 3
	maxDecimals              = 15
)

var (
	tokenPattern  = regexp.MustCompile(`\{([nachpmCHPM])(?::([^{}]*))?\}`)
	metricPattern = regexp.MustCompile(`^([Zz])(\d*)$`)

	upperSuffixes = []string{"", "K", "M", "G", "T"}
	lowerSuffixes = []string{"", "k", "m", "g", "t"}

	thousand = decimal.NewFromInt(1000)
)

// Render replaces every token in text with the value from d.
func Render(d subject.Details, text string) string {
	if text == "" {
		return text
	}

	return tokenPattern.ReplaceAllStringFunc(text, func(token string) string {
		m := tokenPattern.FindStringSubmatch(token)
		key, spec := m[1][0], m[2]

		switch key {
		case 'n':
			return d.Name
		case 'a':
			return d.DisplayName()
		}

		v, ok := value(d, key)
		if !ok {
			return Undefined
		}
		return FormatValue(v, spec)
	})
}

func value(d subject.Details, key byte) (decimal.Decimal, bool) {
	switch key {
	case 'c':
		return fromUint(d.EffectiveCap), true
	case 'h':
		return fromUint(d.Held), true
	case 'p':
		return d.HeldPercent(), true
	case 'm':
		return fromUint(d.Missing()), true
	case 'C':
		v, ok := d.LimitedCap()
		return fromUint(v), ok
	case 'H':
		v, ok := d.LimitedHeld()
		return fromUint(v), ok
	case 'P':
		return d.LimitedHeldPercent()
	case 'M':
		v, ok := d.LimitedMissing()
		return fromUint(v), ok
	default:
		return decimal.Zero, false
	}
}

func fromUint(v uint32) decimal.Decimal {
	return decimal.NewFromInt(int64(v))
}

// FormatValue applies spec to v. It never panics; a spec that cannot be
// applied yields Invalid.
func FormatValue(v decimal.Decimal, spec string) (out string) {
	defer func() {
		if r := recover(); r != nil {
			out = Invalid
		}
	}()

	switch {
	case strings.HasPrefix(spec, "^"):
		v, spec = v.Ceil(), spec[1:]
	case strings.HasPrefix(spec, "_"):
		v, spec = v.Floor(), spec[1:]
	}

	if spec == "" {
		return v.Truncate(0).String()
	}

	if m := metricPattern.FindStringSubmatch(spec); m != nil {
		digits := defaultSignificantDigits
		if m[2] != "" {
			n, err := strconv.Atoi(m[2])
			if err != nil {
				return Invalid
			}
			digits = n
		}
		suffixes := upperSuffixes
		if m[1] == "z" {
			suffixes = lowerSuffixes
		}
		return Abbreviate(v, digits, suffixes)
	}

	return Format(v, spec)
}

// Abbreviate divides v by 1000 until it is below 1000 or the suffix ladder
// runs out, then prints it with the requested number of significant digits.
func Abbreviate(v decimal.Decimal, significant int, suffixes []string) string {
	if v.IsZero() {
		return "0"
	}

	sign := ""
	if v.IsNegative() {
		sign = "-"
		v = v.Abs()
	}

	idx := 0
	for v.GreaterThanOrEqual(thousand) && idx < len(suffixes)-1 {
		v = v.Div(thousand)
		idx++
	}

	integerDigits := v.NumDigits() + int(v.Exponent())
	decimals := clamp(significant-integerDigits, 0, maxDecimals)

	s := v.Round(int32(decimals)).StringFixed(int32(decimals))
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}

	return sign + s + suffixes[idx]
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
