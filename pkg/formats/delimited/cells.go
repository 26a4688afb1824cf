package delimited

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ajitpratap0/tabula/pkg/variable"
	"github.com/ajitpratap0/tabula/pkg/vector"
)

// Timestamp layouts accepted on load, most specific first. Layouts without
// an offset are read as UTC.
var instantLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	vector.DateLayout,
}

// FormatCell renders a cell of column v. Null is the empty string; decimals
// keep the column scale.
func FormatCell(v variable.Variable, val vector.Value) string {
	if d, ok := val.Decimal(); ok {
		return d.StringFixed(v.Scale())
	}
	return val.String()
}

// ParseCell reads one cell of column v. Blank text is null.
func ParseCell(v variable.Variable, text string) (vector.Value, error) {
	if strings.TrimSpace(text) == "" {
		return vector.Null(), nil
	}
	switch v.Kind() {
	case variable.Integer, variable.Category, variable.OrdinalCategory:
		i, err := strconv.ParseInt(strings.TrimSpace(text), 10, 32)
		if err != nil {
			return vector.Null(), err
		}
		return vector.Int(i), nil
	case variable.Decimal:
		d, err := decimal.NewFromString(strings.TrimSpace(text))
		if err != nil {
			return vector.Null(), err
		}
		return vector.Decimal(d), nil
	case variable.Boolean:
		b, err := strconv.ParseBool(strings.TrimSpace(text))
		if err != nil {
			return vector.Null(), err
		}
		return vector.Bool(b), nil
	case variable.Date:
		t, err := parseInstant(text)
		if err != nil {
			return vector.Null(), err
		}
		return vector.Date(t), nil
	case variable.Timestamp:
		t, err := parseInstant(text)
		if err != nil {
			return vector.Null(), err
		}
		return vector.Instant(t), nil
	default:
		return vector.Text(text), nil
	}
}

func parseInstant(text string) (time.Time, error) {
	text = strings.TrimSpace(text)
	var firstErr error
	for _, layout := range instantLayouts {
		t, err := time.Parse(layout, text)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}
