package trends

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/nao1215/trendscan/internal/model"
)

// ErrParseAnomaly is matched by every *ParseAnomaly.
var ErrParseAnomaly = errors.New("malformed trend item")

// ParseAnomaly describes a trend item that failed a parsing rule.
type ParseAnomaly struct {
	Rule   string
	Reason string
	Lines  []string
}

// Error implements error.
func (a *ParseAnomaly) Error() string {
	return fmt.Sprintf("trend rule %q: %s (lines=%q)", a.Rule, a.Reason, a.Lines)
}

// Is makes errors.Is(err, ErrParseAnomaly) true.
func (a *ParseAnomaly) Is(target error) bool {
	return target == ErrParseAnomaly
}

// Line positions of a rendered trend item. Lines 0 and 1 hold the rank and
// a separator, which are not kept.
const (
	categoryLine  = 2
	topicLine     = 3
	postCountLine = 4
)

// rule extracts one field from the item lines. Only informational fields
// are normalized; the topic is stored exactly as rendered.
type rule struct {
	name      string
	line      int
	required  bool
	normalize bool
	validate  func(string) error
}

var rules = []rule{
	{name: "category", line: categoryLine, normalize: true},
	{name: "topic", line: topicLine, required: true, validate: validateTopic},
	{name: "post_count", line: postCountLine, normalize: true},
}

func validateTopic(s string) error {
	if !strings.HasPrefix(s, "#") {
		return errors.New("topic is not a hashtag")
	}
	return nil
}

// normalizeLine trims and composes an informational line for display.
func normalizeLine(l string) string {
	return norm.NFC.String(strings.TrimSpace(l))
}

// ParseTrend converts the rendered text of one trend element into an entry.
// A failed rule yields a *ParseAnomaly; the item must then be discarded.
func ParseTrend(text string) (model.TrendEntry, error) {
	lines := strings.Split(text, "\n")
	fields := make(map[string]*string, len(rules))

	for _, r := range rules {
		var value string
		if r.line < len(lines) {
			value = lines[r.line]
		}
		if r.normalize {
			value = normalizeLine(value)
		}
		if value == "" {
			if r.required {
				return model.TrendEntry{}, &ParseAnomaly{Rule: r.name, Reason: "missing", Lines: lines}
			}
			continue
		}
		if r.validate != nil {
			if err := r.validate(value); err != nil {
				return model.TrendEntry{}, &ParseAnomaly{Rule: r.name, Reason: err.Error(), Lines: lines}
			}
		}
		fields[r.name] = &value
	}

	return model.TrendEntry{
		Category:  fields["category"],
		Topic:     *fields["topic"],
		PostCount: fields["post_count"],
	}, nil
}

// Select parses the first limit texts in order. Rejected items are dropped
// without being replaced by later ones; their anomalies are returned.
func Select(texts []string, limit int) ([]model.TrendEntry, []error) {
	if limit >= 0 && len(texts) > limit {
		texts = texts[:limit]
	}
	var (
		entries   []model.TrendEntry
		anomalies []error
	)
	for _, text := range texts {
		entry, err := ParseTrend(text)
		if err != nil {
			anomalies = append(anomalies, err)
			continue
		}
		entries = append(entries, entry)
	}
	return entries, anomalies
}
