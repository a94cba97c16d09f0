package patterns

import (
	"fmt"
	"unicode/utf8"

	"github.com/dlclark/regexp2"

	"github.com/dshills/websymbols-mcp/pkg/types"
)

// Regex matches a JavaScript-flavoured regular expression anchored at the
// start of the slice.
type Regex struct {
	source        string
	caseSensitive bool
	re            *regexp2.Regexp
}

// NewRegex compiles expr in ECMAScript mode
func NewRegex(expr string, caseSensitive bool) (*Regex, error) {
	opts := regexp2.RegexOptions(regexp2.ECMAScript)
	if !caseSensitive {
		opts |= regexp2.IgnoreCase
	}
	re, err := regexp2.Compile(`^(?:`+expr+`)`, opts)
	if err != nil {
		return nil, fmt.Errorf("invalid name regex %q: %w", expr, err)
	}
	return &Regex{source: expr, caseSensitive: caseSensitive, re: re}, nil
}

func (p *Regex) StaticPrefixes() []string { return []string{""} }

func (p *Regex) IsStaticAndRequired() bool { return false }

func (p *Regex) Match(_ types.Symbol, _ []types.Symbol, _ ItemsProvider, params MatchParams, start, end int) []MatchResult {
	slice := params.Name[start:end]
	m, err := p.re.FindStringMatch(slice)
	if err != nil || m == nil || m.Index != 0 {
		return nil
	}
	stop := start + runeBytes(slice, m.Length)
	return []MatchResult{{Start: start, End: stop, Segments: []types.NameSegment{types.NewSegment(start, stop)}}}
}

// CompletionResults proposes nothing; a regular expression cannot be enumerated
func (p *Regex) CompletionResults(types.Symbol, []types.Symbol, ItemsProvider, CompletionParams, int, int) CompletionResults {
	return CompletionResults{Required: true}
}

func (p *Regex) String() string { return "/" + p.source + "/" }

// runeBytes returns the byte length of the first n runes of s. regexp2 reports
// rune offsets and decodes each invalid byte as one rune.
func runeBytes(s string, n int) int {
	i := 0
	for ; n > 0 && i < len(s); n-- {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return i
}
