package manifest

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"

	"github.com/dshills/websymbols-mcp/internal/webtypes"
	"github.com/dshills/websymbols-mcp/pkg/types"
)

// ErrInvalidManifest is returned when a file cannot be decoded as a manifest
var ErrInvalidManifest = errors.New("invalid web-types manifest")

// file name suffixes recognised as manifests during discovery
var manifestSuffixes = []string{
	"web-types.json",
	".web-types.json",
	".web-types.yaml",
	".web-types.yml",
}

// Match reports whether the file name looks like a web-types manifest
func Match(path string) bool {
	base := strings.ToLower(filepath.Base(path))
	for _, suffix := range manifestSuffixes {
		if base == suffix || strings.HasSuffix(base, suffix) {
			return true
		}
	}
	return false
}

// Result is the outcome of parsing one manifest file
type Result struct {
	Source   string
	Content  []byte
	Hash     [32]byte
	ModTime  time.Time
	Size     int64
	Manifest *webtypes.Manifest

	// Errors prevent the manifest from being used; Manifest is nil when set
	Errors []types.ParseError
	// Warnings describe parts of a usable manifest that will be ignored
	Warnings []types.ParseError
}

// HasErrors returns true if the manifest could not be decoded
func (r *Result) HasErrors() bool {
	return len(r.Errors) > 0
}

// Err returns the first decode error wrapped with ErrInvalidManifest, or nil
func (r *Result) Err() error {
	if !r.HasErrors() {
		return nil
	}
	return fmt.Errorf("%w: %s: %s", ErrInvalidManifest, r.Source, r.Errors[0].Message)
}

func (r *Result) addError(line, col int, msg string) {
	r.Errors = append(r.Errors, types.ParseError{File: r.Source, Line: line, Column: col, Message: msg})
}

func (r *Result) addWarning(msg string) {
	r.Warnings = append(r.Warnings, types.ParseError{File: r.Source, Message: msg})
}

// Parser reads and validates web-types manifests
type Parser struct {
	// Strict turns validation warnings into errors
	Strict bool
}

// New creates a new Parser instance
func New() *Parser {
	return &Parser{}
}

// ParseFile reads and parses the manifest at path. Decode failures are
// reported in the result; only I/O failures are returned as errors.
func (p *Parser) ParseFile(path string) (*Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	result := p.Parse(path, content)
	result.ModTime = info.ModTime()
	result.Size = info.Size()
	return result, nil
}

// Parse decodes content loaded from source
func (p *Parser) Parse(source string, content []byte) *Result {
	result := &Result{
		Source:  source,
		Content: content,
		Hash:    sha256.Sum256(content),
		Size:    int64(len(content)),
	}

	m, err := webtypes.Decode(content)
	if err != nil {
		var pe *types.ParseError
		if errors.As(err, &pe) {
			result.addError(pe.Line, pe.Column, pe.Message)
		} else {
			result.addError(0, 0, err.Error())
		}
		return result
	}

	validate(m, result)
	if p.Strict && len(result.Warnings) > 0 {
		result.Errors = append(result.Errors, result.Warnings...)
		result.Warnings = nil
		return result
	}
	result.Manifest = m
	return result
}

// validate records problems that make parts of the manifest unusable
func validate(m *webtypes.Manifest, result *Result) {
	if m.Name == "" {
		result.addWarning("manifest has no library name")
	}
	if m.Version != "" {
		if _, err := semver.NewVersion(m.Version); err != nil {
			result.addWarning(fmt.Sprintf("version %q is not a semantic version", m.Version))
		}
	}
	for _, qk := range m.Kinds() {
		for _, c := range m.Contributions[qk] {
			validateContribution(c, qk, qk.String(), result)
		}
	}
}

func validateContribution(c *webtypes.Contribution, qk types.QualifiedKind, path string, result *Result) {
	label := path + "/" + c.Name
	if c.Pattern != nil {
		label = path + "/<pattern>"
		if _, err := c.Pattern.Compile(qk.Namespace); err != nil {
			result.addWarning(fmt.Sprintf("%s: %v", label, err))
		}
	} else if c.Name == "" {
		result.addWarning(path + ": contribution has neither name nor pattern")
	}

	if c.Extends != nil {
		if _, err := webtypes.ParsePath(c.Extends.Path, qk.Namespace); err != nil {
			result.addWarning(fmt.Sprintf("%s: extends: %v", label, err))
		}
	}
	for _, nested := range sortedNested(c) {
		for _, child := range c.Contributions[nested] {
			validateContribution(child, nested, label+nested.String(), result)
		}
	}
}

func sortedNested(c *webtypes.Contribution) []types.QualifiedKind {
	out := make([]types.QualifiedKind, 0, len(c.Contributions))
	for qk := range c.Contributions {
		out = append(out, qk)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}
