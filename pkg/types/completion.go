package types

// CompletionItem is a single code completion proposal.
// Offset is the position in the completed name where Name is inserted.
type CompletionItem struct {
	Name        string
	DisplayName string
	Offset      int
	Symbols     []Symbol
	Priority    *Priority
	Proximity   *int
	Deprecated  bool

	// StopSequencePatternEvaluation tells an enclosing sequence pattern not to
	// propose completions for the elements that follow this one.
	StopSequencePatternEvaluation bool
}

// WithOffset returns a copy of the item placed at offset
func (c CompletionItem) WithOffset(offset int) CompletionItem {
	c.Offset = offset
	return c
}

// WithStopSequencePatternEvaluation returns a copy of the item with the stop flag set to stop
func (c CompletionItem) WithStopSequencePatternEvaluation(stop bool) CompletionItem {
	c.StopSequencePatternEvaluation = stop
	return c
}

// NewCompletionItem builds a completion item for sym offered as name
func NewCompletionItem(name string, offset int, sym Symbol) CompletionItem {
	item := CompletionItem{Name: name, Offset: offset}
	if sym != nil {
		item.Symbols = []Symbol{sym}
		item.Priority = sym.Priority()
		item.Proximity = sym.Proximity()
		item.Deprecated = sym.Deprecated()
	}
	return item
}
