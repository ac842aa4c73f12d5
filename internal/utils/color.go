package utils

// ColorInfo is the display form of an Apple Books highlight color.
type ColorInfo struct {
	Name  string
	Glyph string
}

// UnknownColor is used for codes outside the table and for missing codes.
var UnknownColor = ColorInfo{Name: "Unknown color", Glyph: "⚪"}

// ColorTable maps annotation color codes to their display form.
// A ColorTable is immutable once built.
type ColorTable struct {
	entries  map[int]ColorInfo
	fallback ColorInfo
}

// NewColorTable builds a table from entries; codes not in entries resolve
// to fallback.
func NewColorTable(entries map[int]ColorInfo, fallback ColorInfo) ColorTable {
	copied := make(map[int]ColorInfo, len(entries))
	for code, info := range entries {
		copied[code] = info
	}
	return ColorTable{entries: copied, fallback: fallback}
}

// DefaultColorTable returns the Apple Books palette.
func DefaultColorTable() ColorTable {
	return NewColorTable(map[int]ColorInfo{
		0: {Name: "Yellow", Glyph: "🟡"},
		1: {Name: "Green", Glyph: "🟢"},
		2: {Name: "Blue", Glyph: "🔵"},
		3: {Name: "Pink", Glyph: "🩷"},
		4: {Name: "Purple", Glyph: "🟣"},
		5: {Name: "Gray", Glyph: "⚫"},
	}, UnknownColor)
}

// Lookup returns the display form of code. A nil code is unknown.
func (t ColorTable) Lookup(code *int) ColorInfo {
	if code == nil {
		return t.fallback
	}
	if info, ok := t.entries[*code]; ok {
		return info
	}
	return t.fallback
}
