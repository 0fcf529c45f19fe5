package heimer

import (
	"strings"
)

// StripCommentsAndWhitespace removes an inline comment and surrounding
// whitespace from a line. A comment starts at the first '#' not preceded by a
// backslash; "\#" stands for a literal '#'.
func StripCommentsAndWhitespace(line string) string {
	if strings.IndexByte(line, InlineComment) < 0 {
		return strings.TrimSpace(line)
	}
	var b strings.Builder
	for i := 0; i < len(line); i++ {
		ch := line[i]
		if ch == '\\' && i+1 < len(line) && line[i+1] == InlineComment {
			b.WriteByte(InlineComment)
			i++
			continue
		}
		if ch == InlineComment {
			break
		}
		b.WriteByte(ch)
	}
	return strings.TrimSpace(b.String())
}

// TagName returns the tag named by a stripped line such as "<body>".
func TagName(stripped string) (string, bool) {
	if len(stripped) < 3 || stripped[0] != '<' || stripped[len(stripped)-1] != '>' {
		return "", false
	}
	name := stripped[1 : len(stripped)-1]
	for _, tag := range Tags {
		if tag == name {
			return name, true
		}
	}
	return "", false
}

// TagInterval is the half-open line range [Begin, End) of a tag: Begin is the
// marker line, End the next marker or the end of input. Both are 0-based.
type TagInterval struct {
	Name  string
	Begin int
	End   int
}

// Contents returns the range of lines after the marker.
func (ti *TagInterval) Contents() (int, int) {
	return ti.Begin + 1, ti.End
}

// TagIntervals maps tag names to their intervals, remembering file order.
type TagIntervals struct {
	Order []*TagInterval
	index map[string]*TagInterval
}

func (ti *TagIntervals) Find(name string) *TagInterval {
	if ti == nil || ti.index == nil {
		return nil
	}
	return ti.index[name]
}

func (ti *TagIntervals) Has(name string) bool {
	return ti.Find(name) != nil
}

// Scanner holds a specification split into lines along with the stripped form
// of each line.
type Scanner struct {
	Lines    []string
	Stripped []string
}

func NewScanner(src string) *Scanner {
	lines := strings.Split(src, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	stripped := make([]string, len(lines))
	for i, line := range lines {
		stripped[i] = StripCommentsAndWhitespace(line)
	}
	return &Scanner{Lines: lines, Stripped: stripped}
}

func (s *Scanner) firstLineMarkerWithText() int {
	for marker, line := range s.Stripped {
		if line != "" {
			return marker
		}
	}
	return len(s.Stripped)
}

func (s *Scanner) nextTagLocationFromLineMarker(marker int) int {
	for ; marker < len(s.Stripped); marker++ {
		if _, ok := TagName(s.Stripped[marker]); ok {
			return marker
		}
	}
	return len(s.Stripped)
}

// IsBlank reports whether a raw line is empty or all whitespace. Comment-only
// lines are not blank.
func (s *Scanner) IsBlank(marker int) bool {
	return strings.TrimSpace(s.Lines[marker]) == ""
}

// ScanTags locates every tag interval. The returned bool is false when the
// scan failed fatally (empty input, or content before the first tag); duplicate
// tags are added to diags without stopping the scan.
func (s *Scanner) ScanTags(diags *Diagnostics) (*TagIntervals, bool) {
	tags := &TagIntervals{index: make(map[string]*TagInterval)}
	begin := s.firstLineMarkerWithText()
	if begin >= len(s.Stripped) {
		diags.Add(StructuralError, "Input file empty or commented out.")
		return tags, false
	}
	if _, ok := TagName(s.Stripped[begin]); !ok {
		diags.Add(StructuralError, "Expected tag declaration.", begin)
		return tags, false
	}
	for begin < len(s.Stripped) {
		name, _ := TagName(s.Stripped[begin])
		end := s.nextTagLocationFromLineMarker(begin + 1)
		if prev, ok := tags.index[name]; ok {
			diags.Add(StructuralError, "Duplicate tag name.", prev.Begin, begin)
		} else {
			ti := &TagInterval{Name: name, Begin: begin, End: end}
			tags.index[name] = ti
			tags.Order = append(tags.Order, ti)
			Debug("tag", "name", name, "begin", begin+1, "end", end+1)
		}
		begin = end
	}
	return tags, true
}
