// Package compositor merges formatted text fragments and keeps formatting
// spans aligned with the text they annotate.
//
// Offsets are measured in UTF-16 code units, the unit the messaging platform
// uses for message entities. Every transformation of formatted text in the
// gateway goes through Join, Prefix or Truncate; spans are never copied across
// a text change without the matching shift.
package compositor

import (
	"strings"
	"unicode/utf16"

	"github.com/Conte777/moderation-bot/internal/domain/moderation/entities"
)

// Separator is placed between the bodies of joined segments
const Separator = "\n\n"

const ellipsis = "…"

// Segment is one piece of formatted text
type Segment struct {
	Text  string
	Spans []entities.Span
}

// Length returns the length of s in UTF-16 code units
func Length(s string) int {
	n := 0
	for _, r := range s {
		l := utf16.RuneLen(r)
		if l < 0 {
			l = 1
		}
		n += l
	}
	return n
}

// Join concatenates the non-empty segment bodies with sep between them and
// re-emits every span shifted by the length of everything before its segment.
// Empty segments contribute neither text nor a separator. Spans that fall
// outside their own segment are dropped.
func Join(segments []Segment, sep string) (string, []entities.Span) {
	var (
		b      strings.Builder
		spans  []entities.Span
		offset int
		first  = true
	)
	sepLen := Length(sep)

	for _, seg := range segments {
		if seg.Text == "" {
			continue
		}
		if !first {
			b.WriteString(sep)
			offset += sepLen
		}
		first = false

		segLen := Length(seg.Text)
		for _, span := range seg.Spans {
			if !fits(span, segLen) {
				continue
			}
			spans = append(spans, span.Shift(offset))
		}

		b.WriteString(seg.Text)
		offset += segLen
	}

	return b.String(), spans
}

// Prefix prepends prefix to text and shifts every span by its length
func Prefix(text string, spans []entities.Span, prefix string) (string, []entities.Span) {
	if prefix == "" {
		return text, cloneSpans(spans)
	}

	delta := Length(prefix)
	var shifted []entities.Span
	for _, span := range spans {
		shifted = append(shifted, span.Shift(delta))
	}
	return prefix + text, shifted
}

// Cover returns a span of the given type over the whole text
func Cover(text string, spanType string) entities.Span {
	return entities.Span{Type: spanType, Offset: 0, Length: Length(text)}
}

// Truncate shortens text to at most limit UTF-16 units, ending it with an
// ellipsis. Spans past the cut are dropped and spans crossing it are clamped.
func Truncate(text string, spans []entities.Span, limit int) (string, []entities.Span) {
	if Length(text) <= limit {
		return text, cloneSpans(spans)
	}

	units := utf16.Encode([]rune(text))
	cut := limit - Length(ellipsis)
	if cut < 0 {
		cut = 0
	}
	// keep surrogate pairs whole
	if cut > 0 && utf16.IsSurrogate(rune(units[cut-1])) && units[cut-1] < 0xDC00 {
		cut--
	}

	var kept []entities.Span
	for _, span := range spans {
		if span.Offset >= cut {
			continue
		}
		if span.Offset+span.Length > cut {
			span.Length = cut - span.Offset
		}
		kept = append(kept, span)
	}

	return string(utf16.Decode(units[:cut])) + ellipsis, kept
}

// Slice returns the substring of text at offset/length UTF-16 units.
// Out-of-range requests return an empty string.
func Slice(text string, offset, length int) string {
	units := utf16.Encode([]rune(text))
	if offset < 0 || length < 0 || offset+length > len(units) {
		return ""
	}
	return string(utf16.Decode(units[offset : offset+length]))
}

func fits(span entities.Span, textLen int) bool {
	return span.Length > 0 && span.Offset >= 0 && span.Offset+span.Length <= textLen
}

func cloneSpans(spans []entities.Span) []entities.Span {
	if len(spans) == 0 {
		return nil
	}
	return append([]entities.Span(nil), spans...)
}
