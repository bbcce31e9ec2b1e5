// Package delta reads the editor's rich-text delta. Only plain string
// inserts carry text; embeds, retains, deletes and formatting are ignored.
package delta

import "strings"

// Flatten splits every string insert on line feeds and returns the pieces
// in order, so an insert never shares a line with its neighbours. Empty
// lines are kept. A payload that is not shaped like a delta yields no lines.
func Flatten(content any) []string {
	lines := []string{}
	for _, op := range opsOf(content) {
		fields, ok := op.(map[string]any)
		if !ok {
			continue
		}
		if text, ok := fields["insert"].(string); ok {
			lines = append(lines, strings.Split(text, "\n")...)
		}
	}
	return lines
}

// NonBlank drops lines that contain only whitespace. Remaining lines are
// returned untrimmed, in order.
func NonBlank(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}

func opsOf(content any) []any {
	doc, ok := content.(map[string]any)
	if !ok {
		return nil
	}
	ops, _ := doc["ops"].([]any)
	return ops
}
