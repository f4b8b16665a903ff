package core

import "strings"

// lineIndentAt returns the leading whitespace of the line containing offset.
func lineIndentAt(text string, offset int) string {
	if offset > len(text) {
		offset = len(text)
	}
	start := strings.LastIndexByte(text[:offset], '\n') + 1
	end := start
	for end < len(text) && (text[end] == ' ' || text[end] == '\t') {
		end++
	}
	return text[start:end]
}

// detectIndentUnit finds the per-level indent step used inside a span of
// text, falling back to four spaces.
func detectIndentUnit(text string) string {
	lines := strings.Split(text, "\n")
	var prev string
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		cur := leadingWhitespace(line)
		if len(cur) > len(prev) && strings.HasPrefix(cur, prev) {
			return cur[len(prev):]
		}
		prev = cur
	}
	return "    "
}

func leadingWhitespace(line string) string {
	for i := 0; i < len(line); i++ {
		if line[i] != ' ' && line[i] != '\t' {
			return line[:i]
		}
	}
	return line
}

// reindent shifts every line of body so the shallowest line sits at target.
func reindent(body, target string) string {
	lines := strings.Split(body, "\n")

	base := ""
	found := false
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		ws := leadingWhitespace(line)
		if !found || len(ws) < len(base) {
			base = ws
			found = true
		}
	}

	out := make([]string, len(lines))
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			out[i] = ""
			continue
		}
		trimmed := strings.TrimPrefix(line, base)
		out[i] = target + trimmed
	}
	return strings.Join(out, "\n")
}

// splice replaces text[start:end] with replacement.
func splice(text string, start, end int, replacement string) string {
	if start < 0 {
		start = 0
	}
	if end > len(text) {
		end = len(text)
	}
	return text[:start] + replacement + text[end:]
}
