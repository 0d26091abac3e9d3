package enricher

import (
	"encoding/csv"
	"regexp"
	"strings"
)

var (
	fencedRe = regexp.MustCompile("(?s)```([A-Za-z0-9_+.-]*)[ \t]*\n(.*?)```")
	taggedRe = regexp.MustCompile(`(?s)\[code(?:=([A-Za-z0-9_+.-]+))?\](.*?)\[/code\]`)
	kvRe     = regexp.MustCompile(`^\s*([A-Za-z][\w .%/()-]*?)\s*:\s+(\S.*?)\s*$`)
)

const codeOmitted = "(code sample omitted)"

// extractCode returns the first fenced block or [code] tag of text.
func extractCode(text string) (lang, body string, ok bool) {
	fi := fencedRe.FindStringSubmatchIndex(text)
	ti := taggedRe.FindStringSubmatchIndex(text)
	switch {
	case fi != nil && (ti == nil || fi[0] <= ti[0]):
		lang, body = text[fi[2]:fi[3]], text[fi[4]:fi[5]]
	case ti != nil:
		if ti[2] >= 0 {
			lang = text[ti[2]:ti[3]]
		}
		body = text[ti[4]:ti[5]]
	default:
		return "", "", false
	}
	body = strings.Trim(body, "\n")
	if strings.TrimSpace(body) == "" {
		return "", "", false
	}
	return lang, body, true
}

func stripCode(text string) string {
	text = fencedRe.ReplaceAllString(text, codeOmitted)
	return taggedRe.ReplaceAllString(text, codeOmitted)
}

func fence(lang, body string) string {
	return "```" + lang + "\n" + body + "\n```"
}

// extractTable recognizes at least two "key: value" lines, or a CSV block
// of at least two rows sharing a column count greater than one. The first
// returned row is the header.
func extractTable(text string) ([][]string, bool) {
	var kv [][]string
	for _, line := range strings.Split(text, "\n") {
		if m := kvRe.FindStringSubmatch(line); m != nil {
			kv = append(kv, []string{m[1], m[2]})
		}
	}
	if len(kv) >= 2 {
		return append([][]string{{"Metric", "Value"}}, kv...), true
	}
	return extractCSV(text)
}

func extractCSV(text string) ([][]string, bool) {
	var block []string
	best := []string(nil)
	flush := func() {
		if len(block) > len(best) {
			best = block
		}
		block = nil
	}
	for _, line := range strings.Split(text, "\n") {
		if strings.Count(line, ",") >= 1 {
			block = append(block, line)
			continue
		}
		flush()
	}
	flush()
	if len(best) < 2 {
		return nil, false
	}
	r := csv.NewReader(strings.NewReader(strings.Join(best, "\n")))
	r.TrimLeadingSpace = true
	rows, err := r.ReadAll()
	if err != nil || len(rows[0]) < 2 {
		return nil, false
	}
	return rows, true
}

func renderTable(rows [][]string) string {
	var b strings.Builder
	writeRow := func(cells []string) {
		b.WriteString("|")
		for _, c := range cells {
			b.WriteString(" ")
			b.WriteString(strings.ReplaceAll(strings.TrimSpace(c), "|", `\|`))
			b.WriteString(" |")
		}
		b.WriteString("\n")
	}
	writeRow(rows[0])
	b.WriteString("|")
	for range rows[0] {
		b.WriteString(" --- |")
	}
	b.WriteString("\n")
	for _, r := range rows[1:] {
		writeRow(r)
	}
	return strings.TrimSuffix(b.String(), "\n")
}
