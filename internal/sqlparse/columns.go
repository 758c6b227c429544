package sqlparse

import (
	"regexp"
	"strings"

	"github.com/applycrypto/engine/internal/model"
)

var placeholderRe = regexp.MustCompile(`[#$]\{[^}]*\}`)

// StripPlaceholders replaces MyBatis parameter placeholders (#{...},
// ${...}) with a neutral token so they never get mistaken for column
// references during extraction.
func StripPlaceholders(sql string) string {
	return placeholderRe.ReplaceAllString(sql, "?")
}

var (
	selectProjectionRe = regexp.MustCompile(`(?is)\bSELECT\s+(?:DISTINCT\s+)?(.*?)\s+FROM\b`)
	insertColumnsRe    = regexp.MustCompile(`(?is)INSERT\s+INTO\s+\S+\s*\(([^)]*)\)`)
	updateSetClauseRe  = regexp.MustCompile(`(?is)\bSET\s+(.*?)(?:\bWHERE\b|$)`)
)

// ExtractColumns reads the SELECT projection list, INSERT column list, or
// UPDATE SET clause out of sql (whichever applies to queryType), with
// placeholders already stripped per spec §4.4.
func ExtractColumns(sql string, queryType model.QueryType) []string {
	clean := StripPlaceholders(sql)

	switch queryType {
	case model.QuerySelect:
		m := selectProjectionRe.FindStringSubmatch(clean)
		if m == nil {
			return nil
		}
		return columnsFromProjection(m[1])
	case model.QueryInsert:
		m := insertColumnsRe.FindStringSubmatch(clean)
		if m == nil {
			return nil
		}
		return columnsFromList(m[1])
	case model.QueryUpdate:
		m := updateSetClauseRe.FindStringSubmatch(clean)
		if m == nil {
			return nil
		}
		return columnsFromAssignments(m[1])
	default:
		return nil
	}
}

func columnsFromProjection(projection string) []string {
	var cols []string
	for _, item := range splitTopLevel(projection) {
		item = strings.TrimSpace(item)
		if item == "" || item == "*" {
			continue
		}
		if idx := strings.LastIndex(strings.ToUpper(item), " AS "); idx >= 0 {
			item = strings.TrimSpace(item[idx+4:])
		} else if fields := strings.Fields(item); len(fields) == 2 {
			// "expr alias" without an explicit AS
			item = fields[1]
		}
		if idx := strings.LastIndex(item, "."); idx >= 0 {
			item = item[idx+1:]
		}
		item = strings.Trim(item, "`\"[] ")
		if item != "" && !strings.ContainsAny(item, "()") {
			cols = append(cols, item)
		}
	}
	return cols
}

func columnsFromList(list string) []string {
	var cols []string
	for _, item := range splitTopLevel(list) {
		item = strings.Trim(strings.TrimSpace(item), "`\"[] ")
		if item != "" {
			cols = append(cols, item)
		}
	}
	return cols
}

func columnsFromAssignments(clause string) []string {
	var cols []string
	for _, item := range splitTopLevel(clause) {
		eq := strings.Index(item, "=")
		if eq < 0 {
			continue
		}
		col := strings.Trim(strings.TrimSpace(item[:eq]), "`\"[] ")
		if col != "" {
			cols = append(cols, col)
		}
	}
	return cols
}

// splitTopLevel splits s on commas that are not nested inside parentheses.
func splitTopLevel(s string) []string {
	var parts []string
	depth := 0
	start := 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}
