// Package sqlparse extracts table and column names from flattened SQL
// text using the regex-heavy approach spec §9 calls out as acceptable and
// intended, rather than a full SQL parser: the inputs are already a
// superset approximation (see xmlmapper's dynamic-SQL flattening), so a
// full parser would gain little precision at a lot of cost.
package sqlparse

import (
	"regexp"
	"strings"
)

// reservedWords excludes tokens that a naive FROM/JOIN/INTO/UPDATE regex
// would otherwise mistake for a table name (subquery aliases, keywords
// that happen to precede an identifier-shaped token).
var reservedWords = map[string]bool{
	"SELECT": true, "WHERE": true, "AND": true, "OR": true, "ON": true,
	"AS": true, "SET": true, "VALUES": true, "GROUP": true, "ORDER": true,
	"BY": true, "HAVING": true, "LIMIT": true, "OFFSET": true, "UNION": true,
	"ALL": true, "DISTINCT": true, "INNER": true, "OUTER": true, "LEFT": true,
	"RIGHT": true, "FULL": true, "CROSS": true, "JOIN": true, "DUAL": true,
	"NULL": true, "NOT": true, "IN": true, "EXISTS": true, "BETWEEN": true,
	"LIKE": true, "IS": true, "CASE": true, "WHEN": true, "THEN": true,
	"ELSE": true, "END": true,
}

var tableRefRe = regexp.MustCompile(`\b(?:FROM|JOIN|INTO|UPDATE)\s+([A-Z_][A-Z0-9_]*(?:\s*,\s*[A-Z_][A-Z0-9_]*)*)`)

// ExtractTables returns the set of table names referenced by sql, which
// must already be upper-cased and whitespace-normalized.
func ExtractTables(sql string) []string {
	seen := make(map[string]bool)
	var tables []string

	for _, m := range tableRefRe.FindAllStringSubmatch(sql, -1) {
		for _, candidate := range strings.Split(m[1], ",") {
			name := strings.TrimSpace(candidate)
			// A bare identifier immediately followed by another identifier
			// is an alias ("FROM USERS U"); keep only the first token.
			if idx := strings.IndexAny(name, " \t"); idx >= 0 {
				name = name[:idx]
			}
			if name == "" || reservedWords[name] {
				continue
			}
			if !seen[name] {
				seen[name] = true
				tables = append(tables, name)
			}
		}
	}

	return tables
}

// NormalizeForExtraction upper-cases sql and collapses whitespace, the
// form both ExtractTables and ExtractColumns expect.
func NormalizeForExtraction(sql string) string {
	collapsed := strings.Join(strings.Fields(sql), " ")
	return strings.ToUpper(collapsed)
}
