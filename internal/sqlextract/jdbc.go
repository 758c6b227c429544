package sqlextract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/applycrypto/engine/internal/model"
)

// jdbcMarkers are method-name/type fragments that flag a method body as
// likely building a JDBC-executed SQL string, per spec §4.5's "method
// name heuristics plus argument position" rule.
var jdbcMarkers = []string{
	"jdbcTemplate", "JdbcTemplate", "NamedParameterJdbcTemplate",
	".executeQuery(", ".executeUpdate(", ".execute(",
	".query(", ".queryForObject(", ".queryForList(", ".queryForMap(",
	".update(", ".batchUpdate(",
}

var stringLiteralRe = regexp.MustCompile(`"((?:[^"\\]|\\.)*)"`)

// JdbcStrategy scans Java method bodies for string-literal chains handed
// to a JdbcTemplate/Statement-shaped call, per spec §4.5.
type JdbcStrategy struct{}

func (s *JdbcStrategy) Extract(path string, source []byte, ast *model.FileAst) (*model.SqlExtractionOutput, error) {
	out := &model.SqlExtractionOutput{File: path}
	if ast == nil {
		return out, nil
	}

	lines := strings.Split(string(source), "\n")
	for _, class := range ast.Classes {
		collectJdbcQueries(class, lines, out)
	}
	return out, nil
}

func collectJdbcQueries(class *model.ClassInfo, lines []string, out *model.SqlExtractionOutput) {
	for _, m := range class.Methods {
		body := methodBody(lines, m.LineNumber, m.EndLineNumber)
		queries := extractFromStatements(body)
		for i, sql := range queries {
			id := m.QualifiedName()
			if len(queries) > 1 {
				id = fmt.Sprintf("%s#%d", id, i+1)
			}
			out.SqlQueries = append(out.SqlQueries, model.SqlQuery{
				ID:        id,
				QueryType: classifyQueryType(sql),
				SQL:       sql,
				FilePath:  class.FilePath,
			})
		}
	}
	for _, inner := range class.InnerClasses {
		collectJdbcQueries(inner, lines, out)
	}
}

func methodBody(lines []string, startLine, endLine int) string {
	if startLine < 1 || startLine > len(lines) {
		return ""
	}
	if endLine < startLine || endLine > len(lines) {
		endLine = len(lines)
	}
	return strings.Join(lines[startLine-1:endLine], "\n")
}

// extractFromStatements returns nothing unless the method body mentions a
// JDBC marker. It then splits the body into ";"-terminated statements and,
// for each statement that contains a SQL-keyword string literal,
// concatenates that statement's literal contents into one flattened SQL
// string, so a SQL string assigned to a variable and later handed to a
// JDBC call is found.
func extractFromStatements(body string) []string {
	if !mentionsJdbcMarker(body) {
		return nil
	}
	var results []string
	for _, stmt := range strings.Split(body, ";") {
		literals := stringLiteralRe.FindAllStringSubmatch(stmt, -1)
		if len(literals) == 0 {
			continue
		}

		var parts []string
		sawKeyword := false
		for _, lit := range literals {
			content := unescapeJavaString(lit[1])
			if containsSQLKeyword(content) {
				sawKeyword = true
			}
			parts = append(parts, content)
		}
		if !sawKeyword {
			continue
		}

		joined := collapseSpaces(strings.Join(parts, " "))
		if joined != "" {
			results = append(results, joined)
		}
	}
	return results
}

func mentionsJdbcMarker(stmt string) bool {
	for _, marker := range jdbcMarkers {
		if strings.Contains(stmt, marker) {
			return true
		}
	}
	return false
}

var sqlKeywordRe = regexp.MustCompile(`(?i)\b(SELECT|INSERT|UPDATE|DELETE)\b`)

func containsSQLKeyword(s string) bool {
	return sqlKeywordRe.MatchString(s)
}

func unescapeJavaString(s string) string {
	r := strings.NewReplacer(`\"`, `"`, `\n`, " ", `\t`, " ", `\\`, `\`)
	return r.Replace(s)
}

var spacesRe = regexp.MustCompile(`\s+`)

func collapseSpaces(s string) string {
	return strings.TrimSpace(spacesRe.ReplaceAllString(s, " "))
}
