// Package sqlextract implements the SqlExtractor strategy family of
// spec §4.5: one SQL-extraction strategy per sql_wrapping_type, sharing
// the common contract Extract(file) -> SqlExtractionOutput.
package sqlextract

import "github.com/applycrypto/engine/internal/model"

// Strategy extracts SQL statements from one source file. ast is nil for
// every file without a parsed Java AST: XML mappers, other non-Java files,
// and Java files whose parse stage failed.
type Strategy interface {
	Extract(path string, source []byte, ast *model.FileAst) (*model.SqlExtractionOutput, error)
}

// New returns the Strategy for the configured sql_wrapping_type. Callers
// pass the config string value directly (spec §4.1's SqlWrappingType enum).
func New(wrappingType string) Strategy {
	switch wrappingType {
	case "jdbc", "mybatis_ccs_banka", "banka", "bnk":
		return &JdbcStrategy{}
	case "jpa":
		return &JpaStrategy{}
	default:
		return &MyBatisStrategy{}
	}
}
