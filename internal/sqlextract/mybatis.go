package sqlextract

import (
	"strings"

	"github.com/applycrypto/engine/internal/model"
	"github.com/applycrypto/engine/internal/xmlmapper"
)

// MyBatisStrategy delegates to xmlmapper.Parser for mapper XML files. Java
// files carrying the Mapper interface contribute no SQL of their own —
// the statements live entirely in the paired XML — so they yield an empty
// result rather than an error.
type MyBatisStrategy struct{}

func (s *MyBatisStrategy) Extract(path string, source []byte, ast *model.FileAst) (*model.SqlExtractionOutput, error) {
	if !strings.HasSuffix(strings.ToLower(path), ".xml") {
		return &model.SqlExtractionOutput{File: path}, nil
	}
	return xmlmapper.New().Parse(path, source)
}
