package sqlextract

import "github.com/applycrypto/engine/internal/model"

// JpaStrategy reads @Query-annotated interface methods. Query id is the
// method's qualified name, matching how the table-access analyzer resolves
// a table access back to its sink method (spec §4.7 step 2).
type JpaStrategy struct{}

func (s *JpaStrategy) Extract(path string, source []byte, ast *model.FileAst) (*model.SqlExtractionOutput, error) {
	out := &model.SqlExtractionOutput{File: path}
	if ast == nil {
		return out, nil
	}

	for _, class := range ast.Classes {
		collectJpaQueries(class, out)
	}
	return out, nil
}

func collectJpaQueries(class *model.ClassInfo, out *model.SqlExtractionOutput) {
	for _, m := range class.Methods {
		anno := model.GetAnnotation(m.Annotations, "Query")
		if anno == nil {
			continue
		}
		sql := anno.Value
		if sql == "" {
			sql = anno.Attributes["value"]
		}
		if sql == "" {
			continue
		}
		out.SqlQueries = append(out.SqlQueries, model.SqlQuery{
			ID:        m.QualifiedName(),
			QueryType: classifyQueryType(sql),
			SQL:       sql,
			FilePath:  class.FilePath,
			StrategySpecific: map[string]string{
				"native": boolAttr(anno, "nativeQuery"),
			},
		})
	}
	for _, inner := range class.InnerClasses {
		collectJpaQueries(inner, out)
	}
}

func boolAttr(anno *model.Annotation, key string) string {
	if anno.Attributes == nil {
		return ""
	}
	return anno.Attributes[key]
}
