package xmlmapper

import (
	"fmt"
	"os"

	"github.com/applycrypto/engine/internal/model"
)

var statementTags = map[string]model.QueryType{
	"select": model.QuerySelect,
	"insert": model.QueryInsert,
	"update": model.QueryUpdate,
	"delete": model.QueryDelete,
}

// Parser parses MyBatis mapper XML files.
type Parser struct{}

// New creates a mapper Parser.
func New() *Parser { return &Parser{} }

// ParseFile reads and parses the mapper XML file at path.
func (p *Parser) ParseFile(path string) (*model.SqlExtractionOutput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return p.Parse(path, data)
}

// Parse parses in-memory mapper XML already associated with path.
func (p *Parser) Parse(path string, data []byte) (*model.SqlExtractionOutput, error) {
	root, err := parseRoot(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse mapper xml %s: %w", path, err)
	}
	if root.tag != "mapper" {
		return nil, fmt.Errorf("%s: expected <mapper> root element, got <%s>", path, root.tag)
	}

	namespace, _ := root.attr("namespace")

	fragments := make(map[string]*node)
	for _, frag := range root.children("sql") {
		if id, ok := frag.attr("id"); ok {
			fragments[id] = frag
		}
	}
	resolver := newResolver(fragments)

	out := &model.SqlExtractionOutput{File: path}

	for tag, queryType := range statementTags {
		for _, stmt := range root.children(tag) {
			id, _ := stmt.attr("id")
			sql := resolver.Resolve(stmt)

			strategySpecific := map[string]string{"namespace": namespace}
			if rt, ok := stmt.attr("resultType"); ok {
				strategySpecific["result_type"] = rt
			}
			if rm, ok := stmt.attr("resultMap"); ok {
				strategySpecific["result_map"] = rm
			}
			if pt, ok := stmt.attr("parameterType"); ok {
				strategySpecific["parameter_type"] = pt
			}

			out.SqlQueries = append(out.SqlQueries, model.SqlQuery{
				ID:               namespace + "." + id,
				QueryType:        queryType,
				SQL:              sql,
				FilePath:         path,
				StrategySpecific: strategySpecific,
			})
		}
	}

	return out, nil
}
