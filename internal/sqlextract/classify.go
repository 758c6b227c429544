package sqlextract

import (
	"strings"

	"github.com/applycrypto/engine/internal/model"
)

// classifyQueryType guesses a query's statement kind from its leading
// keyword, defaulting to SELECT for JPQL/derived-query text that doesn't
// start with an obvious DML keyword.
func classifyQueryType(sql string) model.QueryType {
	upper := strings.ToUpper(strings.TrimSpace(sql))
	switch {
	case strings.HasPrefix(upper, "INSERT"):
		return model.QueryInsert
	case strings.HasPrefix(upper, "UPDATE"):
		return model.QueryUpdate
	case strings.HasPrefix(upper, "DELETE"):
		return model.QueryDelete
	default:
		return model.QuerySelect
	}
}
