package tableaccess

import "strings"

// MyBatisSink resolves a MyBatis SqlQuery's sink to "MapperInterface.id",
// the Mapper-interface method that the namespace names, per spec §4.7
// step 2. The mapper namespace is conventionally the interface's fully
// qualified name, so its last segment is the simple class name.
func MyBatisSink(namespace, queryID string) string {
	simpleClass := namespace
	if idx := strings.LastIndex(namespace, "."); idx >= 0 {
		simpleClass = namespace[idx+1:]
	}
	id := queryID
	if idx := strings.LastIndex(queryID, "."); idx >= 0 {
		id = queryID[idx+1:]
	}
	return simpleClass + "." + id
}

// MethodSink resolves a JDBC/JPA SqlQuery's sink: query.ID is already the
// declaring method's qualified name, possibly with a "#N" disambiguation
// suffix for a method that yielded multiple statements.
func MethodSink(queryID string) string {
	if idx := strings.Index(queryID, "#"); idx >= 0 {
		return queryID[:idx]
	}
	return queryID
}
