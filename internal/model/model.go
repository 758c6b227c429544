// Package model defines the data entities shared across the collector,
// parsers, call-graph builder, table-access analyzer, and context batcher.
// Every type here is a plain value type: components that produce a value
// own it; downstream components hold references (paths, qualified names),
// never pointers into another component's internal state.
package model

import (
	"strconv"
	"time"
)

// SourceFile is one file discovered by the collector.
type SourceFile struct {
	AbsolutePath string          `json:"absolute_path"`
	RelativePath string          `json:"relative_path"`
	Filename     string          `json:"filename"`
	Extension    string          `json:"extension"`
	Size         int64           `json:"size"`
	ModifiedTime time.Time       `json:"modified_time"`
	Tags         map[string]bool `json:"tags"`
}

// AddTag records a table name (or other marker) against the file.
func (f *SourceFile) AddTag(tag string) {
	if f.Tags == nil {
		f.Tags = make(map[string]bool)
	}
	f.Tags[tag] = true
}

// AccessModifier is a Java visibility modifier.
type AccessModifier string

const (
	AccessPublic    AccessModifier = "public"
	AccessProtected AccessModifier = "protected"
	AccessPrivate   AccessModifier = "private"
	AccessPackage   AccessModifier = "package" // no explicit modifier
)

// Annotation is a Java annotation use-site, name only plus raw attribute text.
type Annotation struct {
	Name       string            `json:"name"`
	Value      string            `json:"value,omitempty"`      // single-value shorthand, e.g. @RequestMapping("/x")
	Attributes map[string]string `json:"attributes,omitempty"` // name=value pairs
}

// HasAnnotation reports whether name appears in annos.
func HasAnnotation(annos []Annotation, name string) bool {
	for _, a := range annos {
		if a.Name == name {
			return true
		}
	}
	return false
}

// GetAnnotation returns the first annotation named name, or nil.
func GetAnnotation(annos []Annotation, name string) *Annotation {
	for i := range annos {
		if annos[i].Name == name {
			return &annos[i]
		}
	}
	return nil
}

// FieldInfo is a class or interface field declaration.
type FieldInfo struct {
	Name               string       `json:"name"`
	Type               string       `json:"type"`
	Annotations        []Annotation `json:"annotations,omitempty"`
	AccessModifier      AccessModifier `json:"access_modifier"`
	IsStatic           bool         `json:"is_static"`
	IsFinal            bool         `json:"is_final"`
	InitializerAbsent  bool         `json:"initializer_absent"`
	StartLine          int          `json:"start_line"`
}

// Parameter is a method parameter.
type Parameter struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	IsVarargs  bool   `json:"is_varargs"`
}

// CallSite is an unresolved textual call captured from a method body.
type CallSite struct {
	Receiver   string `json:"receiver,omitempty"` // "", "this", a field/var name, or a type name
	MethodName string `json:"method_name"`
	Line       int    `json:"line"`
}

// MethodInfo is a method or constructor declaration.
type MethodInfo struct {
	Name           string       `json:"name"`
	ReturnType     string       `json:"return_type"`
	Parameters     []Parameter  `json:"parameters"`
	AccessModifier AccessModifier `json:"access_modifier"`
	ClassName      string       `json:"class_name"`
	FilePath       string       `json:"file_path"`
	IsStatic       bool         `json:"is_static"`
	IsAbstract     bool         `json:"is_abstract"`
	Annotations    []Annotation `json:"annotations,omitempty"`
	Exceptions     []string     `json:"exceptions,omitempty"`
	LineNumber     int          `json:"line_number"`
	EndLineNumber  int          `json:"end_line_number"`
	MethodCalls    []CallSite   `json:"method_calls,omitempty"`
	LocalVars      map[string]string `json:"local_vars,omitempty"` // varName -> declared type, for call-site resolution
}

// QualifiedName returns "ClassName.MethodName".
func (m MethodInfo) QualifiedName() string {
	return m.ClassName + "." + m.Name
}

// Signature returns a name+arity key used for override-aware matching,
// e.g. "findById/1".
func (m MethodInfo) Signature() string {
	return m.Name + "/" + strconv.Itoa(len(m.Parameters))
}

// ClassInfo is a top-level or nested class/interface/enum declaration.
type ClassInfo struct {
	Name           string       `json:"name"`
	Package        string       `json:"package"`
	Superclass     string       `json:"superclass,omitempty"`
	Interfaces     []string     `json:"interfaces,omitempty"`
	FilePath       string       `json:"file_path"`
	AccessModifier AccessModifier `json:"access_modifier"`
	Annotations    []Annotation `json:"annotations,omitempty"`
	Imports        []string     `json:"imports,omitempty"`
	Fields         []FieldInfo  `json:"fields,omitempty"`
	Methods        []MethodInfo `json:"methods,omitempty"`
	InnerClasses   []*ClassInfo `json:"inner_classes,omitempty"`
	IsInterface    bool         `json:"is_interface"`
	StartLine      int          `json:"start_line"`
	EndLine        int          `json:"end_line"`
}

// FullyQualifiedName returns "package.Name".
func (c ClassInfo) FullyQualifiedName() string {
	if c.Package == "" {
		return c.Name
	}
	return c.Package + "." + c.Name
}

// ParseQuality marks whether a file's AST came from the grammar or the
// regex fallback. Downstream code must not conflate the two: a Degraded
// result carries best-effort names only and no reliable call sites.
type ParseQuality string

const (
	ParseQualityParsed   ParseQuality = "parsed"
	ParseQualityDegraded ParseQuality = "degraded"
)

// FileAst is the parser's per-file output.
type FileAst struct {
	FilePath string       `json:"file_path"`
	Package  string       `json:"package"`
	Imports  []string     `json:"imports"`
	Classes  []*ClassInfo `json:"classes"`
	Quality  ParseQuality `json:"quality"`
	Error    string       `json:"error,omitempty"`
}

// CallRelation is a resolved edge in the call graph.
type CallRelation struct {
	Caller     string `json:"caller"`      // qualified method, "Class.method"
	Callee     string `json:"callee"`      // qualified method, or a textual signature if unresolved
	CallerFile string `json:"caller_file"`
	CalleeFile string `json:"callee_file,omitempty"`
	Line       int    `json:"line,omitempty"`
	Resolved   bool   `json:"resolved"`
}

// HTTPMethod is a detected web verb.
type HTTPMethod string

const (
	MethodGet    HTTPMethod = "GET"
	MethodPost   HTTPMethod = "POST"
	MethodPut    HTTPMethod = "PUT"
	MethodDelete HTTPMethod = "DELETE"
	MethodPatch  HTTPMethod = "PATCH"
)

// Endpoint is a web entry point detected by a framework strategy.
type Endpoint struct {
	Path            string     `json:"path"`
	HTTPMethod      HTTPMethod `json:"http_method"`
	MethodSignature string     `json:"method_signature"` // qualified method
	ClassName       string     `json:"class_name"`
	MethodName      string     `json:"method_name"`
	FilePath        string     `json:"file_path"`
}

// InheritNode is one entry in the class inheritance forest.
type InheritNode struct {
	Name       string   `json:"name"`
	Package    string   `json:"package,omitempty"`
	Superclass string   `json:"superclass,omitempty"`
	Interfaces []string `json:"interfaces,omitempty"`
	FilePath   string   `json:"file_path"`
}

// Layer is an inferred architectural role.
type Layer string

const (
	LayerController  Layer = "Controller"
	LayerService     Layer = "Service"
	LayerServiceImpl Layer = "ServiceImpl" // sub-label on SVCImpl/BIZ
	LayerRepository  Layer = "Repository"
	LayerValueObject Layer = "ValueObject"
	LayerUnknown     Layer = "Unknown"
)

// QueryType is a SQL statement kind.
type QueryType string

const (
	QuerySelect QueryType = "SELECT"
	QueryInsert QueryType = "INSERT"
	QueryUpdate QueryType = "UPDATE"
	QueryDelete QueryType = "DELETE"
)

// SqlQuery is one extracted SQL statement.
type SqlQuery struct {
	ID              string            `json:"id"`
	QueryType       QueryType         `json:"query_type"`
	SQL             string            `json:"sql"`
	FilePath        string            `json:"file_path"`
	StrategySpecific map[string]string `json:"strategy_specific,omitempty"`
}

// SqlExtractionOutput is one file's extracted SQL statements.
type SqlExtractionOutput struct {
	File       string     `json:"file"`
	SqlQueries []SqlQuery `json:"sql_queries"`
}

// Column is a table column referenced by a TableAccessInfo.
type Column struct {
	Name       string `json:"name"`
	NewColumn  bool   `json:"new_column"`
	CryptoCode string `json:"crypto_code,omitempty"`
}

// CallStackQuery is one SQL statement's call stacks, as reachable from
// endpoints (or "headless" if no endpoint reached it).
type CallStackQuery struct {
	ID         string     `json:"id"`
	SQL        string     `json:"sql"`
	QueryType  QueryType  `json:"query_type"`
	CallStacks [][]string `json:"call_stacks"`
}

// TableAccessInfo is the pipeline's headline artifact: one sensitive
// table with every file that touches it, partitioned by layer, plus the
// call stacks that reach each SQL statement bound to it.
type TableAccessInfo struct {
	TableName   string                    `json:"table_name"`
	Columns     []Column                  `json:"columns"`
	AccessFiles []string                  `json:"access_files"`
	QueryType   QueryType                 `json:"query_type"`
	Layer       Layer                     `json:"layer"`
	LayerFiles  map[Layer][]string        `json:"layer_files"`
	SqlQueries  []CallStackQuery          `json:"sql_queries"`
}

// ModificationContext is one LLM-sized batch: files to modify plus
// read-only reference files.
type ModificationContext struct {
	FilePaths    []string `json:"file_paths"`
	ContextFiles []string `json:"context_files"`
	TableName    string   `json:"table_name"`
	Columns      []Column `json:"columns"`
	FileCount    int      `json:"file_count"`
	Layer        Layer    `json:"layer"`
}

// RunMetadata describes one run; it is written as run_metadata.json next
// to the run's other artifacts.
type RunMetadata struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	ProjectRoot string    `json:"project_root"`
	Branch      string    `json:"branch,omitempty"`
	Commit      string    `json:"commit,omitempty"`
	Remote      string    `json:"remote,omitempty"`
}
