package batcher

import (
	"fmt"
	"strings"
	"testing"

	"github.com/applycrypto/engine/internal/config"
	"github.com/applycrypto/engine/internal/model"
)

type memFS map[string]string

func (m memFS) ReadFile(path string) ([]byte, error) {
	s, ok := m[path]
	if !ok {
		return nil, fmt.Errorf("not found: %s", path)
	}
	return []byte(s), nil
}

func (m memFS) Glob(pattern string) ([]string, error) {
	if _, ok := m[pattern]; ok {
		return []string{pattern}, nil
	}
	return nil, nil
}

func TestSplitterPacksWithinBudgetAndNeverSplitsAFile(t *testing.T) {
	fs := memFS{}
	var files []string
	for i := 0; i < 50; i++ {
		path := fmt.Sprintf("File%d.java", i)
		// 8000 chars plus the FileBlock header: 2010 tokens per file, so
		// 9 files (18090 tokens) fit under 20000 and a 10th would not.
		fs[path] = strings.Repeat("x", 8000)
		files = append(files, path)
	}

	splitter := NewSplitter(fs, DefaultTokenEstimator, 20000, 80000, "")
	batches, warnings := splitter.Split(files, nil, nil, "USERS", nil, model.LayerService)

	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	wantSizes := []int{9, 9, 9, 9, 9, 5}
	if len(batches) != len(wantSizes) {
		t.Fatalf("expected %d batches (five of 9 files, one of 5), got %d", len(wantSizes), len(batches))
	}

	seen := 0
	for i, b := range batches {
		if len(b.FilePaths) != wantSizes[i] {
			t.Errorf("batch %d: expected %d files, got %d", i, wantSizes[i], len(b.FilePaths))
		}
		seen += len(b.FilePaths)
	}
	if seen != 50 {
		t.Fatalf("expected 50 files total across batches, got %d", seen)
	}
}

func TestSplitterNeverSplitsASingleOversizedFile(t *testing.T) {
	fs := memFS{"Huge.java": strings.Repeat("x", 400000)} // 100000 tokens, way over budget
	splitter := NewSplitter(fs, DefaultTokenEstimator, 20000, 80000, "")

	batches, _ := splitter.Split([]string{"Huge.java"}, nil, nil, "USERS", nil, model.LayerService)
	if len(batches) != 1 {
		t.Fatalf("expected 1 batch for a lone oversized file, got %d", len(batches))
	}
	if len(batches[0].FilePaths) != 1 || batches[0].FilePaths[0] != "Huge.java" {
		t.Fatalf("expected the single file kept whole, got %+v", batches[0])
	}
}

func TestSplitterDropsContextFilesOverCap(t *testing.T) {
	fs := memFS{
		"Main.java":    "small",
		"ContextA.xml": strings.Repeat("y", 40000), // 10000 tokens
		"ContextB.xml": strings.Repeat("y", 40000), // 10000 tokens
	}
	splitter := NewSplitter(fs, DefaultTokenEstimator, 20000, 12000, "")

	batches, warnings := splitter.Split([]string{"Main.java"}, nil, []string{"ContextA.xml", "ContextB.xml"}, "USERS", nil, model.LayerService)
	if len(batches) != 1 {
		t.Fatalf("expected 1 batch, got %d", len(batches))
	}
	if len(batches[0].ContextFiles) != 1 {
		t.Fatalf("expected only the first context file to fit under the cap, got %v", batches[0].ContextFiles)
	}
	if len(warnings) == 0 {
		t.Fatalf("expected a warning about the dropped context file")
	}
}

func TestPerLayerStrategyGroupsByLayerFiles(t *testing.T) {
	info := model.TableAccessInfo{
		TableName: "USERS",
		LayerFiles: map[model.Layer][]string{
			model.LayerController: {"UserController.java"},
			model.LayerRepository: {"UserDao.java"},
		},
	}
	groups := PerLayerStrategy{}.Group(info, NewProjectIndex(nil), nil)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
}

func TestJdbcBnkStrategyChargesOnlyReachedMethodLines(t *testing.T) {
	var lines []string
	for i := 0; i < 4900; i++ {
		lines = append(lines, fmt.Sprintf("filler line %d that nobody calls", i))
	}
	methodStart := len(lines) + 1
	methodBody := strings.Repeat("body line of the reached method\n", 120)
	lines = append(lines, strings.Split(strings.TrimRight(methodBody, "\n"), "\n")...)
	methodEnd := len(lines)
	content := strings.Join(lines, "\n")

	fs := memFS{"UserBiz.java": content}

	class := &model.ClassInfo{
		Name:     "UserBiz",
		FilePath: "UserBiz.java",
		Methods: []model.MethodInfo{
			{Name: "doOne", ClassName: "UserBiz", FilePath: "UserBiz.java", LineNumber: methodStart, EndLineNumber: methodEnd},
		},
	}
	ast := &model.FileAst{FilePath: "UserBiz.java", Classes: []*model.ClassInfo{class}, Quality: model.ParseQualityParsed}
	idx := NewProjectIndex([]*model.FileAst{ast})

	info := model.TableAccessInfo{
		TableName: "USERS",
		LayerFiles: map[model.Layer][]string{
			model.LayerServiceImpl: {"UserBiz.java"},
		},
		SqlQueries: []model.CallStackQuery{
			{
				ID:         "UserBiz.doOne",
				CallStacks: [][]string{{"UserController.handle", "UserBiz.doOne"}},
			},
		},
	}

	strategy := JdbcBnkStrategy{FS: fs, Estimate: DefaultTokenEstimator}
	groups := strategy.Group(info, idx, nil)

	if len(groups) != 1 {
		t.Fatalf("expected 1 keyword group, got %d", len(groups))
	}
	cost, ok := groups[0].PriceOverride["UserBiz.java"]
	if !ok {
		t.Fatalf("expected a price override for UserBiz.java, got %+v", groups[0].PriceOverride)
	}

	wholeFileCost := DefaultTokenEstimator(content)
	if cost >= wholeFileCost {
		t.Fatalf("expected charged cost (%d) to be far less than whole-file cost (%d)", cost, wholeFileCost)
	}
	methodOnlyCost := DefaultTokenEstimator(strings.Join(lines[methodStart-1:methodEnd], "\n"))
	if cost != methodOnlyCost {
		t.Fatalf("expected cost to equal just the reached method's lines: got %d, want %d", cost, methodOnlyCost)
	}
}

func TestMyBatisSpringMvcStrategyChasesImportsAndCollectsXmlContext(t *testing.T) {
	controller := &model.ClassInfo{
		Name:     "UserController",
		FilePath: "UserController.java",
		Imports:  nil,
	}
	controllerAst := &model.FileAst{
		FilePath: "UserController.java",
		Imports:  []string{"com.example.service.UserService"},
		Classes:  []*model.ClassInfo{controller},
	}
	service := &model.ClassInfo{Name: "UserService", FilePath: "UserService.java"}
	serviceAst := &model.FileAst{
		FilePath: "UserService.java",
		Imports:  []string{"com.example.mapper.UserMapper"},
		Classes:  []*model.ClassInfo{service},
	}
	mapper := &model.ClassInfo{Name: "UserMapper", FilePath: "UserMapper.java"}
	mapperAst := &model.FileAst{FilePath: "UserMapper.java", Classes: []*model.ClassInfo{mapper}}

	idx := NewProjectIndex([]*model.FileAst{controllerAst, serviceAst, mapperAst})

	info := model.TableAccessInfo{
		TableName: "USERS",
		LayerFiles: map[model.Layer][]string{
			model.LayerController: {"UserController.java"},
		},
		AccessFiles: []string{"UserController.java", "UserService.java", "UserMapper.java", "UserMapper.xml"},
	}

	groups := MyBatisSpringMvcStrategy{}.Group(info, idx, nil)
	if len(groups) != 1 {
		t.Fatalf("expected 1 group (one per controller), got %d", len(groups))
	}
	g := groups[0]
	wantModifiable := map[string]bool{"UserController.java": true, "UserService.java": true, "UserMapper.java": true}
	if len(g.ModifiableFiles) != len(wantModifiable) {
		t.Fatalf("expected modifiable files %v, got %v", wantModifiable, g.ModifiableFiles)
	}
	for _, f := range g.ModifiableFiles {
		if !wantModifiable[f] {
			t.Errorf("unexpected modifiable file %s", f)
		}
	}
	var sawXML bool
	for _, f := range g.ContextFiles {
		if f == "UserMapper.xml" {
			sawXML = true
		}
	}
	if !sawXML {
		t.Fatalf("expected UserMapper.xml as context, got %v", g.ContextFiles)
	}
}

func TestSelectStrategyFollowsConfigAxes(t *testing.T) {
	cfg := config.Default()
	cfg.ModificationType = config.ModTypeHandler
	if _, ok := selectStrategy(cfg, memFS{}, DefaultTokenEstimator).(TypeHandlerStrategy); !ok {
		t.Errorf("expected TypeHandlerStrategy when ModificationType is TypeHandler")
	}

	cfg = config.Default()
	cfg.SqlWrappingType = config.WrappingMyBatisBatch
	if _, ok := selectStrategy(cfg, memFS{}, DefaultTokenEstimator).(MyBatisBatchStrategy); !ok {
		t.Errorf("expected MyBatisBatchStrategy for mybatis_ccs_batch")
	}

	cfg = config.Default()
	cfg.SqlWrappingType = config.WrappingJDBC
	cfg.ModificationType = config.ModServiceImplOrBiz
	if _, ok := selectStrategy(cfg, memFS{}, DefaultTokenEstimator).(JdbcBnkStrategy); !ok {
		t.Errorf("expected JdbcBnkStrategy for jdbc+ServiceImplOrBiz")
	}
}
