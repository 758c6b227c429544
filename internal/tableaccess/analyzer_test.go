package tableaccess

import (
	"testing"

	"github.com/applycrypto/engine/internal/callgraph"
	"github.com/applycrypto/engine/internal/config"
	"github.com/applycrypto/engine/internal/javaast"
	"github.com/applycrypto/engine/internal/model"
)

const accessControllerSrc = `package com.example.web;

import org.springframework.web.bind.annotation.GetMapping;
import org.springframework.web.bind.annotation.RestController;

@RestController
public class AccountController {
    private final AccountSvcImpl accountSvc;

    @GetMapping("/accounts/{id}")
    public Account getAccount(Long id) {
        return accountSvc.findById(id);
    }
}
`

const accountSvcImplSrc = `package com.example.service;

public class AccountSvcImpl {
    private final AccountMapper accountMapper;

    public Account findById(Long id) {
        return accountMapper.selectById(id);
    }
}
`

const accountMapperSrc = `package com.example.mapper;

public interface AccountMapper {
    Account selectById(Long id);
}
`

func buildAccessGraph(t *testing.T) *callgraph.CallGraph {
	t.Helper()
	p := javaast.New()
	sources := map[string]string{
		"AccountController.java": accessControllerSrc,
		"AccountSvcImpl.java":    accountSvcImplSrc,
		"AccountMapper.java":     accountMapperSrc,
	}
	var asts []*model.FileAst
	for path, src := range sources {
		ast := p.Parse(path, []byte(src))
		if ast.Quality != model.ParseQualityParsed {
			t.Fatalf("expected %s to parse cleanly, got %s: %s", path, ast.Quality, ast.Error)
		}
		asts = append(asts, ast)
	}
	b := callgraph.NewBuilder(asts, "spring_mvc")
	return b.Build()
}

func layerForTest(file string) model.Layer {
	switch file {
	case "AccountController.java":
		return model.LayerController
	case "AccountSvcImpl.java":
		return model.LayerServiceImpl
	case "AccountMapper.java":
		return model.LayerRepository
	default:
		return model.LayerUnknown
	}
}

func testTargets() []config.TargetTable {
	return []config.TargetTable{
		{
			TableName: "ACCOUNT",
			Columns: []config.TargetColumn{
				{Name: "SSN", CryptoCode: "AES256"},
			},
		},
	}
}

func TestAnalyzeRetainsOnlyTargetTableQueries(t *testing.T) {
	g := buildAccessGraph(t)
	a := New(g, layerForTest, testTargets(), 10)

	outputs := []model.SqlExtractionOutput{
		{
			File: "AccountMapper.xml",
			SqlQueries: []model.SqlQuery{
				{
					ID:        "com.example.mapper.AccountMapper.selectById",
					QueryType: model.QuerySelect,
					SQL:       "SELECT ID, SSN FROM ACCOUNT WHERE ID = #{id}",
					FilePath:  "AccountMapper.xml",
					StrategySpecific: map[string]string{
						"namespace": "com.example.mapper.AccountMapper",
					},
				},
				{
					ID:        "com.example.mapper.AccountMapper.selectAudit",
					QueryType: model.QuerySelect,
					SQL:       "SELECT ID FROM AUDIT_LOG WHERE ID = #{id}",
					FilePath:  "AccountMapper.xml",
					StrategySpecific: map[string]string{
						"namespace": "com.example.mapper.AccountMapper",
					},
				},
			},
		},
	}

	results := a.Analyze(outputs, func(q model.SqlQuery) string {
		return MyBatisSink(q.StrategySpecific["namespace"], q.ID)
	})

	if len(results) != 1 {
		t.Fatalf("expected exactly 1 TableAccessInfo (ACCOUNT only), got %+v", results)
	}
	info := results[0]
	if info.TableName != "ACCOUNT" {
		t.Fatalf("expected ACCOUNT, got %s", info.TableName)
	}
	if len(info.SqlQueries) != 1 {
		t.Fatalf("expected 1 retained query for ACCOUNT, got %+v", info.SqlQueries)
	}
}

func TestAnalyzeAggregatesAccessFilesAndLayer(t *testing.T) {
	g := buildAccessGraph(t)
	a := New(g, layerForTest, testTargets(), 10)

	outputs := []model.SqlExtractionOutput{
		{
			File: "AccountMapper.xml",
			SqlQueries: []model.SqlQuery{
				{
					ID:        "com.example.mapper.AccountMapper.selectById",
					QueryType: model.QuerySelect,
					SQL:       "SELECT ID, SSN FROM ACCOUNT WHERE ID = #{id}",
					FilePath:  "AccountMapper.xml",
					StrategySpecific: map[string]string{
						"namespace": "com.example.mapper.AccountMapper",
					},
				},
			},
		},
	}

	results := a.Analyze(outputs, func(q model.SqlQuery) string {
		return MyBatisSink(q.StrategySpecific["namespace"], q.ID)
	})
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	info := results[0]

	wantFiles := map[string]bool{
		"AccountMapper.xml":      true,
		"AccountController.java": true,
		"AccountSvcImpl.java":    true,
		"AccountMapper.java":     true,
	}
	if len(info.AccessFiles) != len(wantFiles) {
		t.Fatalf("expected access files %v, got %v", wantFiles, info.AccessFiles)
	}
	for _, f := range info.AccessFiles {
		if !wantFiles[f] {
			t.Errorf("unexpected access file %s", f)
		}
	}

	if len(info.LayerFiles[model.LayerController]) != 1 {
		t.Errorf("expected 1 controller file, got %v", info.LayerFiles[model.LayerController])
	}
	if len(info.LayerFiles[model.LayerRepository]) != 1 {
		t.Errorf("expected 1 repository file, got %v", info.LayerFiles[model.LayerRepository])
	}

	if info.QueryType != model.QuerySelect {
		t.Errorf("expected SELECT, got %s", info.QueryType)
	}

	var sawSSN bool
	for _, c := range info.Columns {
		if c.Name == "SSN" {
			sawSSN = true
			if c.CryptoCode != "AES256" {
				t.Errorf("expected configured crypto_code AES256, got %s", c.CryptoCode)
			}
		}
	}
	if !sawSSN {
		t.Fatalf("expected configured SSN column to survive merge, got %+v", info.Columns)
	}
}

func TestMajorityQueryTypeTiebreaksTowardInsert(t *testing.T) {
	counts := map[model.QueryType]int{
		model.QuerySelect: 3,
		model.QueryInsert: 3,
	}
	if got := majorityQueryType(counts); got != model.QueryInsert {
		t.Errorf("expected INSERT to win the tie, got %s", got)
	}
}

func TestMethodSinkStripsDisambiguationSuffix(t *testing.T) {
	if got := MethodSink("com.example.dao.UserDao.insert#2"); got != "com.example.dao.UserDao.insert" {
		t.Errorf("expected suffix stripped, got %s", got)
	}
}
