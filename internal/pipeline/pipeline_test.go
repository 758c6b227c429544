package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/applycrypto/engine/internal/config"
	"github.com/applycrypto/engine/internal/git"
)

const controllerSrc = `package com.example.web;

import com.example.service.AccountService;

public class AccountController {
    private AccountService accountService;

    public Account getAccount(String id) {
        return accountService.findAccount(id);
    }
}
`

const serviceSrc = `package com.example.service;

import com.example.mapper.AccountMapper;

public class AccountService {
    private AccountMapper accountMapper;

    public Account findAccount(String id) {
        return accountMapper.selectAccount(id);
    }
}
`

const mapperSrc = `package com.example.mapper;

public interface AccountMapper {
    Account selectAccount(String id);
}
`

const mapperXML = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE mapper PUBLIC "-//mybatis.org//DTD Mapper 3.0//EN" "http://mybatis.org/dtd/mybatis-3-mapper.dtd">
<mapper namespace="com.example.mapper.AccountMapper">
    <select id="selectAccount" resultType="com.example.model.Account">
        SELECT ID, SSN, NAME FROM ACCOUNT WHERE ID = #{id}
    </select>
</mapper>
`

func writeFixtureProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"src/main/java/com/example/web/AccountController.java":  controllerSrc,
		"src/main/java/com/example/service/AccountService.java": serviceSrc,
		"src/main/java/com/example/mapper/AccountMapper.java":    mapperSrc,
		"src/main/resources/mapper/AccountMapper.xml":            mapperXML,
	}
	for rel, content := range files {
		full := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func testConfig(root string) *config.Config {
	cfg := config.Default()
	cfg.TargetProject = root
	cfg.SqlWrappingType = config.WrappingMyBatis
	cfg.ModificationType = config.ModControllerOrService
	cfg.FrameworkType = config.FrameworkSpringMVC
	cfg.AccessTables = []config.TargetTable{
		{
			TableName: "ACCOUNT",
			Columns: []config.TargetColumn{
				{Name: "SSN", CryptoCode: "AES256"},
			},
		},
	}
	return cfg
}

func TestRunProducesTableAccessAndModificationContexts(t *testing.T) {
	root := writeFixtureProject(t)
	cfg := testConfig(root)

	pl, err := New(cfg, WithGitOperations(git.NewMockOperations("main", "abc123", "git@example.com:org/repo.git")))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer pl.Close()

	res, err := pl.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(res.SourceFiles) != 4 {
		t.Fatalf("expected 4 collected files, got %d", len(res.SourceFiles))
	}
	if len(res.TableAccess) != 1 {
		t.Fatalf("expected exactly one target table's access info, got %d", len(res.TableAccess))
	}
	info := res.TableAccess[0]
	if info.TableName != "ACCOUNT" {
		t.Fatalf("expected ACCOUNT, got %s", info.TableName)
	}
	if len(res.Modifications) == 0 {
		t.Fatalf("expected at least one modification context")
	}
	if res.Metadata.Branch != "main" || res.Metadata.Commit != "abc123" {
		t.Fatalf("expected stamped git metadata, got %+v", res.Metadata)
	}
	if !res.Summary.Empty() {
		t.Fatalf("expected no parse failures, got %v", res.Summary.Counts())
	}
}

func TestRunHonorsCancellation(t *testing.T) {
	root := writeFixtureProject(t)
	cfg := testConfig(root)

	pl, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer pl.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := pl.Run(ctx, cfg); err == nil {
		t.Fatalf("expected an error from a pre-cancelled context")
	}
}

func TestWriteArtifactsProducesExpectedFiles(t *testing.T) {
	root := writeFixtureProject(t)
	cfg := testConfig(root)

	pl, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer pl.Close()

	res, err := pl.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if err := WriteArtifacts(root, res); err != nil {
		t.Fatalf("WriteArtifacts: %v", err)
	}

	for _, name := range []string{
		"run_metadata.json",
		"source_files.json",
		"sql_extraction_results.json",
		"call_graph.json",
		"table_access_info.json",
		"modification_contexts.json",
	} {
		path := filepath.Join(resultsDir(root), name)
		if _, err := os.Stat(path); err != nil {
			t.Errorf("expected artifact %s to exist: %v", name, err)
		}
	}
}
