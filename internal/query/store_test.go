package query

import (
	"testing"

	"github.com/applycrypto/engine/internal/model"
)

func fixtureInfos() []model.TableAccessInfo {
	return []model.TableAccessInfo{
		{
			TableName: "ACCOUNT",
			Columns: []model.Column{
				{Name: "SSN", CryptoCode: "AES256"},
			},
			QueryType: model.QuerySelect,
			LayerFiles: map[model.Layer][]string{
				model.LayerController: {"AccountController.java"},
				model.LayerRepository: {"AccountMapper.xml"},
			},
		},
		{
			TableName: "AUDIT_LOG",
			QueryType: model.QueryInsert,
			LayerFiles: map[model.Layer][]string{
				model.LayerRepository: {"AuditMapper.xml"},
			},
		},
	}
}

func TestByTableReturnsOnlyMatchingRows(t *testing.T) {
	s, err := Open(fixtureInfos())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	rows, err := s.ByTable("ACCOUNT")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows (controller + mapper), got %d", len(rows))
	}
	for _, r := range rows {
		if r.TableName != "ACCOUNT" {
			t.Errorf("unexpected table in result: %s", r.TableName)
		}
	}
}

func TestByLayerCrossesTables(t *testing.T) {
	s, err := Open(fixtureInfos())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	rows, err := s.ByLayer(string(model.LayerRepository))
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 mapper-layer rows across both tables, got %d", len(rows))
	}
}

func TestByFileFindsOwningTable(t *testing.T) {
	s, err := Open(fixtureInfos())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	rows, err := s.ByFile("AccountController.java")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].TableName != "ACCOUNT" {
		t.Fatalf("expected single ACCOUNT row, got %+v", rows)
	}
}

func TestTablesReturnsDistinctSortedNames(t *testing.T) {
	s, err := Open(fixtureInfos())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	names, err := s.Tables()
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 || names[0] != "ACCOUNT" || names[1] != "AUDIT_LOG" {
		t.Fatalf("expected [ACCOUNT AUDIT_LOG], got %v", names)
	}
}

func TestColumnlessTableStillProducesRows(t *testing.T) {
	s, err := Open(fixtureInfos())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	rows, err := s.ByTable("AUDIT_LOG")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row for a table with no configured columns, got %d", len(rows))
	}
	if rows[0].ColumnName != "" {
		t.Errorf("expected empty column name, got %q", rows[0].ColumnName)
	}
}
