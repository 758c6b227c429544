package sqlparse

import (
	"reflect"
	"testing"

	"github.com/applycrypto/engine/internal/model"
)

func TestExtractTablesFromFromClause(t *testing.T) {
	sql := NormalizeForExtraction("select id, name from users where id = ?")
	tables := ExtractTables(sql)
	if !reflect.DeepEqual(tables, []string{"USERS"}) {
		t.Errorf("got %v", tables)
	}
}

func TestExtractTablesFromJoinAndMultipleFrom(t *testing.T) {
	sql := NormalizeForExtraction("select u.id from users u join orders o on o.user_id = u.id")
	tables := ExtractTables(sql)
	if len(tables) != 2 || tables[0] != "USERS" || tables[1] != "ORDERS" {
		t.Errorf("got %v", tables)
	}

	tables = ExtractTables(NormalizeForExtraction("select * from users, orders where orders.user_id = users.id"))
	if len(tables) != 2 || tables[0] != "USERS" || tables[1] != "ORDERS" {
		t.Errorf("multiple FROM: got %v", tables)
	}
}

func TestExtractTablesSkipsReservedWords(t *testing.T) {
	sql := NormalizeForExtraction("select * from dual")
	tables := ExtractTables(sql)
	if len(tables) != 0 {
		t.Errorf("expected DUAL to be filtered as a reserved word, got %v", tables)
	}
}

func TestExtractColumnsFromSelectProjection(t *testing.T) {
	cols := ExtractColumns("SELECT id, u.email, full_name AS name FROM USERS", model.QuerySelect)
	want := []string{"id", "email", "name"}
	if !reflect.DeepEqual(cols, want) {
		t.Errorf("got %v, want %v", cols, want)
	}
}

func TestExtractColumnsFromInsertList(t *testing.T) {
	cols := ExtractColumns("INSERT INTO USERS (id, email, name) VALUES (#{id}, #{email}, #{name})", model.QueryInsert)
	want := []string{"id", "email", "name"}
	if !reflect.DeepEqual(cols, want) {
		t.Errorf("got %v, want %v", cols, want)
	}
}

func TestExtractColumnsFromUpdateSet(t *testing.T) {
	cols := ExtractColumns("UPDATE USERS SET email = #{email}, name = #{name} WHERE id = #{id}", model.QueryUpdate)
	want := []string{"email", "name"}
	if !reflect.DeepEqual(cols, want) {
		t.Errorf("got %v, want %v", cols, want)
	}
}

func TestStripPlaceholdersHandlesBothStyles(t *testing.T) {
	got := StripPlaceholders("WHERE id = #{id} AND code = ${code}")
	want := "WHERE id = ? AND code = ?"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
