package sqlextract

import (
	"strings"
	"testing"

	"github.com/applycrypto/engine/internal/javaast"
	"github.com/applycrypto/engine/internal/model"
)

const jdbcDaoSource = `package com.example.dao;

public class UserDao {
    public User findById(Long id) {
        String sql = "SELECT id, name " +
                     "FROM USERS WHERE id = ?";
        return jdbcTemplate.queryForObject(sql, mapper, id);
    }
}
`

func TestJdbcStrategyExtractsConcatenatedLiteral(t *testing.T) {
	ast := javaast.New().Parse("UserDao.java", []byte(jdbcDaoSource))
	out, err := (&JdbcStrategy{}).Extract("UserDao.java", []byte(jdbcDaoSource), ast)
	if err != nil {
		t.Fatal(err)
	}
	if len(out.SqlQueries) != 1 {
		t.Fatalf("expected 1 query, got %+v", out.SqlQueries)
	}
	q := out.SqlQueries[0]
	if !strings.Contains(q.SQL, "SELECT id, name") || !strings.Contains(q.SQL, "FROM USERS") {
		t.Errorf("expected concatenated SQL, got %q", q.SQL)
	}
	if q.QueryType != model.QuerySelect {
		t.Errorf("expected SELECT, got %s", q.QueryType)
	}
	if q.ID != "UserDao.findById" {
		t.Errorf("expected query id UserDao.findById, got %s", q.ID)
	}
}

const jpaRepoSource = `package com.example.repo;

public interface UserRepository {
    @Query("SELECT u FROM User u WHERE u.email = :email")
    User findByEmail(String email);

    @Query(value = "UPDATE users SET name = :name WHERE id = :id", nativeQuery = true)
    void renameUser(Long id, String name);
}
`

func TestJpaStrategyExtractsQueryAnnotations(t *testing.T) {
	ast := javaast.New().Parse("UserRepository.java", []byte(jpaRepoSource))
	out, err := (&JpaStrategy{}).Extract("UserRepository.java", []byte(jpaRepoSource), ast)
	if err != nil {
		t.Fatal(err)
	}
	if len(out.SqlQueries) != 2 {
		t.Fatalf("expected 2 queries, got %+v", out.SqlQueries)
	}

	byID := map[string]model.SqlQuery{}
	for _, q := range out.SqlQueries {
		byID[q.ID] = q
	}

	find := byID["UserRepository.findByEmail"]
	if find.QueryType != model.QuerySelect {
		t.Errorf("expected findByEmail classified SELECT, got %s", find.QueryType)
	}
	rename := byID["UserRepository.renameUser"]
	if rename.QueryType != model.QueryUpdate {
		t.Errorf("expected renameUser classified UPDATE, got %s", rename.QueryType)
	}
	if rename.StrategySpecific["native"] != "true" {
		t.Errorf("expected nativeQuery attribute captured, got %+v", rename.StrategySpecific)
	}
}

func TestMyBatisStrategyYieldsNothingForJavaFiles(t *testing.T) {
	out, err := (&MyBatisStrategy{}).Extract("UserMapper.java", []byte("public interface UserMapper {}"), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(out.SqlQueries) != 0 {
		t.Errorf("expected no SQL from a mapper interface file, got %+v", out.SqlQueries)
	}
}
