package config

import "testing"

func TestDefaultIsValidOnceTargetProjectSet(t *testing.T) {
	cfg := Default()
	cfg.TargetProject = "/tmp/project"
	if err := Validate(cfg); err != nil {
		t.Fatalf("expected default config (with target project) to validate, got: %v", err)
	}
}

func TestValidateAggregatesMultipleErrors(t *testing.T) {
	cfg := &Config{
		FrameworkType:    "bogus",
		SqlWrappingType:  "bogus",
		ModificationType: "bogus",
		MaxTokensPerBatch: -1,
		Graph:            GraphConfig{MaxCallDepth: 0},
		Engine:           EngineConfig{ParseTimeoutSecs: -1},
	}

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}

	msg := err.Error()
	for _, want := range []string{"invalid framework type", "invalid sql wrapping type", "invalid modification type", "invalid token budget"} {
		if !contains(msg, want) {
			t.Errorf("expected validation error to mention %q, got: %s", want, msg)
		}
	}
}

func TestMigrateRewritesLegacyWrappingType(t *testing.T) {
	raw := map[string]any{
		"schema_version":    1,
		"sql_wrapping_type": "banka",
	}
	from := Migrate(raw)
	if from != 1 {
		t.Fatalf("expected starting version 1, got %d", from)
	}
	if raw["sql_wrapping_type"] != string(WrappingJDBC) {
		t.Errorf("expected sql_wrapping_type migrated to %q, got %v", WrappingJDBC, raw["sql_wrapping_type"])
	}
	if raw["modification_type"] != string(ModServiceImplOrBiz) {
		t.Errorf("expected modification_type defaulted to %q, got %v", ModServiceImplOrBiz, raw["modification_type"])
	}
	if raw["schema_version"] != 2 {
		t.Errorf("expected schema_version bumped to 2, got %v", raw["schema_version"])
	}
}

func contains(haystack, needle string) bool {
	return len(haystack) >= len(needle) && indexOf(haystack, needle) >= 0
}

func indexOf(haystack, needle string) int {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return i
		}
	}
	return -1
}
