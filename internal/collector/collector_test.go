package collector

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestCollectHonorsExtensionsAndExcludes(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "src", "main", "java", "com", "example", "UserController.java"), "class UserController {}")
	writeFile(t, filepath.Join(root, "src", "main", "resources", "mapper", "UserMapper.xml"), "<mapper/>")
	writeFile(t, filepath.Join(root, "src", "main", "java", "com", "example", "readme.txt"), "ignored extension")
	writeFile(t, filepath.Join(root, "target", "classes", "UserController.class"), "build output, directory excluded")
	writeFile(t, filepath.Join(root, ".git", "HEAD"), "hidden vcs dir excluded")
	writeFile(t, filepath.Join(root, "src", "main", "java", "com", "example", "UserControllerTest.java"), "class UserControllerTest {}")

	c, err := New(root, []string{".java", ".xml"}, nil, []string{"**/*Test.java"})
	if err != nil {
		t.Fatal(err)
	}

	files, err := c.Collect()
	if err != nil {
		t.Fatal(err)
	}

	if got, want := len(files), 2; got != want {
		t.Fatalf("expected %d files, got %d: %+v", want, got, files)
	}
	if c.CollectedCount() != 2 {
		t.Errorf("expected CollectedCount() == 2, got %d", c.CollectedCount())
	}

	for _, f := range files {
		if f.Extension == ".txt" {
			t.Errorf("txt file should have been excluded: %+v", f)
		}
		if f.Filename == "UserControllerTest.java" {
			t.Errorf("glob-excluded test file should not appear: %+v", f)
		}
	}
}

func TestCollectIsDeterministicAcrossRuns(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"B.java", "A.java", "C.java"} {
		writeFile(t, filepath.Join(root, name), "class X {}")
	}

	c, err := New(root, []string{".java"}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	first, err := c.Collect()
	if err != nil {
		t.Fatal(err)
	}
	second, err := c.Collect()
	if err != nil {
		t.Fatal(err)
	}

	if len(first) != len(second) {
		t.Fatalf("collected different counts across runs: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].RelativePath != second[i].RelativePath {
			t.Errorf("order not stable at index %d: %s vs %s", i, first[i].RelativePath, second[i].RelativePath)
		}
	}
	if first[0].RelativePath != "A.java" || first[2].RelativePath != "C.java" {
		t.Errorf("expected lexicographic order, got %+v", first)
	}
}
