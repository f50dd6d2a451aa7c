package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func sampleBlocks() []AnnotatedBlock {
	return []AnnotatedBlock{
		{
			Title:       "Python Block: def greet(name):...",
			Code:        "def greet(name):\n    return \"hi \" + name",
			Explanation: "Greets a user by name.",
		},
		{
			Title:       "Python Block: def add(a, b):...",
			Code:        "def add(a, b):\n    return a + b\n",
			Explanation: "  Adds two numbers.\n",
		},
	}
}

func TestNew_Language(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"example.py", "py"},
		{"/tmp/src/Main.JAVA", "java"},
		{"README", "text"},
	}
	for _, tt := range tests {
		r := New(tt.path, "qwen3:8b", nil, DefaultOptions())
		if r.Language != tt.want {
			t.Errorf("New(%q).Language = %q, want %q", tt.path, r.Language, tt.want)
		}
	}

	r := New("/tmp/src/example.py", "qwen3:8b", nil, DefaultOptions())
	if r.SourceName != "example.py" {
		t.Errorf("expected base name, got %q", r.SourceName)
	}
}

func TestRender_FrontMatter(t *testing.T) {
	out := New("example.py", "qwen3:8b", sampleBlocks(), DefaultOptions()).Render()

	if !strings.HasPrefix(out, "---\n") {
		t.Fatal("expected document to open with front matter")
	}
	checks := []string{
		`title: "Senior Software Engineer Code Review - example.py"`,
		`subtitle: "Analyzed by qwen3:8b using ast-grep"`,
		"format:\n  revealjs:\n",
		"    scrollable: true\n",
		"    auto-slide: 10000\n",
		"    auto-advance: true\n",
		"    transition-speed: slow\n",
		"    progress: true\n",
		"---\n\n# Code Review Walkthrough\n",
	}
	for _, check := range checks {
		if !strings.Contains(out, check) {
			t.Errorf("expected output to contain %q", check)
		}
	}
}

func TestRender_CustomOptions(t *testing.T) {
	opts := Options{Scrollable: false, AutoSlide: 5000, AutoAdvance: false, TransitionSpeed: "fast", Progress: false}
	out := New("main.go", "llama3", nil, opts).Render()

	for _, check := range []string{
		"    scrollable: false\n",
		"    auto-slide: 5000\n",
		"    auto-advance: false\n",
		"    transition-speed: fast\n",
		"    progress: false\n",
		"auto-advance every 5 seconds",
	} {
		if !strings.Contains(out, check) {
			t.Errorf("expected output to contain %q", check)
		}
	}
}

func TestRender_Summary(t *testing.T) {
	out := New("example.py", "qwen3:8b", sampleBlocks(), DefaultOptions()).Render()

	checks := []string{
		"## Summary & Metrics",
		"* **File:** `example.py`",
		"* **Language:** `PY`",
		"* **Total Blocks Analyzed:** **2**",
		"* **LLM Used:** `qwen3:8b`",
		"auto-advance every 10 seconds",
	}
	for _, check := range checks {
		if !strings.Contains(out, check) {
			t.Errorf("expected output to contain %q", check)
		}
	}
}

func TestRender_BlocksInOrderExactlyOnce(t *testing.T) {
	blocks := sampleBlocks()
	out := New("example.py", "qwen3:8b", blocks, DefaultOptions()).Render()

	last := -1
	for i, b := range blocks {
		heading := "## Block " + string(rune('1'+i)) + ": " + b.Title
		if strings.Count(out, heading) != 1 {
			t.Errorf("expected heading %q exactly once", heading)
		}
		idx := strings.Index(out, heading)
		if idx <= last {
			t.Errorf("block %d out of order", i+1)
		}
		last = idx

		code := strings.TrimSpace(b.Code)
		if strings.Count(out, "```{py}\n"+code+"\n```") != 1 {
			t.Errorf("expected code of block %d exactly once", i+1)
		}
		expl := strings.TrimSpace(b.Explanation)
		if strings.Count(out, "### 🧠 Senior Explanation\n"+expl+"\n") != 1 {
			t.Errorf("expected explanation of block %d exactly once", i+1)
		}
	}

	if !strings.Contains(out, "*(~2 lines of code)*") {
		t.Error("expected line count annotation")
	}
	if strings.Count(out, "### 💻 Code (PY)") != 2 {
		t.Error("expected one code heading per block")
	}
}

func TestRender_NoBlocks(t *testing.T) {
	out := New("empty.py", "qwen3:8b", nil, DefaultOptions()).Render()

	if !strings.Contains(out, "* **Total Blocks Analyzed:** **0**") {
		t.Error("expected zero block count")
	}
	if strings.Contains(out, "## Block ") {
		t.Error("expected no block sections")
	}
	if !strings.Contains(out, "## Summary & Metrics") {
		t.Error("expected summary slide even without blocks")
	}
}

func TestWrite_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultOutputPath)
	if err := os.WriteFile(path, []byte("stale content that is much longer than nothing"), 0o644); err != nil {
		t.Fatal(err)
	}

	r := New("example.py", "qwen3:8b", sampleBlocks(), DefaultOptions())
	if err := r.Write(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != r.Render() {
		t.Error("expected file to hold exactly the rendered report")
	}
}

func TestWrite_BadPath(t *testing.T) {
	r := New("example.py", "qwen3:8b", nil, DefaultOptions())
	if err := r.Write(filepath.Join(t.TempDir(), "missing", "out.qmd")); err == nil {
		t.Fatal("expected error writing into a missing directory")
	}
}

func TestCountLines(t *testing.T) {
	tests := map[string]int{
		"":       0,
		"a":      1,
		"a\nb":   2,
		"a\nb\n": 2,
		"a\n\nb": 3,
		"\n":     1,
	}
	for in, want := range tests {
		if got := CountLines(in); got != want {
			t.Errorf("CountLines(%q) = %d, want %d", in, got, want)
		}
	}
}
