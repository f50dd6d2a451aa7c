package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/MikeSquared-Agency/walkthrough/internal/language"
)

const (
	DefaultOutputPath = "ai_ast_grep_review.qmd"
	extractionTool    = "ast-grep"
)

// AnnotatedBlock is an extracted block with the model's explanation.
type AnnotatedBlock struct {
	Title       string `json:"title"`
	Code        string `json:"code"`
	Explanation string `json:"explanation"`
}

// Options are the revealjs display settings written to the front matter.
type Options struct {
	Scrollable      bool
	AutoSlide       int // milliseconds
	AutoAdvance     bool
	TransitionSpeed string
	Progress        bool
}

func DefaultOptions() Options {
	return Options{
		Scrollable:      true,
		AutoSlide:       10000,
		AutoAdvance:     true,
		TransitionSpeed: "slow",
		Progress:        true,
	}
}

// Report is a Quarto revealjs walkthrough of one source file.
type Report struct {
	SourceName string
	Language   string
	Model      string
	Blocks     []AnnotatedBlock
	Options    Options
}

// New builds a report for sourcePath. Language is the lowercased extension
// without its dot, or "text" when there is none.
func New(sourcePath, model string, blocks []AnnotatedBlock, opts Options) *Report {
	lang := strings.TrimPrefix(language.Ext(sourcePath), ".")
	if lang == "" {
		lang = "text"
	}
	return &Report{
		SourceName: filepath.Base(sourcePath),
		Language:   lang,
		Model:      model,
		Blocks:     blocks,
		Options:    opts,
	}
}

// Render returns the full .qmd document.
func (r *Report) Render() string {
	var sb strings.Builder
	r.writeFrontMatter(&sb)
	r.writeSummary(&sb)
	for i, b := range r.Blocks {
		r.writeBlock(&sb, i+1, b)
	}
	return sb.String()
}

// Write renders the report to path, replacing any existing file.
func (r *Report) Write(path string) error {
	if err := os.WriteFile(path, []byte(r.Render()), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func (r *Report) writeFrontMatter(sb *strings.Builder) {
	o := r.Options
	sb.WriteString("---\n")
	fmt.Fprintf(sb, "title: \"Senior Software Engineer Code Review - %s\"\n", r.SourceName)
	fmt.Fprintf(sb, "subtitle: \"Analyzed by %s using %s\"\n", r.Model, extractionTool)
	sb.WriteString("format:\n")
	sb.WriteString("  revealjs:\n")
	fmt.Fprintf(sb, "    scrollable: %t\n", o.Scrollable)
	fmt.Fprintf(sb, "    auto-slide: %d\n", o.AutoSlide)
	fmt.Fprintf(sb, "    auto-advance: %t\n", o.AutoAdvance)
	fmt.Fprintf(sb, "    transition-speed: %s\n", o.TransitionSpeed)
	fmt.Fprintf(sb, "    progress: %t\n", o.Progress)
	sb.WriteString("---\n\n")
	sb.WriteString("# Code Review Walkthrough\n\n")
}

func (r *Report) writeSummary(sb *strings.Builder) {
	sb.WriteString("\n## Summary & Metrics\n\n")
	fmt.Fprintf(sb, "* **File:** `%s`\n", r.SourceName)
	fmt.Fprintf(sb, "* **Language:** `%s`\n", strings.ToUpper(r.Language))
	fmt.Fprintf(sb, "* **Total Blocks Analyzed:** **%d**\n", len(r.Blocks))
	fmt.Fprintf(sb, "* **LLM Used:** `%s`\n\n", r.Model)
	fmt.Fprintf(sb, "This presentation will auto-advance every %s. "+
		"Focus on the code on the left and the Senior Engineer's explanation on the right.\n\n",
		autoSlideText(r.Options.AutoSlide))
}

func (r *Report) writeBlock(sb *strings.Builder, n int, b AnnotatedBlock) {
	upper := strings.ToUpper(r.Language)
	fmt.Fprintf(sb, "\n## Block %d: %s \n", n, b.Title)
	fmt.Fprintf(sb, "*(~%d lines of code)*\n\n", CountLines(b.Code))
	fmt.Fprintf(sb, "### 💻 Code (%s)\n", upper)
	fmt.Fprintf(sb, "```{%s}\n", r.Language)
	sb.WriteString(strings.TrimSpace(b.Code))
	sb.WriteString("\n```\n\n")
	sb.WriteString("### 🧠 Senior Explanation\n")
	sb.WriteString(strings.TrimSpace(b.Explanation))
	sb.WriteString("\n\n")
}

func autoSlideText(ms int) string {
	if ms%1000 == 0 {
		s := ms / 1000
		if s == 1 {
			return "1 second"
		}
		return fmt.Sprintf("%d seconds", s)
	}
	return fmt.Sprintf("%d milliseconds", ms)
}

// CountLines counts lines the way a reader would: a trailing newline does not
// start a new line and empty text has none.
func CountLines(s string) int {
	if s == "" {
		return 0
	}
	n := strings.Count(s, "\n")
	if !strings.HasSuffix(s, "\n") {
		n++
	}
	return n
}
