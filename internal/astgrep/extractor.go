package astgrep

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/MikeSquared-Agency/walkthrough/internal/language"
)

const (
	titleFirstLineRunes = 50

	TitleEntireFile = "Entire File Logic"
	TitleFallback   = "Code File Logic"
)

// Block is one logical unit of source code to be explained.
type Block struct {
	Title string
	Code  string
}

// Match is a single record of `sg run --json` output. Only the fields used
// for slicing are decoded.
type Match struct {
	Text  string `json:"text"`
	Range struct {
		Start Position `json:"start"`
		End   Position `json:"end"`
	} `json:"range"`
}

// Position is a 0-indexed line/column pair.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// searchResult is either a list of matches or the reason the search failed.
type searchResult struct {
	matches []Match
	failure error
}

type Extractor struct {
	runner Runner
	logger *slog.Logger
}

func New(runner Runner, logger *slog.Logger) *Extractor {
	return &Extractor{runner: runner, logger: logger}
}

// Extract splits the file at path into blocks using the structural pattern in
// cfg. Tool failures degrade to a single whole-file block; only read and
// decoding errors are returned.
func (e *Extractor) Extract(ctx context.Context, path string, cfg language.Config) ([]Block, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}
	if !utf8.Valid(raw) {
		return nil, fmt.Errorf("read source: %s is not valid UTF-8", path)
	}
	content := string(raw)

	if strings.TrimSpace(content) == "" {
		e.logger.Info("source is blank, nothing to extract", "path", path)
		return nil, nil
	}

	e.logger.Info("searching for blocks",
		"language", cfg.Language,
		"pattern", cfg.Pattern,
	)

	res := e.search(ctx, path, cfg)
	if res.failure != nil {
		e.logger.Error("ast-grep search failed, using whole file",
			"error", res.failure,
			"binary_hint", "ensure sg is on PATH",
			"pattern_hint", "try simplifying the language pattern",
		)
		return []Block{{Title: TitleFallback, Code: content}}, nil
	}

	blocks := BuildBlocks(content, cfg.Language, res.matches)
	if len(blocks) == 0 {
		return []Block{{Title: TitleEntireFile, Code: strings.TrimSpace(content)}}, nil
	}
	return blocks, nil
}

func (e *Extractor) search(ctx context.Context, path string, cfg language.Config) searchResult {
	args := Args(cfg.Pattern, cfg.Language, path)
	e.logger.Debug("running ast-grep", "args", strings.Join(args, " "))

	out, err := e.runner.Run(ctx, args)
	if err != nil {
		return searchResult{failure: err}
	}

	var matches []Match
	if err := json.Unmarshal(out, &matches); err != nil {
		return searchResult{failure: fmt.Errorf("decode ast-grep output: %w", err)}
	}
	return searchResult{matches: matches}
}

// BuildBlocks slices content by the line ranges of matches, in order.
//
// A match is skipped when its code is empty or its start line was already
// claimed by an earlier match. Accepted matches claim every line they span, so
// a later match that starts before a claimed region but overlaps it is kept.
func BuildBlocks(content, lang string, matches []Match) []Block {
	lines := splitLines(content)
	claimed := make(map[int]bool)
	var blocks []Block

	for _, m := range matches {
		start := clamp(m.Range.Start.Line, 0, len(lines))
		end := clamp(m.Range.End.Line+1, start, len(lines))

		code := strings.TrimSpace(strings.Join(lines[start:end], "\n"))
		if code == "" || claimed[start] {
			continue
		}

		blocks = append(blocks, Block{Title: blockTitle(lang, code), Code: code})
		for ln := start; ln < end; ln++ {
			claimed[ln] = true
		}
	}
	return blocks
}

func blockTitle(lang, code string) string {
	first, _, _ := strings.Cut(code, "\n")
	first = strings.TrimRight(first, "\r")
	if r := []rune(first); len(r) > titleFirstLineRunes {
		first = string(r[:titleFirstLineRunes])
	}
	return fmt.Sprintf("%s Block: %s...", capitalize(lang), first)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return strings.ToUpper(string(r)) + strings.ToLower(s[size:])
}

// splitLines splits on line boundaries without keeping a trailing empty line.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.TrimSuffix(s, "\n")
	return strings.Split(s, "\n")
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
