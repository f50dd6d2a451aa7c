package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/walkthrough/internal/astgrep"
	"github.com/MikeSquared-Agency/walkthrough/internal/explain"
	"github.com/MikeSquared-Agency/walkthrough/internal/hermes"
	"github.com/MikeSquared-Agency/walkthrough/internal/language"
	"github.com/MikeSquared-Agency/walkthrough/internal/report"
)

// Publisher delivers run events. *hermes.Client satisfies it.
type Publisher interface {
	Publish(subject string, data any) error
}

// Pipeline runs extract, explain and render for one file, strictly in order.
type Pipeline struct {
	extractor  *astgrep.Extractor
	explainer  *explain.Explainer
	publisher  Publisher
	model      string
	options    report.Options
	outputPath string
	logger     *slog.Logger
}

// Result describes a completed run.
type Result struct {
	RunID        uuid.UUID
	Report       *report.Report
	OutputPath   string
	FailedBlocks int
}

// New builds a pipeline. publisher may be nil.
func New(ext *astgrep.Extractor, exp *explain.Explainer, publisher Publisher, model string, opts report.Options, outputPath string, logger *slog.Logger) *Pipeline {
	if outputPath == "" {
		outputPath = report.DefaultOutputPath
	}
	return &Pipeline{
		extractor:  ext,
		explainer:  exp,
		publisher:  publisher,
		model:      model,
		options:    opts,
		outputPath: outputPath,
		logger:     logger,
	}
}

// Run processes the source at path. Extraction and inference failures degrade
// inside the report; only read and write errors are returned.
func (p *Pipeline) Run(ctx context.Context, path string, cfg language.Config) (*Result, error) {
	runID := uuid.New()
	logger := p.logger.With("run_id", runID.String())

	blocks, err := p.extractor.Extract(ctx, path, cfg)
	if err != nil {
		return nil, fmt.Errorf("extract blocks: %w", err)
	}
	logger.Info("extracted code blocks", "count", len(blocks), "path", path)

	annotated := make([]report.AnnotatedBlock, 0, len(blocks))
	failed := 0
	for i, b := range blocks {
		logger.Info("processing block", "index", i+1, "title", b.Title)
		explanation := p.explainer.Explain(ctx, b.Code, b.Title)
		if explanation == p.explainer.FailureNotice() {
			failed++
		}
		annotated = append(annotated, report.AnnotatedBlock{
			Title:       b.Title,
			Code:        b.Code,
			Explanation: explanation,
		})
	}

	rep := report.New(path, p.model, annotated, p.options)
	if err := rep.Write(p.outputPath); err != nil {
		return nil, err
	}
	logger.Info("report written",
		"output", p.outputPath,
		"blocks", len(annotated),
		"failed_blocks", failed,
	)

	res := &Result{
		RunID:        runID,
		Report:       rep,
		OutputPath:   p.outputPath,
		FailedBlocks: failed,
	}
	p.announce(logger, res, cfg)
	return res, nil
}

func (p *Pipeline) announce(logger *slog.Logger, res *Result, cfg language.Config) {
	if p.publisher == nil {
		return
	}
	evt := hermes.ReportGenerated{
		RunID:      res.RunID.String(),
		Source:     res.Report.SourceName,
		Language:   cfg.Language,
		Model:      p.model,
		Blocks:     len(res.Report.Blocks),
		Failed:     res.FailedBlocks,
		OutputPath: res.OutputPath,
		Timestamp:  time.Now().UTC(),
	}
	if err := p.publisher.Publish(hermes.SubjectReportGenerated, evt); err != nil {
		logger.Warn("failed to publish report event", "error", err)
	}
}
