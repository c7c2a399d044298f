package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/dgallion1/xmlreport/internal/extract"
	"github.com/dgallion1/xmlreport/internal/parser"
	"github.com/dgallion1/xmlreport/internal/report"
	"github.com/dgallion1/xmlreport/internal/rules"
)

// Request selects what to convert and how.
type Request struct {
	Types  []string
	Title  string // empty: converter default, then the input's base name
	Format string // empty: converter default
	Where  []InstanceFilter

	// OnPhase, when set, is called as the conversion enters each phase.
	OnPhase func(JobStatus)
}

// Result summarizes one conversion.
type Result struct {
	Records  int    `json:"records"`
	Tables   int    `json:"tables"`
	Rows     int    `json:"rows"`
	Pages    int    `json:"pages"`
	Bytes    int64  `json:"bytes"`
	Format   string `json:"format"`
	Duration int64  `json:"duration_ms"`
}

// ConverterOptions configures a Converter.
type ConverterOptions struct {
	DefaultTitle  string
	DefaultFormat string
	Render        report.Options
	Stats         *ConversionStats
	Logger        *slog.Logger
}

// Converter runs parse, extract, process and render for one input.
type Converter struct {
	processor *Processor
	opts      ConverterOptions
	log       *slog.Logger
}

func NewConverter(store *rules.Store, opts ConverterOptions) *Converter {
	if opts.DefaultFormat == "" {
		opts.DefaultFormat = "pdf"
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Converter{processor: NewProcessor(store), opts: opts, log: log}
}

// Renderer resolves the renderer a request would use.
func (c *Converter) Renderer(format string) (report.Renderer, error) {
	if format == "" {
		format = c.opts.DefaultFormat
	}
	return report.ForFormat(format, c.opts.Render)
}

// Convert reads XML from r and writes the rendered report to w. Missing
// record types are reported as *extract.InputError before anything is written.
func (c *Converter) Convert(ctx context.Context, r io.Reader, filename string, req Request, w io.Writer) (Result, error) {
	renderer, err := c.Renderer(req.Format)
	if err != nil {
		return Result{}, err
	}
	res, err := c.convert(ctx, r, filename, req, renderer, w)
	if c.opts.Stats != nil {
		if err != nil {
			c.opts.Stats.RecordFailure(res.Format)
		} else {
			c.opts.Stats.Record(res.Format, res.Duration)
		}
	}
	return res, err
}

func (c *Converter) convert(ctx context.Context, r io.Reader, filename string, req Request, renderer report.Renderer, w io.Writer) (Result, error) {
	start := time.Now()
	phase := func(s JobStatus) {
		if req.OnPhase != nil {
			req.OnPhase(s)
		}
	}
	format := formatName(renderer)

	phase(StatusParsing)
	p, err := parser.ForFile(filename)
	if err != nil {
		return Result{Format: format}, err
	}
	doc, err := p.Parse(r, filename)
	if err != nil {
		return Result{Format: format}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{Format: format}, err
	}

	phase(StatusExtracting)
	records, err := extract.Records(doc, req.Types)
	if err != nil {
		return Result{Format: format}, err
	}

	title := req.Title
	if title == "" {
		title = c.opts.DefaultTitle
	}
	if title == "" {
		title = doc.Title
	}
	rep := c.processor.Build(title, records, req.Where)
	if err := ctx.Err(); err != nil {
		return Result{Format: format}, err
	}

	phase(StatusRendering)
	st, err := renderer.Render(w, rep)
	if err != nil {
		return Result{Format: format}, err
	}

	elapsed := time.Since(start)
	res := Result{
		Records:  len(records),
		Tables:   st.Tables,
		Rows:     st.Rows,
		Pages:    st.Pages,
		Bytes:    st.Bytes,
		Format:   format,
		Duration: elapsed.Milliseconds(),
	}
	c.log.Info("converted",
		"file", filename,
		"records", res.Records,
		"tables", res.Tables,
		"pages", res.Pages,
		"format", res.Format,
		"duration_ms", res.Duration,
	)
	return res, nil
}

func formatName(r report.Renderer) string {
	ext := r.Extension()
	if len(ext) > 0 && ext[0] == '.' {
		return ext[1:]
	}
	return ext
}

// ValidateRequest checks the format before any input is read.
func (c *Converter) ValidateRequest(req Request) error {
	if _, err := c.Renderer(req.Format); err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}
	return nil
}
