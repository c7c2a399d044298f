package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/dgallion1/xmlreport/internal/config"
	"github.com/dgallion1/xmlreport/internal/pipeline"
	"github.com/dgallion1/xmlreport/internal/rules"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var convertCmd = &cobra.Command{
	Use:   "convert -t <type> [-t <type>...] [flags] <file.xml> [file.xml...]",
	Short: "Render the selected record types of each input as a report",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runConvert,
}

func init() {
	convertCmd.Flags().StringSliceP("type", "t", nil, "record type (element local name) to include; repeatable or comma separated")
	convertCmd.Flags().StringP("output", "o", "", "output file (single input only)")
	convertCmd.Flags().StringP("format", "f", "", "output format (pdf|docx|md|html); default from DEFAULT_FORMAT")
	convertCmd.Flags().String("title", "", "report title; default REPORT_TITLE or the input file name")
	convertCmd.Flags().StringArray("where", nil, "keep only instances matching type:Label=prefix; repeatable")
	convertCmd.Flags().IntP("jobs", "j", 0, "parallel conversions (0 = GOMAXPROCS)")
}

type convertOptions struct {
	types  []string
	output string
	format string
	title  string
	where  []pipeline.InstanceFilter
	jobs   int
}

type convertOutcome struct {
	input  string
	output string
	result pipeline.Result
	err    error
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if err := cfg.ValidateReport(); err != nil {
		return err
	}
	log := newLogger(cmd)

	opts := convertOptions{}
	opts.types, _ = cmd.Flags().GetStringSlice("type")
	opts.output, _ = cmd.Flags().GetString("output")
	opts.format, _ = cmd.Flags().GetString("format")
	opts.title, _ = cmd.Flags().GetString("title")
	opts.jobs, _ = cmd.Flags().GetInt("jobs")
	whereExprs, _ := cmd.Flags().GetStringArray("where")

	where, err := pipeline.ParseInstanceFilters(whereExprs)
	if err != nil {
		return err
	}
	opts.where = where
	if opts.output != "" && len(args) > 1 {
		return errors.New("--output can only be used with a single input file")
	}

	store := openRules(cmd, cfg, log)
	conv := pipeline.NewConverter(store, pipeline.ConverterOptions{
		DefaultTitle:  cfg.ReportTitle,
		DefaultFormat: cfg.DefaultFormat,
		Render:        cfg.RenderOptions(),
		Logger:        log,
	})

	outcomes, err := convertFiles(cmd.Context(), conv, args, opts)
	if err != nil {
		return err
	}

	p := newPrinter(cmd)
	for _, st := range store.Diagnostics() {
		if st.State == rules.StateInvalid {
			p.warn("%s ignored: %s", st.Path, st.Reason())
		}
	}
	failed := 0
	for _, o := range outcomes {
		if o.err != nil {
			failed++
			p.fail("%s: %v", o.input, o.err)
			continue
		}
		detail := fmt.Sprintf("%d records, %d tables", o.result.Records, o.result.Tables)
		if o.result.Pages > 0 {
			detail += fmt.Sprintf(", %d pages", o.result.Pages)
		}
		p.ok("%s -> %s %s", o.input, o.output, dimColor.Sprintf("(%s)", detail))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d conversions failed", failed, len(outcomes))
	}
	return nil
}

// convertFiles converts every input with bounded parallelism. A failing
// input does not stop the others; outcomes keep the input order.
func convertFiles(ctx context.Context, conv *pipeline.Converter, inputs []string, opts convertOptions) ([]convertOutcome, error) {
	renderer, err := conv.Renderer(opts.format)
	if err != nil {
		return nil, err
	}

	jobs := opts.jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	outcomes := make([]convertOutcome, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(inputs)))

	for i, input := range inputs {
		output := opts.output
		if output == "" {
			output = strings.TrimSuffix(input, filepath.Ext(input)) + renderer.Extension()
		}
		outcomes[i] = convertOutcome{input: input, output: output}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := convertFile(gctx, conv, input, output, opts)
			outcomes[i].result = res
			outcomes[i].err = err
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

// convertFile renders into memory first so failed conversions leave no output file.
func convertFile(ctx context.Context, conv *pipeline.Converter, input, output string, opts convertOptions) (pipeline.Result, error) {
	f, err := os.Open(input)
	if err != nil {
		return pipeline.Result{}, err
	}
	defer f.Close()

	var buf bytes.Buffer
	res, err := conv.Convert(ctx, f, input, pipeline.Request{
		Types:  opts.types,
		Title:  opts.title,
		Format: opts.format,
		Where:  opts.where,
	}, &buf)
	if err != nil {
		return res, err
	}
	if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
		return res, fmt.Errorf("write %s: %w", output, err)
	}
	return res, nil
}
