package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dgallion1/xmlreport/internal/config"
	"github.com/dgallion1/xmlreport/internal/rules"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// Version is overridden at build time via -ldflags.
var Version = "0.1.0-dev"

var rootCmd = &cobra.Command{
	Use:   "xmlreport",
	Short: "Convert XML instances into tabular reports",
	Long: `xmlreport flattens selected record types of an XML document into
labelled key/value tables and renders them as PDF, DOCX, Markdown or HTML.
Labels, filters and row order come from the rules directory.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		mode, _ := cmd.Flags().GetString("color")
		switch mode {
		case "on":
			color.NoColor = false
		case "off":
			color.NoColor = true
		case "auto":
		default:
			return fmt.Errorf("--color must be auto, on or off")
		}
		return nil
	},
}

func main() {
	rootCmd.Version = Version

	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(pathsCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(rulesCmd)

	cfg := config.Load()
	rootCmd.PersistentFlags().String("rules-dir", cfg.RulesDir, "directory with labelMappings, filterSettings and sortOrder_<type> files")
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "only print errors")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log rule loading and conversion details")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		color.New(color.FgRed, color.Bold).Fprint(os.Stderr, "error: ")
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// newLogger writes text logs to stderr at a level chosen by --quiet/--verbose.
func newLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelWarn
	if v, _ := cmd.Flags().GetBool("verbose"); v {
		level = slog.LevelDebug
	}
	if q, _ := cmd.Flags().GetBool("quiet"); q {
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// openRules opens the rules store named by --rules-dir.
func openRules(cmd *cobra.Command, cfg config.Config, log *slog.Logger) *rules.Store {
	dir, _ := cmd.Flags().GetString("rules-dir")
	return rules.Open(rules.Options{
		Dir:                dir,
		FragmentPrecedence: cfg.Precedence(),
		Logger:             log,
	})
}

// printer writes status lines unless --quiet is set.
type printer struct {
	out   io.Writer
	quiet bool
}

func newPrinter(cmd *cobra.Command) printer {
	q, _ := cmd.Flags().GetBool("quiet")
	return printer{out: cmd.OutOrStdout(), quiet: q}
}

var (
	okColor   = color.New(color.FgGreen, color.Bold)
	failColor = color.New(color.FgRed, color.Bold)
	warnColor = color.New(color.FgYellow)
	dimColor  = color.New(color.Faint)
)

func (p printer) ok(format string, args ...any) {
	if p.quiet {
		return
	}
	okColor.Fprint(p.out, "ok   ")
	fmt.Fprintf(p.out, format+"\n", args...)
}

func (p printer) fail(format string, args ...any) {
	failColor.Fprint(p.out, "FAIL ")
	fmt.Fprintf(p.out, format+"\n", args...)
}

func (p printer) warn(format string, args ...any) {
	if p.quiet {
		return
	}
	warnColor.Fprint(p.out, "warn ")
	fmt.Fprintf(p.out, format+"\n", args...)
}
