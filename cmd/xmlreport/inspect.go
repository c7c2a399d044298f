package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgallion1/xmlreport/internal/doctree"
	"github.com/dgallion1/xmlreport/internal/report"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file.pdf|file.docx|file.md|file.html>",
	Short: "Read back a rendered report and show its structure",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func init() {
	inspectCmd.Flags().Bool("text", false, "print the extracted text")
}

func runInspect(cmd *cobra.Command, args []string) error {
	showText, _ := cmd.Flags().GetBool("text")
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	return inspectFile(cmd.OutOrStdout(), args[0], data, showText)
}

func inspectFile(w io.Writer, name string, data []byte, showText bool) error {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		s, err := report.Inspect(data)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "pages: %d\n", s.Pages)
		if s.Valid {
			fmt.Fprintf(w, "valid: %s\n", okColor.Sprint("yes"))
		} else {
			fmt.Fprintf(w, "valid: %s (%s)\n", failColor.Sprint("no"), s.ValidationError)
		}
		if showText {
			for i, text := range s.Text {
				dimColor.Fprintf(w, "--- page %d ---\n", i+1)
				fmt.Fprintln(w, text)
			}
		}
		if !s.Valid {
			return fmt.Errorf("%s failed validation", name)
		}
		return nil

	case ".docx":
		s, err := report.InspectDOCX(data)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "paragraphs: %d\ntables: %d\n", len(s.Paragraphs), len(s.Tables))
		if showText {
			for _, p := range s.Paragraphs {
				fmt.Fprintln(w, p)
			}
			for i, t := range s.Tables {
				dimColor.Fprintf(w, "--- table %d ---\n", i+1)
				for _, row := range t {
					fmt.Fprintln(w, strings.Join(row, " | "))
				}
			}
		}
		return nil
	}

	case ".md", ".markdown":
		rep, err := report.ReadMarkdown(data)
		if err != nil {
			return err
		}
		writeOutline(w, rep, showText)
		return nil

	case ".html", ".htm":
		rep, err := report.ReadHTML(bytes.NewReader(data))
		if err != nil {
			return err
		}
		writeOutline(w, rep, showText)
		return nil
	}
	return fmt.Errorf("inspect: unsupported file type %q (want .pdf, .docx, .md or .html)", filepath.Ext(name))
}

func writeOutline(w io.Writer, rep doctree.Report, showText bool) {
	fmt.Fprintf(w, "title: %s
tables: %d
rows: %d
", rep.Title, len(rep.Tables), rep.RowCount())
	if !showText {
		return
	}
	for _, t := range rep.Tables {
		dimColor.Fprintf(w, "--- %s ---
", t.Title)
		for _, row := range t.Rows {
			fmt.Fprintf(w, "%s | %s\n", row.Label, row.Value)
		}
	}
}
