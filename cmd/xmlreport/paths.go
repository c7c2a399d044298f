package main

import (
	"fmt"
	"io"
	"os"

	"github.com/dgallion1/xmlreport/internal/doctree"
	"github.com/dgallion1/xmlreport/internal/extract"
	"github.com/dgallion1/xmlreport/internal/parser"
	"github.com/spf13/cobra"
)

var pathsCmd = &cobra.Command{
	Use:   "paths -t <type> [-t <type>...] <file.xml>",
	Short: "List the flattened paths of each record, for writing rule files",
	Args:  cobra.ExactArgs(1),
	RunE:  runPaths,
}

func init() {
	pathsCmd.Flags().StringSliceP("type", "t", nil, "record type to list; repeatable or comma separated")
	pathsCmd.Flags().Bool("generic", false, "print each path once with sibling indexes removed")
}

func runPaths(cmd *cobra.Command, args []string) error {
	types, _ := cmd.Flags().GetStringSlice("type")
	generic, _ := cmd.Flags().GetBool("generic")

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	doc, err := (&parser.XMLParser{}).Parse(f, args[0])
	if err != nil {
		return err
	}
	records, err := extract.Records(doc, types)
	if err != nil {
		return err
	}
	writePaths(cmd.OutOrStdout(), records, generic)
	return nil
}

// writePaths prints "path: value" per entry under a header per instance.
// In generic mode it prints each index-free path once per type instead.
func writePaths(w io.Writer, records []doctree.Record, generic bool) {
	if generic {
		seen := make(map[string]bool)
		for _, rec := range records {
			for _, e := range rec.Entries {
				key := rec.Type + "\x00" + extract.StripIndexes(e.Path)
				if seen[key] {
					continue
				}
				seen[key] = true
				fmt.Fprintln(w, extract.StripIndexes(e.Path))
			}
		}
		return
	}

	counts := make(map[string]int)
	for i, rec := range records {
		counts[rec.Type]++
		if i > 0 {
			fmt.Fprintln(w)
		}
		dimColor.Fprintf(w, "# <%s> #%d\n", rec.Type, counts[rec.Type])
		for _, e := range rec.Entries {
			fmt.Fprintf(w, "%s: %s\n", e.Path, e.Value)
		}
	}
}
