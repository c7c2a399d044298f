package main

import (
	"fmt"
	"io"

	"github.com/dgallion1/xmlreport/internal/config"
	"github.com/dgallion1/xmlreport/internal/rules"
	"github.com/spf13/cobra"
)

var rulesCmd = &cobra.Command{
	Use:   "rules [-t <type>...]",
	Short: "Show how each rules resource loaded",
	Args:  cobra.NoArgs,
	RunE:  runRules,
}

func init() {
	rulesCmd.Flags().StringSliceP("type", "t", nil, "also load the sort rule of these record types")
}

func runRules(cmd *cobra.Command, args []string) error {
	types, _ := cmd.Flags().GetStringSlice("type")
	store := openRules(cmd, config.Load(), newLogger(cmd))
	writeRules(cmd.OutOrStdout(), store, types)
	return nil
}

func writeRules(w io.Writer, store *rules.Store, types []string) {
	for _, t := range types {
		store.SortRule(t)
	}
	for _, st := range store.Diagnostics() {
		var state string
		switch st.State {
		case rules.StateLoaded:
			state = okColor.Sprint(st.State)
		case rules.StateInvalid:
			state = failColor.Sprint(st.State)
		default:
			state = warnColor.Sprint(st.State)
		}
		fmt.Fprintf(w, "%-28s %s", st.Resource, state)
		if st.Path != "" {
			fmt.Fprintf(w, "  %s", st.Path)
		}
		if reason := st.Reason(); reason != "" {
			fmt.Fprintf(w, "  %s", dimColor.Sprint(reason))
		}
		fmt.Fprintln(w)
	}

	labels, filter := store.Labels(), store.Filter()
	fmt.Fprintf(w, "\nlabel mappings: %d\nfilter keys: %d (%s)\n", labels.Value.Len(), filter.Value.Len(), filter.Value.Mode())
}
