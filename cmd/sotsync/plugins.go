package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var pluginsCmd = &cobra.Command{
	Use:   "plugins",
	Short: "List registered parsers and hooks",
	Long:  `Display every (category, key) registration and the bundles that provided them.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runPlugins(cmd, globalOptions(cmd))
	},
}

func init() {
	rootCmd.AddCommand(pluginsCmd)
}

func runPlugins(cmd *cobra.Command, rt runtimeOptions) error {
	a, _, err := newApp(rt)
	if err != nil {
		return err
	}
	reg := a.Registry()
	out := cmd.OutOrStdout()
	st := defaultStyles()

	fmt.Fprintln(out, st.Header.Render("Registrations"))
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CATEGORY\tKEY")
	for _, e := range reg.Entries() {
		fmt.Fprintf(w, "%s\t%s\n", e.Category, e.Key)
	}
	_ = w.Flush()

	fmt.Fprintln(out)
	fmt.Fprintln(out, st.Header.Render("Bundles"))
	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tVERSION\tAPI\tHANDLERS\tDESCRIPTION")
	for _, b := range reg.Bundles() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", b.Name, b.Version, b.APIVersion, b.Registrations, b.Description)
	}
	_ = w.Flush()

	fmt.Fprintln(out)
	fmt.Fprintln(out, st.Header.Render("Sections"))
	for _, s := range a.Catalog().Sections() {
		fmt.Fprintf(out, "  %s\n", s)
	}
	return nil
}
