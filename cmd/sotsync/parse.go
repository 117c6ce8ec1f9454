package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/sotsync/internal/domain/configparser"
)

var (
	parsePlatform  string
	parseFile      string
	parseFQDN      bool
	parseInterface string
	parseGlobal    string
	parseFind      string
)

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Parse a running configuration and query it",
	Long: `Parse a running configuration with the platform's parser.

Without a query flag, prints the FQDN and the interface table.

Examples:
  sotsync parse --platform ios --file r1.cfg
  sotsync parse --platform ios --file r1.cfg --global '^ntp server (\S+)'
  sotsync parse --platform firewall --file fw1.ini --interface port1`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		opts := globalOptions(cmd)
		return runParse(cmd, opts, parseOptions{
			platform: parsePlatform,
			file:     parseFile,
			fqdn:     parseFQDN,
			iface:    parseInterface,
			global:   parseGlobal,
			find:     parseFind,
		})
	},
}

type parseOptions struct {
	platform string
	file     string
	fqdn     bool
	iface    string
	global   string
	find     string
}

func init() {
	parseCmd.Flags().StringVar(&parsePlatform, "platform", "", "device platform (ios, linux, firewall)")
	parseCmd.Flags().StringVarP(&parseFile, "file", "f", "", "running configuration file")
	parseCmd.Flags().BoolVar(&parseFQDN, "fqdn", false, "print the device FQDN")
	parseCmd.Flags().StringVar(&parseInterface, "interface", "", "print one interface")
	parseCmd.Flags().StringVar(&parseGlobal, "global", "", "regex to search in the global configuration")
	parseCmd.Flags().StringVar(&parseFind, "find", "", "regex to search in every interface")
	_ = parseCmd.MarkFlagRequired("platform")
	_ = parseCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, rt runtimeOptions, opts parseOptions) error {
	a, _, err := newApp(rt)
	if err != nil {
		return err
	}
	parser, err := a.Parse(cmd.Context(), opts.platform, opts.file)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	st := defaultStyles()
	queried := false

	if opts.fqdn {
		queried = true
		fqdn, ok := parser.FQDN()
		if !ok {
			return fmt.Errorf("no FQDN configured in %s", opts.file)
		}
		fmt.Fprintln(out, fqdn)
	}
	if opts.iface != "" {
		queried = true
		rec, ok := parser.Interface(opts.iface)
		if !ok {
			return fmt.Errorf("interface %q not found", opts.iface)
		}
		printInterfaces(out, []configparser.InterfaceRecord{rec})
	}
	if opts.global != "" {
		queried = true
		v, ok := parser.FindInGlobal(opts.global)
		if !ok {
			return fmt.Errorf("no global line matches %q", opts.global)
		}
		fmt.Fprintln(out, v)
	}
	if opts.find != "" {
		queried = true
		matches := parser.FindInInterfaces(opts.find)
		if len(matches) == 0 {
			fmt.Fprintln(out, st.Muted.Render("no interface lines match"))
		}
		for _, m := range matches {
			fmt.Fprintf(out, "%s: %s\n", m.Interface, m.Value)
		}
	}
	if queried {
		return nil
	}

	fmt.Fprintln(out, st.Header.Render(fmt.Sprintf("%s (%s)", opts.file, parser.Platform())))
	if fqdn, ok := parser.FQDN(); ok {
		fmt.Fprintf(out, "FQDN: %s\n", fqdn)
	}
	fmt.Fprintln(out)
	printInterfaces(out, parser.Interfaces())
	return nil
}

func printInterfaces(out io.Writer, records []configparser.InterfaceRecord) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTERFACE\tADDRESS\tENABLED\tDESCRIPTION")
	for _, r := range records {
		addr := "-"
		if p, ok := r.PrimaryAddress(); ok {
			addr = p.String()
		}
		fmt.Fprintf(w, "%s\t%s\t%t\t%s\n", r.Name, addr, r.Enabled, r.Description)
	}
	_ = w.Flush()
}
