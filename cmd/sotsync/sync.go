package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/sotsync/internal/adapters/session"
	"github.com/felixgeelhaar/sotsync/internal/app"
	"github.com/felixgeelhaar/sotsync/internal/domain/reconcile"
	"github.com/felixgeelhaar/sotsync/internal/tui"
)

var (
	syncPlatform  string
	syncFile      string
	syncInventory string
	syncDevice    string
	syncSections  []string
	syncApply     bool
	syncOutDir    string
	syncReview    bool
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Compute the commands converging a device to its desired state",
	Long: `Reconcile the selected sections of a device's running configuration
against the desired state in the inventory.

Stale lines are negated first, then every desired entity is asserted.
Without --apply the commands are only printed. Without --device every
device in the inventory is synced. With --review the pending commands are
shown in an interactive screen and only applied once approved.

Examples:
  sotsync sync --inventory sot.yaml --device r1 --section users,snmp
  sotsync sync --inventory sot.yaml --section snmp --apply --out-dir ./pending
  sotsync sync --inventory sot.yaml --section users --apply --review`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runSync(cmd, globalOptions(cmd), syncOptions{
			platform:  syncPlatform,
			file:      syncFile,
			inventory: syncInventory,
			device:    syncDevice,
			sections:  syncSections,
			apply:     syncApply,
			outDir:    syncOutDir,
			review:    syncReview,
			reviewer: func(plans []tui.DevicePlan) (*tui.ReviewResult, error) {
				return tui.RunSyncReview(cmd.Context(), plans, tui.ReviewOptions{
					Input:  cmd.InOrStdin(),
					Output: cmd.OutOrStdout(),
				})
			},
		})
	},
}

type syncOptions struct {
	platform  string
	file      string
	inventory string
	device    string
	sections  []string
	apply     bool
	outDir    string
	review    bool
	reviewer  func([]tui.DevicePlan) (*tui.ReviewResult, error)
}

func init() {
	syncCmd.Flags().StringVar(&syncPlatform, "platform", "", "override the device platform")
	syncCmd.Flags().StringVarP(&syncFile, "file", "f", "", "override the running configuration file")
	syncCmd.Flags().StringVarP(&syncInventory, "inventory", "i", "", "inventory file (YAML or TOML)")
	syncCmd.Flags().StringVarP(&syncDevice, "device", "d", "", "device to sync (default: all devices)")
	syncCmd.Flags().StringSliceVarP(&syncSections, "section", "s", nil, "sections to reconcile (users, snmp, ...)")
	syncCmd.Flags().BoolVar(&syncApply, "apply", false, "hand the commands to the executor")
	syncCmd.Flags().StringVar(&syncOutDir, "out-dir", "", "with --apply, write <device>.cmds files here instead of stdout")
	syncCmd.Flags().BoolVar(&syncReview, "review", false, "with --apply, review the commands interactively before applying")
	_ = syncCmd.MarkFlagRequired("inventory")
	_ = syncCmd.MarkFlagRequired("section")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, rt runtimeOptions, opts syncOptions) error {
	out := cmd.OutOrStdout()
	if opts.device == "" && (opts.file != "" || opts.platform != "") {
		return errors.New("--file and --platform require --device")
	}
	if opts.review && !opts.apply {
		return errors.New("--review requires --apply")
	}

	rt.inventory = opts.inventory
	if opts.apply {
		if opts.outDir != "" {
			rt.executor = session.NewFileExecutor(rt.fs, opts.outDir)
		} else {
			rt.executor = session.NewWriterExecutor(out)
		}
	}
	a, _, err := newApp(rt)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	devices := []string{opts.device}
	if opts.device == "" {
		if devices, err = a.Devices(ctx); err != nil {
			return err
		}
	}

	reqs := make([]app.SyncRequest, 0, len(devices))
	for _, d := range devices {
		reqs = append(reqs, app.NewSyncRequest(d, opts.sections...).
			WithPlatform(opts.platform).
			WithConfigPath(opts.file).
			WithApply(opts.apply))
	}

	st := defaultStyles()
	if opts.review {
		approved, err := reviewSync(ctx, a, reqs, opts.reviewer)
		if err != nil {
			return err
		}
		if !approved {
			fmt.Fprintln(out, st.Warning.Render("sync cancelled; nothing applied"))
			return nil
		}
	}

	var failed []error
	for _, r := range a.SyncAll(ctx, reqs) {
		if r.Result != nil {
			printSyncResult(out, st, r.Result)
		}
		if r.Err != nil {
			fmt.Fprintln(out, st.Error.Render(fmt.Sprintf("%s: %v", r.Device, r.Err)))
			failed = append(failed, r.Err)
			continue
		}
		if err := r.Result.Err(); err != nil {
			failed = append(failed, fmt.Errorf("%s: %w", r.Device, err))
		}
	}

	switch {
	case len(failed) == 1 && len(reqs) == 1:
		return failed[0]
	case len(failed) > 0:
		return fmt.Errorf("%d of %d devices had errors", len(failed), len(reqs))
	}
	return nil
}

// reviewSync computes the pending commands of every request and hands them
// to the reviewer. Devices that fail or have nothing to apply are not shown;
// when no device has commands the sync proceeds without review.
func reviewSync(ctx context.Context, a *app.App, reqs []app.SyncRequest, reviewer func([]tui.DevicePlan) (*tui.ReviewResult, error)) (bool, error) {
	dry := make([]app.SyncRequest, len(reqs))
	for i, r := range reqs {
		dry[i] = r.WithApply(false)
	}

	var plans []tui.DevicePlan
	for _, r := range a.SyncAll(ctx, dry) {
		if r.Err != nil || r.Result == nil || len(r.Result.Commands) == 0 {
			continue
		}
		plans = append(plans, devicePlan(r.Result))
	}
	if len(plans) == 0 {
		return true, nil
	}

	res, err := reviewer(plans)
	if err != nil {
		return false, err
	}
	return res.Approved, nil
}

func devicePlan(res *app.SyncResult) tui.DevicePlan {
	plan := tui.DevicePlan{
		Device:   res.Device,
		Platform: res.Platform,
		Commands: res.Commands,
	}
	for _, sec := range res.Sections {
		plan.Negations = append(plan.Negations, sec.Negations...)
		plan.Additions = append(plan.Additions, sec.Additions...)
		for _, f := range sec.Failures {
			plan.Errors = append(plan.Errors, f.Error())
		}
	}
	return plan
}

func printSyncResult(out io.Writer, st styles, res *app.SyncResult) {
	fmt.Fprintln(out, st.Header.Render(fmt.Sprintf("%s (%s)", res.Device, res.Platform)))
	for _, sec := range res.Sections {
		printSection(out, st, sec)
	}

	if len(res.Commands) == 0 {
		fmt.Fprintln(out, st.Muted.Render("  no changes"))
		fmt.Fprintln(out)
		return
	}
	if res.Applied {
		fmt.Fprintf(out, "  %d commands applied\n\n", len(res.Commands))
		return
	}
	fmt.Fprintf(out, "  %d commands (dry run):\n", len(res.Commands))
	for _, c := range res.Commands {
		fmt.Fprintln(out, "    "+c)
	}
	fmt.Fprintln(out)
}

func printSection(out io.Writer, st styles, res *reconcile.Result) {
	fmt.Fprintf(out, "  [%s] %d removed, %d asserted\n", res.Section, len(res.Negations), len(res.Additions))
	for _, n := range res.Negations {
		fmt.Fprintln(out, "    "+st.command(n, true))
	}
	for _, a := range res.Additions {
		fmt.Fprintln(out, "    "+st.command(a, false))
	}
	for _, s := range res.Skipped {
		fmt.Fprintln(out, "    "+st.Warning.Render(fmt.Sprintf("skipped line %d: %s", s.Index+1, s.Line)))
	}
	for _, f := range res.Failures {
		fmt.Fprintln(out, "    "+st.Error.Render(f.Error()))
	}
}
