package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/sotsync/internal/app"
	"github.com/felixgeelhaar/sotsync/internal/domain/pipeline"
)

var (
	onboardPlatform  string
	onboardFile      string
	onboardInventory string
	onboardDevice    string
)

var onboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Run the onboarding chains for a device",
	Long: `Parse a device's running configuration and run the device, interface
and config-context chains. The resulting records are printed as YAML.

Examples:
  sotsync onboard --inventory sot.yaml --device r1
  sotsync onboard --inventory sot.yaml --device fw1 --platform firewall --file fw1.ini`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runOnboard(cmd, globalOptions(cmd), onboardOptions{
			platform:  onboardPlatform,
			file:      onboardFile,
			inventory: onboardInventory,
			device:    onboardDevice,
		})
	},
}

type onboardOptions struct {
	platform  string
	file      string
	inventory string
	device    string
}

func init() {
	onboardCmd.Flags().StringVar(&onboardPlatform, "platform", "", "override the device platform")
	onboardCmd.Flags().StringVarP(&onboardFile, "file", "f", "", "override the running configuration file")
	onboardCmd.Flags().StringVarP(&onboardInventory, "inventory", "i", "", "inventory file (YAML or TOML)")
	onboardCmd.Flags().StringVarP(&onboardDevice, "device", "d", "", "device to onboard")
	_ = onboardCmd.MarkFlagRequired("inventory")
	_ = onboardCmd.MarkFlagRequired("device")
	rootCmd.AddCommand(onboardCmd)
}

// onboardReport is the YAML view of an onboarding outcome.
type onboardReport struct {
	RunID         string                    `yaml:"run_id"`
	Device        map[string]any            `yaml:"device"`
	Interfaces    []map[string]any          `yaml:"interfaces"`
	ConfigContext map[string]any            `yaml:"config_context"`
	Chains        map[pipeline.Chain]string `yaml:"chains"`
}

func runOnboard(cmd *cobra.Command, rt runtimeOptions, opts onboardOptions) error {
	rt.inventory = opts.inventory
	a, _, err := newApp(rt)
	if err != nil {
		return err
	}

	outcome, err := a.Onboard(cmd.Context(), app.OnboardRequest{
		Device:     opts.device,
		Platform:   opts.platform,
		ConfigPath: opts.file,
	})
	if err != nil {
		return err
	}

	report := onboardReport{
		RunID:         outcome.RunID,
		Device:        outcome.DeviceProperties,
		ConfigContext: outcome.ConfigContext,
		Chains:        make(map[pipeline.Chain]string, len(outcome.States)),
	}
	for _, iface := range outcome.Interfaces {
		report.Interfaces = append(report.Interfaces, iface)
	}
	for c, s := range outcome.States {
		report.Chains[c] = string(s)
	}

	data, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode onboarding report: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
