package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"code-atlas/src/model"
	"code-atlas/src/service/detector"
)

func (h *Handler) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("code-atlas %s\n", h.cfg.Agent.Version)
		},
	}
}

func (h *Handler) detectorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "detectors",
		Short: "List available detectors and the smells they report",
		Run: func(cmd *cobra.Command, args []string) {
			runner := detector.NewRunner(h.cfg)
			fmt.Println("Detectors:")
			for _, name := range runner.ListDetectors() {
				state := "enabled"
				if !runner.GetDetector(name).IsEnabled() {
					state = "disabled"
				}
				fmt.Printf("  - %-15s %s\n", name, state)
			}
			fmt.Println("")
			fmt.Println("Smell types:")
			for _, smell := range model.AllSmellTypes {
				fmt.Printf("  - %s\n", smell)
			}
		},
	}
}
