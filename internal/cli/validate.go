package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"rrsched/internal/job"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <scenario.yml>",
		Short: "Check a scenario file without running it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := job.LoadScenario(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (quantum=%d devices=%d tasks=%d)\n",
				args[0], sc.Scheduler.Quantum, sc.Scheduler.Devices, len(sc.Tasks))
			return nil
		},
	}
}
