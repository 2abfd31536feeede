package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/permcomb/pkg/model"
)

// permCmd represents the perm command
var permCmd = &cobra.Command{
	Use:   "perm",
	Short: "Enumerate all permutations of a sequence",
	Long: `Enumerate every permutation of the given elements in parallel.

The total space of n! permutations is split into contiguous slices, one per
worker thread. With --cpu-index/--cpu-cnt the space is first split across
processes, so a cluster can enumerate one space cooperatively: every process
runs the same command with its own --cpu-index.

Within one thread, permutations appear in lexicographic order; across
threads the slices are contiguous and ascending, so the stored artifact is
in global order.`,
	RunE: runPerm,
}

func init() {
	rootCmd.AddCommand(permCmd)
	addRunFlags(permCmd)

	binName := BinName()
	permCmd.Example = `  # All permutations of four elements, four worker threads
  ` + binName + ` perm -e 1,2,3,4 -t 4

  # Print each permutation as it is emitted
  ` + binName + ` perm -e a,b,c --print --no-store

  # Shard 0 of 2 (run shard 1 on another machine)
  ` + binName + ` perm -e 1,2,3,4,5,6,7,8 -t 8 --cpu-index 0 --cpu-cnt 2 --uuid batch-42`
}

func runPerm(cmd *cobra.Command, args []string) error {
	elements, err := parseElements(elementsFlag)
	if err != nil {
		return err
	}

	run, cleanup, err := buildRunner()
	if err != nil {
		return err
	}
	defer cleanup()

	req := buildRunRequest(model.RunKindPerm, elements, 0)

	result, err := run.Run(cmd.Context(), req)
	if err != nil {
		if result != nil {
			reportResult(result)
		}
		return err
	}

	reportResult(result)
	if result.Failed() {
		return fmt.Errorf("run finished with %d worker failure(s)", len(result.Errors))
	}
	return nil
}
