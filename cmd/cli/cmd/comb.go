package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/permcomb/pkg/model"
)

var subsetSize int

// combCmd represents the comb command
var combCmd = &cobra.Command{
	Use:   "comb",
	Short: "Enumerate all k-element combinations of a sequence",
	Long: `Enumerate every k-element combination drawn from the given elements in
parallel. Each combination is emitted in ascending order; the space of
C(n,k) combinations is split across worker threads and, with
--cpu-index/--cpu-cnt, across processes.`,
	RunE: runComb,
}

func init() {
	rootCmd.AddCommand(combCmd)
	addRunFlags(combCmd)

	combCmd.Flags().IntVarP(&subsetSize, "subset", "k", 0, "Combination size (required)")
	combCmd.MarkFlagRequired("subset")

	binName := BinName()
	combCmd.Example = `  # All 2-element combinations of four elements
  ` + binName + ` comb -e a,b,c,d -k 2

  # All 3-element combinations across three worker threads
  ` + binName + ` comb -e 1,2,3,4,5 -k 3 -t 3`
}

func runComb(cmd *cobra.Command, args []string) error {
	elements, err := parseElements(elementsFlag)
	if err != nil {
		return err
	}
	if subsetSize <= 0 {
		return fmt.Errorf("subset size must be positive, got %d", subsetSize)
	}
	if subsetSize > len(elements) {
		return fmt.Errorf("subset size %d exceeds element count %d", subsetSize, len(elements))
	}

	run, cleanup, err := buildRunner()
	if err != nil {
		return err
	}
	defer cleanup()

	req := buildRunRequest(model.RunKindComb, elements, subsetSize)

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
