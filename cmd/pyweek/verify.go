package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/pyweekorg/cli/internal/verify"
	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <file>",
	Short: "Check that a submission zip is in the proper format",
	Args:  cobra.ExactArgs(1),
	RunE:  runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	file := args[0]

	problems, err := verify.Check(file)
	if err != nil {
		return err
	}

	if len(problems) > 0 {
		for _, p := range problems {
			color.Red("%s", p)
		}

		return fmt.Errorf("%d problems found while verifying %s", len(problems), file)
	}

	color.Green("File %s is valid.", file)

	return nil
}
