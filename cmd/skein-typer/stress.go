package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/skeinlang/skein/pkg/typer"
	"github.com/skeinlang/skein/pkg/types"
)

func stressCmd(cfg *Config) *cobra.Command {
	var (
		defCount int
		seed     int64
	)
	cmd := &cobra.Command{
		Use:   "stress",
		Short: "Generate and check a synthetic program",
		Long: `stress generates a deterministic synthetic program and times a full
check over it. The generator cycles through templates covering control
flow, polymorphism, effects, handlers, records, and enums.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := loadOptions(cfg)
			root := syntheticProgram(defCount, seed)

			checker, err := typer.New(root, opts)
			if err != nil {
				return err
			}

			start := time.Now()
			typed, checkErr := checker.CheckAll(cmd.Context())
			elapsed := time.Since(start)
			if typed == nil {
				return checkErr
			}

			var hist [3]int
			recovered := 0
			for _, td := range typed.Defs {
				hist[td.Purity]++
				if td.Recovered {
					recovered++
				}
			}

			rate := float64(len(typed.Defs)) / elapsed.Seconds()
			cmd.Printf("checked %d definitions in %s (%.0f defs/sec, %d workers)\n",
				len(typed.Defs), elapsed.Round(time.Millisecond), rate, opts.Parallelism)
			cmd.Printf("purity: %d pure, %d impure, %d control-impure\n",
				hist[types.PurityPure], hist[types.PurityImpure], hist[types.PurityControlImpure])

			if checkErr != nil {
				var diags *typer.InferenceErrors
				if !errors.As(checkErr, &diags) {
					return checkErr
				}
				return fmt.Errorf("%d diagnostics, %d definitions recovered", diags.Len(), recovered)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&defCount, "defs", 1000, "Number of definitions to generate")
	cmd.Flags().Int64Var(&seed, "seed", 1, "Seed for the workload generator")
	return cmd
}
