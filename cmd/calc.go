package main

import (
	"fmt"

	"breathpacer/internal/core/fitness"

	"github.com/spf13/cobra"
)

func newCalcCmd(state *cli) *cobra.Command {
	var (
		inputs fitness.Inputs
		sex    int
	)

	calcCmd := &cobra.Command{
		Use:   "calc",
		Short: "Compute cycle-ergometer fitness estimates",
		Long: `Compute BMI, VO2max and work-rate estimates from age, weight, height,
physical activity rating (PAR) and sex. Values are printed at 4 decimals.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs.Sex = fitness.Sex(sex)
			results, err := fitness.Evaluate(inputs)
			if err != nil {
				return err
			}
			state.logger.Debug().Float64("bmi", results.BMI).Msg("fitness estimates computed")
			_, err = fmt.Fprint(cmd.OutOrStdout(), results.Text())
			return err
		},
	}

	flags := calcCmd.Flags()
	flags.Float64Var(&inputs.Age, "age", 0, "age in years (1-150)")
	flags.Float64Var(&inputs.Weight, "weight", 0, "weight in kg")
	flags.Float64Var(&inputs.Height, "height", 0, "height in m")
	flags.Float64Var(&inputs.PAR, "par", 0, "physical activity rating (0-15)")
	flags.IntVar(&sex, "sex", 0, "0 for female, 1 for male")
	for _, name := range []string{"age", "weight", "height", "par"} {
		_ = calcCmd.MarkFlagRequired(name)
	}

	return calcCmd
}
