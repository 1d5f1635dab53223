package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"dxsim/adapters/excel"
	"dxsim/app"
	"dxsim/domain/diagnostic"
	"dxsim/internal/config"
	"dxsim/internal/errors"
	"dxsim/internal/report"

	"github.com/spf13/cobra"
)

// runFlags are shared by run and sweep
type runFlags struct {
	scenario    string
	size        int
	conditions  map[string]string
	test        string
	sensitivity float64
	specificity float64
	seed        uint64
	replicates  int

	asJSON     bool
	asMarkdown bool
	xlsxPath   string
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.scenario, "scenario", "", "YAML scenario file; explicit flags override its values")
	cmd.Flags().IntVar(&f.size, "size", 1000, "Population size")
	cmd.Flags().StringToStringVar(&f.conditions, "condition", nil, "Condition prevalences as name=prevalence (repeatable)")
	cmd.Flags().StringVar(&f.test, "test", "", "Condition the test detects")
	cmd.Flags().Float64Var(&f.sensitivity, "sensitivity", 0.9, "Test sensitivity (0 to 1)")
	cmd.Flags().Float64Var(&f.specificity, "specificity", 0.9, "Test specificity (0 to 1)")
	cmd.Flags().Uint64Var(&f.seed, "seed", 0, "Random seed; 0 picks one from the clock")
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "Print the result as JSON")
	cmd.Flags().BoolVar(&f.asMarkdown, "markdown", false, "Print the result as a markdown report")
	cmd.Flags().StringVar(&f.xlsxPath, "xlsx", "", "Also write the result to this xlsx file")
}

// resolve merges the scenario file, if any, with explicitly set flags
func (f *runFlags) resolve(cmd *cobra.Command) (config.Scenario, error) {
	var s config.Scenario
	if f.scenario != "" {
		loaded, err := config.LoadScenario(f.scenario)
		if err != nil {
			return s, err
		}
		s = *loaded
	} else {
		s = config.Scenario{
			PopulationSize: f.size,
			TestCondition:  f.test,
			Sensitivity:    f.sensitivity,
			Specificity:    f.specificity,
			Seed:           f.seed,
			Replicates:     f.replicates,
		}
	}

	changed := cmd.Flags().Changed
	if changed("size") {
		s.PopulationSize = f.size
	}
	if changed("test") {
		s.TestCondition = f.test
	}
	if changed("sensitivity") {
		s.Sensitivity = f.sensitivity
	}
	if changed("specificity") {
		s.Specificity = f.specificity
	}
	if changed("seed") {
		s.Seed = f.seed
	}
	if changed("replicates") {
		s.Replicates = f.replicates
	}
	if len(f.conditions) > 0 {
		conditions, err := parseConditions(f.conditions)
		if err != nil {
			return s, err
		}
		s.Conditions = conditions
	}

	if s.TestCondition == "" && len(s.Conditions) == 1 {
		for name := range s.Conditions {
			s.TestCondition = name
		}
	}
	return s, nil
}

func parseConditions(raw map[string]string) (map[string]float64, error) {
	out := make(map[string]float64, len(raw))
	for name, value := range raw {
		p, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, errors.InvalidInput(fmt.Sprintf("prevalence for %s must be a number, got %q", name, value))
		}
		out[strings.TrimSpace(name)] = p
	}
	return out, nil
}

func requestFromScenario(s config.Scenario) app.RunRequest {
	return app.RunRequest{
		Population:  s.PopulationConfig(),
		Condition:   s.TestCondition,
		Sensitivity: s.Sensitivity,
		Specificity: s.Specificity,
		Seed:        s.Seed,
	}
}

func newRunCmd() *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one simulated test and print its statistics",
		Long: `Generate a synthetic population, apply a test with the given sensitivity and
specificity to one condition, and print the resulting diagnostic statistics.

Example:
  dxsim run --size 1000 --condition flu=0.12,asthma=0.05 --test flu --sensitivity 0.9 --specificity 0.8 --seed 42
  dxsim run --scenario flu.yaml --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			scenario, err := flags.resolve(cmd)
			if err != nil {
				return err
			}
			c, err := loadContainer()
			if err != nil {
				return err
			}

			result, err := c.Simulation.Run(cmd.Context(), requestFromScenario(scenario))
			if err != nil {
				return cliError(err)
			}
			return printRun(cmd.OutOrStdout(), result, flags)
		},
	}

	flags.register(cmd)
	return cmd
}

func newSweepCmd() *cobra.Command {
	var flags runFlags
	var parallelism int

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Repeat a simulated test and summarise how its statistics vary",
		Long: `Run the same simulated test many times with independent random streams and
report the mean, spread and 95% range of each statistic.

Example:
  dxsim sweep --size 500 --condition flu=0.1 --sensitivity 0.85 --specificity 0.95 --replicates 1000 --seed 7`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			scenario, err := flags.resolve(cmd)
			if err != nil {
				return err
			}
			c, err := loadContainer()
			if err != nil {
				return err
			}

			svc := c.Sweep
			if cmd.Flags().Changed("parallelism") {
				svc = app.NewSweepService(c.RNG, c.Observer, c.Logger, parallelism, c.Config.Simulation.Replicates).
					WithDefaultSeed(c.Config.Simulation.Seed)
			}

			result, err := svc.Sweep(cmd.Context(), app.SweepRequest{
				RunRequest: requestFromScenario(scenario),
				Replicates: scenario.Replicates,
			})
			if err != nil {
				return cliError(err)
			}
			return printSweep(cmd.OutOrStdout(), result, flags)
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVar(&flags.replicates, "replicates", 0, "Number of replicates (default from SIM_REPLICATES)")
	cmd.Flags().IntVar(&parallelism, "parallelism", 0, "Replicates run at once (default from SIM_PARALLELISM)")
	return cmd
}

func printRun(w io.Writer, result *app.RunResult, flags runFlags) error {
	if flags.xlsxPath != "" {
		if err := excel.WriteRunXLSX(flags.xlsxPath, result.Report()); err != nil {
			return errors.ExportFailed("xlsx", err)
		}
	}

	switch {
	case flags.asJSON:
		return writeJSON(w, result)
	case flags.asMarkdown:
		_, err := io.WriteString(w, report.Markdown(result.Report()))
		return err
	}

	m := result.Metrics
	for _, line := range result.Messages {
		fmt.Fprintln(w, line)
	}
	fmt.Fprintln(w)
	writeTwoByTwo(w, result.TwoByTwo)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Sensitivity %.2f%%  Specificity %.2f%%  Accuracy %.2f%%\n", m.Sensitivity, m.Specificity, m.Accuracy)
	fmt.Fprintf(w, "PPV %.2f%%  NPV %.2f%%\n", m.PositivePredictiveValue, m.NegativePredictiveValue)
	fmt.Fprintf(w, "LR+ %s  LR- %s\n", report.Ratio(m.PositiveLikelihoodRatio), report.Ratio(m.NegativeLikelihoodRatio))
	fmt.Fprintf(w, "Seed %d  Fingerprint %s\n", result.Seed, result.Fingerprint.Short())
	return nil
}

func printSweep(w io.Writer, result *app.SweepResult, flags runFlags) error {
	if flags.xlsxPath != "" {
		if err := excel.WriteSweepXLSX(flags.xlsxPath, result.Summary); err != nil {
			return errors.ExportFailed("xlsx", err)
		}
	}

	switch {
	case flags.asJSON:
		return writeJSON(w, result)
	case flags.asMarkdown:
		_, err := io.WriteString(w, report.SweepMarkdown(result.Summary))
		return err
	}

	s := result.Summary
	fmt.Fprintf(w, "%d of %d replicates completed (%d degenerate), seed %d\n\n", s.Completed, s.Replicates, s.Degenerate, result.Seed)
	fmt.Fprintf(w, "%-28s %10s %10s %10s %10s\n", "statistic", "mean", "std dev", "2.5%", "97.5%")
	for _, r := range s.Rates {
		fmt.Fprintf(w, "%-28s %10.4f %10.4f %10.4f %10.4f\n", r.Name, r.Mean, r.StdDev, r.Lower, r.Upper)
	}
	return nil
}

func writeTwoByTwo(w io.Writer, t diagnostic.TwoByTwo) {
	fmt.Fprintf(w, "%-16s %16s %16s\n", "", t.ColumnLabels[0], t.ColumnLabels[1])
	for i, label := range t.RowLabels {
		fmt.Fprintf(w, "%-16s %16d %16d\n", label, t.Cells[i][0], t.Cells[i][1])
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// cliError prefers the user-facing simulation message
func cliError(err error) error {
	return fmt.Errorf("%s (%s)", errors.UserMessage(err), errors.GetCode(err))
}
