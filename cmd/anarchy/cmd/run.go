package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Mstrodl/anarchy/internal/errors"
	"github.com/Mstrodl/anarchy/internal/eval"
	"github.com/Mstrodl/anarchy/internal/evalerr"
	"github.com/Mstrodl/anarchy/internal/parser"
	"github.com/Mstrodl/anarchy/internal/value"
)

var (
	evalExpr   string
	dumpAST    bool
	setInputs  []string
	printNames []string
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Parse and evaluate an Anarchy program once",
	Long: `Parse an Anarchy program and evaluate it once against a single set
of inputs, printing the requested output variables.

Examples:
  # Run a script file
  anarchy run scene.anarchy

  # Evaluate an inline expression
  anarchy run -e "r = time & 255; g = time & 255; b = time & 255;"

  # Seed inputs (r, g and b are printed by default)
  anarchy run --set time=300 --set x=10 --set y=5 scene.anarchy`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScript,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&evalExpr, "eval", "e", "", "evaluate inline code instead of reading from file")
	runCmd.Flags().BoolVar(&dumpAST, "dump-ast", false, "dump the parsed program (for debugging)")
	runCmd.Flags().StringArrayVar(&setInputs, "set", nil, "seed an input variable as name=value (repeatable)")
	runCmd.Flags().StringArrayVar(&printNames, "print", []string{"r", "g", "b"}, "output variable to print after evaluation (repeatable)")
}

func runScript(_ *cobra.Command, args []string) error {
	input, filename, err := readSource(evalExpr, args)
	if err != nil {
		return err
	}

	p, err := parser.New(input)
	if err != nil {
		return reportLanguageError(err, input, filename)
	}
	program, err := p.Parse()
	if err != nil {
		return reportLanguageError(err, input, filename)
	}

	if dumpAST {
		fmt.Println("Program:")
		fmt.Println(program.String())
		fmt.Println()
	}

	ctx := eval.NewExecutionContext(p.Symbols())
	for _, assignment := range setInputs {
		name, num, err := parseSetFlag(assignment)
		if err != nil {
			return err
		}
		ctx.Set(name, num)
	}

	evaluator := eval.New(program)
	if err := evaluator.Run(ctx); err != nil {
		return reportLanguageError(err, input, filename)
	}

	for _, name := range printNames {
		v, err := ctx.Get(name)
		if err != nil {
			fmt.Printf("%s: <unset>\n", name)
			continue
		}
		fmt.Printf("%s = %s\n", name, v.String())
	}

	return nil
}

func parseSetFlag(assignment string) (string, value.Number, error) {
	parts := strings.SplitN(assignment, "=", 2)
	if len(parts) != 2 {
		return "", 0, fmt.Errorf("--set expects name=value, got %q", assignment)
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 32)
	if err != nil {
		return "", 0, fmt.Errorf("--set %q: %w", assignment, err)
	}
	return strings.TrimSpace(parts[0]), value.Number(f), nil
}

func readSource(inline string, args []string) (input, filename string, err error) {
	if inline != "" {
		return inline, "<eval>", nil
	}
	if len(args) == 1 {
		content, err := os.ReadFile(args[0])
		if err != nil {
			return "", "", fmt.Errorf("failed to read file %s: %w", args[0], err)
		}
		return string(content), args[0], nil
	}
	return "", "", fmt.Errorf("either provide a file path or use -e flag for inline code")
}

func reportLanguageError(err error, source, filename string) error {
	if langErr, ok := err.(*evalerr.LanguageError); ok {
		compilerErr := errors.FromLanguageError(langErr, source, filename)
		fmt.Fprint(os.Stderr, compilerErr.Format(true))
		fmt.Fprintln(os.Stderr)
	}
	return err
}
