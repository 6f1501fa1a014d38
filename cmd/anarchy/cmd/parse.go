package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Mstrodl/anarchy/internal/errors"
	"github.com/Mstrodl/anarchy/internal/evalerr"
	"github.com/Mstrodl/anarchy/internal/parser"
)

var parseExpression bool

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse Anarchy source code and display the program",
	Long: `Parse Anarchy source code and display the parsed function table and
top-level statements.

If no file is provided, reads from stdin. Use -e to pass the program
source as the first argument instead; it is parsed as a full program of
statements, not as a bare expression.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().BoolVarP(&parseExpression, "expression", "e", false, "parse program source given as the first argument")
}

func runParse(_ *cobra.Command, args []string) error {
	var input string
	filename := "<stdin>"

	switch {
	case parseExpression:
		if len(args) == 0 {
			return fmt.Errorf("no expression provided")
		}
		input = args[0]
		filename = "<eval>"
	case len(args) > 0:
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("error reading file: %w", err)
		}
		input = string(data)
		filename = args[0]
	default:
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("error reading stdin: %w", err)
		}
		input = string(data)
	}

	p, err := parser.New(input)
	if err != nil {
		return reportParseError(err, input, filename)
	}
	program, err := p.Parse()
	if err != nil {
		return reportParseError(err, input, filename)
	}

	fmt.Println(program.String())
	return nil
}

func reportParseError(err error, source, filename string) error {
	if langErr, ok := err.(*evalerr.LanguageError); ok {
		compilerErr := errors.FromLanguageError(langErr, source, filename)
		fmt.Fprint(os.Stderr, compilerErr.Format(true))
		fmt.Fprintln(os.Stderr)
	}
	return err
}
