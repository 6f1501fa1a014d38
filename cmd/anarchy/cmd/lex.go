package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Mstrodl/anarchy/internal/lexer"
	"github.com/Mstrodl/anarchy/internal/token"
)

var (
	showPos    bool
	showType   bool
	onlyErrors bool
)

var lexCmd = &cobra.Command{
	Use:   "lex [file]",
	Short: "Tokenize an Anarchy file or expression",
	Long: `Tokenize (lex) an Anarchy program and print the resulting tokens.

Examples:
  anarchy lex scene.anarchy
  anarchy lex -e "r = time & 255;"
  anarchy lex --show-type --show-pos scene.anarchy
  anarchy lex --only-errors scene.anarchy`,
	Args: cobra.MaximumNArgs(1),
	RunE: lexScript,
}

func init() {
	rootCmd.AddCommand(lexCmd)

	lexCmd.Flags().StringVarP(&evalExpr, "eval", "e", "", "tokenize inline code instead of reading from file")
	lexCmd.Flags().BoolVar(&showPos, "show-pos", false, "show token positions (line:column)")
	lexCmd.Flags().BoolVar(&showType, "show-type", false, "show token type names")
	lexCmd.Flags().BoolVar(&onlyErrors, "only-errors", false, "show only illegal tokens")
}

func lexScript(cmd *cobra.Command, args []string) error {
	input, filename, err := readSource(evalExpr, args)
	if err != nil {
		return err
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	if verbose {
		fmt.Printf("Tokenizing: %s\n", filename)
		fmt.Printf("Input length: %d bytes\n", len(input))
		fmt.Println("---")
	}

	l := lexer.New(input)

	tokenCount := 0
	for {
		tok := l.NextToken()

		if onlyErrors && tok.Type != token.ILLEGAL {
			if tok.Type == token.EOF {
				break
			}
			continue
		}

		tokenCount++
		printToken(tok)

		if tok.Type == token.EOF {
			break
		}
	}

	errorCount := len(l.Errors())
	if verbose {
		fmt.Println("---")
		fmt.Printf("Total tokens: %d\n", tokenCount)
		if errorCount > 0 {
			fmt.Printf("Errors: %d\n", errorCount)
		}
	}

	if errorCount > 0 {
		return fmt.Errorf("found %d lexical error(s)", errorCount)
	}

	return nil
}

func printToken(tok token.Token) {
	var output string

	if showType {
		output = fmt.Sprintf("[%-10s]", tok.Type)
	}

	if tok.Type == token.EOF {
		output += " EOF"
	} else if tok.Type == token.ILLEGAL {
		output += fmt.Sprintf(" ILLEGAL: %q", tok.Literal)
	} else {
		output += fmt.Sprintf(" %q", tok.Literal)
	}

	if showPos {
		output += fmt.Sprintf(" @%d:%d", tok.Pos.Line, tok.Pos.Column)
	}

	fmt.Fprintln(os.Stdout, output)
}
