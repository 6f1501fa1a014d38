package cmd

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"runtime"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Mstrodl/anarchy/internal/eval"
	"github.com/Mstrodl/anarchy/internal/parser"
	"github.com/Mstrodl/anarchy/internal/symtab"
	"github.com/Mstrodl/anarchy/internal/value"
)

var (
	renderWidth   int
	renderHeight  int
	renderTime    float64
	renderWorkers int
	renderOut     string
)

var renderCmd = &cobra.Command{
	Use:   "render <file>",
	Short: "Render an Anarchy program to a PPM image using a worker pool",
	Long: `Render evaluates an Anarchy program once per pixel of a width x height
image, feeding it x, y, time, and random as inputs and reading r, g, b
back as outputs. Rows are distributed across a worker pool: the program
is parsed exactly once and each worker gets its own ExecutionContext, so
rows render concurrently without any variable slot being shared across
goroutines.`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().IntVar(&renderWidth, "width", 100, "image width in pixels")
	renderCmd.Flags().IntVar(&renderHeight, "height", 100, "image height in pixels")
	renderCmd.Flags().Float64Var(&renderTime, "time", 0, "value fed to the program's time input")
	renderCmd.Flags().IntVar(&renderWorkers, "workers", 0, "number of concurrent rows to render (0 = GOMAXPROCS)")
	renderCmd.Flags().StringVar(&renderOut, "out", "out.ppm", "output PPM file path")
}

func runRender(cmd *cobra.Command, args []string) error {
	content, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", args[0], err)
	}

	p, err := parser.New(string(content))
	if err != nil {
		return reportLanguageError(err, string(content), args[0])
	}
	program, err := p.Parse()
	if err != nil {
		return reportLanguageError(err, string(content), args[0])
	}
	evaluator := eval.New(program)
	symbols := p.Symbols()
	// Resolve the host inputs before the workers start, so the shared
	// symbol table is only read while rows render concurrently.
	for _, name := range []string{"x", "y", "time", "random"} {
		symbols.Resolve(symtab.VariableKey{Name: name, Scope: symtab.TopLevel})
	}

	jobID := uuid.New()
	verbose, _ := cmd.Flags().GetBool("verbose")
	if verbose {
		fmt.Fprintf(os.Stderr, "render %s: %dx%d, time=%g\n", jobID, renderWidth, renderHeight, renderTime)
	}

	pixels := make([]byte, renderWidth*renderHeight*3)

	group, _ := errgroup.WithContext(context.Background())
	workers := renderWorkers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	group.SetLimit(workers)

	for y := 0; y < renderHeight; y++ {
		y := y
		group.Go(func() error {
			return renderRow(evaluator, symbols, y, pixels)
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}

	return writePPM(renderOut, renderWidth, renderHeight, pixels)
}

func renderRow(evaluator *eval.Evaluator, symbols *symtab.SymbolTable, y int, pixels []byte) error {
	ctx := eval.NewExecutionContext(symbols)
	rng := rand.New(rand.NewSource(int64(y) + 1))

	for x := 0; x < renderWidth; x++ {
		ctx.Reset()
		ctx.Set("x", value.Number(x))
		ctx.Set("y", value.Number(y))
		ctx.Set("time", value.Number(renderTime))
		ctx.Set("random", value.Number(rng.Float32()))

		if err := evaluator.Run(ctx); err != nil {
			return fmt.Errorf("pixel (%d,%d): %w", x, y, err)
		}

		base := (y*renderWidth + x) * 3
		pixels[base+0] = channelByte(ctx, "r")
		pixels[base+1] = channelByte(ctx, "g")
		pixels[base+2] = channelByte(ctx, "b")
	}
	return nil
}

func channelByte(ctx *eval.ExecutionContext, name string) byte {
	v, err := ctx.Get(name)
	if err != nil {
		return 0
	}
	n, ok := v.(value.Number)
	if !ok {
		return 0
	}
	f := float32(n)
	switch {
	case f <= 0:
		return 0
	case f >= 255:
		return 255
	default:
		return byte(f)
	}
}

func writePPM(path string, width, height int, pixels []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "P6\n%d %d\n255\n", width, height); err != nil {
		return err
	}
	_, err = f.Write(pixels)
	return err
}
