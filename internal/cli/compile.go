package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/cadcad/internal/compiler"
	"github.com/roach88/cadcad/internal/ir"
	"github.com/roach88/cadcad/internal/space"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
}

// CompiledSpace is a space spec together with its expanded shape.
type CompiledSpace struct {
	ir.SpaceSpec
	Shape     space.Shape `json:"shape"`
	ShapeHash string      `json:"shape_hash"`
}

// CompilationResult holds the compiled spaces in build order.
type CompilationResult struct {
	IRVersion string          `json:"ir_version"`
	SpecHash  string          `json:"spec_hash"`
	Spaces    []CompiledSpace `json:"spaces"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <specs-dir>",
		Short: "Compile CUE space definitions to JSON",
		Long: `Compile CUE space definitions, link them and print each space's
spec together with its expanded shape and shape hash.

Spaces are listed with referenced spaces first.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

func runCompile(opts *CompileOptions, specsDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	cat, err := loadCatalog(formatter, specsDir)
	if err != nil {
		return err
	}

	result, err := buildCompilationResult(cat)
	if err != nil {
		return formatter.Fail(ExitCommandError, compiler.ErrCodeGeneric, err.Error(), nil)
	}

	if opts.Output != "" {
		if err := writeResultToFile(result, opts.Output); err != nil {
			return formatter.Fail(ExitCommandError, compiler.ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), nil)
		}
	}

	return formatter.Result(result, func(w io.Writer) {
		fmt.Fprintf(w, "%s Compiled %d space(s)\n\n", markOK, len(result.Spaces))
		for _, s := range result.Spaces {
			fmt.Fprintf(w, "  %s%s\n", s.Name, s.Shape)
			if n := len(s.Constraints) + len(s.Metrics) + len(s.Projections); n > 0 {
				fmt.Fprintf(w, "    %d constraint(s), %d metric(s), %d projection(s)\n",
					len(s.Constraints), len(s.Metrics), len(s.Projections))
			}
			if len(s.Operations) > 0 {
				fmt.Fprintf(w, "    operations: %v\n", s.Operations)
			}
		}
		if opts.Output != "" {
			fmt.Fprintf(w, "\nWrote compiled spaces to %s\n", opts.Output)
		}
	})
}

// buildCompilationResult collects every linked space in build order.
func buildCompilationResult(cat *compiler.Catalog) (*CompilationResult, error) {
	result := &CompilationResult{IRVersion: ir.IRVersion}
	specs := make([]any, 0, len(cat.Names()))

	for _, name := range cat.Names() {
		s, _ := cat.Lookup(name)
		spec, _ := cat.Spec(name)
		shape := s.Shape()
		hash, err := shape.Hash()
		if err != nil {
			return nil, fmt.Errorf("hashing shape of %s: %w", name, err)
		}
		result.Spaces = append(result.Spaces, CompiledSpace{SpaceSpec: spec, Shape: shape, ShapeHash: hash})

		raw, err := json.Marshal(spec)
		if err != nil {
			return nil, fmt.Errorf("marshaling %s: %w", name, err)
		}
		v, err := ir.ParseValue(raw)
		if err != nil {
			return nil, fmt.Errorf("canonicalizing %s: %w", name, err)
		}
		specs = append(specs, v)
	}

	canonical, err := ir.MarshalCanonical(specs)
	if err != nil {
		return nil, fmt.Errorf("canonicalizing specs: %w", err)
	}
	result.SpecHash = ir.SpecHash(canonical)
	return result, nil
}

// writeResultToFile writes the compilation result as indented JSON.
func writeResultToFile(result *CompilationResult, filename string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling spaces: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	return nil
}
