package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/cadcad/internal/compiler"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool                       `json:"valid"`
	Spaces []string                   `json:"spaces,omitempty"`
	Errors []compiler.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <specs-dir>",
		Short: "Validate space definitions",
		Long: `Validate CUE space definitions without building them.

Checks dimension types, names, references between spaces, reference
cycles, constraints, metrics, projections and operations.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, specsDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	errs, names, err := ValidateSpecsDir(specsDir)
	if err != nil {
		code, message := parseCompileError(err)
		return formatter.Fail(ExitCommandError, code, message, nil)
	}
	for _, name := range names {
		formatter.VerboseLog("Validated space: %s", name)
	}

	if len(errs) > 0 {
		return outputValidationErrors(formatter, errs)
	}

	return formatter.Result(ValidationResult{Valid: true, Spaces: names}, func(w io.Writer) {
		fmt.Fprintf(w, "%s All specs valid (%d space(s))\n", markOK, len(names))
	})
}

// ValidateSpecsDir loads every space in specsDir and validates them
// together. Compile errors from individual spaces are reported as
// validation errors; err is set only when the directory cannot be loaded.
func ValidateSpecsDir(specsDir string) (errs []compiler.ValidationError, names []string, err error) {
	loaded, loadErrs := compiler.LoadSpecs(specsDir, compiler.LoadModeCollectAll)
	if loaded == nil {
		return nil, nil, loadErrs[0]
	}

	for _, loadErr := range loadErrs {
		ve := compiler.ValidationError{Field: "load", Code: compiler.ErrCodeGeneric, Message: loadErr.Error()}
		var le *compiler.LoadError
		if errors.As(loadErr, &le) {
			ve.Code = le.Code
			ve.Message = le.Message
			if le.Pos.IsValid() {
				ve.Line = le.Pos.Line()
			}
		}
		errs = append(errs, ve)
	}
	if len(loaded.Spaces) == 0 {
		return errs, nil, nil
	}

	for _, spec := range loaded.Spaces {
		names = append(names, spec.Name)
	}
	errs = append(errs, compiler.ValidateAll(loaded.Spaces)...)
	return errs, names, nil
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, errs []compiler.ValidationError) error {
	exitErr := NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))

	if formatter.IsJSON() {
		err := formatter.encode(CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Errors: errs},
			Error:  &CLIError{Code: errs[0].Code, Message: errs[0].Message},
		})
		if err != nil {
			return err
		}
		return exitErr
	}

	fmt.Fprintf(formatter.Writer, "%s Validation failed\n\n", markFail)
	for _, err := range errs {
		if err.Line > 0 {
			fmt.Fprintf(formatter.Writer, "line %d\n", err.Line)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s: %s\n\n", err.Code, err.Field, err.Message)
	}
	return exitErr
}
