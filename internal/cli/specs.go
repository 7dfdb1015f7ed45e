package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/roach88/cadcad/internal/compiler"
	"github.com/roach88/cadcad/internal/ir"
	"github.com/roach88/cadcad/internal/space"
	"github.com/roach88/cadcad/internal/store"
)

// CLI-level error codes that have no compiler or space equivalent.
const (
	ErrCodeUnknownSpace = "E_UNKNOWN_SPACE"
	ErrCodeInvalidData  = "E_INVALID_DATA"
	ErrCodeStore        = "E_STORE"
)

// loadCatalog loads, compiles and links the specs in specsDir. Failures are
// written through f and returned as command errors.
func loadCatalog(f *OutputFormatter, specsDir string) (*compiler.Catalog, error) {
	loaded, errs := compiler.LoadSpecs(specsDir, compiler.LoadModeCollectAll)
	if len(errs) > 0 {
		code, message := parseCompileError(errs[0])
		return nil, f.Fail(ExitCommandError, code, message, nil)
	}
	f.VerboseLog("Found %d CUE file(s) in %s", loaded.FileCount, specsDir)

	cat, err := compiler.Link(loaded.Spaces)
	if err != nil {
		var linkErr *compiler.LinkError
		if errors.As(err, &linkErr) && len(linkErr.Errors) > 0 {
			first := linkErr.Errors[0]
			return nil, f.Fail(ExitCommandError, first.Code, first.Error(), linkErr.Errors)
		}
		return nil, f.Fail(ExitCommandError, compiler.ErrCodeGeneric, err.Error(), nil)
	}
	return cat, nil
}

// lookupSpace finds a space in the catalog, primitives included.
func lookupSpace(f *OutputFormatter, cat *compiler.Catalog, name string) (*space.Space, error) {
	if name == "" {
		return nil, f.Fail(ExitCommandError, ErrCodeUnknownSpace, "--space is required", nil)
	}
	s, ok := cat.Lookup(name)
	if !ok {
		return nil, f.Fail(ExitCommandError, ErrCodeUnknownSpace, fmt.Sprintf("unknown space %q", name), cat.Names())
	}
	return s, nil
}

// parseData decodes a JSON object flag, or the file it names with a
// leading '@'. Ints stay ints and numbers with a decimal point or exponent
// are floats.
func parseData(f *OutputFormatter, flag, value string) (ir.Object, error) {
	raw := []byte(value)
	if path, ok := strings.CutPrefix(value, "@"); ok {
		var err error
		if raw, err = os.ReadFile(path); err != nil {
			return nil, f.Fail(ExitCommandError, ErrCodeInvalidData, fmt.Sprintf("--%s: %v", flag, err), nil)
		}
	}
	obj, err := ir.ParseObject(raw)
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeInvalidData, fmt.Sprintf("--%s: %v", flag, err), nil)
	}
	return obj, nil
}

// spaceFailure reports an error from the space package. Space errors are
// validation failures; anything else is a command error.
func spaceFailure(f *OutputFormatter, err error) error {
	var spaceErr *space.Error
	if !errors.As(err, &spaceErr) {
		return f.Fail(ExitCommandError, compiler.ErrCodeGeneric, err.Error(), nil)
	}

	var details any
	if len(spaceErr.Mismatches) > 0 {
		mismatches := make([]string, len(spaceErr.Mismatches))
		for i, m := range spaceErr.Mismatches {
			mismatches[i] = m.String()
		}
		details = mismatches
	}
	if err := f.Error(string(spaceErr.Code), spaceErr.Error(), details); err != nil {
		return err
	}
	if !f.IsJSON() && details == nil && spaceErr.Block != "" {
		fmt.Fprintf(f.Writer, "  block: %s\n", spaceErr.Block)
	}
	return WrapExitError(ExitFailure, string(spaceErr.Code), err)
}

// openStore opens the points database. An empty path is a command error.
func openStore(f *OutputFormatter, path string, mustExist bool) (*store.Store, error) {
	if path == "" {
		return nil, f.Fail(ExitCommandError, ErrCodeStore, "--db is required (or set CADCAD_DB)", nil)
	}
	if mustExist {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, f.Fail(ExitCommandError, ErrCodeStore, fmt.Sprintf("database not found: %s", path), nil)
		}
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeStore, fmt.Sprintf("failed to open database: %v", err), nil)
	}
	return st, nil
}

// parseCompileError extracts error code and message from a load error.
func parseCompileError(err error) (string, string) {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return compiler.MapFieldToErrorCode(compileErr.Field), compileErr.Message
	}
	var loadErr *compiler.LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code, loadErr.Message
	}
	return compiler.ErrCodeGeneric, err.Error()
}

// canonical renders point data for text output.
func canonical(obj ir.Object) string {
	b, err := ir.MarshalCanonical(obj)
	if err != nil {
		return fmt.Sprintf("%v", obj)
	}
	return string(b)
}
