package contract

import (
	"context"
	"strings"

	"contract-kit/log"

	"go.uber.org/zap"
)

// CompilerOutput is what a compiler reports. Contracts are keyed by
// qualified name ("Example.sol:Example").
type CompilerOutput struct {
	Errors    []string
	Contracts map[string]Artifact
}

// Compiler compiles a set of named sources, asking imports for any file
// they import that is not part of sources.
type Compiler interface {
	Compile(ctx context.Context, sources map[string]string, optimize bool, imports ImportFunc) (*CompilerOutput, error)
}

// CompileError carries the errors reported by the compiler.
type CompileError struct {
	Errors []string
}

func (e *CompileError) Error() string {
	return "compile: " + strings.Join(e.Errors, "; ")
}

// Compile compiles modules found in the tree. Any compiler reported error
// fails the whole compilation; no partial artifacts are returned.
func (t *SourceTree) Compile(ctx context.Context, compiler Compiler, optimize bool, modules []string) (map[string]Artifact, error) {
	sources := t.PrepareSources(modules)
	out, err := compiler.Compile(ctx, sources, optimize, t.FindImports)
	if err != nil {
		return nil, err
	}
	if out == nil {
		return map[string]Artifact{}, nil
	}
	if len(out.Errors) > 0 {
		log.Logger.Error("compile failed", zap.Strings("modules", modules), zap.Strings("errors", out.Errors))
		return nil, &CompileError{Errors: out.Errors}
	}
	return out.Contracts, nil
}
