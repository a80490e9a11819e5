package contract

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"contract-kit/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, name, contents string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(contents), 0o644))
}

func testTree(t *testing.T) *SourceTree {
	root := t.TempDir()
	writeFile(t, root, "contract1.sol", "contract C1 {}")
	writeFile(t, root, "x/contract2.sol", "contract C2 {}")
	writeFile(t, root, "lib/a/Math.sol", "library MathA {}")
	writeFile(t, root, "lib/b/Math.sol", "library MathB {}")
	writeFile(t, root, "lib/SafeMath.sol", "library SafeMath {}")
	return &SourceTree{Root: root, Ext: ".sol"}
}

func TestNewSourceTree(t *testing.T) {
	tree := NewSourceTree(config.CompilerConfig{})
	wd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(wd, "contracts"), tree.Root)
	assert.Equal(t, ".sol", tree.Ext)

	abs := t.TempDir()
	tree = NewSourceTree(config.CompilerConfig{ContractsDirectory: abs, SourceExtension: ".vy"})
	assert.Equal(t, abs, tree.Root)
	assert.Equal(t, ".vy", tree.Ext)
}

func TestPrepareSources(t *testing.T) {
	tree := testTree(t)

	sources := tree.PrepareSources([]string{"contract1", "x/contract2", "missing"})
	assert.Equal(t, map[string]string{
		"contract1.sol": "contract C1 {}",
		"contract2.sol": "contract C2 {}",
		"missing.sol":   "",
	}, sources)
}

func TestFindImports(t *testing.T) {
	tree := testTree(t)

	assert.Equal(t, "library MathA {}", tree.FindImports("Math.sol").Contents)
	assert.Equal(t, "library MathB {}", tree.FindImports("b/Math.sol").Contents)
	assert.Equal(t, "library SafeMath {}", tree.FindImports("SafeMath.sol").Contents)
	assert.Equal(t, "", tree.FindImports("Nope.sol").Contents)

	// relative imports from nested contracts
	assert.Equal(t, "library SafeMath {}", tree.FindImports("../lib/SafeMath.sol").Contents)
	assert.Equal(t, "library SafeMath {}", tree.FindImports("../../lib/SafeMath.sol").Contents)
	assert.Equal(t, "library MathB {}", tree.FindImports("./b/Math.sol").Contents)
	assert.Equal(t, "", tree.FindImports("../Nope.sol").Contents)

	// suffix must match whole path segments
	_, ok := tree.FindFirstPathRecursively("afeMath.sol")
	assert.False(t, ok)
}

type fakeCompiler struct {
	out     *CompilerOutput
	err     error
	sources map[string]string
	imports ImportFunc
}

func (c *fakeCompiler) Compile(ctx context.Context, sources map[string]string, optimize bool, imports ImportFunc) (*CompilerOutput, error) {
	c.sources, c.imports = sources, imports
	return c.out, c.err
}

func TestCompile(t *testing.T) {
	tree := testTree(t)
	compiler := &fakeCompiler{out: &CompilerOutput{Contracts: map[string]Artifact{"contract1.sol:C1": exampleArtifact}}}

	got, err := tree.Compile(context.Background(), compiler, true, []string{"contract1"})
	require.NoError(t, err)
	assert.Equal(t, map[string]Artifact{"contract1.sol:C1": exampleArtifact}, got)
	assert.Equal(t, map[string]string{"contract1.sol": "contract C1 {}"}, compiler.sources)
	assert.Equal(t, "library SafeMath {}", compiler.imports("SafeMath.sol").Contents)
}

func TestCompileErrors(t *testing.T) {
	tree := testTree(t)
	compiler := &fakeCompiler{out: &CompilerOutput{
		Errors:    []string{"contract1.sol:1:1: ParserError: Expected pragma"},
		Contracts: map[string]Artifact{"contract2.sol:C2": exampleArtifact},
	}}

	got, err := tree.Compile(context.Background(), compiler, false, []string{"contract1", "x/contract2"})
	assert.Nil(t, got)
	var compileErr *CompileError
	require.ErrorAs(t, err, &compileErr)
	assert.Equal(t, compiler.out.Errors, compileErr.Errors)
}

func TestCompileCompilerFailure(t *testing.T) {
	boom := errors.New("solc not found")
	_, err := testTree(t).Compile(context.Background(), &fakeCompiler{err: boom}, false, []string{"contract1"})
	assert.ErrorIs(t, err, boom)
}
