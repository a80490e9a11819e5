package contract

import (
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"contract-kit/config"
	"contract-kit/log"

	"go.uber.org/zap"
)

// ImportResult is what the compiler expects back for an import.
type ImportResult struct {
	Contents string `json:"contents"`
}

// ImportFunc resolves an import the compiler could not find in its sources.
type ImportFunc func(importPath string) ImportResult

// SourceTree reads contract sources below Root.
type SourceTree struct {
	Root string
	Ext  string
}

// NewSourceTree roots the tree at the configured contracts directory,
// relative to the working directory unless absolute.
func NewSourceTree(conf config.CompilerConfig) *SourceTree {
	root := conf.ContractsDirectory
	if root == "" {
		root = config.DefaultContractsDirectory
	}
	if !filepath.IsAbs(root) {
		if wd, err := os.Getwd(); err == nil {
			root = filepath.Join(wd, root)
		}
	}
	ext := conf.SourceExtension
	if ext == "" {
		ext = config.DefaultSourceExtension
	}
	return &SourceTree{Root: root, Ext: ext}
}

// FindFirstPathRecursively walks the tree in lexical order and returns the
// first file whose path ends with importPath on a path separator boundary.
func (t *SourceTree) FindFirstPathRecursively(importPath string) (string, bool) {
	suffix := trimRelative(path.Clean(filepath.ToSlash(importPath)))
	var found string
	err := filepath.WalkDir(t.Root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			// unreadable entries are skipped, not fatal
			return nil
		}
		if d.IsDir() {
			return nil
		}
		slashed := filepath.ToSlash(p)
		if slashed == suffix || strings.HasSuffix(slashed, "/"+suffix) {
			found = p
			return fs.SkipAll
		}
		return nil
	})
	if err != nil && !errors.Is(err, fs.SkipAll) {
		log.Logger.Warn("walk contracts directory", zap.String("root", t.Root), zap.Error(err))
	}
	return found, found != ""
}

// trimRelative drops leading "./" and "../" segments, which name the
// importing file's location rather than a place in the tree.
func trimRelative(p string) string {
	for {
		switch {
		case strings.HasPrefix(p, "../"):
			p = p[3:]
		case strings.HasPrefix(p, "./"):
			p = p[2:]
		default:
			return p
		}
	}
}

// FindImports returns the contents of the first file matching importPath,
// or empty contents when there is none or it cannot be read.
func (t *SourceTree) FindImports(importPath string) ImportResult {
	p, ok := t.FindFirstPathRecursively(importPath)
	if !ok {
		log.Logger.Warn("import not found", zap.String("import", importPath), zap.String("root", t.Root))
		return ImportResult{}
	}
	data, err := os.ReadFile(p)
	if err != nil {
		log.Logger.Warn("read import", zap.String("path", p), zap.Error(err))
		return ImportResult{}
	}
	return ImportResult{Contents: string(data)}
}

// SourceName is the compiler file name of a module path: its last segment
// plus the source extension ("x/contract1" -> "contract1.sol").
func (t *SourceTree) SourceName(module string) string {
	return path.Base(module + t.Ext)
}

// PrepareSources maps the file name of every module to its contents.
// Unreadable modules map to "" so the others still compile.
func (t *SourceTree) PrepareSources(modules []string) map[string]string {
	sources := make(map[string]string, len(modules))
	for _, module := range modules {
		file := filepath.Join(t.Root, filepath.FromSlash(module+t.Ext))
		data, err := os.ReadFile(file)
		if err != nil {
			log.Logger.Warn("read source", zap.String("module", module), zap.Error(err))
		}
		sources[t.SourceName(module)] = string(data)
	}
	return sources
}
