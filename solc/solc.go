package solc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"path"
	"regexp"
	"sort"
	"strings"

	"contract-kit/config"
	"contract-kit/contract"
	"contract-kit/log"

	"go.uber.org/zap"
)

// Solc drives the solc executable in standard json mode.
type Solc struct {
	Path string
}

func New(conf config.CompilerConfig) *Solc {
	p := conf.SolcPath
	if p == "" {
		p = "solc"
	}
	return &Solc{Path: p}
}

type source struct {
	Content string `json:"content"`
}

type optimizer struct {
	Enabled bool `json:"enabled"`
	Runs    int  `json:"runs"`
}

type settings struct {
	Optimizer       optimizer                      `json:"optimizer"`
	OutputSelection map[string]map[string][]string `json:"outputSelection"`
}

type input struct {
	Language string            `json:"language"`
	Sources  map[string]source `json:"sources"`
	Settings settings          `json:"settings"`
}

type output struct {
	Errors []struct {
		Severity         string `json:"severity"`
		Message          string `json:"message"`
		FormattedMessage string `json:"formattedMessage"`
	} `json:"errors"`
	Contracts map[string]map[string]struct {
		ABI json.RawMessage `json:"abi"`
		EVM struct {
			Bytecode struct {
				Object string `json:"object"`
			} `json:"bytecode"`
		} `json:"evm"`
	} `json:"contracts"`
}

var importRe = regexp.MustCompile(`(?m)^\s*import\s+(?:[^'";]*?\s+from\s+)?["']([^"']+)["']`)

// resolveImport turns an import as written in unit into a source name.
// Relative imports are taken against the directory of unit.
func resolveImport(unit, imp string) string {
	if strings.HasPrefix(imp, "./") || strings.HasPrefix(imp, "../") {
		return path.Clean(path.Join(path.Dir(unit), imp))
	}
	return path.Clean(imp)
}

// closeImports adds to sources every file they import, transitively,
// asking imports for those not already present.
func closeImports(sources map[string]string, imports contract.ImportFunc) map[string]string {
	all := make(map[string]string, len(sources))
	queue := make([]string, 0, len(sources))
	for name, content := range sources {
		all[name] = content
		queue = append(queue, name)
	}
	sort.Strings(queue)

	for len(queue) > 0 {
		unit := queue[0]
		queue = queue[1:]
		for _, m := range importRe.FindAllStringSubmatch(all[unit], -1) {
			name := resolveImport(unit, m[1])
			if _, ok := all[name]; ok {
				continue
			}
			var content string
			if imports != nil {
				content = imports(name).Contents
			}
			all[name] = content
			queue = append(queue, name)
		}
	}
	return all
}

func buildInput(sources map[string]string, optimize bool) ([]byte, error) {
	in := input{
		Language: "Solidity",
		Sources:  make(map[string]source, len(sources)),
		Settings: settings{
			Optimizer: optimizer{Enabled: optimize, Runs: 200},
			OutputSelection: map[string]map[string][]string{
				"*": {"*": {"abi", "evm.bytecode.object"}},
			},
		},
	}
	for name, content := range sources {
		in.Sources[name] = source{Content: content}
	}
	return json.Marshal(in)
}

// parseOutput reads the standard json output. Only entries of severity
// "error" are errors, warnings are logged.
func parseOutput(data []byte) (*contract.CompilerOutput, error) {
	var out output
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("solc output: %w", err)
	}
	res := &contract.CompilerOutput{Contracts: make(map[string]contract.Artifact)}
	for _, e := range out.Errors {
		msg := e.FormattedMessage
		if msg == "" {
			msg = e.Message
		}
		if e.Severity != "error" {
			log.Logger.Debug("solc", zap.String("severity", e.Severity), zap.String("message", e.Message))
			continue
		}
		res.Errors = append(res.Errors, strings.TrimSpace(msg))
	}
	for file, contracts := range out.Contracts {
		for name, c := range contracts {
			res.Contracts[file+":"+name] = contract.Artifact{
				Interface: string(c.ABI),
				Bytecode:  c.EVM.Bytecode.Object,
			}
		}
	}
	return res, nil
}

// Compile runs solc over sources plus every file they import.
func (s *Solc) Compile(ctx context.Context, sources map[string]string, optimize bool, imports contract.ImportFunc) (*contract.CompilerOutput, error) {
	data, err := buildInput(closeImports(sources, imports), optimize)
	if err != nil {
		return nil, err
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, s.Path, "--standard-json")
	cmd.Stdin = bytes.NewReader(data)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil && stdout.Len() == 0 {
		return nil, fmt.Errorf("run %s: %w: %s", s.Path, err, strings.TrimSpace(stderr.String()))
	}
	return parseOutput(stdout.Bytes())
}
