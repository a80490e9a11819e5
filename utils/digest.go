package utils

import (
	"encoding/json"
	"sort"

	"github.com/ethereum/go-ethereum/crypto"
)

// SourcesDigest 计算源码集合的 keccak 摘要，作为编译缓存的 key
// keys are sorted so map iteration order does not matter.
func SourcesDigest(sources map[string]string, extra ...string) string {
	names := make([]string, 0, len(sources))
	for name := range sources {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([][]byte, 0, 2*len(names)+len(extra))
	for _, name := range names {
		// json-quote to keep name/content boundaries unambiguous
		n, _ := json.Marshal(name)
		c, _ := json.Marshal(sources[name])
		parts = append(parts, n, c)
	}
	for _, e := range extra {
		parts = append(parts, []byte(e))
	}
	return crypto.Keccak256Hash(parts...).Hex()
}
