package contract

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type handle struct {
	abi     abi.ABI
	address common.Address
}

func newHandle(contractABI abi.ABI, address common.Address) handle {
	return handle{abi: contractABI, address: address}
}

func testSummary() Summary {
	return Summary{
		"Example": {
			ABI:       json.RawMessage(exampleABI),
			Addresses: map[string]string{"ganache": contractAddress.Hex()},
		},
		"NoAbi": {
			Addresses: map[string]string{"ganache": contractAddress.Hex()},
		},
		"BadAddress": {
			ABI:       json.RawMessage(exampleABI),
			Addresses: map[string]string{"ganache": "not-an-address"},
		},
	}
}

func TestGetContract(t *testing.T) {
	got, ok := GetContract("ganache", newHandle, "Example", testSummary()).Get()
	require.True(t, ok)
	assert.Equal(t, contractAddress, got.address)
	assert.Contains(t, got.abi.Events, "Sum")
}

func TestGetContractMisses(t *testing.T) {
	tests := []struct {
		name    string
		network string
	}{
		{"Unknown", "ganache"},
		{"Example", "mainnet"},
		{"NoAbi", "ganache"},
		{"BadAddress", "ganache"},
	}
	for _, tt := range tests {
		t.Run(tt.name+"@"+tt.network, func(t *testing.T) {
			assert.False(t, GetContract(tt.network, newHandle, tt.name, testSummary()).IsSome())
		})
	}
}

func TestGetContractWithInstance(t *testing.T) {
	inst, ok := GetContract("ganache", Bind(newFakeClient()), "Example", testSummary()).Get()
	require.True(t, ok)
	assert.Equal(t, contractAddress, inst.Address)
}

func TestLoadSummary(t *testing.T) {
	file := filepath.Join(t.TempDir(), "summary.json")
	data, err := json.Marshal(testSummary())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(file, data, 0o644))

	s, err := LoadSummary(file)
	require.NoError(t, err)
	assert.True(t, GetContract("ganache", newHandle, "Example", s).IsSome())

	_, err = LoadSummary(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
