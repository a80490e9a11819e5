package contract

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/core/types"
)

// ParseABI parses the JSON text of an ABI.
func ParseABI(text string) (abi.ABI, error) {
	return abi.JSON(bytes.NewReader([]byte(text)))
}

// DecodeLog decodes lg against contractABI. ok is false when the log was
// not emitted by one of the ABI's (non anonymous) events.
//
// The returnValues record carries every input twice, by position ("0",
// "1", ...) and by name.
func DecodeLog(contractABI abi.ABI, lg types.Log) (e Event, ok bool, err error) {
	if len(lg.Topics) == 0 {
		return Event{}, false, nil
	}
	ev, err := contractABI.EventByID(lg.Topics[0])
	if err != nil {
		return Event{}, false, nil
	}

	values := make(map[string]any, len(ev.Inputs))
	// 非indexed参数在data
	if nonIndexed := ev.Inputs.NonIndexed(); len(nonIndexed) > 0 {
		if err := nonIndexed.UnpackIntoMap(values, lg.Data); err != nil {
			return Event{}, false, fmt.Errorf("decode %s data: %w", ev.Name, err)
		}
	}
	// indexed参数在topics里
	var indexed abi.Arguments
	for _, in := range ev.Inputs {
		if in.Indexed {
			indexed = append(indexed, in)
		}
	}
	if err := abi.ParseTopicsIntoMap(values, indexed, lg.Topics[1:]); err != nil {
		return Event{}, false, fmt.Errorf("decode %s topics: %w", ev.Name, err)
	}

	record := make(map[string]any, 2*len(ev.Inputs))
	for i, in := range ev.Inputs {
		v := values[in.Name]
		record[strconv.Itoa(i)] = v
		if in.Name != "" {
			record[in.Name] = v
		}
	}
	return Event{
		Name:         ev.Name,
		Address:      lg.Address,
		BlockNumber:  lg.BlockNumber,
		TxHash:       lg.TxHash,
		LogIndex:     lg.Index,
		ReturnValues: record,
	}, true, nil
}

// FromLogs decodes the result of a historical log query into a RawList
// source. Logs of unknown events are left out.
func FromLogs(contractABI abi.ABI, logs []types.Log) (Source, error) {
	records := make([]Event, 0, len(logs))
	for _, lg := range logs {
		e, ok, err := DecodeLog(contractABI, lg)
		if err != nil {
			return Source{}, err
		}
		if ok {
			records = append(records, e)
		}
	}
	return RawListSource(records), nil
}

// FromReceipt groups the decoded logs of receipt by event name. A name
// emitted once maps to a single event, several times to a list in log order.
func FromReceipt(contractABI abi.ABI, receipt *types.Receipt) (Source, error) {
	if receipt == nil {
		return EmptySource(), nil
	}
	grouped := make(map[string][]Event)
	for _, lg := range receipt.Logs {
		if lg == nil {
			continue
		}
		e, ok, err := DecodeLog(contractABI, *lg)
		if err != nil {
			return Source{}, err
		}
		if ok {
			grouped[e.Name] = append(grouped[e.Name], e)
		}
	}
	events := make(map[string]Match, len(grouped))
	for name, list := range grouped {
		if len(list) == 1 {
			events[name] = One(list[0])
		} else {
			events[name] = Many(list...)
		}
	}
	return ReceiptSource(events), nil
}
