package contract

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

var ErrUnrecognizedSource = errors.New("unrecognized event source")

// wireEvent is an event object as a JSON-RPC style client serializes it.
type wireEvent struct {
	Event           string          `json:"event"`
	Address         string          `json:"address"`
	BlockNumber     json.RawMessage `json:"blockNumber"`
	TransactionHash string          `json:"transactionHash"`
	LogIndex        json.RawMessage `json:"logIndex"`
	ReturnValues    json.RawMessage `json:"returnValues"`
}

// ClassifyJSON decides from the structure of data which Source it is:
// null is Empty, an array is a RawList, an object with returnValues is a
// SingleEvent and an object with events is a Receipt.
func ClassifyJSON(data []byte) (Source, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return EmptySource(), nil
	}

	switch data[0] {
	case '[':
		records, err := decodeEventList(data)
		if err != nil {
			return Source{}, err
		}
		return RawListSource(records), nil

	case '{':
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(data, &fields); err != nil {
			return Source{}, err
		}
		if _, ok := fields["returnValues"]; ok {
			e, err := decodeEvent(data)
			if err != nil {
				return Source{}, err
			}
			return SingleEventSource(e), nil
		}
		raw, ok := fields["events"]
		if !ok {
			return Source{}, fmt.Errorf("%w: object has neither events nor returnValues", ErrUnrecognizedSource)
		}
		events, err := decodeReceiptEvents(raw)
		if err != nil {
			return Source{}, err
		}
		return ReceiptSource(events), nil
	}
	return Source{}, fmt.Errorf("%w: %.32s", ErrUnrecognizedSource, data)
}

func decodeReceiptEvents(raw json.RawMessage) (map[string]Match, error) {
	var byName map[string]json.RawMessage
	if err := json.Unmarshal(raw, &byName); err != nil {
		return nil, fmt.Errorf("receipt events: %w", err)
	}
	events := make(map[string]Match, len(byName))
	for name, v := range byName {
		v = bytes.TrimSpace(v)
		// null 视为没有该事件
		if len(v) == 0 || bytes.Equal(v, []byte("null")) {
			continue
		}
		if v[0] == '[' {
			list, err := decodeEventList(v)
			if err != nil {
				return nil, fmt.Errorf("receipt event %s: %w", name, err)
			}
			events[name] = Many(list...)
			continue
		}
		e, err := decodeEvent(v)
		if err != nil {
			return nil, fmt.Errorf("receipt event %s: %w", name, err)
		}
		if e.Name == "" {
			e.Name = name
		}
		events[name] = One(e)
	}
	return events, nil
}

func decodeEventList(data []byte) ([]Event, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	list := make([]Event, 0, len(items))
	for _, item := range items {
		item = bytes.TrimSpace(item)
		if len(item) == 0 || item[0] != '{' {
			// 非对象元素没有返回值
			list = append(list, Event{})
			continue
		}
		e, err := decodeEvent(item)
		if err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, nil
}

func decodeEvent(data []byte) (Event, error) {
	var w wireEvent
	if err := json.Unmarshal(data, &w); err != nil {
		return Event{}, err
	}
	e := Event{
		Name:        w.Event,
		BlockNumber: parseQuantity(w.BlockNumber),
		LogIndex:    uint(parseQuantity(w.LogIndex)),
	}
	if w.Address != "" {
		e.Address = common.HexToAddress(w.Address)
	}
	if w.TransactionHash != "" {
		e.TxHash = common.HexToHash(w.TransactionHash)
	}
	if len(w.ReturnValues) > 0 {
		if err := json.Unmarshal(w.ReturnValues, &e.ReturnValues); err != nil {
			return Event{}, fmt.Errorf("returnValues: %w", err)
		}
	}
	return e, nil
}

// parseQuantity accepts a JSON number, a decimal string or a 0x hex string.
// Anything else reads as zero.
func parseQuantity(raw json.RawMessage) uint64 {
	s := strings.Trim(string(bytes.TrimSpace(raw)), `"`)
	if s == "" || s == "null" {
		return 0
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		n, _ := strconv.ParseUint(s[2:], 16, 64)
		return n
	}
	n, _ := strconv.ParseUint(s, 10, 64)
	return n
}
