package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"unicode"

	"github.com/m-mizutani/goerr/v2"
)

// ToSimulateRequest validates the draft and builds the request body. Only the
// payload is checked here: an agent run ID without a leading integer becomes
// nil and is left for the store to reject.
func (d ActionDraft) ToSimulateRequest() (*SimulateActionRequest, error) {
	payload, err := ParsePayload(d.Payload)
	if err != nil {
		return nil, err
	}

	return &SimulateActionRequest{
		AgentRunID: ParseRunID(d.AgentRunID),
		Type:       d.Type,
		Payload:    payload,
	}, nil
}

// ParsePayload checks that text is a single JSON value and returns it compacted
func ParsePayload(text string) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, goerr.Wrap(ErrInvalidPayload, err.Error(), goerr.V(PayloadKey, text))
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return nil, goerr.Wrap(ErrInvalidPayload, err.Error(), goerr.V(PayloadKey, text))
	}
	return buf.Bytes(), nil
}

// ParseRunID reads the leading base-10 integer of s after optional whitespace
// and sign, the way the operator's form has always interpreted it ("3abc" is 3).
// It returns nil when there is no leading integer.
func ParseRunID(s string) *int64 {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)

	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digitsStart := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return nil
	}

	v, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return nil
	}
	return &v
}
