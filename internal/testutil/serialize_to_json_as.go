/**
 * Copyright (c) 2019, The Artemis Authors.
 *
 * Permission to use, copy, modify, and/or distribute this software for any
 * purpose with or without fee is hereby granted, provided that the above
 * copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES
 * WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF
 * MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR
 * ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES
 * WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN
 * ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF
 * OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package testutil

import (
	"bytes"
	"fmt"
	"reflect"

	"github.com/json-iterator/go"
	"github.com/onsi/gomega/format"
	"github.com/onsi/gomega/types"
)

// Store rows keep numbers as text so that ids compare exactly.
var json = jsoniter.Config{
	EscapeHTML:             true,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	UseNumber:              true,
}.Froze()

type serializeToJSONAsMatcher struct {
	expected interface{}
}

// SerializeToJSONAs returns a Gomega matcher that encodes the actual value the way it is sent over
// the wire and compares the generic JSON value against expected. expected is either a JSON text
// (string or []byte) or any value, which is encoded first.
func SerializeToJSONAs(expected interface{}) types.GomegaMatcher {
	return serializeToJSONAsMatcher{
		expected: expected,
	}
}

func decodeGeneric(data []byte) (interface{}, error) {
	var value interface{}
	decoder := json.NewDecoder(bytes.NewReader(data))
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}
	return value, nil
}

// Match implements types.GomegaMatcher.
func (matcher serializeToJSONAsMatcher) Match(actual interface{}) (success bool, err error) {
	actualData, err := json.Marshal(actual)
	if err != nil {
		return false, fmt.Errorf("SerializeToJSONAs cannot encode actual value: %s", err)
	}

	var expectedData []byte
	switch expected := matcher.expected.(type) {
	case string:
		expectedData = []byte(expected)
	case []byte:
		expectedData = expected
	default:
		if expectedData, err = json.Marshal(expected); err != nil {
			return false, fmt.Errorf("SerializeToJSONAs cannot encode expected value: %s", err)
		}
	}

	actualValue, err := decodeGeneric(actualData)
	if err != nil {
		return false, fmt.Errorf("SerializeToJSONAs cannot decode %s: %s", actualData, err)
	}
	expectedValue, err := decodeGeneric(expectedData)
	if err != nil {
		return false, fmt.Errorf("SerializeToJSONAs cannot decode expected JSON %s: %s", expectedData, err)
	}

	return reflect.DeepEqual(actualValue, expectedValue), nil
}

// FailureMessage implements types.GomegaMatcher.
func (matcher serializeToJSONAsMatcher) FailureMessage(actual interface{}) (message string) {
	return format.Message(encodeForMessage(actual), "to serialize to JSON value as", encodeForMessage(matcher.expected))
}

// NegatedFailureMessage implements types.GomegaMatcher.
func (matcher serializeToJSONAsMatcher) NegatedFailureMessage(actual interface{}) (message string) {
	return format.Message(encodeForMessage(actual), "not to serialize to JSON value as", encodeForMessage(matcher.expected))
}

func encodeForMessage(value interface{}) string {
	switch value := value.(type) {
	case string:
		return value
	case []byte:
		return string(value)
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprintf("%#v", value)
	}
	return string(data)
}
