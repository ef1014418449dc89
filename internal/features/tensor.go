// Package features builds and validates the (24, 32) feature tensors the
// classifier consumes: 24 time steps of 32 features each.
package features

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	TimeSteps = 24
	Features  = 32
)

// Tensor is one classifier sample.
type Tensor [TimeSteps][Features]float64

var (
	ErrInvalidShape  = errors.New("invalid input shape")
	ErrShapeMismatch = errors.New("shape mismatch")
	ErrEmptyBatch    = errors.New("empty batch")
)

// ParseInput decodes a rank-2 sample or a rank-3 batch. A single sample is
// returned as a batch of one.
func ParseInput(raw json.RawMessage) ([]Tensor, error) {
	v, shape, err := decode(raw)
	if err != nil {
		return nil, err
	}
	switch len(shape) {
	case 2:
		if err := checkSample(shape); err != nil {
			return nil, err
		}
		return []Tensor{toTensor(v.([]any))}, nil
	case 3:
		return toBatch(v.([]any), shape)
	default:
		return nil, fmt.Errorf("%w: expected 2D or 3D array, got %dD", ErrInvalidShape, len(shape))
	}
}

// ParseBatch decodes a rank-3 batch with at least one sample.
func ParseBatch(raw json.RawMessage) ([]Tensor, error) {
	v, shape, err := decode(raw)
	if err != nil {
		return nil, err
	}
	if len(shape) >= 1 && shape[0] == 0 {
		return nil, ErrEmptyBatch
	}
	if len(shape) != 3 {
		return nil, fmt.Errorf("%w: expected 3D array of samples, got %dD", ErrInvalidShape, len(shape))
	}
	return toBatch(v.([]any), shape)
}

func toBatch(samples []any, shape []int) ([]Tensor, error) {
	if err := checkSample(shape[1:]); err != nil {
		return nil, err
	}
	out := make([]Tensor, len(samples))
	for i, s := range samples {
		out[i] = toTensor(s.([]any))
	}
	return out, nil
}

func checkSample(dims []int) error {
	if dims[0] != TimeSteps || dims[1] != Features {
		return fmt.Errorf("%w: expected %s, got %s", ErrShapeMismatch, formatShape([]int{TimeSteps, Features}), formatShape(dims))
	}
	return nil
}

func decode(raw json.RawMessage) (any, []int, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalidShape, err)
	}
	shape, err := shapeOf(v)
	if err != nil {
		return nil, nil, err
	}
	return v, shape, nil
}

// shapeOf returns the dimensions of a nested JSON array of numbers. Ragged
// arrays and non-numeric leaves are rejected.
func shapeOf(v any) ([]int, error) {
	switch x := v.(type) {
	case float64:
		return nil, nil
	case []any:
		if len(x) == 0 {
			return []int{0}, nil
		}
		inner, err := shapeOf(x[0])
		if err != nil {
			return nil, err
		}
		for _, el := range x[1:] {
			s, err := shapeOf(el)
			if err != nil {
				return nil, err
			}
			if !equalShape(s, inner) {
				return nil, fmt.Errorf("%w: ragged array", ErrInvalidShape)
			}
		}
		return append([]int{len(x)}, inner...), nil
	default:
		return nil, fmt.Errorf("%w: non-numeric value %v", ErrInvalidShape, v)
	}
}

func equalShape(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func formatShape(dims []int) string {
	parts := make([]string, len(dims))
	for i, d := range dims {
		parts[i] = strconv.Itoa(d)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func toTensor(rows []any) Tensor {
	var t Tensor
	for i, row := range rows {
		for j, v := range row.([]any) {
			t[i][j] = v.(float64)
		}
	}
	return t
}
