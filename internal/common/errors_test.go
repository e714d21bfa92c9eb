package common

import (
	"errors"
	"strings"
	"testing"
)

func TestInferenceErrorWrapping(t *testing.T) {
	cause := errors.New("tensor shape mismatch")
	err := NewInferenceError("classifier", cause)

	if !errors.Is(err, cause) {
		t.Error("wrapped cause must survive errors.Is")
	}

	var infErr *InferenceError
	if !errors.As(err, &infErr) {
		t.Fatal("errors.As failed to recover *InferenceError")
	}
	if infErr.Stage != "classifier" {
		t.Errorf("Stage = %q, want classifier", infErr.Stage)
	}
	if !strings.Contains(err.Error(), "classifier") {
		t.Errorf("message missing stage: %q", err.Error())
	}
}

func TestIsRecoverable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "no centroids", err: ErrNoCentroids, want: true},
		{name: "wrapped no centroids", err: NewInferenceError("centroid", ErrNoCentroids), want: true},
		{name: "model unavailable", err: ErrModelUnavailable, want: false},
		{name: "metadata mismatch", err: ErrMetadataMismatch, want: false},
		{name: "arbitrary", err: errors.New("boom"), want: false},
		{name: "nil", err: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRecoverable(tt.err); got != tt.want {
				t.Errorf("IsRecoverable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
