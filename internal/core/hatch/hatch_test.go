package hatch

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestCalculate_MD5KnownVector(t *testing.T) {
	calc := NewDefaultCalculator()

	got, err := calc.Calculate(context.Background(), strings.NewReader("hello world"), MD5)
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	want := "5eb63bbbe01eeed093cb22bb8f5acdc3"
	if got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}
}

func TestCalculate_SHA256KnownVector(t *testing.T) {
	calc := NewDefaultCalculator()

	got, err := calc.Calculate(context.Background(), strings.NewReader("hello world"), SHA256)
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}
}

func TestCalculate_EmptyInput(t *testing.T) {
	calc := NewDefaultCalculator()

	got, err := calc.Calculate(context.Background(), strings.NewReader(""), MD5)
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	// md5 of the empty string
	if got != "d41d8cd98f00b204e9800998ecf8427e" {
		t.Errorf("Unexpected empty-input digest: %s", got)
	}
}

func TestCalculate_UnsupportedAlgorithm(t *testing.T) {
	calc := NewDefaultCalculator()

	_, err := calc.Calculate(context.Background(), strings.NewReader("data"), Algorithm("crc32"))
	if err == nil {
		t.Fatal("Expected error for unsupported algorithm")
	}
}

func TestCalculate_MaxSizeExceeded(t *testing.T) {
	calc := NewCalculator(Options{MaxSize: 4, BufferSize: 2})

	_, err := calc.Calculate(context.Background(), strings.NewReader("too long"), MD5)
	if !errors.Is(err, ErrSizeExceeded) {
		t.Fatalf("Expected ErrSizeExceeded, got %v", err)
	}
}

func TestCalculate_CancelledContext(t *testing.T) {
	calc := NewDefaultCalculator()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := calc.Calculate(ctx, strings.NewReader("data"), MD5)
	if err != context.Canceled {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestIsSupported(t *testing.T) {
	if !IsSupported(MD5) || !IsSupported(SHA256) {
		t.Error("md5 and sha256 should be supported")
	}
	if IsSupported(Algorithm("crc32")) {
		t.Error("crc32 should not be supported")
	}
}
