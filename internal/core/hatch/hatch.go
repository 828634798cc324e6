// Package hatch computes content signatures used to decide whether two
// same-named files differ.
package hatch

import (
	"context"
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
)

// ErrSizeExceeded reports input larger than Options.MaxSize. Callers
// that enumerate whole trees treat it as "no signature available"
// rather than a hard failure.
var ErrSizeExceeded = errors.New("size exceeds maximum")

// Algorithm represents the hashing algorithm to use
type Algorithm string

const (
	// MD5 is the default: local hatches stay comparable to plain S3 ETags
	MD5 Algorithm = "md5"
	// SHA256 for callers that prefer a cryptographic digest over ETag compatibility
	SHA256 Algorithm = "sha256"
)

// IsSupported checks if the given algorithm is supported
func IsSupported(algo Algorithm) bool {
	switch algo {
	case MD5, SHA256:
		return true
	default:
		return false
	}
}

// Options configures the calculator
type Options struct {
	// MaxSize: files larger than this are rejected (0 = unlimited)
	MaxSize int64

	// BufferSize: size of buffer for streaming reads
	BufferSize int
}

// DefaultOptions returns the recommended default options
func DefaultOptions() Options {
	return Options{
		MaxSize:    5 * 1024 * 1024 * 1024, // single-part S3 upload ceiling
		BufferSize: 32 * 1024,
	}
}

// Calculator computes file hatches
type Calculator interface {
	// Calculate streams the reader through the hasher and returns the
	// hex-encoded digest
	Calculate(ctx context.Context, reader io.Reader, algo Algorithm) (string, error)
}

// DefaultCalculator implements Calculator with streaming support
type DefaultCalculator struct {
	opts Options
}

// NewCalculator creates a new calculator with the given options
func NewCalculator(opts Options) *DefaultCalculator {
	if opts.BufferSize <= 0 {
		opts.BufferSize = DefaultOptions().BufferSize
	}
	return &DefaultCalculator{opts: opts}
}

// NewDefaultCalculator creates a calculator with default options
func NewDefaultCalculator() *DefaultCalculator {
	return NewCalculator(DefaultOptions())
}

// Calculate implements the Calculator interface
func (c *DefaultCalculator) Calculate(ctx context.Context, reader io.Reader, algo Algorithm) (string, error) {
	var h hash.Hash
	switch algo {
	case MD5:
		h = md5.New()
	case SHA256:
		h = sha256.New()
	default:
		return "", fmt.Errorf("unsupported algorithm: %s", algo)
	}

	var limitedReader io.Reader = reader
	if c.opts.MaxSize > 0 {
		limitedReader = io.LimitReader(reader, c.opts.MaxSize+1)
	}

	buffer := make([]byte, c.opts.BufferSize)
	totalBytes := int64(0)

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		n, err := limitedReader.Read(buffer)
		if n > 0 {
			totalBytes += int64(n)
			if c.opts.MaxSize > 0 && totalBytes > c.opts.MaxSize {
				return "", fmt.Errorf("%w (%d bytes)", ErrSizeExceeded, c.opts.MaxSize)
			}
			if _, hashErr := h.Write(buffer[:n]); hashErr != nil {
				return "", fmt.Errorf("hash write error: %w", hashErr)
			}
		}

		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("read error: %w", err)
		}
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
