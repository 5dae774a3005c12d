package spectrum

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
)

// FFT size limits.
const (
	MinFFTSize = 2
	MaxFFTSize = 1 << 22
)

var (
	// ErrInvalidFFTSize is returned for sizes that are not a power of two of
	// at least MinFFTSize.
	ErrInvalidFFTSize = errors.New("fft size must be a power of two")
	// ErrFFTTooLarge is returned when the buffers for a size cannot be
	// provided.
	ErrFFTTooLarge = errors.New("fft size exceeds buffer limit")
)

// IsPowerOfTwo reports whether n is a positive power of two.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// CheckSize validates an FFT length before any buffer is allocated.
func CheckSize(n int) error {
	if !IsPowerOfTwo(n) || n < MinFFTSize {
		return fmt.Errorf("%w: %d", ErrInvalidFFTSize, n)
	}
	if n > MaxFFTSize {
		return fmt.Errorf("%w: %d > %d", ErrFFTTooLarge, n, MaxFFTSize)
	}
	return nil
}

// Transform computes the forward DFT of x in place using iterative
// radix-2 Cooley-Tukey. len(x) must be a power of 2.
func Transform(x []complex128) error {
	if !IsPowerOfTwo(len(x)) {
		return fmt.Errorf("%w: %d", ErrInvalidFFTSize, len(x))
	}
	bitReverse(x)
	butterflies(x, false)
	return nil
}

// fft returns the forward DFT of x, leaving x untouched.
func fft(x []complex128) ([]complex128, error) {
	out := make([]complex128, len(x))
	copy(out, x)
	if err := Transform(out); err != nil {
		return nil, err
	}
	return out, nil
}

// ifft returns the inverse DFT of x, scaled by 1/N.
func ifft(x []complex128) ([]complex128, error) {
	n := len(x)
	if !IsPowerOfTwo(n) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidFFTSize, n)
	}
	out := make([]complex128, n)
	copy(out, x)
	bitReverse(out)
	butterflies(out, true)

	scale := complex(1.0/float64(n), 0)
	for i := range out {
		out[i] *= scale
	}
	return out, nil
}

func butterflies(x []complex128, inverse bool) {
	n := len(x)
	sign := -1.0
	if inverse {
		sign = 1.0
	}
	for size := 2; size <= n; size <<= 1 {
		halfSize := size >> 1
		wn := cmplx.Exp(complex(0, sign*2*math.Pi/float64(size)))
		for start := 0; start < n; start += size {
			w := complex(1, 0)
			for j := 0; j < halfSize; j++ {
				u := x[start+j]
				v := w * x[start+j+halfSize]
				x[start+j] = u + v
				x[start+j+halfSize] = u - v
				w *= wn
			}
		}
	}
}

func bitReverse(x []complex128) {
	n := len(x)
	bits := 0
	for tmp := n; tmp > 1; tmp >>= 1 {
		bits++
	}
	for i := 0; i < n; i++ {
		j := reverseBits(i, bits)
		if i < j {
			x[i], x[j] = x[j], x[i]
		}
	}
}

func reverseBits(x, bits int) int {
	result := 0
	for i := 0; i < bits; i++ {
		result = (result << 1) | (x & 1)
		x >>= 1
	}
	return result
}
