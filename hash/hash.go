// Package hash implements the fast mixing hash used to derive random streams
package hash

// Mix mixes n with salt s into a well distributed 64-bit value.
func Mix(n uint64, s uint64) uint64 {
	// mixing stage, mix input with salt using subtraction
	var m = n - s

	// hashing stage, use xor shift with prime coefficients
	m ^= m << 2
	m ^= m << 3
	m ^= m >> 5
	m ^= m >> 7
	m ^= m << 11
	m ^= m << 13
	m ^= m >> 17
	m ^= m << 19
	m ^= m >> 31

	// mixing stage 2, mix input with salt using addition
	m += s

	// finalizer, spread the high bits into the low bits
	m ^= m >> 33
	m *= 0xff51afd7ed558ccd
	m ^= m >> 33
	return m
}

// String folds the bytes of s into a 64-bit value salted by salt.
func String(s string, salt uint64) uint64 {
	var m = Mix(uint64(len(s)), salt)
	for i := 0; i < len(s); i++ {
		m = Mix(m^uint64(s[i]), salt+uint64(i)+1)
	}
	return m
}

// Reduce maps m into the range 0 to max-1 using the multiply shift trick by Daniel Lemire
// https://lemire.me/blog/2016/06/27/a-fast-alternative-to-the-modulo-reduction/
func Reduce(m uint32, max uint32) uint32 {
	return uint32((uint64(m) * uint64(max)) >> 32)
}
