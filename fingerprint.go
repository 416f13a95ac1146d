package follicle

// Fingerprint window limits: only the first 8 KiB are considered, and of
// those at most 100 bytes feed the hash.
const (
	fingerprintWindow = 8192
	fingerprintBytes  = 100
)

// Fingerprint derives a deterministic non-cryptographic seed from file
// content and name. Two candidates with identical byte length, identical
// first 8 KiB, and identical filename always fingerprint identically;
// collisions across different content are acceptable. The result seeds the
// simulator only, never a correctness or security hash.
//
// The arithmetic is a multiplicative-wrap hash on a 32-bit signed integer:
// seed starts at the byte length, then seed = seed*31 + b for each sampled
// content byte and each filename codepoint. Go's int32 wraps two's
// complement, which keeps the values reproducible across platforms and
// matching recorded fixtures.
func Fingerprint(data []byte, filename string) int32 {
	seed := int32(len(data))

	head := data
	if len(head) > fingerprintWindow {
		head = head[:fingerprintWindow]
	}
	n := len(head)
	if n > fingerprintBytes {
		n = fingerprintBytes
	}
	for _, b := range head[:n] {
		seed = seed<<5 - seed + int32(b)
	}

	for _, r := range filename {
		seed = seed<<5 - seed + int32(r)
	}

	if seed < 0 {
		seed = -seed
	}
	if seed < 0 { // MinInt32 negates to itself
		seed = 0
	}
	return seed
}
