package common

// WipeByteArray overwrites b with zeros. Used for plaintext secrets read from
// the terminal once they have been hashed. A nil slice is ignored.
func WipeByteArray(b []byte) {
	if b == nil {
		return
	}
	for i := range b {
		b[i] = 0
	}
}
