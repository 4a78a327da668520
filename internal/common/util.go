package common

// WipeByteArray overwrites the contents of the provided byte slice with zeros.
// Used to drop secrets such as passwords from memory once they were sent.
//
// If the slice is nil, the function does nothing.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
