package search

// Encode packs two 16-bit identifiers into the 32-bit search key.
// a occupies the low half, b the high half.
func Encode(a, b uint16) uint32 {
	return uint32(a) | uint32(b)<<16
}

// Split is the inverse of Encode.
func Split(key uint32) (a, b uint16) {
	return uint16(key), uint16(key >> 16)
}
