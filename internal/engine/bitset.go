package engine

// bitset is a compact set of node ids. Sized for the arena it is built
// against but grows if synthetic nodes push ids past the initial bound.
type bitset struct {
	bits []uint64
}

func newBitset(maxVal int) *bitset {
	words := (maxVal + 64) / 64
	return &bitset{bits: make([]uint64, words)}
}

func (b *bitset) set(val int) {
	word := val / 64
	if word >= len(b.bits) {
		b.grow(word + 1)
	}
	b.bits[word] |= 1 << (val % 64)
}

func (b *bitset) has(val int) bool {
	word := val / 64
	if val < 0 || word >= len(b.bits) {
		return false
	}
	return b.bits[word]&(1<<(val%64)) != 0
}

// grow expands the bitset to n words.
// Callers guarantee n > len(b.bits).
func (b *bitset) grow(n int) {
	newBits := make([]uint64, n)
	copy(newBits, b.bits)
	b.bits = newBits
}
