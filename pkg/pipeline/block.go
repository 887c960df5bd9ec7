package pipeline

// Block is a fixed-capacity buffer travelling through the pipeline. Blocks are allocated
// once per Pool and recycled for every frame
type Block struct {
	// Index denotes the position of the frame in the input stream (0-based)
	Index int

	// Buf holds the pre-allocated memory of the block, its length is the block capacity
	Buf []byte

	// Len denotes the number of valid bytes in Buf
	Len int
}

func newBlock(size int) *Block {
	return &Block{
		Index: -1,
		Buf:   make([]byte, size),
	}
}

// Bytes returns the valid portion of the block
func (b *Block) Bytes() []byte {
	return b.Buf[:b.Len]
}

// Cap returns the capacity of the block
func (b *Block) Cap() int {
	return len(b.Buf)
}

func (b *Block) reset() {
	b.Index = -1
	b.Len = 0
}
