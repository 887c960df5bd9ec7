package pipeline

// Pool recycles a fixed set of blocks. A consumer acquiring a block waits until one is
// returned, which bounds the amount of data held by the pipeline
type Pool struct {
	blocks []*Block
	free   *Queue[*Block]
}

// NewPool allocates n blocks of size bytes each. The pool has to be seeded via reset
// before use
func NewPool(n, size int) *Pool {
	p := &Pool{
		blocks: make([]*Block, n),
	}
	for i := range p.blocks {
		p.blocks[i] = newBlock(size)
	}
	p.free = NewQueue[*Block](0)
	return p
}

// reset makes all blocks available again, tracking the given number of producers (the
// goroutines returning blocks to the pool)
func (p *Pool) reset(producers int) {
	p.free = NewQueue[*Block](producers)
	for _, b := range p.blocks {
		b.reset()
		p.free.items = append(p.free.items, b)
	}
}

// Get acquires a free block. It blocks until a block is available and returns false if
// none is available and all producers have stopped
func (p *Pool) Get() (*Block, bool) {
	return p.free.Dequeue()
}

// Put returns a block to the pool. Blocks are accepted even after the pool has been
// stopped or closed, so the pool always ends up complete
func (p *Pool) Put(b *Block) {
	b.reset()
	p.free.release(b)
}

// StopProducer signals that one of the producers will not return any more blocks
func (p *Pool) StopProducer() {
	p.free.StopProducer()
}

// close wakes up all goroutines waiting for a block. Blocks still held by the stages
// are returned via Put as usual
func (p *Pool) close() {
	p.free.Close()
}

// Cap returns the total number of blocks managed by the pool
func (p *Pool) Cap() int {
	return len(p.blocks)
}

// Free returns the number of currently available blocks
func (p *Pool) Free() int {
	return p.free.Len()
}

