package grid

// DoubleBuffer owns the two instances of an evolving field. Swap flips
// which one is current; the data never moves.
type DoubleBuffer struct {
	fields [2]*Field
	cur    int
	gen    int
}

func NewDoubleBuffer(shape Shape) *DoubleBuffer {
	return &DoubleBuffer{fields: [2]*Field{NewField(shape), NewField(shape)}}
}

// DoubleBufferFrom seeds both buffers with a copy of initial, so cells the
// kernel never writes (the border) start out consistent in either role.
func DoubleBufferFrom(initial *Field) *DoubleBuffer {
	return &DoubleBuffer{fields: [2]*Field{initial.Clone(), initial.Clone()}}
}

func (b *DoubleBuffer) Current() *Field { return b.fields[b.cur] }
func (b *DoubleBuffer) Next() *Field    { return b.fields[1-b.cur] }
func (b *DoubleBuffer) Shape() Shape    { return b.fields[0].shape }

// Generation counts the swaps performed so far.
func (b *DoubleBuffer) Generation() int { return b.gen }

func (b *DoubleBuffer) Swap() {
	b.cur = 1 - b.cur
	b.gen++
}
