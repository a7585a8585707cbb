package dag

// Chunk is an immutable DAG node: opaque data plus the hashes of the
// chunks it references.
type Chunk struct {
	Hash Hash
	Data []byte
	// Meta lists referenced chunks. When empty no meta entry is stored.
	Meta []Hash
}

// NewChunk builds a chunk, hashing its data.
func NewChunk(data []byte, refs []Hash) Chunk {
	return Chunk{Hash: HashOf(data), Data: data, Meta: refs}
}

// ReadChunk rebuilds a chunk loaded from storage without rehashing.
func ReadChunk(hash Hash, data []byte, refs []Hash) Chunk {
	return Chunk{Hash: hash, Data: data, Meta: refs}
}
