package dag

// Key layout in the backend:
//
//	c/<hash>/d  chunk data
//	c/<hash>/m  chunk meta, only for chunks with refs
//	h/<name>    head
func chunkDataKey(h Hash) string { return "c/" + string(h) + "/d" }
func chunkMetaKey(h Hash) string { return "c/" + string(h) + "/m" }
func headKey(name string) string { return "h/" + name }
