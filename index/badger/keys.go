package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/rotemx/RAG-sub001/core"
)

// Key prefixes for different data types. The meta key must not share
// the chunk prefix or chunk scans would pick it up.
const (
	chunkPrefix       = "chunk"
	chunkSourcePrefix = "chunksrc"
	indexMetaKey      = "idxmeta"
)

// makeChunkKey generates a key for a chunk by ID.
func makeChunkKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", chunkPrefix, id))
}

// makeChunkSourceKey generates a composite key for the source index.
// Format: prefix:sourceId:id
func makeChunkSourceKey(sourceId string, id core.ID) []byte {
	prefix := chunkSourcePrefix + ":" + sourceId + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 8 // 8 bytes for ID
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialChunkSourceKey generates a partial key for source scans.
// Format: prefix:sourceId
func makePartialChunkSourceKey(sourceId string) []byte {
	return []byte(chunkSourcePrefix + ":" + sourceId + ":")
}
