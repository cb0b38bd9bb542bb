package flat

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/quaystone-labs/ragkit/internal/core/domain"
)

// Snapshot layout under the index directory. Vectors live in a binary
// blob, entry metadata in a JSON sidecar. Both carry a format version
// so older snapshots can be migrated or rejected explicitly.
const (
	vectorsFile  = "index.bin"
	metadataFile = "metadata.json"

	formatVersion = 1
)

// blobMagic identifies a ragkit index blob.
var blobMagic = [4]byte{'R', 'G', 'I', 'X'}

type blobHeader struct {
	Magic   [4]byte
	Version uint32
	Dim     uint32
	Count   uint32
}

// metadataSnapshot is the JSON sidecar for the vector blob.
type metadataSnapshot struct {
	Version int                 `json:"version"`
	NextID  int64               `json:"next_id"`
	Entries []domain.IndexEntry `json:"entries"`
}

// persist writes both snapshot files atomically via rename.
// Caller holds the lock.
func (idx *Index) persist() error {
	if err := os.MkdirAll(idx.dir, 0o755); err != nil {
		return fmt.Errorf("create index directory: %w", err)
	}
	if err := idx.writeVectors(); err != nil {
		return err
	}
	return idx.writeMetadata()
}

func (idx *Index) writeVectors() error {
	path := filepath.Join(idx.dir, vectorsFile)
	tmp, err := os.CreateTemp(idx.dir, vectorsFile+".tmp-*")
	if err != nil {
		return fmt.Errorf("create vector blob: %w", err)
	}
	defer os.Remove(tmp.Name())

	header := blobHeader{
		Magic:   blobMagic,
		Version: formatVersion,
		Dim:     uint32(idx.dim),
		Count:   uint32(len(idx.ids)),
	}
	if err := binary.Write(tmp, binary.LittleEndian, header); err != nil {
		tmp.Close()
		return fmt.Errorf("write blob header: %w", err)
	}
	for i, id := range idx.ids {
		if err := binary.Write(tmp, binary.LittleEndian, id); err != nil {
			tmp.Close()
			return fmt.Errorf("write vector id: %w", err)
		}
		if err := binary.Write(tmp, binary.LittleEndian, idx.vectors[i]); err != nil {
			tmp.Close()
			return fmt.Errorf("write vector data: %w", err)
		}
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close vector blob: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace vector blob: %w", err)
	}
	return nil
}

func (idx *Index) writeMetadata() error {
	snap := metadataSnapshot{
		Version: formatVersion,
		NextID:  idx.nextID,
		Entries: make([]domain.IndexEntry, 0, len(idx.ids)),
	}
	for _, id := range idx.ids {
		snap.Entries = append(snap.Entries, idx.entries[id])
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode index metadata: %w", err)
	}

	path := filepath.Join(idx.dir, metadataFile)
	tmp, err := os.CreateTemp(idx.dir, metadataFile+".tmp-*")
	if err != nil {
		return fmt.Errorf("create metadata file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write metadata: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close metadata file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace metadata file: %w", err)
	}
	return nil
}

// load restores the snapshot from disk. A missing snapshot is not an
// error, it just means no index has been built yet. A vector blob
// without its metadata sidecar (or the reverse) is corrupt.
func (idx *Index) load() error {
	vecPath := filepath.Join(idx.dir, vectorsFile)
	metaPath := filepath.Join(idx.dir, metadataFile)

	f, err := os.Open(vecPath)
	if errors.Is(err, fs.ErrNotExist) {
		if _, merr := os.Stat(metaPath); merr == nil {
			return fmt.Errorf("metadata present without vector blob")
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("open vector blob: %w", err)
	}
	defer f.Close()

	var header blobHeader
	if err := binary.Read(f, binary.LittleEndian, &header); err != nil {
		return fmt.Errorf("read blob header: %w", err)
	}
	if header.Magic != blobMagic {
		return fmt.Errorf("not an index blob: bad magic %q", header.Magic[:])
	}
	if header.Version != formatVersion {
		return fmt.Errorf("unsupported blob version %d", header.Version)
	}

	ids := make([]int64, 0, header.Count)
	vectors := make([][]float32, 0, header.Count)
	for i := uint32(0); i < header.Count; i++ {
		var id int64
		if err := binary.Read(f, binary.LittleEndian, &id); err != nil {
			return fmt.Errorf("read vector id: %w", err)
		}
		vec := make([]float32, header.Dim)
		if err := binary.Read(f, binary.LittleEndian, vec); err != nil {
			return fmt.Errorf("read vector data: %w", err)
		}
		ids = append(ids, id)
		vectors = append(vectors, vec)
	}
	// Trailing bytes mean a truncated or overlong write.
	if _, err := f.Read(make([]byte, 1)); err != io.EOF {
		return fmt.Errorf("vector blob has trailing data")
	}

	data, err := os.ReadFile(metaPath)
	if err != nil {
		return fmt.Errorf("read metadata: %w", err)
	}
	var snap metadataSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("decode metadata: %w", err)
	}
	if snap.Version != formatVersion {
		return fmt.Errorf("unsupported metadata version %d", snap.Version)
	}
	if len(snap.Entries) != len(ids) {
		return fmt.Errorf("metadata holds %d entries for %d vectors", len(snap.Entries), len(ids))
	}

	entries := make(map[int64]domain.IndexEntry, len(snap.Entries))
	for _, e := range snap.Entries {
		entries[e.ID] = e
	}
	for _, id := range ids {
		if _, ok := entries[id]; !ok {
			return fmt.Errorf("vector %d has no metadata entry", id)
		}
	}

	idx.ids = ids
	idx.vectors = vectors
	idx.entries = entries
	idx.dim = int(header.Dim)
	if len(ids) == 0 {
		idx.dim = 0
	}
	idx.nextID = snap.NextID
	for _, id := range ids {
		if id >= idx.nextID {
			idx.nextID = id + 1
		}
	}
	return nil
}
