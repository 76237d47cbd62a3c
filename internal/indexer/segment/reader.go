package segment

import (
	"encoding/json"
	"errors"
	"fmt"
	"hash/crc32"
	"os"
	"path/filepath"

	"github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/internal/indexer/index"
	apperrors "github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/pkg/errors"
)

type Reader struct {
	dataDir string
}

func NewReader(dataDir string) *Reader {
	return &Reader{dataDir: dataDir}
}

// ReadIndex loads the index persisted for variant v. When the manifest
// lists the file its checksum must match. A missing file is reported as
// ErrIndexNotLoaded.
func (r *Reader) ReadIndex(v index.Variant) (index.Index, error) {
	data, err := r.read(IndexFile(v))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s: %w", apperrors.ErrIndexNotLoaded, IndexFile(v), err)
		}
		return nil, err
	}

	switch v {
	case index.Naive:
		var postings map[string][]int
		if err := json.Unmarshal(data, &postings); err != nil {
			return nil, fmt.Errorf("%w: parsing %s: %w", apperrors.ErrCorruptIndex, IndexFile(v), err)
		}
		idx, err := index.NewNaiveIndex(postings)
		if err != nil {
			return nil, err
		}
		return idx, nil
	case index.SPIMI:
		var postings map[string]index.PostingList
		if err := json.Unmarshal(data, &postings); err != nil {
			return nil, fmt.Errorf("%w: parsing %s: %w", apperrors.ErrCorruptIndex, IndexFile(v), err)
		}
		idx, err := index.NewSPIMIIndex(postings)
		if err != nil {
			return nil, err
		}
		return idx, nil
	default:
		return nil, fmt.Errorf("%w: %s", apperrors.ErrUnsupportedVariant, v)
	}
}

// ReadStats loads document lengths and the average length. Either file
// missing yields ErrMissingStatistics.
func (r *Reader) ReadStats() (*corpus.Stats, error) {
	stats := &corpus.Stats{}
	for _, f := range []struct {
		name string
		dst  any
	}{{DocLengthsFile, &stats.DocLengths}, {AvgDocLengthFile, &stats.AvgDocLength}} {
		data, err := r.read(f.name)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("%w: %s: %w", apperrors.ErrMissingStatistics, f.name, err)
			}
			return nil, err
		}
		if err := json.Unmarshal(data, f.dst); err != nil {
			return nil, fmt.Errorf("%w: parsing %s: %w", apperrors.ErrCorruptIndex, f.name, err)
		}
	}
	return stats, nil
}

// Manifest returns the manifest, or an error wrapping os.ErrNotExist if
// none was written.
func (r *Reader) Manifest() (Manifest, error) {
	return readManifest(r.dataDir)
}

func (r *Reader) read(name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(r.dataDir, name))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	m, err := readManifest(r.dataDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return data, nil
		}
		return nil, err
	}
	if info, ok := m.Files[name]; ok {
		if sum := crc32.ChecksumIEEE(data); sum != info.Checksum {
			return nil, fmt.Errorf("%w: %s checksum %08x, manifest says %08x",
				apperrors.ErrCorruptIndex, name, sum, info.Checksum)
		}
	}
	return data, nil
}

func readManifest(dataDir string) (Manifest, error) {
	var m Manifest
	data, err := os.ReadFile(filepath.Join(dataDir, ManifestFile))
	if err != nil {
		return m, fmt.Errorf("reading manifest: %w", err)
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("%w: parsing manifest: %w", apperrors.ErrCorruptIndex, err)
	}
	return m, nil
}
