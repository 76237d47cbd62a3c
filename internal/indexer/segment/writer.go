// Package segment persists built indexes and corpus statistics as JSON
// files in a data directory:
//
//	naive_index.json     term -> [docID, ...]
//	spimi_index.json     term -> [[docID, frequency], ...]
//	doc_lengths.json     "docID" -> token count
//	avg_doc_length.json  mean token count, two decimals
//	manifest.json        CRC32 and counts per file
//
// Every file is written to a temporary sibling, synced and renamed so a
// crashed build never leaves a truncated file behind.
package segment

import (
	"encoding/json"
	"errors"
	"fmt"
	"hash/crc32"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/internal/indexer/index"
)

const (
	DocLengthsFile   = "doc_lengths.json"
	AvgDocLengthFile = "avg_doc_length.json"
	ManifestFile     = "manifest.json"
)

// IndexFile returns the file name for variant v.
func IndexFile(v index.Variant) string {
	return v.String() + "_index.json"
}

// FileInfo describes one persisted file in the manifest.
type FileInfo struct {
	Checksum  uint32    `json:"crc32"`
	Bytes     int       `json:"bytes"`
	Terms     int       `json:"terms,omitempty"`
	Postings  int       `json:"postings,omitempty"`
	Documents int       `json:"documents,omitempty"`
	WrittenAt time.Time `json:"writtenAt"`
}

// Manifest maps file names to their FileInfo.
type Manifest struct {
	Files map[string]FileInfo `json:"files"`
}

type Writer struct {
	dataDir string
}

func NewWriter(dataDir string) *Writer {
	return &Writer{dataDir: dataDir}
}

// WriteIndex persists idx and returns the path written.
func (w *Writer) WriteIndex(idx index.Index) (string, error) {
	var (
		data []byte
		err  error
	)
	switch x := idx.(type) {
	case *index.NaiveIndex:
		data, err = json.Marshal(x.Postings())
	case *index.SPIMIIndex:
		data, err = json.Marshal(x.Postings())
	default:
		return "", fmt.Errorf("unknown index type %T", idx)
	}
	if err != nil {
		return "", fmt.Errorf("marshaling %s index: %w", idx.Variant(), err)
	}

	name := IndexFile(idx.Variant())
	path, err := w.write(name, data)
	if err != nil {
		return "", err
	}
	return path, w.record(name, FileInfo{
		Checksum:  crc32.ChecksumIEEE(data),
		Bytes:     len(data),
		Terms:     len(idx.Terms()),
		Postings:  idx.Size(),
		Documents: len(idx.Documents()),
		WrittenAt: time.Now().UTC(),
	})
}

// WriteStats persists document lengths and the rounded average length.
func (w *Writer) WriteStats(stats *corpus.Stats) error {
	lengths, err := json.Marshal(stats.DocLengths)
	if err != nil {
		return fmt.Errorf("marshaling document lengths: %w", err)
	}
	avg, err := json.Marshal(math.Round(stats.AvgDocLength*100) / 100)
	if err != nil {
		return fmt.Errorf("marshaling average document length: %w", err)
	}
	now := time.Now().UTC()
	for _, f := range []struct {
		name string
		data []byte
	}{{DocLengthsFile, lengths}, {AvgDocLengthFile, avg}} {
		if _, err := w.write(f.name, f.data); err != nil {
			return err
		}
		info := FileInfo{Checksum: crc32.ChecksumIEEE(f.data), Bytes: len(f.data), WrittenAt: now}
		if f.name == DocLengthsFile {
			info.Documents = stats.N()
		}
		if err := w.record(f.name, info); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) write(name string, data []byte) (string, error) {
	if err := os.MkdirAll(w.dataDir, 0o755); err != nil {
		return "", fmt.Errorf("creating data directory: %w", err)
	}
	path := filepath.Join(w.dataDir, name)
	if err := writeFileAtomic(path, data); err != nil {
		return "", fmt.Errorf("writing %s: %w", name, err)
	}
	return path, nil
}

func (w *Writer) record(name string, info FileInfo) error {
	m, err := readManifest(w.dataDir)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if m.Files == nil {
		m.Files = make(map[string]FileInfo)
	}
	m.Files[name] = info
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	if _, err := w.write(ManifestFile, data); err != nil {
		return err
	}
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
