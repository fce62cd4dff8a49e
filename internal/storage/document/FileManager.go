package document

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"soulhealing/internal/providers"

	json "github.com/goccy/go-json"
)

// zstdMagic starts every zstd frame. Snapshots without it are read as plain
// JSON, which is what an uncompressed store writes.
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// FileManager writes and reads the snapshot file of a document database.
type FileManager struct {
	path       string
	compressor Compressor
	logger     providers.Logger
}

func NewFileManager(path string, compressor Compressor, logger providers.Logger) *FileManager {
	return &FileManager{
		path:       path,
		compressor: compressor,
		logger:     logger,
	}
}

func (f *FileManager) tmpPath() string {
	return f.path + ".tmp"
}

// SaveToFile replaces the snapshot atomically: the new image is synced to a
// temp file and renamed over the old one.
func (f *FileManager) SaveToFile(snap *snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if f.compressor != nil {
		if data, err = f.compressor.Compress(data); err != nil {
			return fmt.Errorf("compress snapshot: %w", err)
		}
	}

	if err := writeSynced(f.tmpPath(), data); err != nil {
		os.Remove(f.tmpPath())
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(f.tmpPath(), f.path); err != nil {
		os.Remove(f.tmpPath())
		return fmt.Errorf("replace snapshot: %w", err)
	}
	syncDir(filepath.Dir(f.path))

	f.logger.Debugf(providers.TypeStorage, "Snapshot %s saved, %d bytes", f.path, len(data))
	return nil
}

func writeSynced(path string, data []byte) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := file.Write(data); err != nil {
		file.Close()
		return err
	}
	if err := file.Sync(); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// syncDir makes the rename durable. Not every platform can fsync a
// directory, so failures are ignored.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = d.Sync()
	_ = d.Close()
}

// LoadFromFile returns nil without error when no snapshot exists yet. A temp
// file left behind by an interrupted save is discarded.
func (f *FileManager) LoadFromFile() (*snapshot, error) {
	if err := os.Remove(f.tmpPath()); err == nil {
		f.logger.Warnf(providers.TypeStorage, "Discarded unfinished snapshot %s", f.tmpPath())
	}

	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	if bytes.HasPrefix(data, zstdMagic) {
		if f.compressor == nil {
			return nil, errors.New("snapshot is compressed but no compressor is configured")
		}
		if data, err = f.compressor.Decompress(data); err != nil {
			return nil, fmt.Errorf("decompress snapshot: %w", err)
		}
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	f.logger.Debugf(providers.TypeStorage, "Loaded snapshot %s: %d calendar entries, %d notes, %d people",
		f.path, len(snap.CalendarEntries), len(snap.Notes), len(snap.People))
	return &snap, nil
}
