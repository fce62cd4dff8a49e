package backup

import (
	"fmt"
	"os"
	"path/filepath"
	"soulhealing/internal/providers"
	"soulhealing/internal/structures"
	"strings"
	"time"
)

const (
	filePrefix = "soulhealing-backup-"
	fileSuffix = ".json"
)

var stampReplacer = strings.NewReplacer(":", "-", ".", "-")

// FileName builds the backup file name for a moment in time, for example
// soulhealing-backup-2024-03-01T12-34-56-789Z.json.
func FileName(now time.Time) string {
	return filePrefix + stampReplacer.Replace(now.UTC().Format("2006-01-02T15:04:05.000Z")) + fileSuffix
}

func isBackupFile(name string) bool {
	return strings.HasPrefix(name, filePrefix) && strings.HasSuffix(name, fileSuffix)
}

// Delivery describes where a saved backup went. Path is set when the backup
// was written to disk, Data when the caller has to hand the bytes over.
type Delivery struct {
	FileName string `json:"file_name"`
	Path     string `json:"path,omitempty"`
	Data     []byte `json:"-"`
}

type Medium interface {
	Kind() string
	Deliver(fileName string, data []byte) (*Delivery, error)
}

// FileMedium writes backups into the documents directory of a native install.
type FileMedium struct {
	dir string
}

func NewFileMedium(dir string) *FileMedium {
	return &FileMedium{dir: dir}
}

func (m *FileMedium) Kind() string {
	return "file"
}

func (m *FileMedium) Deliver(fileName string, data []byte) (*Delivery, error) {
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create backup directory: %w", err)
	}

	path := filepath.Join(m.dir, fileName)
	tmpFile := path + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0o644); err != nil {
		os.Remove(tmpFile)
		return nil, err
	}
	if err := os.Rename(tmpFile, path); err != nil {
		os.Remove(tmpFile)
		return nil, err
	}
	return &Delivery{FileName: fileName, Path: path}, nil
}

// DownloadMedium leaves delivery to the HTTP layer, which sends the bytes as
// an attachment.
type DownloadMedium struct{}

func (DownloadMedium) Kind() string {
	return "download"
}

func (DownloadMedium) Deliver(fileName string, data []byte) (*Delivery, error) {
	return &Delivery{FileName: fileName, Data: data}, nil
}

func NewMedium(conf *structures.Config) Medium {
	if providers.DetectRuntime(conf.Storage.Runtime) == providers.RuntimeNative {
		return NewFileMedium(conf.Backup.Dir)
	}
	return DownloadMedium{}
}
