package controllers

import (
	"errors"
	"io"
	"net/http"
	"soulhealing/internal/backup"
	"soulhealing/internal/providers"
	"soulhealing/internal/structures"
)

type BackupController struct {
	logger        providers.Logger
	service       backup.ServiceInterface
	cache         providers.ListCacheInterface
	maxImportSize int64
}

func NewBackupController(conf *structures.Config, logger providers.Logger, service backup.ServiceInterface, cache providers.ListCacheInterface) *BackupController {
	return &BackupController{
		logger:        logger,
		service:       service,
		cache:         cache,
		maxImportSize: conf.Backup.MaxImportSize,
	}
}

func (bc *BackupController) Export(w http.ResponseWriter, r *http.Request) {
	data, err := bc.service.Export(r.Context())
	if err != nil {
		bc.logger.Errorf(providers.TypeBackup, "Export failed: %s", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// Save exports and hands the document to the runtime's medium. A download
// medium answers with the file itself as an attachment.
func (bc *BackupController) Save(w http.ResponseWriter, r *http.Request) {
	delivery, err := bc.service.Backup(r.Context())
	if err != nil {
		bc.logger.Errorf(providers.TypeBackup, "Backup failed: %s", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	if delivery.Data != nil {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", `attachment; filename="`+delivery.FileName+`"`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(delivery.Data)
		return
	}
	writeJSON(w, http.StatusCreated, delivery)
}

func (bc *BackupController) Import(w http.ResponseWriter, r *http.Request) {
	limit := bc.maxImportSize
	if limit <= 0 {
		limit = maxRequestBodySize
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	data, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "backup too large")
			return
		}
		writeError(w, http.StatusBadRequest, "Bad Request")
		return
	}

	if err := bc.service.Import(r.Context(), data); err != nil {
		if errors.Is(err, backup.ErrInvalidBackup) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "import failed, previous data kept")
		return
	}
	bc.cache.Invalidate()
	w.WriteHeader(http.StatusNoContent)
}
