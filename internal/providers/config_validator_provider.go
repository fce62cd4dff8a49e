package providers

import (
	"errors"
	"fmt"
	"soulhealing/internal/structures"

	"github.com/gookit/validate"
)

type CnfValidator struct {
	conf *structures.Config
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}

// Validate checks the struct tags first, then the rules that span fields.
func (cv *CnfValidator) Validate() error {
	v := validate.Struct(cv.conf)
	if !v.Validate() {
		return v.Errors
	}

	c := cv.conf
	if c.WebServer.Port > 65535 {
		return fmt.Errorf("webServer.port %d out of range", c.WebServer.Port)
	}
	if c.Backup.Interval < 0 {
		return errors.New("backup.interval must not be negative")
	}
	if c.Backup.MaxImportSize < 0 {
		return errors.New("backup.maxImportSize must not be negative")
	}

	// the document store may run memory-only, the relational one may not
	relational := c.Storage.Driver == "relational" ||
		(c.Storage.Driver == "" && DetectRuntime(c.Storage.Runtime) == RuntimeNative)
	if relational && c.Storage.SqlitePath == "" {
		return errors.New("storage.sqlitePath is required for the relational store")
	}
	return nil
}
