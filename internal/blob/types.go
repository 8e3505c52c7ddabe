// Package blob is the entry point to blob storage. Callers depend on Store
// and obtain an implementation through Open; driver packages stay internal.
package blob

import (
	"github.com/dell121212/laberaer/internal/blob/core"
)

type (
	// Driver identifies a blob backend driver.
	Driver = core.Driver
	// PutOptions configures a blob write.
	PutOptions = core.PutOptions
	// Info describes stored blob metadata.
	Info = core.Info
	// Store is the interface implemented by every blob backend.
	Store = core.Store
)

const (
	DriverFilesystem = core.DriverFilesystem
	DriverS3         = core.DriverS3
	DriverMemory     = core.DriverMemory

	ContentTypeXLSX = core.ContentTypeXLSX
	ContentTypeCSV  = core.ContentTypeCSV
)

var (
	// ErrNotFound reports a missing key.
	ErrNotFound = core.ErrNotFound
	// ErrUnsupported indicates an operation isn't supported by a driver.
	ErrUnsupported = core.ErrUnsupported
)
