package gateway

import (
	"context"

	"github.com/okian/cricscore/internal/domain/catalog"
)

// FileCatalog serves the venue catalog from a local JSON file, for
// deployments where the prediction service does not expose /venues.
type FileCatalog struct {
	path string
}

// NewFileCatalog returns a catalog source reading path on every call.
func NewFileCatalog(path string) *FileCatalog {
	return &FileCatalog{path: path}
}

// Venues reads and decodes the catalog file.
func (f *FileCatalog) Venues(_ context.Context) (catalog.Catalog, error) {
	return catalog.LoadFile(f.path)
}
