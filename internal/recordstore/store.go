package recordstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"montage/internal/record"
	"montage/internal/recordstore/postgres"
	"montage/internal/services"
)

// Kind identifies a record store backend.
type Kind string

const (
	KindJSON     Kind = "json"
	KindYAML     Kind = "yaml"
	KindSQLite   Kind = "sqlite"
	KindPostgres Kind = "postgres"
)

// ErrUnsupportedStore is returned for locations no backend recognizes.
var ErrUnsupportedStore = errors.New("unsupported record store")

// Reader yields every record in a store.
type Reader interface {
	Records(ctx context.Context) ([]record.Record, error)
	Close() error
}

// Importer is a store that can be rewritten from a record set.
type Importer interface {
	Reader
	Import(ctx context.Context, records []record.Record) error
}

// DetectKind picks a backend from a DSN scheme or file extension.
func DetectKind(location string) (Kind, error) {
	location = strings.TrimSpace(location)
	lower := strings.ToLower(location)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return KindPostgres, nil
	}
	switch strings.ToLower(filepath.Ext(location)) {
	case ".json":
		return KindJSON, nil
	case ".yaml", ".yml":
		return KindYAML, nil
	case ".db", ".sqlite", ".sqlite3":
		return KindSQLite, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedStore, location)
}

// Open returns a reader for any supported location.
func Open(ctx context.Context, location string) (Reader, error) {
	kind, err := DetectKind(location)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "load", "detect store", "", err)
	}
	switch kind {
	case KindJSON:
		return fileReader{path: location, decode: decodeJSON}, nil
	case KindYAML:
		return fileReader{path: location, decode: decodeYAML}, nil
	case KindSQLite:
		// Only import creates a database; reading a missing one is an error.
		if _, err := os.Stat(location); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, services.Wrap(services.ErrNotFound, "load", "open sqlite store", location, err)
			}
			return nil, services.Wrap(services.ErrConfiguration, "load", "stat sqlite store", location, err)
		}
		return OpenSQLite(ctx, location)
	default:
		return OpenImporter(ctx, location)
	}
}

// OpenImporter opens a writable database store, creating it when needed.
func OpenImporter(ctx context.Context, location string) (Importer, error) {
	kind, err := DetectKind(location)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "import", "detect store", "", err)
	}
	switch kind {
	case KindSQLite:
		return OpenSQLite(ctx, location)
	case KindPostgres:
		return postgres.New(ctx, location)
	default:
		return nil, services.Wrap(services.ErrConfiguration, "import", "open", fmt.Sprintf("%s stores are read-only", kind), nil)
	}
}

// Load reads every record from location.
func Load(ctx context.Context, location string) ([]record.Record, error) {
	reader, err := Open(ctx, location)
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	records, err := reader.Records(ctx)
	if err != nil {
		return nil, err
	}
	return record.Canonicalize(records), nil
}
