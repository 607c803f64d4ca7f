// Package filestore abstracts the object store holding snapshot files.
// Incoming files live under inbox/; the pipeline relocates them to processed/
// or error/ when a run finishes.
package filestore

import (
	"context"
	"fmt"
	"path"
	"strings"
)

const (
	InboxPrefix     = "inbox/"
	ProcessedPrefix = "processed/"
	ErrorPrefix     = "error/"
)

// Store is a key-value object store with move and list semantics.
type Store interface {
	Read(ctx context.Context, name string) ([]byte, error)
	Write(ctx context.Context, name string, data []byte) error
	Move(ctx context.Context, src, dst string) error
	List(ctx context.Context, prefix string) ([]string, error)
}

// ProcessedName returns the destination for a successfully processed file:
// the base name suffixed with the snapshot date, under processed/.
func ProcessedName(name, snapshotDate string) string {
	base := path.Base(name)
	ext := path.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return fmt.Sprintf("%s%s-%s%s", ProcessedPrefix, stem, snapshotDate, ext)
}

// ErrorName returns the destination for a failed file: the original base name
// under error/, relocated but otherwise preserved.
func ErrorName(name string) string {
	return ErrorPrefix + path.Base(name)
}
