package filestore

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/smallbiznis/churnscope/internal/config"
	"go.uber.org/fx"
)

// Local is a directory-backed Store. Object names are slash-separated keys
// relative to the root.
type Local struct {
	root string
}

func NewLocal(root string) *Local {
	return &Local{root: root}
}

func (l *Local) path(name string) string {
	return filepath.Join(l.root, filepath.FromSlash(name))
}

func (l *Local) Read(ctx context.Context, name string) ([]byte, error) {
	_ = ctx
	return os.ReadFile(l.path(name))
}

func (l *Local) Write(ctx context.Context, name string, data []byte) error {
	_ = ctx
	target := l.path(name)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	return os.WriteFile(target, data, 0o644)
}

func (l *Local) Move(ctx context.Context, src, dst string) error {
	_ = ctx
	target := l.path(dst)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	return os.Rename(l.path(src), target)
}

func (l *Local) List(ctx context.Context, prefix string) ([]string, error) {
	_ = ctx
	dir := l.path(prefix)
	var names []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(l.root, p)
		if err != nil {
			return err
		}
		names = append(names, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}

var Module = fx.Module("filestore",
	fx.Provide(func(cfg config.Config) Store {
		return NewLocal(cfg.DataDir)
	}),
)
