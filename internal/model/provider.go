package model

import (
	"sync"

	"github.com/smallbiznis/churnscope/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Provider loads the model artifacts once per process and caches them for the
// process lifetime. The cached ensemble and column list are read-only after
// load and safe to share across concurrent pipeline runs.
type Provider struct {
	modelPath   string
	columnsPath string
	log         *zap.Logger

	once sync.Once
	ens  *Ensemble
	cols []string
	err  error
}

func NewProvider(cfg config.Config, log *zap.Logger) *Provider {
	return &Provider{
		modelPath:   cfg.ModelPath,
		columnsPath: cfg.ModelColumnsPath,
		log:         log.Named("model"),
	}
}

// Get returns the cached ensemble and canonical column list, loading them on
// first use. A load failure is cached too: an absent artifact does not become
// present by retrying.
func (p *Provider) Get() (*Ensemble, []string, error) {
	p.once.Do(func() {
		p.ens, p.cols, p.err = LoadArtifacts(p.modelPath, p.columnsPath)
		if p.err != nil {
			p.log.Error("model load failed", zap.Error(p.err))
			return
		}
		p.log.Info("model loaded",
			zap.String("version", p.ens.Version),
			zap.Int("trees", len(p.ens.Trees)),
			zap.Int("columns", len(p.cols)),
		)
	})
	return p.ens, p.cols, p.err
}

var Module = fx.Module("model",
	fx.Provide(NewProvider),
)
