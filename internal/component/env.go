// internal/component/env.go
package component

import (
	"github.com/jmoiron/sqlx"

	"github.com/yanizio/cadastro/internal/config"
)

// Env exposes process-wide resources to Components during Init.
type Env interface {
	GetDB() *sqlx.DB
	GetConfig() *config.Config
}

// Resources is the Env built by cmd/web.
type Resources struct {
	DB     *sqlx.DB
	Config *config.Config
}

func (r Resources) GetDB() *sqlx.DB          { return r.DB }
func (r Resources) GetConfig() *config.Config { return r.Config }
