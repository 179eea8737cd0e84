package handler

// DI for all handlers and models alike.

import (
	"github.com/regland/regland/pkg/expression"
	"github.com/regland/regland/pkg/model"
	"github.com/regland/regland/pkg/region"
)

type APIContext struct {
	Store      *model.Store
	Regions    *region.Service
	Expression *expression.Cache // may be nil
	Version    string
}
