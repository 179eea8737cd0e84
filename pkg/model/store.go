package model

// Interval store over the RegLand sqlite schema. Filterable queries take a
// parameter object and go through gorm's builder; fixed-shape lookups use
// prepared statements on the raw handle.

import (
	regdb "github.com/regland/regland/pkg/db"
)

// Default result caps, applied before records reach the matrix builder.
const (
	DefaultEnhancerLimit = 5000
	DefaultGWASLimit     = 50
	DefaultCTCFLimit     = 200
	DefaultSearchLimit   = 10

	// MaxQueryLimit bounds any explicit limit.
	MaxQueryLimit = 10000
)

type Limits struct {
	Enhancers int
	GWAS      int
	CTCF      int
}

func DefaultLimits() Limits {
	return Limits{Enhancers: DefaultEnhancerLimit, GWAS: DefaultGWASLimit, CTCF: DefaultCTCFLimit}
}

type Store struct {
	db     *regdb.RegDB
	limits Limits
}

func NewStore(db *regdb.RegDB, limits Limits) *Store {
	def := DefaultLimits()
	if limits.Enhancers <= 0 {
		limits.Enhancers = def.Enhancers
	}
	if limits.GWAS <= 0 {
		limits.GWAS = def.GWAS
	}
	if limits.CTCF <= 0 {
		limits.CTCF = def.CTCF
	}
	return &Store{db: db, limits: limits}
}

func (s *Store) Limits() Limits { return s.limits }

// capLimit picks the requested limit, the fallback when none was given, and
// never more than MaxQueryLimit.
func capLimit(requested, fallback int) int {
	if requested <= 0 {
		return fallback
	}
	return min(requested, MaxQueryLimit)
}
