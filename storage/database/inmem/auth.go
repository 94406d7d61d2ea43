package inmemdb

import (
	"context"

	"github.com/trezcool/qitc/core/auth"
)

type revocationRepository struct {
	db *DB
}

var _ auth.Repository = (*revocationRepository)(nil) // interface compliance check

func NewRevocationRepository(db *DB) auth.Repository {
	return &revocationRepository{db: db}
}

func (repo *revocationRepository) RevokeToken(ctx context.Context, token string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	repo.db.revokedTokens[token] = struct{}{}
	return nil
}

func (repo *revocationRepository) IsTokenRevoked(ctx context.Context, token string) (bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	_, revoked := repo.db.revokedTokens[token]
	return revoked, nil
}
