package repositories

import (
	"github.com/nishan/applygate/internal/db"
)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository         *UserRepository
	TokenRepository        *TokenRepository
	AccountTokenRepository *AccountTokenRepository
	ApplicantRepository    *ApplicantRepository
}

// NewRepositories initializes all repositories
func NewRepositories(database *db.PostgresDB) *Repositories {
	return &Repositories{
		UserRepository:         NewUserRepository(database.Pool),
		TokenRepository:        NewTokenRepository(database.Pool),
		AccountTokenRepository: NewAccountTokenRepository(database.Pool),
		ApplicantRepository:    NewApplicantRepository(database),
	}
}
