package gateway

import (
	"errors"
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// credentialName is the fixed key the bearer token is stored under.
const credentialName = "token"

// Credential is the single durable piece of client state. Presence of the
// row means "possibly authenticated"; absence means "definitely
// unauthenticated".
type Credential struct {
	Name  string `gorm:"primaryKey;type:text"`
	Value string `gorm:"not null;type:text"`
}

// TableName returns the table name for the Credential entity.
func (Credential) TableName() string {
	return "credentials"
}

// CredentialStore persists the bearer token using GORM over SQLite.
type CredentialStore struct {
	db *gorm.DB
}

// OpenCredentialStore opens the store at path, creating it if needed.
func OpenCredentialStore(path string) (*CredentialStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open credential store: %w", err)
	}
	if err := db.AutoMigrate(&Credential{}); err != nil {
		return nil, fmt.Errorf("failed to migrate credential store: %w", err)
	}
	return &CredentialStore{db: db}, nil
}

// Load returns the stored token, or the empty string when none is stored.
func (s *CredentialStore) Load() (string, error) {
	var cred Credential
	result := s.db.First(&cred, "name = ?", credentialName)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", result.Error
	}
	return cred.Value, nil
}

// Save stores the token, replacing any previous value.
func (s *CredentialStore) Save(token string) error {
	cred := Credential{Name: credentialName, Value: token}
	return s.db.Save(&cred).Error
}

// Clear removes the stored token. Removal is the sole durable signal of
// logged-out state.
func (s *CredentialStore) Clear() error {
	return s.db.Delete(&Credential{}, "name = ?", credentialName).Error
}

// Close closes the underlying database connection.
func (s *CredentialStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
