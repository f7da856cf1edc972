package session

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Record is the admin_sessions row
type Record struct {
	ID        string     `gorm:"primaryKey;type:varchar(64)"`
	Token     string     `gorm:"type:text;not null"`
	ExpiresAt *time.Time `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the table name for Record
func (Record) TableName() string {
	return "admin_sessions"
}

// PostgresStore keeps tokens in the admin_sessions table
type PostgresStore struct {
	db  *gorm.DB
	now func() time.Time
}

func NewPostgresStore(db *gorm.DB) *PostgresStore {
	return &PostgresStore{db: db, now: time.Now}
}

func (p *PostgresStore) Get(ctx context.Context, id string) (string, error) {
	var rec Record
	err := p.db.WithContext(ctx).
		Where("id = ? AND (expires_at IS NULL OR expires_at > ?)", id, p.now()).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", errors.Wrap(err, "query session")
	}
	return rec.Token, nil
}

func (p *PostgresStore) Set(ctx context.Context, id, token string, ttl time.Duration) error {
	rec := Record{ID: id, Token: token}
	if ttl > 0 {
		exp := p.now().Add(ttl)
		rec.ExpiresAt = &exp
	}
	return errors.Wrap(p.db.WithContext(ctx).Save(&rec).Error, "save session")
}

func (p *PostgresStore) Delete(ctx context.Context, id string) error {
	return errors.Wrap(p.db.WithContext(ctx).Delete(&Record{}, "id = ?", id).Error, "delete session")
}

// Purge removes expired rows
func (p *PostgresStore) Purge(ctx context.Context) (int64, error) {
	res := p.db.WithContext(ctx).Where("expires_at IS NOT NULL AND expires_at <= ?", p.now()).Delete(&Record{})
	return res.RowsAffected, res.Error
}

func (p *PostgresStore) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
