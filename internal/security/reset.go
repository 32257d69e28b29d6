package security

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"time"

	"ferretcontrol/internal/auth"
	"ferretcontrol/internal/models"

	"gorm.io/gorm"
)

const ResetCodeTTL = 15 * time.Minute

var (
	ErrInvalidResetCode = errors.New("invalid or expired code")
	ErrMailDelivery     = errors.New("could not send email")
)

type ResetStore interface {
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateResetCode(ctx context.Context, code *models.PasswordResetCode) error
	// LatestResetCode returns the newest code for userID with the given digest
	// that expires after now.
	LatestResetCode(ctx context.Context, userID uint, codeHash string, now time.Time) (*models.PasswordResetCode, error)
	// ReplacePassword stores the new hash and deletes every reset code of the user.
	ReplacePassword(ctx context.Context, userID uint, passwordHash string) error
}

type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

type PasswordResets struct {
	store    ResetStore
	mailer   Mailer
	now      func() time.Time
	generate func() (string, error)
}

func NewPasswordResets(store ResetStore, mailer Mailer) *PasswordResets {
	return &PasswordResets{
		store:    store,
		mailer:   mailer,
		now:      time.Now,
		generate: generateResetCode,
	}
}

// Request issues and mails a code when email belongs to an account. An
// unknown email returns nil so callers answer identically either way.
func (p *PasswordResets) Request(ctx context.Context, email string) error {
	user, err := p.store.FindUserByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("lookup account: %w", err)
	}

	code, err := p.generate()
	if err != nil {
		return fmt.Errorf("generate reset code: %w", err)
	}

	now := p.now()
	rec := &models.PasswordResetCode{
		UserID:    user.ID,
		CodeHash:  HashResetCode(code),
		CreatedAt: now,
		ExpiresAt: now.Add(ResetCodeTTL),
	}
	if err := p.store.CreateResetCode(ctx, rec); err != nil {
		return fmt.Errorf("store reset code: %w", err)
	}

	body := fmt.Sprintf("Your verification code is: %s\n\nThis code expires in %d minutes.", code, int(ResetCodeTTL.Minutes()))
	if err := p.mailer.Send(ctx, email, "Password reset code - FerretControl", body); err != nil {
		return fmt.Errorf("%w: %v", ErrMailDelivery, err)
	}
	return nil
}

// Confirm replaces the account password when code matches the newest
// unexpired code issued for email. All outstanding codes are then discarded.
func (p *PasswordResets) Confirm(ctx context.Context, email, code, newPassword string) error {
	user, err := p.store.FindUserByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrInvalidResetCode
	}
	if err != nil {
		return fmt.Errorf("lookup account: %w", err)
	}

	_, err = p.store.LatestResetCode(ctx, user.ID, HashResetCode(code), p.now())
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrInvalidResetCode
	}
	if err != nil {
		return fmt.Errorf("lookup reset code: %w", err)
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return p.store.ReplacePassword(ctx, user.ID, hash)
}

func HashResetCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

// generateResetCode returns a number in [100000, 999999].
func generateResetCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
