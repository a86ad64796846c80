package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/hourlyx/hourlyx-api/internal/models"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

type ProfileRepository interface {
	CreateProfile(ctx context.Context, email, password, fullName string) (models.Profile, error)
	AuthenticateProfile(ctx context.Context, email, password string) (models.Profile, error)
	GetProfileByEmail(ctx context.Context, email string) (models.Profile, error)
	GetProfileByID(ctx context.Context, id string) (models.Profile, error)
}

type profileRepository struct {
	db *sql.DB
}

func NewProfileRepository(db *sql.DB) ProfileRepository {
	return &profileRepository{db: db}
}

const profileColumns = `id, email, full_name, password_hash, email_verified, is_active, created_at, updated_at`

func scanProfile(row *sql.Row) (models.Profile, error) {
	var p models.Profile
	err := row.Scan(&p.ID, &p.Email, &p.FullName, &p.PasswordHash, &p.EmailVerified, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *profileRepository) CreateProfile(ctx context.Context, email, password, fullName string) (models.Profile, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	fullName = strings.TrimSpace(fullName)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.Profile{}, err
	}

	const query = `
		INSERT INTO profiles (email, full_name, password_hash)
		VALUES ($1, $2, $3)
		RETURNING ` + profileColumns + `;
	`
	p, err := scanProfile(r.db.QueryRowContext(ctx, query, email, fullName, string(hash)))
	if err != nil {
		if isUniqueViolation(err) {
			return models.Profile{}, ErrDuplicate
		}
		return models.Profile{}, errors.Wrap(err, "create profile")
	}
	return p, nil
}

func (r *profileRepository) AuthenticateProfile(ctx context.Context, email, password string) (models.Profile, error) {
	p, err := r.GetProfileByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Profile{}, errors.New("invalid credentials")
		}
		return models.Profile{}, err
	}
	if !p.IsActive {
		return models.Profile{}, errors.New("profile is inactive")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(password)); err != nil {
		return models.Profile{}, errors.New("invalid credentials")
	}
	return p, nil
}

func (r *profileRepository) GetProfileByEmail(ctx context.Context, email string) (models.Profile, error) {
	const query = `
		SELECT ` + profileColumns + `
		FROM profiles
		WHERE email = $1;
	`
	return scanProfile(r.db.QueryRowContext(ctx, query, strings.ToLower(strings.TrimSpace(email))))
}

func (r *profileRepository) GetProfileByID(ctx context.Context, id string) (models.Profile, error) {
	const query = `
		SELECT ` + profileColumns + `
		FROM profiles
		WHERE id = $1;
	`
	return scanProfile(r.db.QueryRowContext(ctx, query, id))
}
