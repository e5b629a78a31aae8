package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrConsultantNotFound = errors.New("consultant not found")
	ErrEmailTaken         = errors.New("an account with this email already exists")
)

// Consultant is the user record. PasswordHash never leaves this package.
type Consultant struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	OfficeID     int64  `json:"office_id"`
	RegionID     int64  `json:"region_id"`
	SkillProfile string `json:"skill_profile"`
	PasswordHash string `json:"-"`
}

// Profile is the /me view with office and region names joined in.
type Profile struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	SkillProfile string `json:"skill_profile"`
	OfficeID     int64  `json:"office_id"`
	OfficeName   string `json:"officeName"`
	RegionID     int64  `json:"region_id"`
	RegionName   string `json:"regionName"`
}

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

func (r *Repo) GetByEmail(ctx context.Context, email string) (*Consultant, error) {
	const q = `
select id, name, email, password_hash, role, office_id, region_id, coalesce(skill_profile, '')
from consultants
where email = $1;
`
	var c Consultant
	err := r.db.QueryRow(ctx, q, email).Scan(
		&c.ID, &c.Name, &c.Email, &c.PasswordHash, &c.Role, &c.OfficeID, &c.RegionID, &c.SkillProfile,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrConsultantNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get consultant by email: %w", err)
	}
	return &c, nil
}

// Create inserts a new consultant. Signups land in the default London /
// UK & Ireland org unit with the base Consultant role.
func (r *Repo) Create(ctx context.Context, name, email, passwordHash string) (*Consultant, error) {
	const q = `
insert into consultants (name, email, password_hash, role, office_id, region_id, skill_profile)
values ($1, $2, $3, $4, 1, 1, '')
returning id, name, email, password_hash, role, office_id, region_id, coalesce(skill_profile, '');
`
	var c Consultant
	err := r.db.QueryRow(ctx, q, name, email, passwordHash, RoleConsultant).Scan(
		&c.ID, &c.Name, &c.Email, &c.PasswordHash, &c.Role, &c.OfficeID, &c.RegionID, &c.SkillProfile,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create consultant: %w", err)
	}
	return &c, nil
}

func (r *Repo) GetProfile(ctx context.Context, id int64) (*Profile, error) {
	const q = `
select c.id, c.name, c.email, c.role, coalesce(c.skill_profile, ''),
       c.office_id, o.name as office_name,
       c.region_id, r.name as region_name
from consultants c
join offices o on o.id = c.office_id
join regions r on r.id = c.region_id
where c.id = $1;
`
	var p Profile
	err := r.db.QueryRow(ctx, q, id).Scan(
		&p.ID, &p.Name, &p.Email, &p.Role, &p.SkillProfile,
		&p.OfficeID, &p.OfficeName, &p.RegionID, &p.RegionName,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrConsultantNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &p, nil
}
