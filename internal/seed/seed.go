// Package seed bootstraps the admin account and optional sample customers.
package seed

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/rs/zerolog/log"
	"github.com/zanledger/server/internal/apperrors"
	"github.com/zanledger/server/internal/models"
	"github.com/zanledger/server/internal/repository"
	"github.com/zanledger/server/internal/service"
	"golang.org/x/crypto/bcrypt"
)

// Fixture is the YAML document of sample data
type Fixture struct {
	Customers []FixtureCustomer `yaml:"customers"`
}

type FixtureCustomer struct {
	Name              string `yaml:"name"`
	Username          string `yaml:"username"`
	Password          string `yaml:"password"`
	Phone             string `yaml:"phone"`
	Address           string `yaml:"address"`
	UniqueCode        string `yaml:"uniqueCode"`
	PreferredCurrency string `yaml:"preferredCurrency"`
}

// ParseFixture decodes a YAML fixture
func ParseFixture(data []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}

	for i, c := range f.Customers {
		if c.Name == "" || c.Username == "" || c.Password == "" {
			return nil, fmt.Errorf("fixture customer %d: name, username and password are required", i+1)
		}
	}
	return &f, nil
}

// LoadFixture reads and decodes a YAML fixture file
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	return ParseFixture(data)
}

// Seeder writes bootstrap data
type Seeder struct {
	repo repository.Repository
	svc  service.Service
}

func NewSeeder(repo repository.Repository, svc service.Service) *Seeder {
	return &Seeder{repo: repo, svc: svc}
}

// Admin creates the admin account, or resets its password when it already exists
func (s *Seeder) Admin(ctx context.Context, username, password string) (*models.Admin, error) {
	if username == "" || password == "" {
		return nil, errors.New("admin username and password are required")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	admin := &models.Admin{Username: username, Password: string(hashed)}
	if err := s.repo.UpsertAdmin(ctx, admin); err != nil {
		return nil, fmt.Errorf("error seeding admin: %w", err)
	}

	log.Info().Str("username", username).Msg("Admin seeded")
	return admin, nil
}

// Customers registers every fixture customer. Customers whose username is
// already taken are skipped, so seeding twice is harmless.
func (s *Seeder) Customers(ctx context.Context, fixture *Fixture) (int, error) {
	created := 0
	for _, c := range fixture.Customers {
		_, err := s.svc.Register(ctx, models.RegisterCustomerRequest{
			Name:              c.Name,
			Username:          c.Username,
			Password:          c.Password,
			Phone:             c.Phone,
			Address:           c.Address,
			UniqueCode:        c.UniqueCode,
			PreferredCurrency: c.PreferredCurrency,
		})
		if errors.Is(err, apperrors.ErrUsernameTaken) {
			log.Info().Str("username", c.Username).Msg("Customer already present, skipping")
			continue
		}
		if err != nil {
			return created, fmt.Errorf("seed customer %s: %w", c.Username, err)
		}
		created++
	}

	log.Info().Int("created", created).Msg("Sample customers seeded")
	return created, nil
}
