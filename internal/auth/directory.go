package auth

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/okarpenko/staybase/internal/model"
	"github.com/okarpenko/staybase/internal/store"
)

// UsersCollection is the document-store collection holding user
// records.
const UsersCollection = "users"

// BcryptCost is the cost used when hashing passwords.
const BcryptCost = 10

// Directory looks up and creates user records in the document store.
// Lookups are keyed by username, email or internal id rather than
// scanning a static list.
type Directory struct {
	store  store.Store
	logger *zap.Logger
}

// NewDirectory creates a Directory backed by the given store.
func NewDirectory(s store.Store, logger *zap.Logger) *Directory {
	return &Directory{
		store:  s,
		logger: logger,
	}
}

// FindByUsername returns the user with the given username, or
// store.ErrNotFound.
func (d *Directory) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return d.findOne(ctx, store.Filter{"username": username})
}

// FindByEmail returns the user with the given email, or
// store.ErrNotFound.
func (d *Directory) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return d.findOne(ctx, store.Filter{"email": email})
}

// FindByID returns the user with the given internal id, or
// store.ErrNotFound.
func (d *Directory) FindByID(ctx context.Context, id string) (*model.User, error) {
	doc, err := d.store.FindByID(ctx, UsersCollection, id)
	if err != nil {
		return nil, err
	}

	return model.UserFromDocument(id, doc), nil
}

// Create inserts a new user record and returns it with the assigned
// internal id.
func (d *Directory) Create(ctx context.Context, user *model.User) (*model.User, error) {
	id, err := d.store.Insert(ctx, UsersCollection, user.Document())
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	created := *user
	created.ID = id

	return &created, nil
}

// SeedCredential is a plaintext credential inserted at startup.
type SeedCredential struct {
	Username string
	Password string
	Role     string
}

// Seed inserts the given credentials unless a record with the same
// username already exists. Passwords are hashed before storage.
func (d *Directory) Seed(ctx context.Context, creds []SeedCredential) error {
	for _, c := range creds {
		_, err := d.FindByUsername(ctx, c.Username)
		if err == nil {
			continue
		}
		if !isNotFound(err) {
			return fmt.Errorf("seeding user %q: %w", c.Username, err)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(c.Password), BcryptCost)
		if err != nil {
			return fmt.Errorf("hashing seed password: %w", err)
		}

		user := &model.User{
			Username:     c.Username,
			Name:         c.Username,
			Role:         c.Role,
			PasswordHash: string(hash),
		}

		if _, err := d.Create(ctx, user); err != nil {
			return err
		}

		d.logger.Info("seeded user",
			zap.String("username", c.Username),
			zap.String("role", c.Role),
		)
	}

	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}

func (d *Directory) findOne(ctx context.Context, filter store.Filter) (*model.User, error) {
	docs, err := d.store.Find(ctx, UsersCollection, filter)
	if err != nil {
		return nil, err
	}

	if len(docs) == 0 {
		return nil, store.ErrNotFound
	}

	doc := docs[0]
	id, _ := doc[store.IDKey].(string)

	return model.UserFromDocument(id, doc), nil
}
