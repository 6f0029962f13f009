package repositories

import (
	"errors"
	"fmt"

	"inkfeed/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerUserRepository implements UserRepository using BadgerDB.
// Users are stored under user:<id>; email:<address> holds the owning user id.
type BadgerUserRepository struct {
	db *badger.DB
}

// NewBadgerUserRepository creates a new BadgerUserRepository
func NewBadgerUserRepository(db *badger.DB) *BadgerUserRepository {
	return &BadgerUserRepository{db: db}
}

// Create stores a new user and claims its email in the same transaction
func (r *BadgerUserRepository) Create(user *models.User) error {
	if user.ID == "" {
		id, err := newID()
		if err != nil {
			return err
		}
		user.ID = id
	}
	user.BeforeCreate()

	if err := user.Validate(); err != nil {
		return fmt.Errorf("invalid user document: %w", err)
	}

	data, err := marshalEntity(user)
	if err != nil {
		return err
	}

	return r.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(emailKey(user.Email))
		if err == nil {
			return ErrDuplicate
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		if err := txn.Set(emailKey(user.Email), []byte(user.ID)); err != nil {
			return err
		}
		return txn.Set(userKey(user.ID), data)
	})
}

// GetByID retrieves a user by ID
func (r *BadgerUserRepository) GetByID(id string) (*models.User, error) {
	var user *models.User
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		user, err = getUser(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetByEmail resolves the email index and loads the user
func (r *BadgerUserRepository) GetByEmail(email string) (*models.User, error) {
	var user *models.User
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(emailKey(email))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		id, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}

		user, err = getUser(txn, string(id))
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Count returns the number of stored users.
func (r *BadgerUserRepository) Count() (int, error) {
	return countPrefix(r.db, UserKeyPrefix)
}

// Update updates an existing user. The email is immutable and is not re-indexed.
func (r *BadgerUserRepository) Update(user *models.User) error {
	if err := user.Validate(); err != nil {
		return fmt.Errorf("invalid user document: %w", err)
	}

	data, err := marshalEntity(user)
	if err != nil {
		return err
	}

	return r.db.Update(func(txn *badger.Txn) error {
		key := userKey(user.ID)

		// Verify user exists
		_, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		return txn.Set(key, data)
	})
}

func getUser(txn *badger.Txn, id string) (*models.User, error) {
	item, err := txn.Get(userKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var user models.User
	err = item.Value(func(val []byte) error {
		return unmarshalEntity(val, &user)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}
