package mock

import (
	"fmt"
	"sync"

	"inkfeed/app/models"
	"inkfeed/app/repositories"
)

// PostRepository is an in-memory PostRepository. The *Err fields force the
// matching operation to fail.
type PostRepository struct {
	posts  map[string]*models.Post
	order  []string
	nextID int
	mutex  sync.RWMutex

	GetErr    error
	CreateErr error
	UpdateErr error
	DeleteErr error
}

// UserRepository is an in-memory UserRepository with an email index.
type UserRepository struct {
	users  map[string]*models.User
	emails map[string]string
	nextID int
	mutex  sync.RWMutex

	GetErr    error
	UpdateErr error
}

func NewPostRepository() *PostRepository {
	return &PostRepository{
		posts:  make(map[string]*models.Post),
		nextID: 1,
	}
}

func (m *PostRepository) Clear() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.posts = make(map[string]*models.Post)
	m.order = nil
	m.nextID = 1
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		users:  make(map[string]*models.User),
		emails: make(map[string]string),
		nextID: 1,
	}
}

func copyPost(p *models.Post) *models.Post {
	return p.Document()
}

func copyUser(u *models.User) *models.User {
	c := *u
	c.Posts = append([]string{}, u.Posts...)
	return &c
}

// PostRepository implementation
func (m *PostRepository) Create(post *models.Post) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.CreateErr != nil {
		return m.CreateErr
	}
	if post.ID == "" {
		post.ID = fmt.Sprintf("post-%03d", m.nextID)
		m.nextID++
	}
	post.BeforeCreate()
	m.posts[post.ID] = copyPost(post)
	m.order = append(m.order, post.ID)
	return nil
}

func (m *PostRepository) GetByID(id string) (*models.Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if m.GetErr != nil {
		return nil, m.GetErr
	}
	post, exists := m.posts[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	return copyPost(post), nil
}

func (m *PostRepository) Update(post *models.Post) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	if _, exists := m.posts[post.ID]; !exists {
		return repositories.ErrNotFound
	}
	m.posts[post.ID] = copyPost(post)
	return nil
}

func (m *PostRepository) Delete(id string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	if _, exists := m.posts[id]; !exists {
		return repositories.ErrNotFound
	}
	delete(m.posts, id)
	for i, existing := range m.order {
		if existing == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// List returns posts newest first
func (m *PostRepository) List(limit, offset int) ([]*models.Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	posts := []*models.Post{}
	count := 0
	for i := len(m.order) - 1; i >= 0; i-- {
		if count >= offset && len(posts) < limit {
			posts = append(posts, copyPost(m.posts[m.order[i]]))
		}
		count++
	}
	return posts, nil
}

func (m *PostRepository) Count() (int, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.posts), nil
}

// UserRepository implementation
func (m *UserRepository) Create(user *models.User) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.emails[user.Email]; exists {
		return repositories.ErrDuplicate
	}
	if user.ID == "" {
		user.ID = fmt.Sprintf("user-%03d", m.nextID)
		m.nextID++
	}
	user.BeforeCreate()
	m.users[user.ID] = copyUser(user)
	m.emails[user.Email] = user.ID
	return nil
}

func (m *UserRepository) GetByID(id string) (*models.User, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if m.GetErr != nil {
		return nil, m.GetErr
	}
	user, exists := m.users[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	return copyUser(user), nil
}

func (m *UserRepository) GetByEmail(email string) (*models.User, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if m.GetErr != nil {
		return nil, m.GetErr
	}
	id, exists := m.emails[email]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	return copyUser(m.users[id]), nil
}

func (m *UserRepository) Update(user *models.User) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	if _, exists := m.users[user.ID]; !exists {
		return repositories.ErrNotFound
	}
	m.users[user.ID] = copyUser(user)
	return nil
}
