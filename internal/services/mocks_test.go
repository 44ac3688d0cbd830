package services

import (
	"context"
	"strings"

	"github.com/bookstore/backend/internal/auth"
	"github.com/bookstore/backend/internal/models"
)

// mockUserRepository is an in-memory implementation of UserRepository
type mockUserRepository struct {
	users     map[int]*models.User
	nextID    int
	err       error
	createErr error
	updateErr error
}

func newMockUserRepository(users ...*models.User) *mockUserRepository {
	m := &mockUserRepository{users: map[int]*models.User{}, nextID: 1}
	for _, u := range users {
		m.users[u.ID] = u
		if u.ID >= m.nextID {
			m.nextID = u.ID + 1
		}
	}
	return m
}

func (m *mockUserRepository) Create(ctx context.Context, user *models.User) error {
	if m.err != nil {
		return m.err
	}
	if m.createErr != nil {
		return m.createErr
	}
	user.ID = m.nextID
	m.nextID++
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, userID int) (*models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.users[userID]
	if !ok {
		return nil, models.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *mockUserRepository) FindConflicts(ctx context.Context, email, username string, excludeID int) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	var emailTaken, usernameTaken bool
	for id, u := range m.users {
		if id == excludeID {
			continue
		}
		if strings.EqualFold(u.Email, email) {
			emailTaken = true
		}
		if strings.EqualFold(u.Username, username) {
			usernameTaken = true
		}
	}
	var fields []string
	if emailTaken {
		fields = append(fields, models.FieldEmail)
	}
	if usernameTaken {
		fields = append(fields, models.FieldUsername)
	}
	return fields, nil
}

func (m *mockUserRepository) List(ctx context.Context) ([]models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	users := []models.User{}
	for id := 1; id < m.nextID; id++ {
		if u, ok := m.users[id]; ok {
			users = append(users, *u)
		}
	}
	return users, nil
}

func (m *mockUserRepository) Update(ctx context.Context, userID int, username, email string, role *models.Role) (*models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	u, ok := m.users[userID]
	if !ok {
		return nil, models.ErrNotFound
	}
	u.Username = username
	u.Email = email
	if role != nil {
		u.Role = *role
	}
	copied := *u
	return &copied, nil
}

func (m *mockUserRepository) Delete(ctx context.Context, userID int) error {
	if m.err != nil {
		return m.err
	}
	if _, ok := m.users[userID]; !ok {
		return models.ErrNotFound
	}
	delete(m.users, userID)
	return nil
}

// mockHasher records which comparison paths were taken
type mockHasher struct {
	hashErr      error
	compareCalls int
	dummyCalls   int
}

func (m *mockHasher) Hash(password string) (string, error) {
	if m.hashErr != nil {
		return "", m.hashErr
	}
	return "hashed:" + password, nil
}

func (m *mockHasher) Compare(hash, password string) bool {
	m.compareCalls++
	return hash == "hashed:"+password
}

func (m *mockHasher) CompareDummy(password string) {
	m.dummyCalls++
}

// mockTokenIssuer returns a fixed token or error
type mockTokenIssuer struct {
	token  string
	err    error
	issued []auth.Identity
}

func (m *mockTokenIssuer) Issue(identity auth.Identity) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.issued = append(m.issued, identity)
	return m.token, nil
}

// mockBookRepository is a mock implementation of BookRepository
type mockBookRepository struct {
	books      []models.Book
	book       *models.Book
	err        error
	lastSort   models.BookSortColumn
	lastOrder  models.SortOrder
	lastReq    *models.BookRequest
	listCalled bool
}

func (m *mockBookRepository) List(ctx context.Context, sortBy models.BookSortColumn, order models.SortOrder) ([]models.Book, error) {
	m.listCalled = true
	m.lastSort = sortBy
	m.lastOrder = order
	if m.err != nil {
		return nil, m.err
	}
	return m.books, nil
}

func (m *mockBookRepository) GetByID(ctx context.Context, id int) (*models.Book, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.book, nil
}

func (m *mockBookRepository) Create(ctx context.Context, req *models.BookRequest) (*models.Book, error) {
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	return m.book, nil
}

func (m *mockBookRepository) Update(ctx context.Context, id int, req *models.BookRequest) (*models.Book, error) {
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	return m.book, nil
}

func (m *mockBookRepository) Delete(ctx context.Context, id int) error {
	return m.err
}

// mockCartRepository keeps carts and items in memory with the same
// accumulate-on-duplicate behavior as the SQL upsert
type mockCartRepository struct {
	carts      map[int]*models.Cart // by cart ID
	items      map[int]*models.CartItem
	books      map[int]bool
	nextCartID int
	nextItemID int
	err        error
	deleted    []int
}

func newMockCartRepository(bookIDs ...int) *mockCartRepository {
	m := &mockCartRepository{
		carts:      map[int]*models.Cart{},
		items:      map[int]*models.CartItem{},
		books:      map[int]bool{},
		nextCartID: 1,
		nextItemID: 1,
	}
	for _, id := range bookIDs {
		m.books[id] = true
	}
	return m
}

func (m *mockCartRepository) cartOf(userID int) *models.Cart {
	for _, c := range m.carts {
		if c.UserID == userID {
			return c
		}
	}
	return nil
}

func (m *mockCartRepository) GetByUserID(ctx context.Context, userID int) ([]models.Cart, error) {
	if m.err != nil {
		return nil, m.err
	}
	carts := []models.Cart{}
	if c := m.cartOf(userID); c != nil {
		carts = append(carts, *c)
	}
	return carts, nil
}

func (m *mockCartRepository) GetByID(ctx context.Context, cartID int) (*models.Cart, error) {
	if m.err != nil {
		return nil, m.err
	}
	c, ok := m.carts[cartID]
	if !ok {
		return nil, models.ErrNotFound
	}
	copied := *c
	return &copied, nil
}

func (m *mockCartRepository) GetOrCreate(ctx context.Context, userID int) (*models.Cart, error) {
	if m.err != nil {
		return nil, m.err
	}
	if c := m.cartOf(userID); c != nil {
		copied := *c
		return &copied, nil
	}
	c := &models.Cart{ID: m.nextCartID, UserID: userID}
	m.nextCartID++
	m.carts[c.ID] = c
	copied := *c
	return &copied, nil
}

func (m *mockCartRepository) AddItem(ctx context.Context, userID, bookID, quantity int) (*models.CartItem, error) {
	if m.err != nil {
		return nil, m.err
	}
	if !m.books[bookID] {
		return nil, models.ErrNotFound
	}
	cart, _ := m.GetOrCreate(ctx, userID)
	for _, it := range m.items {
		if it.CartID == cart.ID && it.BookID == bookID {
			it.Quantity += quantity
			copied := *it
			return &copied, nil
		}
	}
	it := &models.CartItem{ID: m.nextItemID, CartID: cart.ID, BookID: bookID, Quantity: quantity}
	m.nextItemID++
	m.items[it.ID] = it
	copied := *it
	return &copied, nil
}

func (m *mockCartRepository) ListItems(ctx context.Context, cartID int) ([]models.CartItemDetails, error) {
	if m.err != nil {
		return nil, m.err
	}
	items := []models.CartItemDetails{}
	for id := 1; id < m.nextItemID; id++ {
		if it, ok := m.items[id]; ok && it.CartID == cartID {
			items = append(items, models.CartItemDetails{ID: it.ID, BookID: it.BookID, Quantity: it.Quantity})
		}
	}
	return items, nil
}

func (m *mockCartRepository) GetItemOwner(ctx context.Context, itemID int) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	it, ok := m.items[itemID]
	if !ok {
		return 0, models.ErrNotFound
	}
	return m.carts[it.CartID].UserID, nil
}

func (m *mockCartRepository) DeleteItem(ctx context.Context, itemID int) error {
	if m.err != nil {
		return m.err
	}
	if _, ok := m.items[itemID]; !ok {
		return models.ErrNotFound
	}
	delete(m.items, itemID)
	m.deleted = append(m.deleted, itemID)
	return nil
}

func (m *mockCartRepository) CountItems(ctx context.Context, userID int) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	cart := m.cartOf(userID)
	if cart == nil {
		return 0, nil
	}
	total := 0
	for _, it := range m.items {
		if it.CartID == cart.ID {
			total += it.Quantity
		}
	}
	return total, nil
}
