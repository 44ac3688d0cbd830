package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bookstore/backend/internal/auth"
	"github.com/bookstore/backend/internal/middleware"
	"github.com/bookstore/backend/internal/models"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "handler-test-secret"

// mockAuthService is a mock implementation of AuthService
type mockAuthService struct {
	result     *models.AuthResult
	user       *models.PublicUser
	err        error
	lastUserID int
	lastUpdate *models.UpdateProfileRequest
}

func (m *mockAuthService) Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func (m *mockAuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func (m *mockAuthService) VerifySession(ctx context.Context, userID int) (*models.PublicUser, error) {
	return m.GetProfile(ctx, userID)
}

func (m *mockAuthService) GetProfile(ctx context.Context, userID int) (*models.PublicUser, error) {
	m.lastUserID = userID
	if m.err != nil {
		return nil, m.err
	}
	if m.user == nil || m.user.ID != userID {
		return nil, models.ErrNotFound
	}
	return m.user, nil
}

func (m *mockAuthService) UpdateProfile(ctx context.Context, userID int, req *models.UpdateProfileRequest) (*models.AuthResult, error) {
	m.lastUserID = userID
	m.lastUpdate = req
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

// mockCartService is a mock implementation of CartService
type mockCartService struct {
	carts      []models.Cart
	cart       *models.Cart
	item       *models.CartItem
	items      []models.CartItemDetails
	count      int
	err        error
	lastCaller models.Caller
	lastUserID int
	lastCartID int
	lastItemID int
	lastAdd    *models.AddToCartRequest
}

func (m *mockCartService) ListCarts(ctx context.Context, caller models.Caller, userID int) ([]models.Cart, error) {
	m.lastCaller, m.lastUserID = caller, userID
	return m.carts, m.err
}

func (m *mockCartService) CreateCart(ctx context.Context, caller models.Caller, userID int) (*models.Cart, error) {
	m.lastCaller, m.lastUserID = caller, userID
	if m.err != nil {
		return nil, m.err
	}
	return m.cart, nil
}

func (m *mockCartService) AddToCart(ctx context.Context, caller models.Caller, req *models.AddToCartRequest) (*models.CartItem, error) {
	m.lastCaller, m.lastAdd = caller, req
	if m.err != nil {
		return nil, m.err
	}
	return m.item, nil
}

func (m *mockCartService) ListItems(ctx context.Context, caller models.Caller, cartID int) ([]models.CartItemDetails, error) {
	m.lastCaller, m.lastCartID = caller, cartID
	if m.err != nil {
		return nil, m.err
	}
	return m.items, nil
}

func (m *mockCartService) RemoveItem(ctx context.Context, caller models.Caller, itemID int) error {
	m.lastCaller, m.lastItemID = caller, itemID
	return m.err
}

func (m *mockCartService) CountItems(ctx context.Context, caller models.Caller, userID int) (int, error) {
	m.lastCaller, m.lastUserID = caller, userID
	return m.count, m.err
}

// mockBookService is a mock implementation of BookService
type mockBookService struct {
	books     []models.Book
	book      *models.Book
	err       error
	lastSort  string
	lastOrder string
	called    bool
}

func (m *mockBookService) List(ctx context.Context, sortBy, order string) ([]models.Book, error) {
	m.called, m.lastSort, m.lastOrder = true, sortBy, order
	if m.err != nil {
		return nil, m.err
	}
	return m.books, nil
}

func (m *mockBookService) GetByID(ctx context.Context, id int) (*models.Book, error) {
	m.called = true
	if m.err != nil {
		return nil, m.err
	}
	return m.book, nil
}

func (m *mockBookService) Create(ctx context.Context, req *models.BookRequest) (*models.Book, error) {
	m.called = true
	if m.err != nil {
		return nil, m.err
	}
	return m.book, nil
}

func (m *mockBookService) Update(ctx context.Context, id int, req *models.BookRequest) (*models.Book, error) {
	m.called = true
	if m.err != nil {
		return nil, m.err
	}
	return m.book, nil
}

func (m *mockBookService) Delete(ctx context.Context, id int) error {
	m.called = true
	return m.err
}

// mockUserService is a mock implementation of UserService
type mockUserService struct {
	users   []models.PublicUser
	user    *models.PublicUser
	err     error
	deleted []int
	called  bool
}

func (m *mockUserService) List(ctx context.Context) ([]models.PublicUser, error) {
	m.called = true
	return m.users, m.err
}

func (m *mockUserService) GetByID(ctx context.Context, userID int) (*models.PublicUser, error) {
	m.called = true
	if m.err != nil {
		return nil, m.err
	}
	return m.user, nil
}

func (m *mockUserService) Create(ctx context.Context, req *models.CreateUserRequest) (*models.PublicUser, error) {
	m.called = true
	if m.err != nil {
		return nil, m.err
	}
	return m.user, nil
}

func (m *mockUserService) Update(ctx context.Context, userID int, req *models.UpdateUserRequest) (*models.PublicUser, error) {
	m.called = true
	if m.err != nil {
		return nil, m.err
	}
	return m.user, nil
}

func (m *mockUserService) Delete(ctx context.Context, userID int) error {
	m.called = true
	if m.err != nil {
		return m.err
	}
	m.deleted = append(m.deleted, userID)
	return nil
}

// testEnv wires handlers onto a chi router with the real token middleware
type testEnv struct {
	router chi.Router
	tokens *auth.TokenService
}

func newTestEnv(t *testing.T, register func(r chi.Router, requireAuth, requireAdmin func(http.Handler) http.Handler)) *testEnv {
	t.Helper()
	logger := zap.NewNop()
	tokens, err := auth.NewTokenService(testSecret)
	require.NoError(t, err)

	requireAuth := middleware.AuthMiddleware(tokens, logger)
	requireAdmin := middleware.RoleMiddleware(models.RoleAdmin, logger)

	r := chi.NewRouter()
	register(r, requireAuth, requireAdmin)
	return &testEnv{router: r, tokens: tokens}
}

func (e *testEnv) token(t *testing.T, id int, role models.Role) string {
	t.Helper()
	token, err := e.tokens.Issue(auth.Identity{ID: id, Email: "user@example.com", Username: "user", Role: role})
	require.NoError(t, err)
	return token
}

func (e *testEnv) do(method, path, body, token string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}
