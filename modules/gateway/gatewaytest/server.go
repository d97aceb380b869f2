// Package gatewaytest provides an in-process fake of the remote ShopSphere
// API for store and handler tests: bearer-token auth, an in-memory catalog,
// per-user carts and orders, plus request counters so tests can assert that
// an operation issued no network call at all.
package gatewaytest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/shopsphere-client/domain/cart"
	"github.com/example/shopsphere-client/domain/catalog"
	"github.com/example/shopsphere-client/domain/identity"
	"github.com/example/shopsphere-client/domain/order"
)

type account struct {
	identity.Identity
	passwordHash string
}

// Server is the fake API. All state is in memory and guarded by one mutex.
type Server struct {
	srv    *httptest.Server
	tokens *TokenMinter
	hasher *PasswordHasher

	mu       sync.Mutex
	nextID   int64
	accounts map[int64]*account
	byEmail  map[string]int64
	products map[int64]catalog.Product
	carts    map[int64]map[int64]int
	orders   map[int64]order.Order
	requests map[string]int
	forced   map[string]int
}

// NewServer starts the fake API on a local listener.
func NewServer() *Server {
	s := &Server{
		tokens:   NewTokenMinter(),
		hasher:   NewPasswordHasher(),
		nextID:   1,
		accounts: make(map[int64]*account),
		byEmail:  make(map[string]int64),
		products: make(map[int64]catalog.Product),
		carts:    make(map[int64]map[int64]int),
		orders:   make(map[int64]order.Order),
		requests: make(map[string]int),
		forced:   make(map[string]int),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", s.handleLogin)
	mux.HandleFunc("POST /auth/register", s.handleRegister)
	mux.HandleFunc("GET /auth/profile", s.handleProfile)
	mux.HandleFunc("GET /products", s.handleListProducts)
	mux.HandleFunc("GET /products/search", s.handleSearchProducts)
	mux.HandleFunc("GET /products/category/{category}", s.handleProductsByCategory)
	mux.HandleFunc("GET /products/{id}", s.handleGetProduct)
	mux.HandleFunc("POST /products", s.handleCreateProduct)
	mux.HandleFunc("PUT /products/{id}", s.handleUpdateProduct)
	mux.HandleFunc("DELETE /products/{id}", s.handleDeleteProduct)
	mux.HandleFunc("GET /cart", s.handleGetCart)
	mux.HandleFunc("POST /cart/add", s.handleAddToCart)
	mux.HandleFunc("PUT /cart/update", s.handleUpdateCart)
	mux.HandleFunc("DELETE /cart/remove/{id}", s.handleRemoveFromCart)
	mux.HandleFunc("DELETE /cart/clear", s.handleClearCart)
	mux.HandleFunc("POST /orders", s.handleCreateOrder)
	mux.HandleFunc("GET /orders", s.handleMyOrders)
	mux.HandleFunc("GET /orders/admin/all", s.handleAllOrders)
	mux.HandleFunc("GET /orders/{id}", s.handleGetOrder)
	mux.HandleFunc("PUT /orders/{id}/status", s.handleUpdateOrderStatus)

	s.srv = httptest.NewServer(s.record(mux))
	return s
}

// URL returns the base URL of the fake API.
func (s *Server) URL() string {
	return s.srv.URL
}

// Close shuts the fake API down.
func (s *Server) Close() {
	s.srv.Close()
}

// record counts every request and applies forced statuses before routing.
func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		s.mu.Lock()
		s.requests[key]++
		forced, ok := s.forced[key]
		s.mu.Unlock()
		if ok {
			writeError(w, forced, http.StatusText(forced))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Requests returns how many times the exact method and path were called.
func (s *Server) Requests(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[method+" "+path]
}

// TotalRequests returns the total number of requests served.
func (s *Server) TotalRequests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.requests {
		total += n
	}
	return total
}

// ForceStatus makes every subsequent request matching the method and path
// fail with the given status, without touching server state.
func (s *Server) ForceStatus(method, path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forced[method+" "+path] = status
}

// SeedUser registers an account directly and returns its identity.
func (s *Server) SeedUser(name, email, password, role string) identity.Identity {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		panic(fmt.Sprintf("gatewaytest: hash password: %v", err))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	acct := &account{
		Identity:     identity.Identity{ID: id, Name: name, Email: email, Role: role},
		passwordHash: hash,
	}
	s.accounts[id] = acct
	s.byEmail[email] = id
	return acct.Identity
}

// SeedProduct stores a product directly, assigning an ID when missing.
func (s *Server) SeedProduct(p catalog.Product) catalog.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == 0 {
		p.ID = s.nextID
		s.nextID++
	}
	s.products[p.ID] = p
	return p
}

// TokenFor mints a valid token for a seeded account.
func (s *Server) TokenFor(email string) string {
	s.mu.Lock()
	id, ok := s.byEmail[email]
	acct := s.accounts[id]
	s.mu.Unlock()
	if !ok {
		panic(fmt.Sprintf("gatewaytest: no account for %s", email))
	}
	token, err := s.tokens.Mint(acct.ID, acct.Name, acct.Email, acct.Role)
	if err != nil {
		panic(fmt.Sprintf("gatewaytest: mint token: %v", err))
	}
	return token
}

// authed resolves the bearer token to a seeded account, writing a 401 and
// returning nil when the credential is missing or invalid.
func (s *Server) authed(w http.ResponseWriter, r *http.Request) *account {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return nil
	}
	claims, err := s.tokens.Parse(strings.TrimPrefix(header, "Bearer "))
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return nil
	}
	s.mu.Lock()
	acct, ok := s.accounts[claims.UserID]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusUnauthorized, "unknown user")
		return nil
	}
	return acct
}

// admin is authed plus the administrative role.
func (s *Server) admin(w http.ResponseWriter, r *http.Request) *account {
	acct := s.authed(w, r)
	if acct == nil {
		return nil
	}
	if !acct.IsAdmin() {
		writeError(w, http.StatusForbidden, "admin role required")
		return nil
	}
	return acct
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	s.mu.Lock()
	id, ok := s.byEmail[req.Email]
	acct := s.accounts[id]
	s.mu.Unlock()
	if !ok || !s.hasher.Verify(req.Password, acct.passwordHash) {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	token, err := s.tokens.Mint(acct.ID, acct.Name, acct.Email, acct.Role)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "mint failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"id":    acct.ID,
		"name":  acct.Name,
		"email": acct.Email,
		"role":  acct.Role,
	})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "missing fields")
		return
	}
	s.mu.Lock()
	if _, exists := s.byEmail[req.Email]; exists {
		s.mu.Unlock()
		writeError(w, http.StatusConflict, "email already registered")
		return
	}
	s.mu.Unlock()

	ident := s.SeedUser(req.Name, req.Email, req.Password, identity.RoleUser)
	writeJSON(w, http.StatusCreated, ident)
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	acct := s.authed(w, r)
	if acct == nil {
		return
	}
	writeJSON(w, http.StatusOK, acct.Identity)
}

func (s *Server) handleListProducts(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.productList(func(catalog.Product) bool { return true }))
}

func (s *Server) handleSearchProducts(w http.ResponseWriter, r *http.Request) {
	keyword := strings.ToLower(r.URL.Query().Get("keyword"))
	writeJSON(w, http.StatusOK, s.productList(func(p catalog.Product) bool {
		return strings.Contains(strings.ToLower(p.Name), keyword) ||
			strings.Contains(strings.ToLower(p.Description), keyword)
	}))
}

func (s *Server) handleProductsByCategory(w http.ResponseWriter, r *http.Request) {
	category := r.PathValue("category")
	writeJSON(w, http.StatusOK, s.productList(func(p catalog.Product) bool {
		return p.Category == category
	}))
}

func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad id")
		return
	}
	s.mu.Lock()
	p, ok := s.products[id]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	if s.admin(w, r) == nil {
		return
	}
	var p catalog.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	p.ID = 0
	created := s.SeedProduct(p)
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	if s.admin(w, r) == nil {
		return
	}
	id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
	var p catalog.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	s.mu.Lock()
	_, ok := s.products[id]
	if ok {
		p.ID = id
		s.products[id] = p
	}
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	if s.admin(w, r) == nil {
		return
	}
	id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
	s.mu.Lock()
	delete(s.products, id)
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetCart(w http.ResponseWriter, r *http.Request) {
	acct := s.authed(w, r)
	if acct == nil {
		return
	}
	writeJSON(w, http.StatusOK, s.cartLines(acct.ID))
}

func (s *Server) handleAddToCart(w http.ResponseWriter, r *http.Request) {
	acct := s.authed(w, r)
	if acct == nil {
		return
	}
	var req struct {
		ProductID int64 `json:"productId"`
		Quantity  int   `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Quantity < 1 {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[req.ProductID]; !ok {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	if s.carts[acct.ID] == nil {
		s.carts[acct.ID] = make(map[int64]int)
	}
	s.carts[acct.ID][req.ProductID] += req.Quantity
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleUpdateCart(w http.ResponseWriter, r *http.Request) {
	acct := s.authed(w, r)
	if acct == nil {
		return
	}
	var req struct {
		ProductID int64 `json:"productId"`
		Quantity  int   `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Quantity < 1 {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.carts[acct.ID] == nil || s.carts[acct.ID][req.ProductID] == 0 {
		writeError(w, http.StatusNotFound, "not in cart")
		return
	}
	s.carts[acct.ID][req.ProductID] = req.Quantity
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleRemoveFromCart(w http.ResponseWriter, r *http.Request) {
	acct := s.authed(w, r)
	if acct == nil {
		return
	}
	id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
	s.mu.Lock()
	if s.carts[acct.ID] != nil {
		delete(s.carts[acct.ID], id)
	}
	s.mu.Unlock()
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleClearCart(w http.ResponseWriter, r *http.Request) {
	acct := s.authed(w, r)
	if acct == nil {
		return
	}
	s.mu.Lock()
	delete(s.carts, acct.ID)
	s.mu.Unlock()
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	acct := s.authed(w, r)
	if acct == nil {
		return
	}
	var req struct {
		ShippingAddress string `json:"shippingAddress"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.ShippingAddress) == "" {
		writeError(w, http.StatusBadRequest, "shipping address required")
		return
	}
	lines := s.cartLines(acct.ID)
	if len(lines) == 0 {
		writeError(w, http.StatusBadRequest, "cart is empty")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	placed := order.Order{
		ID:              s.nextID,
		UserID:          acct.ID,
		UserName:        acct.Name,
		Status:          order.StatusPending,
		ShippingAddress: req.ShippingAddress,
		CreatedAt:       order.Time{Time: time.Now().UTC()},
		TotalAmount:     decimal.Zero,
	}
	s.nextID++
	for _, l := range lines {
		placed.Items = append(placed.Items, order.Item{
			ID:              placed.ID*1000 + l.ProductID,
			ProductID:       l.ProductID,
			ProductName:     l.ProductName,
			ProductImageURL: l.ProductImageURL,
			Quantity:        l.Quantity,
			Price:           l.ProductPrice,
			TotalPrice:      l.TotalPrice,
		})
		placed.TotalAmount = placed.TotalAmount.Add(l.TotalPrice)
	}
	s.orders[placed.ID] = placed
	delete(s.carts, acct.ID)
	writeJSON(w, http.StatusCreated, placed)
}

func (s *Server) handleMyOrders(w http.ResponseWriter, r *http.Request) {
	acct := s.authed(w, r)
	if acct == nil {
		return
	}
	writeJSON(w, http.StatusOK, s.orderList(func(o order.Order) bool { return o.UserID == acct.ID }))
}

func (s *Server) handleAllOrders(w http.ResponseWriter, r *http.Request) {
	if s.admin(w, r) == nil {
		return
	}
	writeJSON(w, http.StatusOK, s.orderList(func(order.Order) bool { return true }))
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	acct := s.authed(w, r)
	if acct == nil {
		return
	}
	id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
	s.mu.Lock()
	o, ok := s.orders[id]
	s.mu.Unlock()
	if !ok || (o.UserID != acct.ID && !acct.IsAdmin()) {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (s *Server) handleUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	if s.admin(w, r) == nil {
		return
	}
	id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
	var req struct {
		Status order.Status `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || !req.Status.Valid() {
		writeError(w, http.StatusBadRequest, "invalid status")
		return
	}
	s.mu.Lock()
	o, ok := s.orders[id]
	if ok {
		o.Status = req.Status
		s.orders[id] = o
	}
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (s *Server) productList(keep func(catalog.Product) bool) []catalog.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]catalog.Product, 0, len(s.products))
	for _, p := range s.products {
		if keep(p) {
			list = append(list, p)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

func (s *Server) orderList(keep func(order.Order) bool) []order.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]order.Order, 0, len(s.orders))
	for _, o := range s.orders {
		if keep(o) {
			list = append(list, o)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

// cartLines materializes a user's cart. Line totals are computed here on the
// server side; the client never derives them.
func (s *Server) cartLines(userID int64) []cart.Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	lines := make([]cart.Line, 0, len(s.carts[userID]))
	for productID, qty := range s.carts[userID] {
		p, ok := s.products[productID]
		if !ok {
			continue
		}
		lines = append(lines, cart.Line{
			ProductID:       productID,
			ProductName:     p.Name,
			ProductImageURL: p.ImageURL,
			ProductPrice:    p.Price,
			Quantity:        qty,
			TotalPrice:      p.Price.Mul(decimal.NewFromInt(int64(qty))),
		})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ProductID < lines[j].ProductID })
	return lines
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
