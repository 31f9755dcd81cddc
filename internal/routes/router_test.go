package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Siellph/DimaTech-Ltd-test/internal/auth"
	"github.com/Siellph/DimaTech-Ltd-test/internal/handlers"
	"github.com/Siellph/DimaTech-Ltd-test/internal/ledger"
	"github.com/Siellph/DimaTech-Ltd-test/internal/middleware"
	"github.com/Siellph/DimaTech-Ltd-test/internal/signature"
	"github.com/Siellph/DimaTech-Ltd-test/internal/testutil"
	"github.com/Siellph/DimaTech-Ltd-test/models"
)

const webhookSecret = "s3cret"

type testServer struct {
	router   *gin.Engine
	db       *gorm.DB
	issuer   *auth.TokenIssuer
	verifier *signature.Verifier
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewDB(t)
	store := ledger.NewStore(db)
	engine := ledger.NewEngine(store, nil)
	verifier := signature.NewVerifier(webhookSecret)
	issuer := auth.NewTokenIssuer("jwt-salt", time.Hour)

	h := handlers.New(store, engine, verifier, issuer, nil)
	r := gin.New()
	SetupRoutes(r, h, middleware.AuthMiddleware(issuer, store, nil))

	return &testServer{router: r, db: db, issuer: issuer, verifier: verifier}
}

func (s *testServer) token(t *testing.T, userID int64, role string) string {
	t.Helper()
	tok, err := s.issuer.CreateToken(userID, role)
	if err != nil {
		t.Fatalf("CreateToken failed: %v", err)
	}
	return tok
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) signedPayment(txID, accountID, userID, amount string) map[string]string {
	p := signature.Payload{AccountID: accountID, Amount: amount, TransactionID: txID, UserID: userID}
	return map[string]string{
		"transaction_id": txID,
		"account_id":     accountID,
		"user_id":        userID,
		"amount":         amount,
		"signature":      s.verifier.Sign(p),
	}
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("Failed to decode %q: %v", w.Body.String(), err)
	}
	return out
}

func balance(t *testing.T, db *gorm.DB, accountID int64) decimal.Decimal {
	t.Helper()
	var account models.Account
	if err := db.Take(&account, "account_id = ?", accountID).Error; err != nil {
		t.Fatalf("Failed to load account %d: %v", accountID, err)
	}
	return account.Balance
}

func TestPaymentWebhook(t *testing.T) {
	s := newTestServer(t)
	testutil.SeedUser(t, s.db, 1, models.RoleUser)

	body := map[string]string{
		"transaction_id": "tx-1",
		"account_id":     "1",
		"user_id":        "1",
		"amount":         "100.00",
		"signature":      "545ba025904890f522c2e7c38b1eb73ebd5bee8efbb0b7327c387e240748ed27",
	}

	w := s.do(t, http.MethodPost, "/api/v1/transaction/webhook/payment", "", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	resp := decode[handlers.TransactionResponse](t, w)
	if resp.TransactionID != "tx-1" || resp.Amount != "100.00" || resp.AccountID != 1 {
		t.Errorf("Unexpected response: %+v", resp)
	}
	if got := balance(t, s.db, 1); !got.Equal(decimal.RequireFromString("100")) {
		t.Errorf("Expected balance 100, got %s", got)
	}

	// Redelivery is rejected and the balance is credited once.
	w = s.do(t, http.MethodPost, "/api/v1/transaction/webhook/payment", "", body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for duplicate, got %d", w.Code)
	}
	errResp := decode[map[string]string](t, w)
	if errResp["error"] != ledger.ErrDuplicateTransaction.Error() {
		t.Errorf("Unexpected duplicate message %q", errResp["error"])
	}
	if got := balance(t, s.db, 1); !got.Equal(decimal.RequireFromString("100")) {
		t.Errorf("Expected balance to stay 100, got %s", got)
	}
}

func TestPaymentWebhookAcceptsNumericFields(t *testing.T) {
	s := newTestServer(t)
	testutil.SeedUser(t, s.db, 1, models.RoleUser)

	raw := `{"transaction_id":"tx-1","account_id":1,"user_id":1,"amount":100.00,` +
		`"signature":"545ba025904890f522c2e7c38b1eb73ebd5bee8efbb0b7327c387e240748ed27"}`
	w := s.do(t, http.MethodPost, "/api/v1/transaction/webhook/payment", "", raw)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
}

func TestPaymentWebhookRejects(t *testing.T) {
	s := newTestServer(t)
	testutil.SeedUser(t, s.db, 1, models.RoleUser)

	tampered := s.signedPayment("tx-9", "1", "1", "10.00")
	tampered["amount"] = "1000.00"

	unsignedFormat := s.signedPayment("tx-10", "abc", "1", "10.00")

	tests := []struct {
		name       string
		body       any
		wantStatus int
		wantError  string
	}{
		{"malformed json", "{", http.StatusBadRequest, "Invalid payload"},
		{"tampered amount", tampered, http.StatusBadRequest, "Invalid signature"},
		{"missing signature", map[string]string{"transaction_id": "x", "account_id": "1", "user_id": "1", "amount": "1"}, http.StatusBadRequest, "Invalid signature"},
		{"signed but malformed account", unsignedFormat, http.StatusBadRequest, "account_id must be a positive integer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodPost, "/api/v1/transaction/webhook/payment", "", tt.body)
			if w.Code != tt.wantStatus {
				t.Fatalf("Expected %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			if got := decode[map[string]string](t, w)["error"]; got != tt.wantError {
				t.Errorf("Expected error %q, got %q", tt.wantError, got)
			}
		})
	}

	var count int64
	s.db.Model(&models.Transaction{}).Count(&count)
	if count != 0 {
		t.Errorf("Expected no transactions, got %d", count)
	}
}

func TestPaymentWebhookKeepsTransactionIDAsSigned(t *testing.T) {
	s := newTestServer(t)
	testutil.SeedUser(t, s.db, 1, models.RoleUser)

	if w := s.do(t, http.MethodPost, "/api/v1/transaction/webhook/payment", "", s.signedPayment("tx-1", "1", "1", "10.00")); w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}

	// A differently signed id must not be folded into "tx-1".
	w := s.do(t, http.MethodPost, "/api/v1/transaction/webhook/payment", "", s.signedPayment(" tx-1", "1", "1", "10.00"))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d: %s", w.Code, w.Body.String())
	}
	if got := decode[map[string]string](t, w)["error"]; got != "transaction_id must not have surrounding whitespace" {
		t.Errorf("Unexpected error %q", got)
	}
	if got := balance(t, s.db, 1); !got.Equal(decimal.RequireFromString("10")) {
		t.Errorf("Expected balance 10, got %s", got)
	}
}

func TestPaymentWebhookIngestionFailure(t *testing.T) {
	s := newTestServer(t)

	// User 42 does not exist, so provisioning violates the foreign key.
	w := s.do(t, http.MethodPost, "/api/v1/transaction/webhook/payment", "", s.signedPayment("tx-1", "5", "42", "10.00"))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("Expected 500, got %d: %s", w.Code, w.Body.String())
	}

	var accounts int64
	s.db.Model(&models.Account{}).Count(&accounts)
	if accounts != 0 {
		t.Errorf("Expected no accounts after failed ingestion, got %d", accounts)
	}
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)
	hash, err := auth.HashPassword("password1")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	user := &models.User{Username: "alice", Email: "alice@example.com", FullName: "Alice", HashedPassword: hash, Role: models.RoleUser}
	if err := s.db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}

	tests := []struct {
		name       string
		body       any
		wantStatus int
	}{
		{"valid", map[string]string{"email": "alice@example.com", "password": "password1"}, http.StatusOK},
		{"wrong password", map[string]string{"email": "alice@example.com", "password": "nope"}, http.StatusUnauthorized},
		{"unknown email", map[string]string{"email": "bob@example.com", "password": "password1"}, http.StatusUnauthorized},
		{"invalid body", map[string]string{"email": "not-an-email"}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodPost, "/api/v1/auth/login", "", tt.body)
			if w.Code != tt.wantStatus {
				t.Fatalf("Expected %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			token := decode[map[string]string](t, w)["access_token"]
			claims, err := s.issuer.ParseToken(token)
			if err != nil {
				t.Fatalf("ParseToken failed: %v", err)
			}
			if claims.UserID != user.UserID {
				t.Errorf("Expected user_id %d, got %d", user.UserID, claims.UserID)
			}
		})
	}
}

func TestAccountsAreScopedToOwner(t *testing.T) {
	s := newTestServer(t)
	testutil.SeedUser(t, s.db, 1, models.RoleUser)
	testutil.SeedUser(t, s.db, 2, models.RoleUser)

	for _, p := range []map[string]string{
		s.signedPayment("tx-a", "1", "1", "25.50"),
		s.signedPayment("tx-b", "2", "2", "10.25"),
	} {
		if w := s.do(t, http.MethodPost, "/api/v1/transaction/webhook/payment", "", p); w.Code != http.StatusCreated {
			t.Fatalf("Seeding payment failed: %d %s", w.Code, w.Body.String())
		}
	}

	alice := s.token(t, 1, models.RoleUser)

	w := s.do(t, http.MethodGet, "/api/v1/account/my/1", alice, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	acc := decode[handlers.AccountResponse](t, w)
	if acc.Balance != "25.50" || len(acc.Transactions) != 1 || acc.Transactions[0].TransactionID != "tx-a" {
		t.Errorf("Unexpected account: %+v", acc)
	}

	// Account 2 belongs to user 2.
	if w := s.do(t, http.MethodGet, "/api/v1/account/my/2", alice, nil); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for foreign account, got %d", w.Code)
	}
	if w := s.do(t, http.MethodGet, "/api/v1/transaction/my/2", alice, nil); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for foreign account transactions, got %d", w.Code)
	}
	if w := s.do(t, http.MethodPatch, "/api/v1/account/my/2/update", alice, map[string]string{"account_name": "stolen"}); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for foreign rename, got %d", w.Code)
	}

	w = s.do(t, http.MethodGet, "/api/v1/transaction/my", alice, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	page := decode[struct {
		Data      []handlers.TransactionResponse `json:"data"`
		TotalRows int64                          `json:"totalRows"`
	}](t, w)
	if page.TotalRows != 1 || len(page.Data) != 1 || page.Data[0].TransactionID != "tx-a" {
		t.Errorf("Unexpected transactions page: %+v", page)
	}
}

func TestAccountCreateAndRename(t *testing.T) {
	s := newTestServer(t)
	testutil.SeedUser(t, s.db, 1, models.RoleUser)
	testutil.SeedUser(t, s.db, 2, models.RoleUser)
	alice := s.token(t, 1, models.RoleUser)
	bob := s.token(t, 2, models.RoleUser)

	w := s.do(t, http.MethodPost, "/api/v1/account/my", alice, map[string]string{"account_name": "savings"})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	created := decode[handlers.AccountResponse](t, w)
	if created.Balance != "0.00" || created.AccountName == nil || *created.AccountName != "savings" {
		t.Errorf("Unexpected account: %+v", created)
	}

	if w := s.do(t, http.MethodPost, "/api/v1/account/my", bob, map[string]string{"account_name": "savings"}); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for taken name, got %d", w.Code)
	}
	if w := s.do(t, http.MethodPost, "/api/v1/account/my", bob, nil); w.Code != http.StatusCreated {
		t.Errorf("Expected 201 for unnamed account, got %d: %s", w.Code, w.Body.String())
	}

	path := "/api/v1/account/my/" + jsonInt(created.AccountID) + "/update"
	w = s.do(t, http.MethodPatch, path, alice, map[string]string{"account_name": "holiday"})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if renamed := decode[handlers.AccountResponse](t, w); *renamed.AccountName != "holiday" {
		t.Errorf("Expected holiday, got %q", *renamed.AccountName)
	}
	if w := s.do(t, http.MethodPatch, path, alice, map[string]string{"account_name": " "}); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for blank name, got %d", w.Code)
	}
}

func TestUserEndpointsRequireAdmin(t *testing.T) {
	s := newTestServer(t)
	testutil.SeedUser(t, s.db, 1, models.RoleAdmin)
	testutil.SeedUser(t, s.db, 2, models.RoleUser)
	user := s.token(t, 2, models.RoleUser)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/user"},
		{http.MethodPost, "/api/v1/user"},
		{http.MethodGet, "/api/v1/user/1"},
		{http.MethodPatch, "/api/v1/user/update/1"},
		{http.MethodDelete, "/api/v1/user/1"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			if w := s.do(t, tt.method, tt.path, user, map[string]string{}); w.Code != http.StatusForbidden {
				t.Errorf("Expected 403, got %d", w.Code)
			}
		})
	}

	if w := s.do(t, http.MethodGet, "/api/v1/user/me", "", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without token, got %d", w.Code)
	}

	w := s.do(t, http.MethodGet, "/api/v1/user/me", user, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if me := decode[handlers.UserResponse](t, w); me.UserID != 2 || me.Role != models.RoleUser {
		t.Errorf("Unexpected profile: %+v", me)
	}
}

func TestAdminUserLifecycle(t *testing.T) {
	s := newTestServer(t)
	testutil.SeedUser(t, s.db, 1, models.RoleAdmin)
	admin := s.token(t, 1, models.RoleAdmin)

	w := s.do(t, http.MethodPost, "/api/v1/user", admin, map[string]string{
		"username":  "carol",
		"email":     "carol@example.com",
		"full_name": "Carol",
		"password":  "secret1",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	carol := decode[handlers.UserResponse](t, w)
	if carol.Role != models.RoleUser {
		t.Errorf("Expected default role user, got %q", carol.Role)
	}
	if bytes.Contains(w.Body.Bytes(), []byte("password")) {
		t.Error("Response must not contain password fields")
	}

	if w := s.do(t, http.MethodPost, "/api/v1/user", admin, map[string]string{
		"username": "carol2", "email": "carol@example.com", "full_name": "C", "password": "secret1",
	}); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for duplicate email, got %d", w.Code)
	}

	id := jsonInt(carol.UserID)
	payment := s.signedPayment("tx-c", "77", id, "10.25")
	if w := s.do(t, http.MethodPost, "/api/v1/transaction/webhook/payment", "", payment); w.Code != http.StatusCreated {
		t.Fatalf("Payment failed: %d %s", w.Code, w.Body.String())
	}

	w = s.do(t, http.MethodPatch, "/api/v1/user/update/"+id, admin, map[string]string{"full_name": "Carol C."})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	updated := decode[handlers.UserResponse](t, w)
	if updated.FullName != "Carol C." || len(updated.Accounts) != 1 || updated.Accounts[0].Balance != "10.25" {
		t.Errorf("Unexpected update response: %+v", updated)
	}

	w = s.do(t, http.MethodGet, "/api/v1/user?page=1&pageSize=1", admin, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	page := decode[handlers.PaginatedResponse](t, w)
	if page.TotalRows != 2 || page.TotalPages != 2 {
		t.Errorf("Unexpected page: %+v", page)
	}

	if w := s.do(t, http.MethodDelete, "/api/v1/user/"+id, admin, nil); w.Code != http.StatusNoContent {
		t.Fatalf("Expected 204, got %d", w.Code)
	}
	if w := s.do(t, http.MethodGet, "/api/v1/user/"+id, admin, nil); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 after delete, got %d", w.Code)
	}

	var accounts, txs int64
	s.db.Model(&models.Account{}).Count(&accounts)
	s.db.Model(&models.Transaction{}).Count(&txs)
	if accounts != 0 || txs != 0 {
		t.Errorf("Expected cascade delete, got %d accounts and %d transactions", accounts, txs)
	}

	// The deleted user's token no longer authenticates.
	token := s.token(t, carol.UserID, models.RoleUser)
	if w := s.do(t, http.MethodGet, "/api/v1/user/me", token, nil); w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for deleted user, got %d", w.Code)
	}
}

func TestUpdateMe(t *testing.T) {
	s := newTestServer(t)
	testutil.SeedUser(t, s.db, 1, models.RoleUser)
	testutil.SeedUser(t, s.db, 2, models.RoleUser)
	token := s.token(t, 1, models.RoleUser)

	w := s.do(t, http.MethodPatch, "/api/v1/user/me/update", token, map[string]string{"username": "renamed"})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if me := decode[handlers.UserResponse](t, w); me.Username != "renamed" || me.Email != "user1@example.com" {
		t.Errorf("Unexpected profile: %+v", me)
	}

	w = s.do(t, http.MethodPatch, "/api/v1/user/me/update", token, map[string]string{"email": "user2@example.com"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for taken email, got %d", w.Code)
	}
}

func jsonInt(v int64) string {
	b, _ := json.Marshal(v)
	return string(b)
}
