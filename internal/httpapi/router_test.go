package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Binduvarsha23/securevaultBackend/internal/hash"
	"github.com/Binduvarsha23/securevaultBackend/internal/security"
	"github.com/Binduvarsha23/securevaultBackend/internal/vault"
)

type fakeSender struct {
	mu     sync.Mutex
	bodies []string
	to     []string
	fail   bool
}

func (s *fakeSender) Send(_ context.Context, to, _, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return context.DeadlineExceeded
	}
	s.to = append(s.to, to)
	s.bodies = append(s.bodies, body)
	return nil
}

func newTestServer(t *testing.T, jwtSecret string) (*httptest.Server, *fakeSender, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	sender := &fakeSender{}
	engine := security.NewEngine(
		security.NewStore(rdb, "test"),
		hash.NewBcrypt(bcrypt.MinCost),
		sender,
		security.Options{},
	)
	vaults := vault.NewStore(rdb, "test")

	handler := NewRouter(engine, vaults, sender, zap.NewNop(), RouterConfig{
		JWTSecret:      jwtSecret,
		RequestTimeout: 5 * time.Second,
	})
	srv := httptest.NewServer(handler)

	return srv, sender, func() {
		srv.Close()
		_ = rdb.Close()
		mr.Close()
	}
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	var decoded map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

func mustBcrypt(t *testing.T, value string) string {
	t.Helper()
	digest, err := hash.NewBcrypt(bcrypt.MinCost).Hash(value)
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	return digest
}

func TestConfigLifecycleEndpoints(t *testing.T) {
	srv, _, done := newTestServer(t, "")
	defer done()

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/security/u1", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get before setup: status %d", resp.StatusCode)
	}
	if body["setupRequired"] != true {
		t.Fatalf("expected setupRequired sentinel, got %v", body)
	}

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/security", map[string]string{"userId": "u1"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: status %d", resp.StatusCode)
	}
	resp, body = doJSON(t, http.MethodPost, srv.URL+"/api/security", map[string]string{"userId": "u1"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("duplicate create: status %d", resp.StatusCode)
	}
	if body["message"] != "Already exists" {
		t.Fatalf("duplicate create message: %v", body)
	}

	resp, _ = doJSON(t, http.MethodPut, srv.URL+"/api/security/u1", map[string]any{
		"pinEnabled": true,
		"pinHash":    mustBcrypt(t, "1234"),
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update: status %d", resp.StatusCode)
	}

	resp, body = doJSON(t, http.MethodGet, srv.URL+"/api/security/u1", nil)
	if resp.StatusCode != http.StatusOK || body["setupRequired"] != false {
		t.Fatalf("get after setup: status %d body %v", resp.StatusCode, body)
	}
}

func TestVerifyEndpointStatuses(t *testing.T) {
	srv, _, done := newTestServer(t, "")
	defer done()

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/security/verify", map[string]string{
		"userId": "missing", "method": "pin", "value": "1234",
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("no config: status %d", resp.StatusCode)
	}

	doJSON(t, http.MethodPut, srv.URL+"/api/security/u1", map[string]any{
		"pinEnabled": true,
		"pinHash":    mustBcrypt(t, "1234"),
	})

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/security/verify", map[string]string{
		"userId": "u1", "method": "pin", "value": "1234",
	})
	if resp.StatusCode != http.StatusOK || body["success"] != true {
		t.Fatalf("valid pin: status %d body %v", resp.StatusCode, body)
	}

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/security/verify", map[string]string{
		"userId": "u1", "method": "pin", "value": "9999",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("wrong pin: status %d", resp.StatusCode)
	}
}

func TestTOTPEndpoints(t *testing.T) {
	srv, _, done := newTestServer(t, "")
	defer done()

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/security/setup-totp/u1", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("setup without config: status %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/security/verify-totp", map[string]string{
		"userId": "u1", "token": "123456",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("verify before setup: status %d", resp.StatusCode)
	}

	doJSON(t, http.MethodPost, srv.URL+"/api/security", map[string]string{"userId": "u1"})
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/security/setup-totp/u1", map[string]string{"email": "a@b.com"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("setup: status %d", resp.StatusCode)
	}
	secret, _ := body["secret"].(string)
	otpauthURL, _ := body["otpauthUrl"].(string)
	if secret == "" || otpauthURL == "" {
		t.Fatalf("setup response missing fields: %v", body)
	}

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/security/verify-totp", map[string]string{
		"userId": "u1", "token": "000000",
	})
	// A random wrong code; acceptance of valid codes is covered in the
	// engine tests where the clock is controlled.
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("wrong code: status %d", resp.StatusCode)
	}
}

func TestSecurityQuestionEndpoints(t *testing.T) {
	srv, _, done := newTestServer(t, "")
	defer done()

	resp, _ := doJSON(t, http.MethodPut, srv.URL+"/api/security/security-questions/u1", map[string]any{
		"questions": []map[string]string{{"question": "q1", "answerHash": mustBcrypt(t, "a1")}},
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("wrong count: status %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/security/verify-security-answer", map[string]string{
		"userId": "u1", "question": "q1", "answer": "a1",
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("none set: status %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, http.MethodPut, srv.URL+"/api/security/security-questions/u1", map[string]any{
		"questions": []map[string]string{
			{"question": "q1", "answerHash": mustBcrypt(t, "a1")},
			{"question": "q2", "answerHash": mustBcrypt(t, "a2")},
			{"question": "q3", "answerHash": mustBcrypt(t, "a3")},
		},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("set questions: status %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/security/verify-security-answer", map[string]string{
		"userId": "u1", "question": "q2", "answer": "a2",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("correct answer: status %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/security/verify-security-answer", map[string]string{
		"userId": "u1", "question": "q2", "answer": "nope",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("wrong answer: status %d", resp.StatusCode)
	}
}

func TestResetEndpoints(t *testing.T) {
	srv, sender, done := newTestServer(t, "")
	defer done()

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/security/request-method-reset", map[string]string{"userId": "u1"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing email: status %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/security/request-method-reset", map[string]string{
		"userId": "u1", "email": "a@b.com",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("request reset: status %d", resp.StatusCode)
	}

	sender.mu.Lock()
	lastBody := sender.bodies[len(sender.bodies)-1]
	sender.mu.Unlock()
	code := regexp.MustCompile(`\b(\d{6})\b`).FindString(lastBody)
	if code == "" {
		t.Fatalf("no code in mail body: %s", lastBody)
	}

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/security/reset-method-with-token", map[string]string{
		"userId": "u1", "token": code, "methodType": "totp", "newValue": "x",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("invalid method: status %d", resp.StatusCode)
	}

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/security/reset-method-with-token", map[string]string{
		"userId": "u1", "token": code, "methodType": "password", "newValue": "new-secret",
	})
	if resp.StatusCode != http.StatusOK || body["success"] != true {
		t.Fatalf("reset: status %d body %v", resp.StatusCode, body)
	}

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/security/reset-method-with-token", map[string]string{
		"userId": "u1", "token": code, "methodType": "password", "newValue": "again",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("replay: status %d", resp.StatusCode)
	}
}

func TestResetDeliveryFailureReports500(t *testing.T) {
	srv, sender, done := newTestServer(t, "")
	defer done()

	sender.fail = true
	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/security/request-method-reset", map[string]string{
		"userId": "u1", "email": "a@b.com",
	})
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("delivery failure: status %d", resp.StatusCode)
	}
}

func TestVaultEndpoints(t *testing.T) {
	srv, _, done := newTestServer(t, "")
	defer done()

	resp, created := doJSON(t, http.MethodPost, srv.URL+"/api/vault", map[string]any{
		"userId": "u1", "title": "gh", "username": "enc-u", "password": "enc-p",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: status %d", resp.StatusCode)
	}
	id, _ := created["id"].(string)
	if id == "" {
		t.Fatalf("create response missing id: %v", created)
	}

	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/vault/u1", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list: status %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, http.MethodPut, srv.URL+"/api/vault/"+id, map[string]any{
		"title": "github", "username": "enc-u", "password": "enc-p",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update: status %d", resp.StatusCode)
	}

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/vault/import", map[string]any{
		"userId": "u1",
		"vaults": []map[string]any{
			{"title": "github", "username": "enc-u", "password": "enc-p"}, // duplicate
			{"title": "mail", "username": "m", "password": "p"},
		},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("import: status %d", resp.StatusCode)
	}
	if body["count"] != float64(1) || body["skipped"] != float64(1) {
		t.Fatalf("import counts: %v", body)
	}

	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/vault/export/u1", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("export: status %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, http.MethodDelete, srv.URL+"/api/vault/"+id, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete: status %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, http.MethodDelete, srv.URL+"/api/vault/"+id, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("double delete: status %d", resp.StatusCode)
	}
}

func TestRequireAuthMiddleware(t *testing.T) {
	const secret = "test-secret"
	srv, _, done := newTestServer(t, secret)
	defer done()

	resp, _ := doJSON(t, http.MethodGet, srv.URL+"/api/security/u1", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("no token: status %d", resp.StatusCode)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": "u1",
		"exp":    time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/security/u1", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	authed, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("authed request: %v", err)
	}
	authed.Body.Close()
	if authed.StatusCode != http.StatusOK {
		t.Fatalf("valid token: status %d", authed.StatusCode)
	}

	req, _ = http.NewRequest(http.MethodGet, srv.URL+"/api/security/u1", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	bad, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("bad token request: %v", err)
	}
	bad.Body.Close()
	if bad.StatusCode != http.StatusForbidden {
		t.Fatalf("bad token: status %d", bad.StatusCode)
	}
}

func TestSendTOTPEndpoint(t *testing.T) {
	srv, sender, done := newTestServer(t, "")
	defer done()

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/send-totp", map[string]string{"email": "a@b.com"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing totp: status %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/send-totp", map[string]string{
		"email": "a@b.com", "totp": "482913",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("send: status %d", resp.StatusCode)
	}

	sender.mu.Lock()
	defer sender.mu.Unlock()
	if len(sender.to) == 0 || sender.to[len(sender.to)-1] != "a@b.com" {
		t.Fatal("mail not dispatched to the requested address")
	}
}
