package auth

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"DegensAgainstDecency/internal/middleware"

	"github.com/alicebob/miniredis/v2"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret")

// personalSign signs msg the way MetaMask does, with V in {27, 28}.
func personalSign(t *testing.T, msg string) (addr, sig string) {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	prefixed := fmt.Sprintf("\x19Ethereum Signed Message:\n%d%s", len(msg), msg)
	raw, err := crypto.Sign(crypto.Keccak256Hash([]byte(prefixed)).Bytes(), key)
	require.NoError(t, err)
	raw[64] += 27
	return crypto.PubkeyToAddress(key.PublicKey).Hex(), "0x" + hex.EncodeToString(raw)
}

func newRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h.Register(r.Group("/auth"))
	return r
}

func post(r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func fetchNonce(t *testing.T, r *gin.Engine) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/auth/nonce", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, SignMessage(resp["nonce"]), resp["message"])
	return resp["nonce"]
}

func TestRecoverAddress(t *testing.T) {
	addr, sig := personalSign(t, "hello")
	got, err := RecoverAddress("hello", sig)
	require.NoError(t, err)
	assert.Equal(t, addr, got)

	if other, err := RecoverAddress("tampered", sig); err == nil {
		assert.NotEqual(t, addr, other)
	}

	_, err = RecoverAddress("hello", "0xdeadbeef")
	assert.Error(t, err)
	_, err = RecoverAddress("hello", "zz")
	assert.Error(t, err)
}

func TestWalletLoginFlow(t *testing.T) {
	r := newRouter(NewHandler(NewMemoryNonceStore(time.Minute), secret, time.Hour))
	nonce := fetchNonce(t, r)
	addr, sig := personalSign(t, SignMessage(nonce))

	w := post(r, "/auth/login", LoginRequest{Address: addr, Signature: sig, Nonce: nonce, Name: "alice"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	claims, err := middleware.ParseToken(secret, resp["jwt"])
	require.NoError(t, err)
	assert.Equal(t, addr, claims["sub"])
	assert.Equal(t, "alice", claims["name"])

	// replay
	w = post(r, "/auth/login", LoginRequest{Address: addr, Signature: sig, Nonce: nonce})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWalletLoginRejectsWrongSigner(t *testing.T) {
	r := newRouter(NewHandler(NewMemoryNonceStore(time.Minute), secret, time.Hour))
	nonce := fetchNonce(t, r)
	_, sig := personalSign(t, SignMessage(nonce))
	other, _ := personalSign(t, "x")

	w := post(r, "/auth/login", LoginRequest{Address: other, Signature: sig, Nonce: nonce})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = post(r, "/auth/login", map[string]string{"address": other})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGuestLogin(t *testing.T) {
	r := newRouter(NewHandler(NewMemoryNonceStore(time.Minute), secret, time.Hour))

	w := post(r, "/auth/guest", GuestRequest{Name: "  bob "})
	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp["playerId"], "guest-")

	claims, err := middleware.ParseToken(secret, resp["jwt"])
	require.NoError(t, err)
	assert.Equal(t, "bob", claims["name"])

	w = post(r, "/auth/guest", GuestRequest{Name: "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMemoryNonceExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryNonceStore(time.Minute).(*memoryNonces)
	now := time.Now()
	store.now = func() time.Time { return now }

	n, err := store.Issue(ctx)
	require.NoError(t, err)
	now = now.Add(2 * time.Minute)

	ok, err := store.Consume(ctx, n)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = store.Consume(ctx, "unknown")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisNonceStore(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisNonceStore(rdb, time.Minute)

	n, err := store.Issue(ctx)
	require.NoError(t, err)
	assert.True(t, mr.Exists(nonceKey(n)))

	ok, err := store.Consume(ctx, n)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = store.Consume(ctx, n)
	require.NoError(t, err)
	assert.False(t, ok, "nonce is single use")

	n, err = store.Issue(ctx)
	require.NoError(t, err)
	mr.FastForward(2 * time.Minute)
	ok, err = store.Consume(ctx, n)
	require.NoError(t, err)
	assert.False(t, ok, "expired nonce")
}
