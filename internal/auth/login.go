package auth

import (
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"DegensAgainstDecency/internal/utils"

	"github.com/charmbracelet/log"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const signPrefix = "Sign this message to authenticate with Degens Against Decency. Nonce: "

type LoginRequest struct {
	Address   string `json:"address" binding:"required"`
	Signature string `json:"signature" binding:"required"`
	Nonce     string `json:"nonce" binding:"required"`
	Name      string `json:"name"`
}

type GuestRequest struct {
	Name string `json:"name" binding:"required"`
}

type Handler struct {
	nonces   NonceStore
	secret   []byte
	tokenTTL time.Duration
	log      *log.Logger
}

func NewHandler(nonces NonceStore, secret []byte, tokenTTL time.Duration) *Handler {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &Handler{nonces: nonces, secret: secret, tokenTTL: tokenTTL, log: utils.Component("auth")}
}

// SignMessage is the text a wallet signs for nonce.
func SignMessage(nonce string) string { return signPrefix + nonce }

// RecoverAddress returns the address that personal_sign'ed msg.
func RecoverAddress(msg, signature string) (string, error) {
	// 构造与 MetaMask personal_sign 完全一致的消息
	prefixed := fmt.Sprintf("\x19Ethereum Signed Message:\n%d%s", len(msg), msg)
	hash := crypto.Keccak256Hash([]byte(prefixed))

	sig, err := hex.DecodeString(strings.TrimPrefix(signature, "0x"))
	if err != nil {
		return "", fmt.Errorf("decode signature: %w", err)
	}
	if len(sig) != crypto.SignatureLength {
		return "", errors.New("signature must be 65 bytes")
	}
	// 修正 V 值
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}
	pub, err := crypto.SigToPub(hash.Bytes(), sig)
	if err != nil {
		return "", err
	}
	return crypto.PubkeyToAddress(*pub).Hex(), nil
}

// IssueToken signs an HS256 token for subject.
func IssueToken(secret []byte, subject, name string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": subject,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	if name != "" {
		claims["name"] = name
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// GET|POST /auth/nonce
func (h *Handler) Nonce(c *gin.Context) {
	n, err := h.nonces.Issue(c.Request.Context())
	if err != nil {
		h.log.Error("issue nonce", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate nonce"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"nonce": n, "message": SignMessage(n)})
}

// POST /auth/login  body: {address, signature, nonce, name?}
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	ok, err := h.nonces.Consume(c.Request.Context(), req.Nonce)
	if err != nil {
		h.log.Error("consume nonce", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "nonce store unavailable"})
		return
	}
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid nonce"})
		return
	}

	recovered, err := RecoverAddress(SignMessage(req.Nonce), req.Signature)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "signature verify failed"})
		return
	}
	if !strings.EqualFold(recovered, req.Address) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "signature mismatch"})
		return
	}

	h.issue(c, recovered, req.Name)
}

// POST /auth/guest  body: {name}
func (h *Handler) Guest(c *gin.Context) {
	var req GuestRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}
	h.issue(c, "guest-"+uuid.NewString(), strings.TrimSpace(req.Name))
}

func (h *Handler) issue(c *gin.Context, subject, name string) {
	tok, err := IssueToken(h.secret, subject, name, h.tokenTTL)
	if err != nil {
		h.log.Error("sign jwt", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "jwt generation failed"})
		return
	}
	h.log.Info("login", "player", subject)
	c.JSON(http.StatusOK, gin.H{"jwt": tok, "playerId": subject})
}

func (h *Handler) Register(g *gin.RouterGroup) {
	g.GET("/nonce", h.Nonce)
	g.POST("/nonce", h.Nonce)
	g.POST("/login", h.Login)
	g.POST("/guest", h.Guest)
}
