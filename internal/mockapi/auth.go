package mockapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenTTL      = 12 * time.Hour
	claimsContext = "claims"
)

// Admin is the one account the mock backend knows.
type Admin struct {
	ID           string
	Name         string
	Email        string
	PasswordHash []byte
}

// NewAdmin hashes password with bcrypt.
func NewAdmin(name, email, password string) (Admin, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return Admin{}, err
	}
	return Admin{ID: "1", Name: name, Email: email, PasswordHash: hash}, nil
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) login(ctx *gin.Context) {
	var req loginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		writeError(ctx, http.StatusBadRequest, "email and password are required")
		return
	}
	if !strings.EqualFold(req.Email, s.admin.Email) ||
		bcrypt.CompareHashAndPassword(s.admin.PasswordHash, []byte(req.Password)) != nil {
		writeError(ctx, http.StatusUnauthorized, "invalid credentials")
		return
	}
	token, err := s.issueToken(time.Now())
	if err != nil {
		writeError(ctx, http.StatusInternalServerError, "could not issue token")
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  gin.H{"id": s.admin.ID, "name": s.admin.Name, "email": s.admin.Email},
	})
}

func (s *Server) me(ctx *gin.Context) {
	claims, _ := ctx.Get(claimsContext)
	ctx.JSON(http.StatusOK, gin.H{"user": claims})
}

func (s *Server) issueToken(now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub":   s.admin.ID,
		"email": s.admin.Email,
		"name":  s.admin.Name,
		"role":  "admin",
		"iat":   now.Unix(),
		"exp":   now.Add(tokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// requireAuth rejects requests without a valid bearer token. It is a no-op
// when the server runs with auth disabled.
func (s *Server) requireAuth(ctx *gin.Context) {
	if s.noAuth {
		ctx.Next()
		return
	}
	header := ctx.GetHeader("Authorization")
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || raw == "" {
		writeError(ctx, http.StatusUnauthorized, "missing bearer token")
		ctx.Abort()
		return
	}
	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		msg := "invalid token"
		if errors.Is(err, jwt.ErrTokenExpired) {
			msg = "token expired"
		}
		writeError(ctx, http.StatusUnauthorized, msg)
		ctx.Abort()
		return
	}
	ctx.Set(claimsContext, token.Claims)
	ctx.Next()
}
