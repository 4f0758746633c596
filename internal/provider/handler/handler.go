// Package handler exposes provider registration and login over HTTP using gin.
package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"provider-registration/backend/internal/provider/domain"
	"provider-registration/backend/internal/provider/service"
	"provider-registration/backend/internal/server/middleware"
)

const registeredMessage = "Provider registered successfully. Verification status: PENDING"

// Registrar creates provider identities.
type Registrar interface {
	Register(ctx context.Context, in service.RegisterInput) (*domain.Provider, error)
}

// Authenticator verifies provider credentials.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (*service.AuthResult, error)
}

// Handler serves the provider endpoints.
type Handler struct {
	registrar     Registrar
	authenticator Authenticator
	validate      *validator.Validate
	log           zerolog.Logger
}

// New returns a Handler backed by the given workflows.
func New(registrar Registrar, authenticator Authenticator, log zerolog.Logger) *Handler {
	return &Handler{
		registrar:     registrar,
		authenticator: authenticator,
		validate:      newValidator(),
		log:           log.With().Str("component", "provider_handler").Logger(),
	}
}

// Routes mounts the provider endpoints on r. requireAuth guards /api/v1/provider/me.
func (h *Handler) Routes(r gin.IRouter, requireAuth gin.HandlerFunc) {
	r.POST("/providers/register", h.Register)
	v1 := r.Group("/api/v1/provider")
	v1.POST("/login", h.Login)
	v1.GET("/me", requireAuth, h.Me)
}

type clinicAddressRequest struct {
	Street string `json:"street" validate:"notblank,max=200"`
	City   string `json:"city" validate:"notblank,max=100"`
	State  string `json:"state" validate:"notblank,max=50"`
	Zip    string `json:"zip" validate:"notblank,zip"`
}

type registerRequest struct {
	FirstName         string                `json:"firstName" validate:"notblank,min=2,max=50"`
	LastName          string                `json:"lastName" validate:"notblank,min=2,max=50"`
	Email             string                `json:"email" validate:"notblank,email"`
	PhoneNumber       string                `json:"phoneNumber" validate:"notblank,intlphone"`
	Password          string                `json:"password" validate:"notblank,strongpassword,bcryptlen"`
	Specialization    string                `json:"specialization" validate:"notblank,min=3,max=100"`
	LicenseNumber     string                `json:"licenseNumber" validate:"notblank,alphanum"`
	YearsOfExperience *int                  `json:"yearsOfExperience" validate:"omitempty,min=0,max=50"`
	ClinicAddress     *clinicAddressRequest `json:"clinicAddress"`
}

type registerResponse struct {
	ID                 string    `json:"id"`
	FirstName          string    `json:"firstName"`
	LastName           string    `json:"lastName"`
	Email              string    `json:"email"`
	Specialization     string    `json:"specialization"`
	VerificationStatus string    `json:"verificationStatus"`
	CreatedAt          time.Time `json:"createdAt"`
	Message            string    `json:"message"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"notblank,email"`
	Password string `json:"password" validate:"notblank"`
}

type providerSummary struct {
	ID                 string    `json:"id"`
	FirstName          string    `json:"firstName"`
	LastName           string    `json:"lastName"`
	Email              string    `json:"email"`
	Specialization     string    `json:"specialization"`
	VerificationStatus string    `json:"verificationStatus"`
	IsActive           bool      `json:"isActive"`
	CreatedAt          time.Time `json:"createdAt"`
}

type loginData struct {
	AccessToken string          `json:"access_token"`
	ExpiresIn   int64           `json:"expires_in"`
	TokenType   string          `json:"token_type"`
	Provider    providerSummary `json:"provider"`
}

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Register handles POST /providers/register.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Bad Request", "message": "Malformed JSON request"})
		return
	}
	if errs := fieldErrors(h.validate, req); errs != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":       "Validation Error",
			"status":      http.StatusUnprocessableEntity,
			"fieldErrors": errs,
		})
		return
	}

	in := service.RegisterInput{
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		Email:             req.Email,
		PhoneNumber:       req.PhoneNumber,
		Password:          req.Password,
		Specialization:    req.Specialization,
		LicenseNumber:     req.LicenseNumber,
		YearsOfExperience: req.YearsOfExperience,
	}
	if a := req.ClinicAddress; a != nil {
		in.ClinicAddress = &domain.ClinicAddress{Street: a.Street, City: a.City, State: a.State, Zip: a.Zip}
	}

	p, err := h.registrar.Register(c.Request.Context(), in)
	if err != nil {
		var dup *service.DuplicateIdentityError
		if errors.As(err, &dup) {
			c.JSON(http.StatusConflict, gin.H{"error": "Conflict", "message": dup.Message()})
			return
		}
		h.log.Error().Err(err).Msg("register failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error", "message": "Registration failed"})
		return
	}

	c.JSON(http.StatusCreated, registerResponse{
		ID:                 p.ID,
		FirstName:          p.FirstName,
		LastName:           p.LastName,
		Email:              p.Email,
		Specialization:     p.Specialization,
		VerificationStatus: string(p.VerificationStatus),
		CreatedAt:          p.CreatedAt,
		Message:            registeredMessage,
	})
}

// Login handles POST /api/v1/provider/login.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, envelope{Success: false, Message: "Malformed JSON request"})
		return
	}
	if errs := fieldErrors(h.validate, req); errs != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success":     false,
			"message":     "Validation Error",
			"status":      http.StatusBadRequest,
			"fieldErrors": errs,
		})
		return
	}

	res, err := h.authenticator.Authenticate(c.Request.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, envelope{Success: false, Message: "Invalid email or password"})
		return
	case errors.Is(err, service.ErrAccountInactive):
		c.JSON(http.StatusUnauthorized, envelope{Success: false, Message: "Account is inactive. Please contact support."})
		return
	case err != nil:
		h.log.Error().Err(err).Msg("login failed")
		c.JSON(http.StatusInternalServerError, envelope{Success: false, Message: "Login failed"})
		return
	}

	c.JSON(http.StatusOK, envelope{
		Success: true,
		Message: "Login successful",
		Data: loginData{
			AccessToken: res.AccessToken,
			ExpiresIn:   res.ExpiresIn,
			TokenType:   res.TokenType,
			Provider:    toSummary(res.Provider),
		},
	})
}

// Me handles GET /api/v1/provider/me and echoes the verified token claims.
func (h *Handler) Me(c *gin.Context) {
	claims, ok := middleware.ClaimsFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, envelope{Success: false, Message: "Unauthorized"})
		return
	}
	data := gin.H{
		"provider_id":    claims.ProviderID,
		"email":          claims.Subject,
		"role":           claims.Role,
		"specialization": claims.Specialization,
	}
	if claims.ExpiresAt != nil {
		data["expires_at"] = claims.ExpiresAt.Time
	}
	c.JSON(http.StatusOK, envelope{Success: true, Message: "Token valid", Data: data})
}

func toSummary(s domain.Summary) providerSummary {
	return providerSummary{
		ID:                 s.ID,
		FirstName:          s.FirstName,
		LastName:           s.LastName,
		Email:              s.Email,
		Specialization:     s.Specialization,
		VerificationStatus: string(s.VerificationStatus),
		IsActive:           s.IsActive,
		CreatedAt:          s.CreatedAt,
	}
}
