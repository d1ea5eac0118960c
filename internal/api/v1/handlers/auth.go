package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"monstager/internal/auth"
	"monstager/pkg/logger"
)

type AuthHandler struct {
	Auth     *auth.Service
	Tokens   *auth.TokenIssuer
	Validate *validator.Validate
}

func NewAuthHandler(service *auth.Service, tokens *auth.TokenIssuer) *AuthHandler {
	return &AuthHandler{Auth: service, Tokens: tokens, Validate: validator.New()}
}

// tokenPair mints the access/refresh pair returned on register and login.
func (h *AuthHandler) tokenPair(accountID string) (string, string, error) {
	access, err := h.Tokens.IssueAccessToken(accountID)
	if err != nil {
		return "", "", err
	}
	refresh, err := h.Tokens.IssueRefreshToken(accountID)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	type RegisterRequest struct {
		Username string `json:"username" validate:"required"`
		Email    string `json:"email" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in register", zap.Error(err))
		return fail(c, fiber.StatusBadRequest, "Bad request")
	}
	if err := h.Validate.Struct(req); err != nil {
		logger.AuditLogger.Warn("Validation error during register", zap.Error(err))
		return fail(c, fiber.StatusBadRequest, "username, email and password are required")
	}

	account, err := h.Auth.Register(c.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		logger.SecurityLogger.Warn("Register rejected", zap.Error(err))
		return serviceError(c, err)
	}

	access, refresh, err := h.tokenPair(account.ID)
	if err != nil {
		logger.ErrorLogger.Error("Error generating tokens", zap.Error(err))
		return fail(c, fiber.StatusInternalServerError, "Error generating tokens")
	}

	logger.AuditLogger.Info("User registered successfully", zap.String("account_id", account.ID))
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User created successfully",
		"success": true,
		"status":  fiber.StatusCreated,
		"data": fiber.Map{
			"user":          account,
			"access_token":  access,
			"refresh_token": refresh,
		},
	})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	type LoginRequest struct {
		// Username doubles as the identifier field: it may carry an email.
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in login", zap.Error(err))
		return fail(c, fiber.StatusBadRequest, "Bad request")
	}
	if err := h.Validate.Struct(req); err != nil {
		logger.AuditLogger.Warn("Validation error during login", zap.Error(err))
		return fail(c, fiber.StatusBadRequest, "username and password are required")
	}

	account, err := h.Auth.Authenticate(c.Context(), req.Username, req.Password)
	if err != nil {
		logger.SecurityLogger.Warn("Login failed", zap.String("identifier", req.Username))
		return serviceError(c, err)
	}

	access, refresh, err := h.tokenPair(account.ID)
	if err != nil {
		logger.ErrorLogger.Error("Error generating tokens", zap.Error(err))
		return fail(c, fiber.StatusInternalServerError, "Error generating tokens")
	}

	logger.AuditLogger.Info("Login success", zap.String("account_id", account.ID))
	return c.JSON(fiber.Map{
		"message": "Login success",
		"success": true,
		"status":  fiber.StatusOK,
		"data": fiber.Map{
			"user":          account,
			"access_token":  access,
			"refresh_token": refresh,
		},
	})
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	type RefreshRequest struct {
		RefreshToken string `json:"refresh_token" validate:"required"`
	}

	var req RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Bad request")
	}
	if err := h.Validate.Struct(req); err != nil {
		return fail(c, fiber.StatusBadRequest, "refresh_token is required")
	}

	access, err := h.Tokens.Refresh(req.RefreshToken)
	if err != nil {
		logger.SecurityLogger.Warn("Refresh rejected")
		return fail(c, fiber.StatusUnauthorized, "Invalid or expired refresh token")
	}

	return c.JSON(fiber.Map{
		"message": "Token refreshed",
		"success": true,
		"status":  fiber.StatusOK,
		"data": fiber.Map{
			"access_token": access,
		},
	})
}

func (h *AuthHandler) Profile(c *fiber.Ctx) error {
	account, err := h.Auth.Profile(c.Context(), accountID(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Profile found",
		"success": true,
		"status":  fiber.StatusOK,
		"data":    account,
	})
}

// RequestPasswordReset always answers with the same generic message so the
// endpoint cannot be used to enumerate registered addresses.
func (h *AuthHandler) RequestPasswordReset(c *fiber.Ctx) error {
	type ResetRequest struct {
		Email string `json:"email" validate:"required"`
	}

	var req ResetRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Bad request")
	}
	if err := h.Validate.Struct(req); err != nil {
		return fail(c, fiber.StatusBadRequest, "email is required")
	}

	if err := h.Auth.RequestReset(c.Context(), req.Email); err != nil {
		// Store failures are logged but the response stays generic.
		logger.ErrorLogger.Error("Error requesting password reset", zap.Error(err))
	}

	return c.JSON(fiber.Map{
		"message": "If the email exists, a reset link has been sent",
		"success": true,
		"status":  fiber.StatusOK,
	})
}

func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	type ResetPasswordRequest struct {
		Token       string `json:"token" validate:"required"`
		NewPassword string `json:"new_password" validate:"required"`
	}

	var req ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Bad request")
	}
	if err := h.Validate.Struct(req); err != nil {
		return fail(c, fiber.StatusBadRequest, "token and new_password are required")
	}

	if err := h.Auth.ConsumeReset(c.Context(), req.Token, req.NewPassword); err != nil {
		logger.SecurityLogger.Warn("Password reset rejected", zap.Error(err))
		return serviceError(c, err)
	}

	logger.AuditLogger.Info("Password reset completed")
	return c.JSON(fiber.Map{
		"message": "Password reset successful",
		"success": true,
		"status":  fiber.StatusOK,
	})
}
