package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"courier/internal/auth"
	"courier/internal/domain"
	"courier/internal/service"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	users    service.UserService
	messages service.MessageService
	issuer   *auth.Issuer
}

func NewHandler(users service.UserService, messages service.MessageService, issuer *auth.Issuer) *Handler {
	return &Handler{
		users:    users,
		messages: messages,
		issuer:   issuer,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())

	router.POST("/auth/login", h.login)
	router.POST("/auth/register", h.register)

	users := router.Group("/users", requireAuth(h.issuer))
	{
		users.GET("", h.listUsers)
		users.GET("/:username", h.getUser)
		users.GET("/:username/from", requireSameUser(), h.messagesFrom)
		users.GET("/:username/to", requireSameUser(), h.messagesTo)
	}

	router.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
	})
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type registerRequest struct {
	Username  string `json:"username" binding:"required"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ok, err := h.users.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid username/password"})
		return
	}

	if _, err := h.users.UpdateLoginTimestamp(c.Request.Context(), req.Username); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	token, err := h.issuer.Issue(req.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.Register(c.Request.Context(), service.RegisterInput{
		Username:  req.Username,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	})
	if err != nil {
		if errors.Is(err, service.ErrUserAlreadyExists) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "username already taken"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	token, err := h.issuer.Issue(user.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"token": token})
}

func (h *Handler) listUsers(c *gin.Context) {
	users, err := h.users.All(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := make([]UserSummaryResponse, len(users))
	for i := range users {
		resp[i] = UserSummaryResponse{
			Username:  users[i].Username,
			FirstName: users[i].FirstName,
			LastName:  users[i].LastName,
		}
	}
	c.JSON(http.StatusOK, gin.H{"users": resp})
}

func (h *Handler) getUser(c *gin.Context) {
	user, err := h.users.Get(c.Request.Context(), c.Param("username"))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no such user"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": UserResponse{
		Username:    user.Username,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		Phone:       user.Phone,
		JoinAt:      user.JoinAt.Format(time.RFC3339),
		LastLoginAt: user.LastLoginAt.Format(time.RFC3339),
	}})
}

func (h *Handler) messagesFrom(c *gin.Context) {
	messages, err := h.messages.MessagesFrom(c.Request.Context(), c.Param("username"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := make([]SentMessageResponse, len(messages))
	for i := range messages {
		resp[i] = sentMessageToResponse(messages[i])
	}
	c.JSON(http.StatusOK, gin.H{"messages": resp})
}

func (h *Handler) messagesTo(c *gin.Context) {
	messages, err := h.messages.MessagesTo(c.Request.Context(), c.Param("username"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := make([]ReceivedMessageResponse, len(messages))
	for i := range messages {
		resp[i] = receivedMessageToResponse(messages[i])
	}
	c.JSON(http.StatusOK, gin.H{"messages": resp})
}

type UserSummaryResponse struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type UserResponse struct {
	Username    string `json:"username"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Phone       string `json:"phone"`
	JoinAt      string `json:"join_at"`
	LastLoginAt string `json:"last_login_at"`
}

type UserProfileResponse struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

type SentMessageResponse struct {
	ID     string              `json:"id"`
	Body   string              `json:"body"`
	SentAt string              `json:"sent_at"`
	ReadAt *string             `json:"read_at,omitempty"`
	To     UserProfileResponse `json:"to_user"`
}

type ReceivedMessageResponse struct {
	ID     string              `json:"id"`
	Body   string              `json:"body"`
	SentAt string              `json:"sent_at"`
	ReadAt *string             `json:"read_at,omitempty"`
	From   UserProfileResponse `json:"from_user"`
}

func sentMessageToResponse(m domain.SentMessage) SentMessageResponse {
	resp := SentMessageResponse{
		ID:     m.ID,
		Body:   m.Body,
		SentAt: m.SentAt.Format(time.RFC3339),
		To: UserProfileResponse{
			Username:  m.To.Username,
			FirstName: m.To.FirstName,
			LastName:  m.To.LastName,
			Phone:     m.To.Phone,
		},
	}
	if m.ReadAt != nil {
		v := m.ReadAt.Format(time.RFC3339)
		resp.ReadAt = &v
	}
	return resp
}

func receivedMessageToResponse(m domain.ReceivedMessage) ReceivedMessageResponse {
	resp := ReceivedMessageResponse{
		ID:     m.ID,
		Body:   m.Body,
		SentAt: m.SentAt.Format(time.RFC3339),
		From: UserProfileResponse{
			Username:  m.From.Username,
			FirstName: m.From.FirstName,
			LastName:  m.From.LastName,
			Phone:     m.From.Phone,
		},
	}
	if m.ReadAt != nil {
		v := m.ReadAt.Format(time.RFC3339)
		resp.ReadAt = &v
	}
	return resp
}
