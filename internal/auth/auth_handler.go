package auth

import (
	"net/http"
	"time"

	autherrors "dayflow-hrms/internal/auth/errors"
	"dayflow-hrms/internal/shared/apperror"
	platform "dayflow-hrms/internal/shared/request"
	"dayflow-hrms/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	accessCookie  = "access_token"
	refreshCookie = "refresh_token"
)

// CookieOptions control the cookies set for browser clients.
type CookieOptions struct {
	Secure     bool
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type Handler struct {
	service Service
	cookies CookieOptions
	logger  *zap.Logger
}

func NewHandler(s Service, cookies CookieOptions, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("auth.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("auth.handler")
	}
	return &Handler{service: s, cookies: cookies, logger: l}
}

func writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) setCookie(c *gin.Context, name, value string, maxAge int) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cookies.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) setTokenCookies(c *gin.Context, access, refresh string) {
	h.setCookie(c, accessCookie, access, int(h.cookies.AccessTTL.Seconds()))
	h.setCookie(c, refreshCookie, refresh, int(h.cookies.RefreshTTL.Seconds()))
}

func isWeb(c *gin.Context) bool {
	clientType := platform.ResolveClientType(c.GetHeader("X-Client-Type"), c.GetHeader("User-Agent"))
	return platform.IsWebClient(clientType)
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpErr := apperror.ToHTTP(apperror.MapValidationError(err))
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", httpErr.Message, err.Error())
		return
	}

	access, refresh, user, err := h.service.Login(c.Request.Context(), req.Login, req.Password)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	if isWeb(c) {
		h.setTokenCookies(c, access, refresh)
	}

	response.Success(c, http.StatusOK, LoginResponse{
		User:         user,
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil)
}

func (h *Handler) RefreshToken(c *gin.Context) {
	web := isWeb(c)

	var refreshToken string
	if web {
		cookie, err := c.Cookie(refreshCookie)
		if err != nil || cookie == "" {
			writeServiceError(c, autherrors.ErrMissingRefreshToken)
			return
		}
		refreshToken = cookie
	} else {
		var req RefreshRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			writeServiceError(c, autherrors.ErrMissingRefreshToken)
			return
		}
		refreshToken = req.RefreshToken
	}

	access, refresh, user, err := h.service.RefreshToken(c.Request.Context(), refreshToken)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	if web {
		h.setTokenCookies(c, access, refresh)
	}

	response.Success(c, http.StatusOK, LoginResponse{
		User:         user,
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil)
}

func (h *Handler) Me(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		writeServiceError(c, apperror.ErrUnauthorized)
		return
	}

	resp, err := h.service.GetMe(c.Request.Context(), userID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

// Logout clears the auth cookies. Tokens are stateless, so bearer clients
// simply drop theirs.
func (h *Handler) Logout(c *gin.Context) {
	h.setCookie(c, accessCookie, "", -1)
	h.setCookie(c, refreshCookie, "", -1)
	response.Success(c, http.StatusOK, gin.H{"message": "Logout success."}, nil)
}
