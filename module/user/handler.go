package user

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"linguachat/global"
	"linguachat/module/chat/store"
	"linguachat/module/user/service"
	security "linguachat/tools/security"
)

type Handler struct {
	store store.Store
	opts  security.Options
}

func NewHandler(s store.Store) *Handler {
	return &Handler{
		store: s,
		opts:  security.DefaultOptions([]byte(global.Config.JWTSecret)),
	}
}

type loginBody struct {
	UserID   string `json:"id_user" binding:"required"`
	Language string `json:"language"`
}

// Login exchanges an externally verified user identifier for a session
// token plus the caller's full user document.
func (h *Handler) Login(c *gin.Context) {
	var body loginBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	if body.Language == "" {
		body.Language = "en"
	}
	res, err := service.Login(c.Request.Context(), h.store, h.opts, body.UserID, body.Language)
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, res)
}
