package chat

import (
	"net/http"

	"github.com/gin-gonic/gin"

	midsec "linguachat/middleware/security"
	"linguachat/module/chat/service"
	"linguachat/tools/errs"
)

// Handler maps HTTP bodies onto engine operations and engine outcomes onto
// the three-way contract: 200 success, 4xx with a {message} body for the
// soft rejections, bare 4xx/5xx otherwise.
type Handler struct {
	engine *service.Engine
}

func NewHandler(e *service.Engine) *Handler {
	return &Handler{engine: e}
}

func respond(c *gin.Context, err error, body any) {
	if err == nil {
		if body == nil {
			body = gin.H{}
		}
		c.JSON(http.StatusOK, body)
		return
	}
	if errs.IsSoftReject(err) {
		c.JSON(http.StatusConflict, gin.H{"message": errMsg(err)})
		return
	}
	switch errs.CodeOf(err) {
	case errs.ErrNotFound.Code:
		c.Status(http.StatusNotFound)
	case errs.ErrArgs.Code:
		c.Status(http.StatusBadRequest)
	case errs.ErrToken.Code:
		c.Status(http.StatusUnauthorized)
	case errs.ErrTranslation.Code:
		c.Status(http.StatusBadGateway)
	default:
		c.Status(http.StatusInternalServerError)
	}
}

func errMsg(err error) string {
	var ce *errs.CodeError
	if e, ok := err.(*errs.CodeError); ok {
		ce = e
	}
	if ce == nil {
		return err.Error()
	}
	return ce.Msg
}

// ---- friends ----

type friendRequestBody struct {
	ReceiverID string `json:"id_receiver" binding:"required"`
}

func (h *Handler) SendFriendRequest(c *gin.Context) {
	var body friendRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	err := h.engine.SendFriendRequest(c.Request.Context(), midsec.UserID(c), body.ReceiverID)
	respond(c, err, nil)
}

type acceptFriendBody struct {
	SenderID string `json:"id_sender" binding:"required"`
}

func (h *Handler) AcceptFriendRequest(c *gin.Context) {
	var body acceptFriendBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	chatID, err := h.engine.AcceptFriendRequest(c.Request.Context(), body.SenderID, midsec.UserID(c))
	respond(c, err, gin.H{"id_chat": chatID})
}

type declineBody struct {
	SenderID string `json:"id_sender" binding:"required"`
	ChatID   string `json:"id_chat"`
}

func (h *Handler) DeclineRequest(c *gin.Context) {
	var body declineBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	err := h.engine.DeclineRequest(c.Request.Context(), body.SenderID, midsec.UserID(c), body.ChatID)
	respond(c, err, nil)
}

type unfriendBody struct {
	FriendID string `json:"id_friend" binding:"required"`
	ChatID   string `json:"id_chat"`
}

func (h *Handler) Unfriend(c *gin.Context) {
	var body unfriendBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	err := h.engine.Unfriend(c.Request.Context(), midsec.UserID(c), body.FriendID, body.ChatID)
	respond(c, err, nil)
}

// ---- invitations ----

type chatInvitationBody struct {
	ReceiverID string `json:"id_receiver" binding:"required"`
	ChatID     string `json:"id_chat" binding:"required"`
}

func (h *Handler) SendChatInvitation(c *gin.Context) {
	var body chatInvitationBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	err := h.engine.SendChatInvitation(c.Request.Context(), midsec.UserID(c), body.ReceiverID, body.ChatID)
	respond(c, err, nil)
}

type acceptInvitationBody struct {
	ChatID string `json:"id_chat" binding:"required"`
}

func (h *Handler) AcceptChatInvitation(c *gin.Context) {
	var body acceptInvitationBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	err := h.engine.AcceptChatInvitation(c.Request.Context(), body.ChatID, midsec.UserID(c))
	respond(c, err, nil)
}

// ---- membership ----

type createChatBody struct {
	Chatname string `json:"chatname" binding:"required"`
	Password string `json:"password"`
}

func (h *Handler) CreateChat(c *gin.Context) {
	var body createChatBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	chat, err := h.engine.CreateChat(c.Request.Context(), midsec.UserID(c), body.Chatname, body.Password)
	if err != nil {
		respond(c, err, nil)
		return
	}
	respond(c, nil, chat)
}

type joinChatBody struct {
	ChatID   string `json:"id_chat"`
	Chatname string `json:"chatname"`
	Password string `json:"password"`
}

func (h *Handler) JoinChat(c *gin.Context) {
	var body joinChatBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	userID := midsec.UserID(c)
	var err error
	var chat any
	switch {
	case body.ChatID != "":
		chat, err = h.engine.JoinChat(c.Request.Context(), userID, body.ChatID)
	case body.Chatname != "":
		chat, err = h.engine.JoinChatByName(c.Request.Context(), userID, body.Chatname, body.Password)
	default:
		c.Status(http.StatusBadRequest)
		return
	}
	if err != nil {
		respond(c, err, nil)
		return
	}
	respond(c, nil, chat)
}

type leaveChatBody struct {
	ChatID string `json:"id_chat" binding:"required"`
}

func (h *Handler) LeaveChat(c *gin.Context) {
	var body leaveChatBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	err := h.engine.LeaveChat(c.Request.Context(), midsec.UserID(c), body.ChatID)
	respond(c, err, nil)
}

func (h *Handler) SearchChats(c *gin.Context) {
	chats, err := h.engine.SearchChats(c.Request.Context(), c.Query("prefix"), 0)
	if err != nil {
		respond(c, err, nil)
		return
	}
	respond(c, nil, gin.H{"chats": chats})
}

// ---- messages ----

type sendMessageBody struct {
	ChatID  string `json:"id_chat" binding:"required"`
	Content string `json:"content" binding:"required"`
}

func (h *Handler) SendMessage(c *gin.Context) {
	var body sendMessageBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	msg, err := h.engine.SendMessage(c.Request.Context(), body.ChatID, midsec.UserID(c), body.Content)
	if err != nil {
		respond(c, err, nil)
		return
	}
	respond(c, nil, msg)
}

type markReadBody struct {
	ChatID string `json:"id_chat" binding:"required"`
}

func (h *Handler) MarkRead(c *gin.Context) {
	var body markReadBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	err := h.engine.MarkRead(c.Request.Context(), midsec.UserID(c), body.ChatID)
	respond(c, err, nil)
}

// ---- profile & views ----

type updateProfileBody struct {
	Username string `json:"username"`
	Language string `json:"language"`
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	var body updateProfileBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	err := h.engine.UpdateProfile(c.Request.Context(), midsec.UserID(c), body.Username, body.Language)
	respond(c, err, nil)
}

func (h *Handler) GetUserData(c *gin.Context) {
	user, err := h.engine.GetUserData(c.Request.Context(), midsec.UserID(c))
	if err != nil {
		respond(c, err, nil)
		return
	}
	respond(c, nil, user)
}

func (h *Handler) GetChatData(c *gin.Context) {
	view, err := h.engine.GetChatData(c.Request.Context(), c.Param("id"), midsec.UserID(c))
	if err != nil {
		respond(c, err, nil)
		return
	}
	respond(c, nil, view)
}
