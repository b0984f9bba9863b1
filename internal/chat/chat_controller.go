package chat

import (
	"net/http"

	"github.com/DhavalSuthar-24/huddle/internal/middleware"
	"github.com/DhavalSuthar-24/huddle/internal/user"
	"github.com/DhavalSuthar-24/huddle/pkg/responses"
	"github.com/DhavalSuthar-24/huddle/pkg/validator"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ChatController struct {
	repo   ChatRepository
	users  user.UserRepository
	logger *zap.Logger
}

func NewChatController(repo ChatRepository, users user.UserRepository, logger *zap.Logger) *ChatController {
	return &ChatController{repo: repo, users: users, logger: logger}
}

// ListChats godoc
// @Summary List the caller's chats
// @Description Community chats the caller belongs to plus the rooms of every event they host or joined
// @Tags Chats
// @Produce json
// @Success 200 {object} responses.SuccessResponse{data=[]CommunityChat}
// @Router /chats [get]
// @Security BearerAuth
func (cc *ChatController) ListChats(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, err.Error())
		return
	}
	u, err := cc.users.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		responses.SendAppError(c, err)
		return
	}

	eventIDs := make([]string, 0, len(u.JoinedEventIDs)+len(u.HostedEventIDs))
	eventIDs = append(eventIDs, u.JoinedEventIDs...)
	eventIDs = append(eventIDs, u.HostedEventIDs...)

	chats, err := cc.repo.ListForUser(c.Request.Context(), userID, eventIDs)
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Chats retrieved successfully", chats)
}

// CreateChat godoc
// @Summary Start a community chat
// @Tags Chats
// @Accept json
// @Produce json
// @Param chat body CreateChatRequest true "Title and members"
// @Success 201 {object} responses.SuccessResponse{data=CommunityChat}
// @Failure 400 {object} responses.ErrorResponse
// @Router /chats [post]
// @Security BearerAuth
func (cc *ChatController) CreateChat(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, err.Error())
		return
	}
	var req CreateChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ValidationFailed(c, validator.ParseError(err))
		return
	}

	room, err := cc.repo.CreateCommunity(c.Request.Context(), userID, req.Title, req.MemberIDs)
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusCreated, "Chat created successfully", room)
}

// GetMessages godoc
// @Summary List a chat's messages, oldest first
// @Tags Chats
// @Produce json
// @Param chat_id path string true "Chat ID"
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {object} responses.PaginatedResponse{data=[]ChatMessage}
// @Failure 403 {object} responses.ErrorResponse "Not a member"
// @Failure 404 {object} responses.ErrorResponse "Chat not found"
// @Router /chats/{chat_id}/messages [get]
// @Security BearerAuth
func (cc *ChatController) GetMessages(c *gin.Context) {
	room, userID, ok := cc.authorize(c)
	if !ok {
		return
	}
	page, pageSize := responses.PageParams(c)
	messages, total, err := cc.repo.Messages(c.Request.Context(), room.ID, page, pageSize)
	if err != nil {
		cc.logger.Error("failed to list messages", zap.String("chat_id", room.ID), zap.String("user_id", userID), zap.Error(err))
		responses.SendAppError(c, err)
		return
	}
	responses.SendPaginated(c, http.StatusOK, "Messages retrieved successfully", messages, total, page, pageSize)
}

// PostMessage godoc
// @Summary Send a message to a chat
// @Tags Chats
// @Accept json
// @Produce json
// @Param chat_id path string true "Chat ID"
// @Param message body PostMessageRequest true "Message"
// @Success 201 {object} responses.SuccessResponse{data=ChatMessage}
// @Failure 403 {object} responses.ErrorResponse "Not a member"
// @Router /chats/{chat_id}/messages [post]
// @Security BearerAuth
func (cc *ChatController) PostMessage(c *gin.Context) {
	room, userID, ok := cc.authorize(c)
	if !ok {
		return
	}
	var req PostMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ValidationFailed(c, validator.ParseError(err))
		return
	}
	sender, err := cc.users.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		responses.SendAppError(c, err)
		return
	}

	msg := &ChatMessage{
		ChatID:     room.ID,
		SenderID:   userID,
		SenderName: sender.FullName,
		Text:       req.Text,
	}
	if err := cc.repo.PostMessage(c.Request.Context(), msg); err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusCreated, "Message sent", msg)
}

// authorize loads the chat named in the path and checks that the caller belongs to it.
func (cc *ChatController) authorize(c *gin.Context) (*CommunityChat, string, bool) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, err.Error())
		return nil, "", false
	}
	room, err := cc.repo.GetChat(c.Request.Context(), c.Param("chat_id"))
	if err != nil {
		responses.SendAppError(c, err)
		return nil, "", false
	}
	member, err := cc.repo.IsMember(c.Request.Context(), room, userID)
	if err != nil {
		responses.SendAppError(c, err)
		return nil, "", false
	}
	if !member {
		responses.Forbidden(c, "You are not a member of this chat")
		return nil, "", false
	}
	return room, userID, true
}
