package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/emrekaya/classline/internal/app/models"
	"github.com/emrekaya/classline/internal/app/models/dto"
	"github.com/emrekaya/classline/internal/app/services"
	"github.com/emrekaya/classline/internal/middleware"
	"github.com/emrekaya/classline/internal/pkg/helpers"
)

// ConversationController handles school to guardian messaging
type ConversationController struct {
	messagingService services.MessagingService
	logger           zerolog.Logger
}

// NewConversationController creates a new ConversationController
func NewConversationController(messagingService services.MessagingService, logger zerolog.Logger) *ConversationController {
	return &ConversationController{
		messagingService: messagingService,
		logger:           logger,
	}
}

// Create starts a conversation toward an audience
// @Summary Start a conversation
// @Description Resolves the audience (a class or a single student) to the active guardian accounts and atomically creates the conversation, its participants and the first message. Staff only.
// @Tags conversations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateConversationRequest true "Audience and first message"
// @Success 201 {object} dto.APIResponse{data=dto.CreateConversationResponse} "Conversation created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 403 {object} dto.ErrorResponse "Permission denied"
// @Failure 404 {object} dto.ErrorResponse "Audience target not found"
// @Failure 422 {object} dto.ErrorResponse "Audience has no active recipients"
// @Router /conversations [post]
func (c *ConversationController) Create(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	var req dto.CreateConversationRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	audience := services.Audience{
		Type:     models.AudienceType(req.AudienceType),
		TargetID: req.TargetID,
	}

	conversationID, err := c.messagingService.CreateConversation(ctx.Request.Context(), actor, audience, req.Subject, req.Body)
	if err != nil {
		c.logger.Warn().Err(err).
			Str("audienceType", req.AudienceType).
			Int64("targetId", req.TargetID).
			Msg("Conversation creation failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.CreateConversationResponse{ConversationID: conversationID}))
}

// List returns the caller's conversations
// @Summary List conversations
// @Description Lists the conversations the caller participates in, newest activity first, with an unread marker per conversation.
// @Tags conversations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.ConversationListResponse} "Conversations"
// @Router /conversations [get]
func (c *ConversationController) List(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	conversations, err := c.messagingService.ListConversations(ctx.Request.Context(), actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.ConversationListResponse{Conversations: conversations}))
}

// Get returns one conversation with its messages
// @Summary Get a conversation
// @Description Returns a conversation the caller participates in, with participants and a page of messages. Older pages are fetched with the before cursor.
// @Tags conversations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Conversation ID"
// @Param before query string false "Return messages created before this RFC 3339 timestamp"
// @Param limit query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.ConversationDetailResponse} "Conversation"
// @Failure 403 {object} dto.ErrorResponse "No access to this conversation"
// @Router /conversations/{id} [get]
func (c *ConversationController) Get(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	conversationID, ok := helpers.ParseIDParam(ctx, "id")
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid conversation identifier")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	var before *time.Time
	if raw := ctx.Query("before"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid before cursor")
			errorDetail = errorDetail.WithDetails("Cursor must be an RFC 3339 timestamp")
			ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
			return
		}
		before = &parsed
	}

	resp, err := c.messagingService.GetConversation(ctx.Request.Context(), actor, conversationID, before, helpers.ParseLimit(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// PostMessage appends a message to a conversation
// @Summary Post a message
// @Description Appends a message to an open conversation the caller participates in and marks the conversation read for the sender.
// @Tags conversations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Conversation ID"
// @Param request body dto.CreateMessageRequest true "Message body"
// @Success 201 {object} dto.APIResponse{data=dto.CreateMessageResponse} "Message posted"
// @Failure 403 {object} dto.ErrorResponse "No access to this conversation"
// @Failure 409 {object} dto.ErrorResponse "Conversation is closed"
// @Router /conversations/{id}/messages [post]
func (c *ConversationController) PostMessage(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	conversationID, ok := helpers.ParseIDParam(ctx, "id")
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid conversation identifier")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	var req dto.CreateMessageRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	messageID, err := c.messagingService.PostMessage(ctx.Request.Context(), actor, conversationID, req.Body)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.CreateMessageResponse{MessageID: messageID}))
}

// MarkRead records that the caller has read the conversation
// @Summary Mark a conversation read
// @Description Records the caller's read position. Calling it again later never moves the position backwards.
// @Tags conversations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Conversation ID"
// @Success 200 {object} dto.APIResponse{data=dto.MessageResponse} "Conversation marked read"
// @Failure 403 {object} dto.ErrorResponse "No access to this conversation"
// @Router /conversations/{id}/read [post]
func (c *ConversationController) MarkRead(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	conversationID, ok := helpers.ParseIDParam(ctx, "id")
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid conversation identifier")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	if err := c.messagingService.MarkRead(ctx.Request.Context(), actor, conversationID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.MessageResponse{Message: "Conversation marked read"}))
}

// SetStatus opens or closes a conversation
// @Summary Change conversation status
// @Description Closes a conversation to further replies or reopens it. Staff participants only.
// @Tags conversations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Conversation ID"
// @Param request body dto.SetStatusRequest true "New status"
// @Success 200 {object} dto.APIResponse{data=dto.MessageResponse} "Status changed"
// @Failure 403 {object} dto.ErrorResponse "Permission denied or no access"
// @Router /conversations/{id}/status [put]
func (c *ConversationController) SetStatus(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	conversationID, ok := helpers.ParseIDParam(ctx, "id")
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid conversation identifier")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	var req dto.SetStatusRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	if err := c.messagingService.SetStatus(ctx.Request.Context(), actor, conversationID, models.ConversationStatus(req.Status)); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.MessageResponse{Message: "Status changed"}))
}
