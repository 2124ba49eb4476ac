package httpapi

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/PassItOnLabs/widget_svc/internal/model"
	"github.com/PassItOnLabs/widget_svc/internal/storage"
)

const (
	errorValueInvitationNotFound = "invitation_not_found"

	invitationEmailSubject = "You have been invited to a PassItOn organization"
)

// InvitationHandlers serves team invitation issuance and redemption.
type InvitationHandlers struct {
	database      *gorm.DB
	logger        *zap.Logger
	emailSender   EmailSender
	publicBaseURL string
}

// NewInvitationHandlers constructs InvitationHandlers.
func NewInvitationHandlers(database *gorm.DB, logger *zap.Logger, emailSender EmailSender, publicBaseURL string) *InvitationHandlers {
	return &InvitationHandlers{
		database:      database,
		logger:        logger,
		emailSender:   resolveEmailSender(emailSender),
		publicBaseURL: strings.TrimRight(strings.TrimSpace(publicBaseURL), "/"),
	}
}

type createInvitationRequest struct {
	OrganizationID string `json:"organizationId"`
	Email          string `json:"email"`
	Role           string `json:"role"`
}

// CreateInvitation handles POST /api/admin/invitations. A fresh random token
// is issued and mailed to the invitee; the invitation expires on its own if
// never redeemed.
func (h *InvitationHandlers) CreateInvitation(context *gin.Context) {
	var payload createInvitationRequest
	if bindErr := context.BindJSON(&payload); bindErr != nil {
		context.JSON(http.StatusBadRequest, gin.H{jsonKeyError: errorValueInvalidJSON})
		return
	}

	requestContext := context.Request.Context()

	var organization model.Organization
	if findErr := h.database.WithContext(requestContext).
		First(&organization, "id = ?", strings.TrimSpace(payload.OrganizationID)).Error; findErr != nil {
		context.JSON(http.StatusNotFound, gin.H{jsonKeyError: errorValueOrganizationNotFound})
		return
	}

	invitation, buildErr := model.NewTeamInvitation(model.TeamInvitationInput{
		ID:             storage.NewID(),
		OrganizationID: organization.ID,
		Email:          payload.Email,
		Role:           payload.Role,
		Token:          storage.NewID(),
	})
	if buildErr != nil {
		context.JSON(http.StatusBadRequest, gin.H{jsonKeyError: buildErr.Error()})
		return
	}

	if createErr := h.database.WithContext(requestContext).Create(&invitation).Error; createErr != nil {
		h.logger.Warn("save_invitation", zap.Error(createErr), zap.String("organization_id", organization.ID))
		context.JSON(http.StatusInternalServerError, gin.H{jsonKeyError: errorValueSaveFailed})
		return
	}

	acceptURL := fmt.Sprintf("%s/invitations/accept?token=%s", h.publicBaseURL, invitation.Token)
	message := fmt.Sprintf("%s invited you to join their team (%s role). Accept: %s",
		organization.PublicName(), invitation.Role, acceptURL)
	if sendErr := h.emailSender.SendEmail(requestContext, invitation.Email, invitationEmailSubject, message); sendErr != nil {
		h.logger.Warn("send_invitation_email", zap.Error(sendErr), zap.String("invitation_id", invitation.ID))
	}

	context.JSON(http.StatusCreated, invitation)
}

// ListInvitations handles GET /api/admin/organizations/:orgId/invitations.
func (h *InvitationHandlers) ListInvitations(context *gin.Context) {
	organizationID := strings.TrimSpace(context.Param("orgId"))

	var invitations []model.TeamInvitation
	if listErr := h.database.WithContext(context.Request.Context()).
		Where("organization_id = ?", organizationID).
		Order("created_at desc").Find(&invitations).Error; listErr != nil {
		h.logger.Warn("list_invitations", zap.Error(listErr), zap.String("organization_id", organizationID))
		context.JSON(http.StatusInternalServerError, gin.H{jsonKeyError: errorValueListFailed})
		return
	}
	context.JSON(http.StatusOK, invitations)
}

type acceptInvitationRequest struct {
	Token string `json:"token"`
}

// redeemToken drives the shared redemption flow. It returns the invitation,
// the HTTP status the caller should answer with, and a stable error value for
// non-200 outcomes.
func (h *InvitationHandlers) redeemToken(requestContext context.Context, token string) (model.TeamInvitation, int, string) {
	trimmedToken := strings.TrimSpace(token)
	if trimmedToken == "" {
		return model.TeamInvitation{}, http.StatusBadRequest, errorValueInvitationNotFound
	}

	var invitation model.TeamInvitation
	if findErr := h.database.WithContext(requestContext).
		First(&invitation, "token = ?", trimmedToken).Error; findErr != nil {
		return model.TeamInvitation{}, http.StatusNotFound, errorValueInvitationNotFound
	}

	if acceptErr := invitation.Accept(time.Now().UTC()); acceptErr != nil {
		return invitation, http.StatusConflict, acceptErr.Error()
	}

	if saveErr := h.database.WithContext(requestContext).Save(&invitation).Error; saveErr != nil {
		h.logger.Warn("save_invitation", zap.Error(saveErr), zap.String("invitation_id", invitation.ID))
		return invitation, http.StatusInternalServerError, errorValueSaveFailed
	}

	return invitation, http.StatusOK, ""
}

// AcceptInvitation handles POST /api/invitations/accept. The endpoint is
// public: invitees redeem the emailed token before they have any credential.
func (h *InvitationHandlers) AcceptInvitation(context *gin.Context) {
	var payload acceptInvitationRequest
	if bindErr := context.BindJSON(&payload); bindErr != nil {
		context.JSON(http.StatusBadRequest, gin.H{jsonKeyError: errorValueInvalidJSON})
		return
	}

	invitation, statusCode, errorValue := h.redeemToken(context.Request.Context(), payload.Token)
	if statusCode != http.StatusOK {
		context.JSON(statusCode, gin.H{jsonKeyError: errorValue})
		return
	}

	context.JSON(http.StatusOK, invitation)
}

type invitationResultData struct {
	Heading string
	Message string
}

// AcceptInvitationPage handles GET /invitations/accept?token=..., the exact
// URL the invitation email links to. Browsers land here, so the outcome is
// rendered as a plain HTML page instead of JSON.
func (h *InvitationHandlers) AcceptInvitationPage(context *gin.Context) {
	invitation, statusCode, errorValue := h.redeemToken(context.Request.Context(), context.Query("token"))

	data := invitationResultData{
		Heading: "Invitation accepted",
		Message: fmt.Sprintf("You have joined the team as %s.", invitation.Role),
	}
	switch errorValue {
	case "":
	case model.ErrInvitationExpired.Error():
		data = invitationResultData{
			Heading: "Invitation expired",
			Message: "This invitation is no longer redeemable. Ask your organization for a new one.",
		}
	case model.ErrInvitationNotPending.Error():
		data = invitationResultData{
			Heading: "Invitation already used",
			Message: "This invitation has already been redeemed.",
		}
	default:
		data = invitationResultData{
			Heading: "Invitation not found",
			Message: "This invitation link is not valid.",
		}
	}

	var buffer bytes.Buffer
	if renderErr := invitationResultTemplate.Execute(&buffer, data); renderErr != nil {
		h.logger.Warn("render_invitation_result", zap.Error(renderErr))
		context.JSON(http.StatusInternalServerError, gin.H{jsonKeyError: errorValueRenderFailed})
		return
	}
	context.Data(statusCode, contentTypeHTML, buffer.Bytes())
}
