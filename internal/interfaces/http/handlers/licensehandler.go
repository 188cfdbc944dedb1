package handlers

import (
	stderrors "errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/orris-inc/licensor/internal/application/auditlog"
	"github.com/orris-inc/licensor/internal/application/license/dto"
	"github.com/orris-inc/licensor/internal/application/license/usecases"
	"github.com/orris-inc/licensor/internal/shared/errors"
	"github.com/orris-inc/licensor/internal/shared/logger"
	"github.com/orris-inc/licensor/internal/shared/utils"
)

type LicenseHandler struct {
	verifyUC   verifyLicenseUseCase
	generateUC generateLicenseUseCase
	revokeUC   revokeLicenseUseCase
	renewUC    renewLicenseUseCase
	getUC      getLicenseUseCase
	auditUC    listLicenseAuditUseCase
	emailUC    sendLicenseEmailUseCase
	logger     logger.Interface
}

func NewLicenseHandler(
	verifyUC verifyLicenseUseCase,
	generateUC generateLicenseUseCase,
	revokeUC revokeLicenseUseCase,
	renewUC renewLicenseUseCase,
	getUC getLicenseUseCase,
	auditUC listLicenseAuditUseCase,
	emailUC sendLicenseEmailUseCase,
	logger logger.Interface,
) *LicenseHandler {
	return &LicenseHandler{
		verifyUC:   verifyUC,
		generateUC: generateUC,
		revokeUC:   revokeUC,
		renewUC:    renewUC,
		getUC:      getUC,
		auditUC:    auditUC,
		emailUC:    emailUC,
		logger:     logger,
	}
}

type VerifyLicenseRequest struct {
	Code     string `json:"code" binding:"required" validate:"notblank"`
	DeviceID string `json:"device_id" binding:"required" validate:"notblank,max=255"`
}

type GenerateLicenseRequest struct {
	PlanID string `json:"plan_id" binding:"required" validate:"notblank,max=64"`
	// ValidityDays omitted issues a perpetual license.
	ValidityDays *int `json:"validity_days" binding:"omitempty,gte=1"`
	// Quantity omitted issues a single license.
	Quantity *int `json:"quantity" binding:"omitempty,gte=1,lte=100" validate:"omitempty,gte=1,lte=100"`
}

type GenerateLicensesResponse struct {
	Licenses []*dto.LicenseRecord `json:"licenses"`
	Count    int                  `json:"count"`
}

type RevokeLicenseRequest struct {
	Reason string `json:"reason" validate:"max=255"`
}

type RevokeLicenseResponse struct {
	Revoked bool `json:"revoked"`
}

type RenewLicenseRequest struct {
	ValidityDays *int `json:"validity_days" binding:"omitempty,gte=1"`
}

type SendLicenseEmailRequest struct {
	Email string `json:"email" binding:"required" validate:"required,email"`
}

// @Summary		Verify license
// @Description	Verify a license code for a device, binding the device when a slot is free
// @Tags			licenses
// @Accept			json
// @Produce		json
// @Param			request	body		VerifyLicenseRequest						true	"Code and device"
// @Success		200		{object}	utils.APIResponse{data=dto.LicenseInfo}	"License granted"
// @Failure		400		{object}	utils.APIResponse						"Bad request"
// @Failure		403		{object}	utils.APIResponse						"Verification denied, error.type carries the reason"
// @Failure		429		{object}	utils.APIResponse						"Too many requests"
// @Failure		500		{object}	utils.APIResponse						"Internal server error"
// @Router			/licenses/verify [post]
func (h *LicenseHandler) VerifyLicense(c *gin.Context) {
	var req VerifyLicenseRequest
	if err := bindJSON(c, &req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.verifyUC.Execute(c.Request.Context(), usecases.VerifyLicenseCommand{
		Code:     req.Code,
		DeviceID: req.DeviceID,
		ClientIP: c.ClientIP(),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	if !result.Granted {
		utils.DeniedResponse(c, result.Reason.String(), result.Reason.Message())
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result.Info)
}

// @Summary		Generate licenses
// @Description	Issue one license, or quantity licenses (1-100) when quantity is set
// @Tags			licenses
// @Accept			json
// @Produce		json
// @Security		AdminToken
// @Security		Bearer
// @Param			request	body		GenerateLicenseRequest										true	"Plan and validity"
// @Success		201		{object}	utils.APIResponse{data=dto.LicenseRecord}					"Single license issued"
// @Success		201		{object}	utils.APIResponse{data=GenerateLicensesResponse}			"Batch issued"
// @Failure		400		{object}	utils.APIResponse											"Bad request"
// @Failure		401		{object}	utils.APIResponse											"Unauthorized"
// @Failure		500		{object}	utils.APIResponse											"Generation failed"
// @Router			/licenses [post]
func (h *LicenseHandler) GenerateLicense(c *gin.Context) {
	var req GenerateLicenseRequest
	if err := bindJSON(c, &req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	cmd := usecases.GenerateLicenseCommand{
		PlanID:       req.PlanID,
		ValidityDays: req.ValidityDays,
		ClientIP:     c.ClientIP(),
	}

	if req.Quantity == nil {
		record, err := h.generateUC.Execute(c.Request.Context(), cmd)
		if err != nil {
			h.logger.Errorw("failed to generate license", "plan_id", req.PlanID, "error", err)
			utils.ErrorResponseWithError(c, err)
			return
		}
		utils.CreatedResponse(c, record, "license generated")
		return
	}

	records, err := h.generateUC.ExecuteBatch(c.Request.Context(), cmd, *req.Quantity)
	if err != nil {
		h.logger.Errorw("failed to generate license batch",
			"plan_id", req.PlanID,
			"requested", *req.Quantity,
			"issued", len(records),
			"error", err,
		)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, GenerateLicensesResponse{Licenses: records, Count: len(records)}, "licenses generated")
}

// @Summary		Revoke license
// @Description	Deactivate a license. Unknown or already revoked codes report revoked=false.
// @Tags			licenses
// @Accept			json
// @Produce		json
// @Security		AdminToken
// @Security		Bearer
// @Param			code	path		string											true	"License code"
// @Param			request	body		RevokeLicenseRequest							false	"Revocation reason"
// @Success		200		{object}	utils.APIResponse{data=RevokeLicenseResponse}	"Revocation result"
// @Failure		400		{object}	utils.APIResponse								"Bad request"
// @Failure		401		{object}	utils.APIResponse								"Unauthorized"
// @Failure		500		{object}	utils.APIResponse								"Internal server error"
// @Router			/licenses/{code}/revoke [post]
func (h *LicenseHandler) RevokeLicense(c *gin.Context) {
	code, err := utils.ParseCodeParam(c, "code")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req RevokeLicenseRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	revoked, err := h.revokeUC.Execute(c.Request.Context(), usecases.RevokeLicenseCommand{
		Code:     code,
		ClientIP: c.ClientIP(),
		Reason:   req.Reason,
	})
	if err != nil {
		h.logger.Errorw("failed to revoke license", "code", utils.MaskCode(code), "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", RevokeLicenseResponse{Revoked: revoked})
}

// @Summary		Renew license
// @Description	Issue a replacement license on the same plan and revoke the old one
// @Tags			licenses
// @Accept			json
// @Produce		json
// @Security		AdminToken
// @Security		Bearer
// @Param			code	path		string										true	"License code"
// @Param			request	body		RenewLicenseRequest							false	"New validity"
// @Success		201		{object}	utils.APIResponse{data=dto.LicenseRecord}	"Replacement license"
// @Failure		401		{object}	utils.APIResponse							"Unauthorized"
// @Failure		404		{object}	utils.APIResponse							"License not found"
// @Failure		500		{object}	utils.APIResponse							"Internal server error"
// @Router			/licenses/{code}/renew [post]
func (h *LicenseHandler) RenewLicense(c *gin.Context) {
	code, err := utils.ParseCodeParam(c, "code")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req RenewLicenseRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	record, err := h.renewUC.Execute(c.Request.Context(), usecases.RenewLicenseCommand{
		Code:         code,
		ValidityDays: req.ValidityDays,
		ClientIP:     c.ClientIP(),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, record, "license renewed")
}

// @Summary		Get license
// @Tags			licenses
// @Produce		json
// @Security		AdminToken
// @Security		Bearer
// @Param			code	path		string										true	"License code"
// @Success		200		{object}	utils.APIResponse{data=dto.LicenseDetail}	"License detail"
// @Failure		404		{object}	utils.APIResponse							"License not found"
// @Router			/licenses/{code} [get]
func (h *LicenseHandler) GetLicense(c *gin.Context) {
	code, err := utils.ParseCodeParam(c, "code")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	detail, err := h.getUC.Execute(c.Request.Context(), code)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", detail)
}

// @Summary		List license audit entries
// @Description	Newest first
// @Tags			licenses
// @Produce		json
// @Security		AdminToken
// @Security		Bearer
// @Param			code	path		string											true	"License code"
// @Param			limit	query		int												false	"Maximum entries"	default(200)
// @Success		200		{object}	utils.APIResponse{data=[]dto.AuditEntryDTO}	"Audit entries"
// @Failure		400		{object}	utils.APIResponse								"Bad request"
// @Failure		404		{object}	utils.APIResponse								"License not found"
// @Router			/licenses/{code}/audit [get]
func (h *LicenseHandler) ListLicenseAudit(c *gin.Context) {
	code, err := utils.ParseCodeParam(c, "code")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	limit := auditlog.DefaultQueryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			utils.ErrorResponseWithError(c, errors.NewValidationError("limit must be a positive integer"))
			return
		}
		limit = n
	}

	entries, err := h.auditUC.Execute(c.Request.Context(), code, limit)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", entries)
}

// @Summary		Send license email
// @Description	Send the license notification for a code to an address
// @Tags			licenses
// @Accept			json
// @Produce		json
// @Security		AdminToken
// @Security		Bearer
// @Param			code	path		string					true	"License code"
// @Param			request	body		SendLicenseEmailRequest	true	"Recipient"
// @Success		200		{object}	utils.APIResponse		"Email sent"
// @Failure		400		{object}	utils.APIResponse		"Bad request"
// @Failure		404		{object}	utils.APIResponse		"License not found"
// @Failure		500		{object}	utils.APIResponse		"Delivery failed"
// @Router			/licenses/{code}/email [post]
func (h *LicenseHandler) SendLicenseEmail(c *gin.Context) {
	code, err := utils.ParseCodeParam(c, "code")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req SendLicenseEmailRequest
	if err := bindJSON(c, &req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	if err := h.emailUC.Execute(c.Request.Context(), usecases.SendLicenseEmailCommand{
		Code:  code,
		Email: req.Email,
	}); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "license email sent", nil)
}

func bindJSON(c *gin.Context, target interface{}) error {
	if err := c.ShouldBindJSON(target); err != nil {
		return errors.NewValidationError("invalid request body", err.Error())
	}
	return utils.ValidateStruct(target)
}

// bindOptionalJSON accepts an empty body.
func bindOptionalJSON(c *gin.Context, target interface{}) error {
	if err := c.ShouldBindJSON(target); err != nil && !stderrors.Is(err, io.EOF) {
		return errors.NewValidationError("invalid request body", err.Error())
	}
	return utils.ValidateStruct(target)
}
