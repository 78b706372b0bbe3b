package handler

import (
	"context"
	"io"
	"strings"

	"github.com/labstack/echo/v4"

	"dinereserve/internal/domain/entity"
	"dinereserve/internal/usecase"
	"dinereserve/pkg/errors"
	"dinereserve/pkg/logger"
	"dinereserve/pkg/response"
	"dinereserve/pkg/utils"
)

const maxProofSize = 5 << 20

var allowedProofTypes = map[string]bool{
	"image/jpeg":      true,
	"image/jpg":       true,
	"image/png":       true,
	"image/webp":      true,
	"application/pdf": true,
}

// ProofStorage keeps uploaded payment proofs.
type ProofStorage interface {
	UploadPaymentProof(ctx context.Context, reservationID string, file io.Reader, contentType string) (string, error)
	DeleteFile(ctx context.Context, fileURL string) error
}

type ReservationHandler struct {
	reservationUseCase *usecase.ReservationUseCase
	proofStorage       ProofStorage
}

func NewReservationHandler(reservationUseCase *usecase.ReservationUseCase, proofStorage ProofStorage) *ReservationHandler {
	return &ReservationHandler{
		reservationUseCase: reservationUseCase,
		proofStorage:       proofStorage,
	}
}

type preOrderedItemRequest struct {
	ItemID    string  `json:"item_id" validate:"required"`
	Name      string  `json:"name" validate:"required"`
	UnitPrice float64 `json:"unit_price" validate:"gte=0"`
	Quantity  int     `json:"quantity" validate:"min=1"`
}

type submitReservationRequest struct {
	RestaurantID      string                  `json:"restaurant_id" validate:"required"`
	Date              string                  `json:"date" validate:"required"`
	Time              string                  `json:"time" validate:"required"`
	PartySize         int                     `json:"party_size" validate:"min=1"`
	SeatingArea       string                  `json:"seating_area"`
	PreOrderedItems   []preOrderedItemRequest `json:"pre_ordered_items" validate:"dive"`
	DownPaymentAmount float64                 `json:"down_payment_amount" validate:"gte=0"`
	SpecialRequests   string                  `json:"special_requests"`
	ContactName       string                  `json:"contact_name"`
	ContactPhone      string                  `json:"contact_phone"`
	ContactEmail      string                  `json:"contact_email"`
}

func (h *ReservationHandler) SubmitReservation(c echo.Context) error {
	var req submitReservationRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	items := make([]usecase.PreOrderedItemInput, 0, len(req.PreOrderedItems))
	for _, item := range req.PreOrderedItems {
		items = append(items, usecase.PreOrderedItemInput{
			ItemID:    item.ItemID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		})
	}

	reservation, err := h.reservationUseCase.SubmitReservation(c.Request().Context(), userID, req.RestaurantID, usecase.CreateReservationInput{
		Date:              req.Date,
		Time:              req.Time,
		PartySize:         req.PartySize,
		SeatingArea:       entity.SeatingArea(req.SeatingArea),
		PreOrderedItems:   items,
		DownPaymentAmount: req.DownPaymentAmount,
		SpecialRequests:   req.SpecialRequests,
		ContactName:       req.ContactName,
		ContactPhone:      req.ContactPhone,
		ContactEmail:      req.ContactEmail,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, reservation)
}

func (h *ReservationHandler) ListMyReservations(c echo.Context) error {
	userID := c.Get("uid").(string)
	pagination := utils.GetPaginationParams(c)

	reservations, total, err := h.reservationUseCase.ListGuestReservations(
		c.Request().Context(),
		userID,
		entity.ReservationStatus(c.QueryParam("status")),
		pagination.Page,
		pagination.PageSize,
	)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, reservations, total, pagination.Page, pagination.PageSize)
}

func (h *ReservationHandler) GetReservation(c echo.Context) error {
	userID := c.Get("uid").(string)

	reservation, err := h.reservationUseCase.GetReservation(c.Request().Context(), c.Param("id"), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, reservation)
}

type cancelReservationRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

func (h *ReservationHandler) CancelReservation(c echo.Context) error {
	var req cancelReservationRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	reservation, err := h.reservationUseCase.GuestCancel(c.Request().Context(), c.Param("id"), userID, req.Reason)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, reservation)
}

type paymentProofRequest struct {
	ProofURL string `json:"proof_url" validate:"required,url"`
}

// SubmitPaymentProof accepts either a JSON body carrying an already hosted
// proof URL or a multipart upload in the "file" field.
func (h *ReservationHandler) SubmitPaymentProof(c echo.Context) error {
	reservationID := c.Param("id")
	userID := c.Get("uid").(string)
	ctx := c.Request().Context()

	if !strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		var req paymentProofRequest
		if err := c.Bind(&req); err != nil {
			return response.Error(c, errors.BadRequest("Invalid request body", err))
		}
		if err := c.Validate(&req); err != nil {
			return response.Error(c, err)
		}

		reservation, err := h.reservationUseCase.SubmitPaymentProof(ctx, reservationID, userID, req.ProofURL)
		if err != nil {
			return response.Error(c, err)
		}
		return response.Success(c, reservation)
	}

	if h.proofStorage == nil {
		return response.Error(c, errors.BadRequest("File uploads are not enabled", nil))
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return response.Error(c, errors.BadRequest("file is required", err))
	}
	if fileHeader.Size > maxProofSize {
		return response.Error(c, errors.Validation("file must be at most 5MB", nil))
	}
	contentType := fileHeader.Header.Get(echo.HeaderContentType)
	if !allowedProofTypes[contentType] {
		return response.Error(c, errors.Validation("file must be a JPEG, PNG, WEBP image or a PDF", nil))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return response.Error(c, errors.BadRequest("Failed to read file", err))
	}
	defer file.Close()

	proofURL, err := h.proofStorage.UploadPaymentProof(ctx, reservationID, file, contentType)
	if err != nil {
		return response.Error(c, errors.Internal("Failed to upload payment proof", err))
	}

	reservation, err := h.reservationUseCase.SubmitPaymentProof(ctx, reservationID, userID, proofURL)
	if err != nil {
		if delErr := h.proofStorage.DeleteFile(ctx, proofURL); delErr != nil {
			logger.SideEffectFailed("payment_proof_cleanup", reservationID, delErr)
		}
		return response.Error(c, err)
	}

	return response.Success(c, reservation)
}

func (h *ReservationHandler) ListRestaurantReservations(c echo.Context) error {
	userID := c.Get("uid").(string)
	pagination := utils.GetPaginationParams(c)

	reservations, total, err := h.reservationUseCase.ListRestaurantReservations(
		c.Request().Context(),
		c.Param("restaurantId"),
		userID,
		entity.ReservationStatus(c.QueryParam("status")),
		pagination.Page,
		pagination.PageSize,
	)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, reservations, total, pagination.Page, pagination.PageSize)
}

type decisionRequest struct {
	Decision string `json:"decision" validate:"required,oneof=approve reject"`
}

func (h *ReservationHandler) OwnerDecide(c echo.Context) error {
	var req decisionRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	reservation, err := h.reservationUseCase.OwnerDecide(c.Request().Context(), c.Param("id"), userID, usecase.Decision(req.Decision))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, reservation)
}

type closeOutRequest struct {
	Action string `json:"action" validate:"required,oneof=complete cancel"`
	Reason string `json:"reason" validate:"max=500"`
}

func (h *ReservationHandler) OwnerCloseOut(c echo.Context) error {
	var req closeOutRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	reservation, err := h.reservationUseCase.OwnerCloseOut(c.Request().Context(), c.Param("id"), userID, usecase.CloseOutAction(req.Action), req.Reason)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, reservation)
}

type verifyPaymentRequest struct {
	Accepted *bool `json:"accepted" validate:"required"`
}

func (h *ReservationHandler) VerifyPayment(c echo.Context) error {
	var req verifyPaymentRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	adminID := c.Get("uid").(string)

	reservation, err := h.reservationUseCase.AdminVerifyPayment(c.Request().Context(), c.Param("id"), adminID, *req.Accepted)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, reservation)
}
