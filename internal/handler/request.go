package handler

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"go-inventory-ledger/internal/apperror"
	"go-inventory-ledger/internal/middleware"
	"go-inventory-ledger/pkg/validator"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FlexInt decodes a JSON number or a numeric string such as "3". Values
// outside the int32 range are rejected.
type FlexInt int

func (n *FlexInt) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		unquoted, err := strconv.Unquote(s)
		if err != nil {
			return errInvalidQuantity
		}
		s = strings.TrimSpace(unquoted)
	}

	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		if v > math.MaxInt32 || v < math.MinInt32 {
			return errQuantityRange
		}
		*n = FlexInt(v)
		return nil
	} else if errors.Is(err, strconv.ErrRange) {
		return errQuantityRange
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) {
		return errInvalidQuantity
	}
	if math.Abs(f) > math.MaxInt32 {
		return errQuantityRange
	}
	*n = FlexInt(int(f))
	return nil
}

var (
	errInvalidQuantity = apperror.New(apperror.ErrInvalidInput, "Quantity must be an integer")
	errQuantityRange   = apperror.New(apperror.ErrInvalidInput, "Quantity is out of range")
)

type CreateItemRequest struct {
	Description string   `json:"description" validate:"required"`
	Quantity    *FlexInt `json:"quantity"`
}

// TransactionRequest serves /api/transaction/:kind, which names the item
// in item_description, and the loan routes, which use description.
type TransactionRequest struct {
	ItemDescription string   `json:"item_description"`
	Description     string   `json:"description"`
	Quantity        *FlexInt `json:"quantity"`
}

func (r TransactionRequest) item() string {
	if r.ItemDescription != "" {
		return r.ItemDescription
	}
	return r.Description
}

type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// parseBody decodes the JSON body into out and runs struct validation.
func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		var appErr *apperror.Error
		if errors.As(err, &appErr) {
			return appErr
		}
		return apperror.Wrap(apperror.ErrInvalidInput, err, "Invalid JSON")
	}
	if errs := validator.ValidateStruct(out); len(errs) > 0 {
		return apperror.New(apperror.ErrInvalidInput, validator.Message(errs))
	}
	return nil
}

func actorID(c *fiber.Ctx) (uuid.UUID, error) {
	id, ok := c.Locals(middleware.LocalUserID).(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, apperror.New(apperror.ErrUnauthorized, "Authentication required")
	}
	return id, nil
}

// respondError writes {"error": message} with the status of err's kind.
// Server-side failures are logged with their cause.
func respondError(c *fiber.Ctx, log *zap.Logger, err error) error {
	status := apperror.HTTPStatus(err)
	// ledger failures are already logged with item details by the service
	ledgerFault := errors.Is(err, apperror.ErrIntegrityViolation) || errors.Is(err, apperror.ErrQuantityOverflow)
	if status >= fiber.StatusInternalServerError && !ledgerFault {
		log.Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
	}
	return c.Status(status).JSON(fiber.Map{"error": apperror.Message(err)})
}
