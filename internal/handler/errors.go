package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"techgear/internal/usecase"
	auth "techgear/internal/usecase/auth_usecase"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

// ドメインのエラー => HTTPステータス
var errorStatuses = []struct {
	target error
	status int
}{
	{usecase.ErrInvalidQuantity, http.StatusBadRequest},
	{usecase.ErrEmptyCart, http.StatusBadRequest},
	{usecase.ErrInsufficientStock, http.StatusBadRequest},
	{usecase.ErrProductNotFound, http.StatusNotFound},
	{usecase.ErrItemNotFound, http.StatusNotFound},
	{usecase.ErrOrderNotFound, http.StatusNotFound},
	{usecase.ErrCurrencyMismatch, http.StatusConflict},
	{usecase.ErrConflict, http.StatusConflict},
	{usecase.ErrUnauthenticated, http.StatusUnauthorized},
	{usecase.ErrForbidden, http.StatusForbidden},

	{auth.ErrInvalidEmailFormat, http.StatusBadRequest},
	{auth.ErrPasswordTooShort, http.StatusBadRequest},
	{auth.ErrWeakPassword, http.StatusBadRequest},
	{auth.ErrEmailAlreadyExists, http.StatusConflict},
	{auth.ErrInvalidCredentials, http.StatusUnauthorized},
	{auth.ErrUserInactive, http.StatusForbidden},
}

// usecaseのエラーをJSONにする。
// 5xxはログに出して、クライアントにはDBの中身を返さない。
func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, ErrorResponse{Error: he.Message})
	}
	for _, m := range errorStatuses {
		if errors.Is(err, m.target) {
			return c.JSON(m.status, ErrorResponse{Error: err.Error()})
		}
	}

	rid := c.Response().Header().Get(echo.HeaderXRequestID)

	//ロック待ち・タイムアウト
	if errors.Is(err, usecase.ErrBusy) {
		slog.WarnContext(c.Request().Context(), "store busy", slog.String("request_id", rid), slog.String("error", err.Error()))
		c.Response().Header().Set("Retry-After", "1")
		return c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "service busy, please retry"})
	}

	//500
	slog.ErrorContext(c.Request().Context(), "unhandled error",
		slog.String("request_id", rid),
		slog.String("path", c.Path()),
		slog.String("error", err.Error()),
	)
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
}
