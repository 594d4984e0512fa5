package usecase

import (
	"errors"
	"fmt"

	repo "techgear/internal/repository"
)

// カート・確定まわりのエラー。handlerがHTTPステータスに変換する。
// 呼び出し側で直せる（数量を変える・再送する）ものだけで、プロセスには影響しない。
var (
	ErrInvalidQuantity   = errors.New("quantity must be positive")
	ErrProductNotFound   = errors.New("product not found")
	ErrItemNotFound      = errors.New("item not found in cart")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrCurrencyMismatch  = errors.New("cart items must share one currency")
	ErrOrderNotFound     = errors.New("order not found")

	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("admin privileges required")
	ErrConflict        = errors.New("already exists")

	// ロック競合・タイムアウト
	ErrBusy = repo.ErrBusy
)

// 入力チェック用（ステータスをそのまま返す）
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}
