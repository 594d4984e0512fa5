package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"techgear/internal/domain/model"
	repo "techgear/internal/repository"

	"github.com/labstack/echo/v4"
)

const CtxIdentityKey = "identity" // model.Identity

// トークンを検証してユーザーIDを返す約束
type TokenVerifier interface {
	Verify(raw string) (int64, error)
}

type UserFinder interface {
	FindByID(ctx context.Context, userID int64) (model.User, error)
}

// bearerAuth用のJWT検証ミドルウェア。
// トークンが正しくてもユーザーが存在しない・停止中なら通さない。
func AuthJWT(verifier TokenVerifier, users UserFinder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			//Authorizationヘッダを取得
			authz := c.Request().Header.Get("Authorization")
			if authz == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//Bearer形式か確認してtokenを抜く
			parts := strings.SplitN(authz, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}
			rawToken := strings.TrimSpace(parts[1])
			if rawToken == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//JWTを検証する
			userID, err := verifier.Verify(rawToken)
			if err != nil || userID <= 0 {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//ユーザーの状態を確認
			user, err := users.FindByID(c.Request().Context(), userID)
			if errors.Is(err, repo.ErrNotFound) {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}
			if errors.Is(err, repo.ErrBusy) {
				c.Response().Header().Set("Retry-After", "1")
				return c.JSON(http.StatusServiceUnavailable, errorJSON("service busy, please retry"))
			}
			if err != nil {
				return err
			}
			if !user.IsActive {
				return c.JSON(http.StatusForbidden, errorJSON("user is inactive"))
			}

			//contextへ保存
			c.Set(CtxIdentityKey, model.Identity{UserID: user.ID, IsAdmin: user.IsAdmin})

			return next(c)
		}
	}
}

// Identity はAuthJWTが保存した主体を取り出す。
func Identity(c echo.Context) (model.Identity, bool) {
	id, ok := c.Get(CtxIdentityKey).(model.Identity)
	if !ok || id.UserID <= 0 {
		return model.Identity{}, false
	}
	return id, true
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Error: msg}
}
