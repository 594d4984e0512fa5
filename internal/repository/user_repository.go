package repository

import (
	"context"

	"techgear/internal/domain/model"
)

// ユーザーの保存・取得を約束
type UserRepository interface {
	//新規ユーザー作成（メール重複はErrConflict）
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, userID int64) (model.User, error)
	FindByEmail(ctx context.Context, email string) (model.User, error)
	// ユーザー行をFOR UPDATEで取得する。同じユーザーのカート操作を直列にするために使う。
	LockByID(ctx context.Context, userID int64) (model.User, error)
}
