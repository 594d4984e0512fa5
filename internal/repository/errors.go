package repository

import "errors"

var (
	// 対象の行がない
	ErrNotFound = errors.New("not found")
	// 一意制約違反
	ErrConflict = errors.New("conflict")
	// 外部キーの参照先がない
	ErrReference = errors.New("invalid reference")
	// ロック待ちのタイムアウト・デッドロック・直列化失敗など。再送すれば通る可能性がある。
	ErrBusy = errors.New("store busy")
)
