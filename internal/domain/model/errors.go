package model

import "errors"

var (
	// ErrRateLimited 検索APIがレート制限を返した
	ErrRateLimited = errors.New("検索APIのレート制限に達しました")
	// ErrInvalidCollectionRequest 地域名またはキーワードが指定されていない
	ErrInvalidCollectionRequest = errors.New("収集リクエストが不正です")
	// ErrRegionNotFound 指定された地域が存在しない
	ErrRegionNotFound = errors.New("地域が見つかりません")
	// ErrCollectionRunNotFound 指定された収集実行が存在しない
	ErrCollectionRunNotFound = errors.New("収集実行が見つかりません")
)
