package usecase

import "context"

// 決済プロバイダ側で作成されたpayment intent。
// ClientSecret はフロントに渡す不透明トークン。
type PaymentIntent struct {
	ID           string
	ClientSecret string
}

// 検証済みWebhookイベント。
// OrderID / UserID はチェックアウト時にintentへ載せたmetadata由来。
type PaymentEvent struct {
	Type    string
	OrderID int64
	UserID  int64
}

// 外部決済プロバイダとの窓口。
type PaymentGateway interface {
	//amount は最小通貨単位の整数額
	CreateIntent(ctx context.Context, amount int64, metadata map[string]string) (PaymentIntent, error)
	//生のpayloadと署名ヘッダからイベントを復元する。署名不正はエラー
	ConstructEvent(payload []byte, sigHeader string) (PaymentEvent, error)
}
