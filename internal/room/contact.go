package room

import (
	"fmt"

	"sudooom.daifugo/internal/game/daifugo"
)

// 通知原因
const (
	ReasonTakeover = "takeover"
	ReasonRelease  = "release"
)

// ContactNotice 发给玩家联系方式的通知
type ContactNotice struct {
	RoomID   string `json:"room_id"`
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Reason   string `json:"reason"`
	Subject  string `json:"subject"`
	Body     string `json:"body"`
}

// newContactNotice 生成代管开始 / 结束通知，没有联系方式时返回 false
func newContactNotice(roomID string, p *daifugo.Player, reason string) (ContactNotice, bool) {
	if !p.HasContact() {
		return ContactNotice{}, false
	}
	n := ContactNotice{
		RoomID:   roomID,
		PlayerID: p.ID,
		Name:     p.Name,
		Email:    p.ContactEmail,
		Phone:    p.ContactPhone,
		Reason:   reason,
	}
	switch reason {
	case ReasonTakeover:
		n.Subject = fmt.Sprintf("ゲーム代行開始のお知らせ（ルーム %s）", roomID)
		n.Body = fmt.Sprintf("%s 様\n\n大富豪のプレイ中に接続が途切れたため、代行ボットがあなたの代わりにプレイしています。\nルームID: %s\n\n再接続すると自動的に操作権が戻ります。", p.Name, roomID)
	default:
		n.Subject = fmt.Sprintf("ゲーム操作の復帰のお知らせ（ルーム %s）", roomID)
		n.Body = fmt.Sprintf("%s 様\n\n接続が復帰したため、ゲーム操作をあなたに戻しました。\nルームID: %s\n\n引き続きゲームをお楽しみください。", p.Name, roomID)
	}
	return n, true
}
