package daifugo

import "unicode/utf8"

// Tone 机器人性格（只影响台词）
type Tone string

const (
	ToneSerious Tone = "真面目くん"
	ToneQuirky  Tone = "不思議ちゃん"
	ToneMean    Tone = "いじわる"
)

// Difficulty 机器人难度
type Difficulty string

const (
	DifficultyWeak   Difficulty = "弱い"
	DifficultyNormal Difficulty = "ふつう"
	DifficultyStrong Difficulty = "強い"
)

// 机器人默认设置
const (
	DefaultTone            = ToneMean
	DefaultDifficulty      = DifficultyNormal
	MaxDisplayNameRunes    = 32
	FallbackBotDisplayName = "イジヒコ"
)

// ParseTone 校验性格
func ParseTone(s string) (Tone, error) {
	switch t := Tone(s); t {
	case ToneSerious, ToneQuirky, ToneMean:
		return t, nil
	}
	return "", ErrInvalidTone.WithContext("tone", s)
}

// ParseDifficulty 校验难度
func ParseDifficulty(s string) (Difficulty, error) {
	switch d := Difficulty(s); d {
	case DifficultyWeak, DifficultyNormal, DifficultyStrong:
		return d, nil
	}
	return "", ErrInvalidDifficulty.WithContext("difficulty", s)
}

// TruncateDisplayName 截断显示名
func TruncateDisplayName(name string) string {
	if utf8.RuneCountInString(name) <= MaxDisplayNameRunes {
		return name
	}
	return string([]rune(name)[:MaxDisplayNameRunes])
}

// Player 座位上的玩家
type Player struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	DisplayName  string     `json:"display_name,omitempty"`
	IsBot        bool       `json:"is_bot"`
	Tone         Tone       `json:"tone,omitempty"`
	Difficulty   Difficulty `json:"difficulty,omitempty"`
	TakenOver    bool       `json:"taken_over,omitempty"`
	ContactEmail string     `json:"-"`
	ContactPhone string     `json:"-"`
}

// NewHuman 创建真人玩家
func NewHuman(id, name string) *Player {
	return &Player{ID: id, Name: name}
}

// NewBot 创建机器人
func NewBot(id, name, displayName string, tone Tone, difficulty Difficulty) *Player {
	if tone == "" {
		tone = DefaultTone
	}
	if difficulty == "" {
		difficulty = DefaultDifficulty
	}
	return &Player{
		ID:          id,
		Name:        name,
		DisplayName: TruncateDisplayName(displayName),
		IsBot:       true,
		Tone:        tone,
		Difficulty:  difficulty,
	}
}

// Label 对外显示的名字
func (p *Player) Label() string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	return p.Name
}

// HasContact 是否配置了联系方式
func (p *Player) HasContact() bool {
	return p.ContactEmail != "" || p.ContactPhone != ""
}

// IsOriginalBot 是否为原生机器人（不是代管中的真人）
func (p *Player) IsOriginalBot() bool {
	return p.IsBot && !p.TakenOver
}
