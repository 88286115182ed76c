package bot

import (
	"math/rand"
	"sync"
	"time"

	"sudooom.daifugo/internal/game/daifugo"
)

// 自动回复限制
const (
	ReplyCooldown    = 3 * time.Second
	MaxReplyAttempts = 6
)

// replyChance 各难度的回复概率
var replyChance = map[daifugo.Difficulty]float64{
	daifugo.DifficultyWeak:   0.2,
	daifugo.DifficultyNormal: 0.6,
	daifugo.DifficultyStrong: 0.9,
}

// 台词话题
const (
	TopicThinking = "thinking"
	TopicPlayed   = "played"
	TopicPass     = "pass"
)

// Chatter 机器人台词生成器，可以并发使用
type Chatter struct {
	lines *Lines

	mu  sync.Mutex
	rng *rand.Rand
}

// NewChatter 创建台词生成器，rng 为 nil 时按时间播种
func NewChatter(lines *Lines, rng *rand.Rand) *Chatter {
	if lines == nil {
		lines = DefaultLines()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Chatter{lines: lines, rng: rng}
}

// Lines 当前使用的台词
func (c *Chatter) Lines() *Lines {
	return c.lines
}

// PreThink 思考中的台词
func (c *Chatter) PreThink(tone daifugo.Tone) string {
	if a, ok := c.answer(TopicThinking); ok {
		return a
	}
	pool := append(append([]string(nil), c.lines.PreThink...), c.lines.tone(tone).Banter...)
	return c.pick(pool, "……")
}

// PostPlay 出牌后的台词
func (c *Chatter) PostPlay(tone daifugo.Tone) string {
	if a, ok := c.answer(TopicPlayed); ok {
		return a
	}
	pool := append([]string(nil), c.lines.PostPlay...)
	if played := c.lines.tone(tone).Played; played != "" {
		pool = append(pool, played)
	}
	return c.pick(pool, "出したよ。")
}

// PassLine pass 时的台词
func (c *Chatter) PassLine(tone daifugo.Tone) string {
	if a, ok := c.answer(TopicPass); ok {
		return a
	}
	if line := c.lines.tone(tone).Pass; line != "" {
		return line
	}
	return "パス。"
}

// DisplayName 从名字池中选一个未被使用的名字
func (c *Chatter) DisplayName(used map[string]bool) string {
	var free []string
	for _, n := range c.lines.Names {
		if !used[n] {
			free = append(free, n)
		}
	}
	return c.pick(free, daifugo.FallbackBotDisplayName)
}

// Responder 可以自动回复的机器人
type Responder struct {
	ID         string
	Difficulty daifugo.Difficulty
}

// AutoReply 消息命中问答时挑选一个机器人回复
//
// 最多尝试 MaxReplyAttempts 次：随机选一个机器人，冷却中或没通过难度概率的机器人不再参与。
func (c *Chatter) AutoReply(text string, bots []Responder, lastReply map[string]time.Time, now time.Time) (Responder, string, bool) {
	answers := c.lines.Answers(text)
	if len(answers) == 0 || len(bots) == 0 {
		return Responder{}, "", false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	answer := answers[c.rng.Intn(len(answers))]
	candidates := append([]Responder(nil), bots...)
	for attempt := 0; attempt < MaxReplyAttempts && len(candidates) > 0; attempt++ {
		i := c.rng.Intn(len(candidates))
		bot := candidates[i]
		candidates = append(candidates[:i], candidates[i+1:]...)

		if last, ok := lastReply[bot.ID]; ok && now.Sub(last) < ReplyCooldown {
			continue
		}
		chance, ok := replyChance[bot.Difficulty]
		if !ok {
			chance = replyChance[daifugo.DefaultDifficulty]
		}
		if c.rng.Float64() <= chance {
			return bot, answer, true
		}
	}
	return Responder{}, "", false
}

func (c *Chatter) answer(topic string) (string, bool) {
	answers := c.lines.Answers(topic)
	if len(answers) == 0 {
		return "", false
	}
	return c.pick(answers, ""), true
}

func (c *Chatter) pick(pool []string, fallback string) string {
	if len(pool) == 0 {
		return fallback
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return pool[c.rng.Intn(len(pool))]
}
