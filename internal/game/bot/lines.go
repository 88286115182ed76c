package bot

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"sudooom.daifugo/internal/game/daifugo"
)

//go:embed lines.yaml
var defaultLines []byte

// QA 问答对，消息中包含 Q 时可以回复 A
type QA struct {
	Q string `yaml:"q"`
	A string `yaml:"a"`
}

// ToneLines 某种性格的台词
type ToneLines struct {
	Pass   string   `yaml:"pass"`
	Played string   `yaml:"played"`
	Banter []string `yaml:"banter"`
}

// Lines 机器人台词与名字池
type Lines struct {
	Names    []string                   `yaml:"names"`
	PreThink []string                   `yaml:"pre_think"`
	PostPlay []string                   `yaml:"post_play"`
	Tones    map[daifugo.Tone]ToneLines `yaml:"tones"`
	QA       []QA                       `yaml:"qa"`
}

// ParseLines 解析 YAML 台词
func ParseLines(data []byte) (*Lines, error) {
	var l Lines
	if err := yaml.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("parse bot lines: %w", err)
	}
	// 空问题会匹配任何消息
	qa := l.QA[:0]
	for _, p := range l.QA {
		if strings.TrimSpace(p.Q) != "" && p.A != "" {
			qa = append(qa, p)
		}
	}
	l.QA = qa
	return &l, nil
}

// DefaultLines 内置台词
func DefaultLines() *Lines {
	l, err := ParseLines(defaultLines)
	if err != nil {
		panic(err)
	}
	return l
}

// Answers 返回所有问题出现在 text 中的回答（不区分大小写）
func (l *Lines) Answers(text string) []string {
	t := strings.ToLower(text)
	var out []string
	for _, p := range l.QA {
		if strings.Contains(t, strings.ToLower(p.Q)) {
			out = append(out, p.A)
		}
	}
	return out
}

func (l *Lines) tone(t daifugo.Tone) ToneLines {
	if tl, ok := l.Tones[t]; ok {
		return tl
	}
	return l.Tones[daifugo.DefaultTone]
}
