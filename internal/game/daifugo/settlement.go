package daifugo

import (
	"fmt"
	"maps"
	"sort"
)

// 名次称号
var titles = map[int]string{
	1: "大富豪",
	2: "富豪",
	3: "平民",
	4: "貧民",
	5: "大貧民",
}

// 名次
const (
	RankDaifugo   = 1
	RankFugou     = 2
	RankHeimin    = 3
	RankHinmin    = 4
	RankDaihinmin = 5
)

// Title 名次对应的称号，5 名以后为 RankN
func Title(rank int) string {
	if t, ok := titles[rank]; ok {
		return t
	}
	return fmt.Sprintf("Rank%d", rank)
}

// Score 名次得分：max(0, 座位数 - 名次)
func Score(seats, rank int) int {
	return max(0, seats-rank)
}

// Result 一个座位的结算结果
type Result struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Rank     int    `json:"rank"`
	Title    string `json:"title"`
	Score    int    `json:"score"`
}

// finish 玩家出完手牌，确定名次
func (t *Table) finish(playerID string) {
	if _, ok := t.Finished[playerID]; ok {
		return
	}
	rank := t.NextRank
	t.Finished[playerID] = rank
	t.NextRank++
	t.out.record(Record{Kind: RecordPlayerFinished, PlayerID: playerID, Rank: rank})
	t.out.emit(EventPlayerFinished, map[string]any{"player_id": playerID, "rank": rank})
}

// settleIfFinished 所有手牌出完且已有名次时结束本局
func (t *Table) settleIfFinished() {
	if !t.Started || t.activeCount() > 0 || len(t.Finished) == 0 {
		return
	}

	// 被他人效果清空手牌的座位按座位顺序补排名次
	for _, p := range t.Players {
		if _, ok := t.Finished[p.ID]; !ok {
			t.finish(p.ID)
		}
	}

	results := t.results(t.Finished)
	t.Standing = maps.Clone(t.Finished)
	t.Started = false
	t.GameOver = true
	t.CurrentTurn = 0
	t.LastPlayer = ""
	t.ConsecutivePasses = 0
	t.PendingDiscard = nil
	t.PendingSwap = nil
	t.PendingTake = nil

	t.out.emit(EventGameFinished, map[string]any{"results": results})
	t.out.record(Record{Kind: RecordRoundFinished, Results: results})
}

// rotateStanding 两张 4 / 两张 A：大富豪降为最低名次，其余各升一级
//
// 没有上局名次或没有大富豪时不做任何处理。
// 名次改变后上局名次决定的交牌义务不再成立，全部取消。
func (t *Table) rotateStanding(actor string) {
	if len(t.Standing) == 0 {
		return
	}
	daifugo := ""
	lowest := 0
	for id, r := range t.Standing {
		if r == RankDaifugo {
			daifugo = id
		}
		lowest = max(lowest, r)
	}
	if daifugo == "" {
		return
	}

	next := make(map[string]int, len(t.Standing))
	for id, r := range t.Standing {
		if id == daifugo {
			next[id] = lowest
		} else {
			next[id] = max(1, r-1)
		}
	}
	t.Standing = next
	clear(t.PendingGive)

	results := t.results(next)
	t.out.emit(EventInstantGradeRotation, map[string]any{
		"by":           actor,
		"new_finished": maps.Clone(next),
		"titled":       results,
	})
	t.out.record(Record{Kind: RecordGradeRotation, PlayerID: actor, Results: results})
}

// results 按名次排序的结算结果
func (t *Table) results(ranks map[string]int) []Result {
	seats := len(t.Players)
	out := make([]Result, 0, len(ranks))
	for id, r := range ranks {
		name := id
		if p := t.Player(id); p != nil {
			name = p.Label()
		}
		out = append(out, Result{
			PlayerID: id,
			Name:     name,
			Rank:     r,
			Title:    Title(r),
			Score:    Score(seats, r),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rank != out[j].Rank {
			return out[i].Rank < out[j].Rank
		}
		return out[i].PlayerID < out[j].PlayerID
	})
	return out
}

// StandingResults 上局名次（含即时轮换后的结果）
func (t *Table) StandingResults() []Result {
	return t.results(t.Standing)
}
