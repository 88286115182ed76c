package daifugo

// step 按当前方向移动一个座位
func (t *Table) step(seat int) int {
	n := len(t.Players)
	if t.Direction == CounterClockwise {
		return (seat - 1 + n) % n
	}
	return (seat + 1) % n
}

// advance 移动到下一个仍有手牌的座位；全部走完一圈仍找不到时保持不变
func (t *Table) advance() {
	n := len(t.Players)
	if n == 0 {
		return
	}
	seat := t.CurrentTurn
	for range n {
		seat = t.step(seat)
		if len(t.Hands[t.Players[seat].ID]) > 0 {
			t.CurrentTurn = seat
			t.TurnStartedAt = t.now()
			return
		}
	}
}

// skipEmptyCurrent 当前座位被其他玩家的效果清空手牌时顺延
func (t *Table) skipEmptyCurrent() {
	cur := t.CurrentPlayer()
	if cur != nil && len(t.Hands[cur.ID]) == 0 {
		t.advance()
	}
}

// neighbor 从 seat 出发，沿 forward（true 为 +1）找到最近一个仍有手牌的其他座位
func (t *Table) neighbor(seat int, forward bool) int {
	n := len(t.Players)
	next := seat
	for range n - 1 {
		if forward {
			next = (next + 1) % n
		} else {
			next = (next - 1 + n) % n
		}
		if len(t.Hands[t.Players[next].ID]) > 0 {
			return next
		}
	}
	return -1
}
