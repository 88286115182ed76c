package repository

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"sudooom.daifugo/internal/game/card"
	"sudooom.daifugo/internal/game/daifugo"
)

//go:embed schema.sql
var schema string

// 对局状态
const (
	GameStatusCreated  = "created"
	GameStatusFinished = "finished"
)

// 写入 events 表的事件类型
const (
	EventRoundFinished = "game_finished"
	EventRoundResults  = "round_results"
	EventGradeRotation = "grade_rotation"
)

// GameRepository 对局记录仓库
type GameRepository struct {
	db  *pgxpool.Pool
	now func() time.Time
}

// NewGameRepository 创建对局记录仓库
func NewGameRepository(db *pgxpool.Pool) *GameRepository {
	return &GameRepository{db: db, now: time.Now}
}

// EnsureSchema 创建缺失的表
func (r *GameRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// CreateGame 创建对局，已存在时重置为新建状态
func (r *GameRepository) CreateGame(ctx context.Context, roomID string) error {
	query := `
		INSERT INTO games (id, created_at, status, metadata)
		VALUES ($1, $2, $3, NULL)
		ON CONFLICT (id)
		DO UPDATE SET created_at = EXCLUDED.created_at, status = EXCLUDED.status, metadata = EXCLUDED.metadata
	`
	_, err := r.db.Exec(ctx, query, roomID, r.now(), GameStatusCreated)
	return err
}

// RegisterPlayers 登记座位，重复登记时更新名字
func (r *GameRepository) RegisterPlayers(ctx context.Context, roomID string, players []daifugo.Player) error {
	query := `
		INSERT INTO players (id, game_id, name, display_name, is_bot)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (game_id, id)
		DO UPDATE SET name = EXCLUDED.name, display_name = EXCLUDED.display_name, is_bot = EXCLUDED.is_bot
	`
	batch := &pgx.Batch{}
	for _, p := range players {
		batch.Queue(query, p.ID, roomID, p.Name, p.DisplayName, p.IsBot)
	}
	return r.db.SendBatch(ctx, batch).Close()
}

// RecordPlay 记录一张打出的牌
func (r *GameRepository) RecordPlay(ctx context.Context, roomID, playerID string, c card.Card) error {
	query := `INSERT INTO plays (game_id, player_id, card_text, ts, meta) VALUES ($1, $2, $3, $4, NULL)`
	_, err := r.db.Exec(ctx, query, roomID, playerID, c.String(), r.now())
	return err
}

// RecordPlayerFinished 记录玩家名次
func (r *GameRepository) RecordPlayerFinished(ctx context.Context, roomID, playerID string, rank int) error {
	query := `UPDATE players SET finished_rank = $1 WHERE id = $2 AND game_id = $3`
	_, err := r.db.Exec(ctx, query, rank, playerID, roomID)
	return err
}

// RecordRoundFinished 记录一局结束：写入最终名次并标记对局结束
func (r *GameRepository) RecordRoundFinished(ctx context.Context, roomID string, results []daifugo.Result) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		for _, res := range results {
			if _, err := tx.Exec(ctx, `UPDATE players SET finished_rank = $1 WHERE id = $2 AND game_id = $3`,
				res.Rank, res.PlayerID, roomID); err != nil {
				return err
			}
		}
		if _, err := tx.Exec(ctx, `UPDATE games SET status = $1 WHERE id = $2`, GameStatusFinished, roomID); err != nil {
			return err
		}
		return r.insertEvent(ctx, tx, roomID, EventRoundFinished, map[string]any{"results": results})
	})
}

// RecordRoundResultsWithScoring 按名次累加得分：max(0, 座位数 - 名次)
func (r *GameRepository) RecordRoundResultsWithScoring(ctx context.Context, roomID string, results []daifugo.Result) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		for _, res := range results {
			points := daifugo.Score(len(results), res.Rank)
			if _, err := tx.Exec(ctx, `UPDATE players SET score = COALESCE(score, 0) + $1 WHERE id = $2 AND game_id = $3`,
				points, res.PlayerID, roomID); err != nil {
				return err
			}
		}
		return r.insertEvent(ctx, tx, roomID, EventRoundResults, map[string]any{"results": results})
	})
}

// RecordGradeRotation 记录即时等级轮换
func (r *GameRepository) RecordGradeRotation(ctx context.Context, roomID, actor string, results []daifugo.Result) error {
	return r.insertEvent(ctx, r.db, roomID, EventGradeRotation, map[string]any{
		"actor":   actor,
		"results": results,
	})
}

// AddMessage 记录聊天消息
func (r *GameRepository) AddMessage(ctx context.Context, roomID, playerID, name, text string, ts time.Time) error {
	query := `INSERT INTO messages (game_id, player_id, name, text, ts) VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.Exec(ctx, query, roomID, nullable(playerID), nullable(name), text, ts)
	return err
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func (r *GameRepository) insertEvent(ctx context.Context, db execer, roomID, eventType string, payload map[string]any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	_, err = db.Exec(ctx, `INSERT INTO events (game_id, type, payload, ts) VALUES ($1, $2, $3, $4)`,
		roomID, eventType, data, r.now())
	return err
}

// nullable 空字符串写入 NULL（系统消息没有玩家）
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
