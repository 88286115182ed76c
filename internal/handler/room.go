package handler

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	"sudooom.daifugo/internal/game/card"
	"sudooom.daifugo/internal/room"
	appErrors "sudooom.daifugo/pkg/errors"
	"sudooom.daifugo/pkg/response"
)

// defaultPlayerName 未填写名字时使用的名字
const defaultPlayerName = "Player"

// RoomHandler 房间接口
type RoomHandler struct {
	service *room.Service
	logger  *slog.Logger
}

// NewRoomHandler 创建房间处理器
func NewRoomHandler(service *room.Service) *RoomHandler {
	return &RoomHandler{
		service: service,
		logger:  slog.Default().With("component", "RoomHandler"),
	}
}

// ============== 请求结构 ==============

// PlayerRequest 创建 / 加入房间
type PlayerRequest struct {
	Name         string `json:"name"`
	ContactEmail string `json:"contact_email"`
	ContactPhone string `json:"contact_phone"`
}

func (r PlayerRequest) params() room.PlayerParams {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		name = defaultPlayerName
	}
	return room.PlayerParams{
		Name:         name,
		ContactEmail: strings.TrimSpace(r.ContactEmail),
		ContactPhone: strings.TrimSpace(r.ContactPhone),
	}
}

// PlayRequest 出牌，cards 与 card 二选一
type PlayRequest struct {
	PlayerID   string   `json:"player_id" binding:"required"`
	Cards      []string `json:"cards"`
	Card       string   `json:"card"`
	TargetRank string   `json:"target_rank"`
}

// PlayerOnlyRequest pass / 心跳
type PlayerOnlyRequest struct {
	PlayerID string `json:"player_id" binding:"required"`
}

// CardRequest 弃牌
type CardRequest struct {
	PlayerID string `json:"player_id" binding:"required"`
	Card     string `json:"card" binding:"required"`
}

// GiveRequest 7 的送牌
type GiveRequest struct {
	PlayerID  string `json:"player_id" binding:"required"`
	Card      string `json:"card" binding:"required"`
	Direction string `json:"direction"`
}

// SwapRequest 交换
type SwapRequest struct {
	PlayerID     string `json:"player_id" binding:"required"`
	TargetPlayer string `json:"target_player" binding:"required"`
	GiveCard     string `json:"give_card" binding:"required"`
	TakeCard     string `json:"take_card" binding:"required"`
}

// TakeRequest 抽取
type TakeRequest struct {
	PlayerID     string `json:"player_id" binding:"required"`
	TargetPlayer string `json:"target_player" binding:"required"`
	TakeCard     string `json:"take_card" binding:"required"`
}

// SubmitGiveRequest 名次交牌
type SubmitGiveRequest struct {
	PlayerID string   `json:"player_id" binding:"required"`
	Cards    []string `json:"cards" binding:"required"`
}

// MessageRequest 聊天消息
type MessageRequest struct {
	PlayerID string `json:"player_id" binding:"required"`
	Text     string `json:"text"`
}

// BotRequest 添加机器人
type BotRequest struct {
	DisplayName string `json:"display_name"`
	Tone        string `json:"tone"`
	Difficulty  string `json:"difficulty"`
}

// BotPatchRequest 修改机器人，缺省字段不修改
type BotPatchRequest struct {
	DisplayName *string `json:"display_name"`
	Tone        *string `json:"tone"`
	Difficulty  *string `json:"difficulty"`
}

// JoinBotSlotRequest 接替机器人座位
type JoinBotSlotRequest struct {
	BotID string `json:"bot_id" binding:"required"`
	PlayerRequest
}

// ============== 房间生命周期 ==============

// CreateRoom 创建房间
// POST /api/v1/rooms
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	var req PlayerRequest
	if !h.bindOptional(c, &req) {
		return
	}

	roomID, playerID, err := h.service.CreateRoom(c.Request.Context(), req.params())
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, gin.H{"room_id": roomID, "player_id": playerID})
}

// JoinRoom 加入房间
// POST /api/v1/rooms/:id/join
func (h *RoomHandler) JoinRoom(c *gin.Context) {
	var req PlayerRequest
	if !h.bindOptional(c, &req) {
		return
	}

	playerID, err := h.service.JoinRoom(c.Request.Context(), c.Param("id"), req.params())
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, gin.H{"player_id": playerID})
}

// StartGame 开始对局
// POST /api/v1/rooms/:id/start
func (h *RoomHandler) StartGame(c *gin.Context) {
	if err := h.service.StartGame(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	h.state(c, "")
}

// NextRound 开始下一局
// POST /api/v1/rooms/:id/next_round
func (h *RoomHandler) NextRound(c *gin.Context) {
	if err := h.service.NextRound(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	h.state(c, "")
}

// GetState 房间状态
// GET /api/v1/rooms/:id/state?player_id=
func (h *RoomHandler) GetState(c *gin.Context) {
	h.state(c, c.Query("player_id"))
}

// GetRules 当前规则
// GET /api/v1/rooms/:id/rules
func (h *RoomHandler) GetRules(c *gin.Context) {
	rules, err := h.service.GetRules(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, gin.H{"rules": rules})
}

// PatchRules 修改规则
// PATCH /api/v1/rooms/:id/rules
func (h *RoomHandler) PatchRules(c *gin.Context) {
	var updates map[string]any
	if err := c.ShouldBindJSON(&updates); err != nil {
		response.ErrorWithMsg(c, appErrors.CodeInvalidParams, err.Error())
		return
	}

	rules, err := h.service.PatchRules(c.Request.Context(), c.Param("id"), updates)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, gin.H{"rules": rules})
}

// DrainEvents 拉取并清空房间的待推送事件
// GET /api/v1/rooms/:id/events
func (h *RoomHandler) DrainEvents(c *gin.Context) {
	events, err := h.service.DrainEvents(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	if events == nil {
		events = []room.Event{}
	}
	response.Success(c, gin.H{"events": events})
}

// ============== 对局操作 ==============

// Play 出牌
// POST /api/v1/rooms/:id/play
func (h *RoomHandler) Play(c *gin.Context) {
	var req PlayRequest
	if !h.bind(c, &req) {
		return
	}

	items := req.Cards
	if len(items) == 0 && req.Card != "" {
		items = []string{req.Card}
	}
	cards, ok := h.parseCards(c, items)
	if !ok {
		return
	}
	var target *card.Rank
	if req.TargetRank != "" {
		r, err := card.ParseRank(req.TargetRank)
		if err != nil {
			response.ErrorWithMsg(c, appErrors.CodeInvalidCard, err.Error())
			return
		}
		target = &r
	}

	h.act(c, h.service.Play(c.Request.Context(), c.Param("id"), req.PlayerID, cards, target))
}

// Pass 不出
// POST /api/v1/rooms/:id/pass
func (h *RoomHandler) Pass(c *gin.Context) {
	var req PlayerOnlyRequest
	if !h.bind(c, &req) {
		return
	}
	h.act(c, h.service.Pass(c.Request.Context(), c.Param("id"), req.PlayerID))
}

// Discard 10 的弃牌
// POST /api/v1/rooms/:id/discard
func (h *RoomHandler) Discard(c *gin.Context) {
	var req CardRequest
	if !h.bind(c, &req) {
		return
	}
	cd, ok := h.parseCard(c, req.Card)
	if !ok {
		return
	}
	h.act(c, h.service.Discard(c.Request.Context(), c.Param("id"), req.PlayerID, cd))
}

// Give 7 的送牌
// POST /api/v1/rooms/:id/give
func (h *RoomHandler) Give(c *gin.Context) {
	var req GiveRequest
	if !h.bind(c, &req) {
		return
	}
	cd, ok := h.parseCard(c, req.Card)
	if !ok {
		return
	}
	h.act(c, h.service.Give(c.Request.Context(), c.Param("id"), req.PlayerID, cd, req.Direction))
}

// Swap 交换一张牌
// POST /api/v1/rooms/:id/swap
func (h *RoomHandler) Swap(c *gin.Context) {
	var req SwapRequest
	if !h.bind(c, &req) {
		return
	}
	give, ok := h.parseCard(c, req.GiveCard)
	if !ok {
		return
	}
	take, ok := h.parseCard(c, req.TakeCard)
	if !ok {
		return
	}
	h.act(c, h.service.Swap(c.Request.Context(), c.Param("id"), req.PlayerID, req.TargetPlayer, give, take))
}

// Take 抽取一张牌
// POST /api/v1/rooms/:id/take
func (h *RoomHandler) Take(c *gin.Context) {
	var req TakeRequest
	if !h.bind(c, &req) {
		return
	}
	take, ok := h.parseCard(c, req.TakeCard)
	if !ok {
		return
	}
	h.act(c, h.service.Take(c.Request.Context(), c.Param("id"), req.PlayerID, req.TargetPlayer, take))
}

// SubmitGive 名次交牌
// POST /api/v1/rooms/:id/submit_give
func (h *RoomHandler) SubmitGive(c *gin.Context) {
	var req SubmitGiveRequest
	if !h.bind(c, &req) {
		return
	}
	cards, ok := h.parseCards(c, req.Cards)
	if !ok {
		return
	}
	h.act(c, h.service.SubmitGive(c.Request.Context(), c.Param("id"), req.PlayerID, cards))
}

// ============== 聊天与在线 ==============

// AddMessage 发送聊天消息
// POST /api/v1/rooms/:id/message
func (h *RoomHandler) AddMessage(c *gin.Context) {
	var req MessageRequest
	if !h.bind(c, &req) {
		return
	}

	msg, err := h.service.AddMessage(c.Request.Context(), c.Param("id"), req.PlayerID, req.Text)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, msg)
}

// Messages 最近的聊天消息
// GET /api/v1/rooms/:id/messages
func (h *RoomHandler) Messages(c *gin.Context) {
	msgs, err := h.service.Messages(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	if msgs == nil {
		msgs = []room.Message{}
	}
	response.Success(c, gin.H{"messages": msgs})
}

// Heartbeat 在线心跳
// POST /api/v1/rooms/:id/heartbeat
func (h *RoomHandler) Heartbeat(c *gin.Context) {
	var req PlayerOnlyRequest
	if !h.bind(c, &req) {
		return
	}
	if err := h.service.Heartbeat(c.Request.Context(), c.Param("id"), req.PlayerID); err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, nil)
}

// ============== 机器人 ==============

// AddBot 添加机器人
// POST /api/v1/rooms/:id/bots
func (h *RoomHandler) AddBot(c *gin.Context) {
	var req BotRequest
	if !h.bindOptional(c, &req) {
		return
	}

	p, err := h.service.AddBot(c.Request.Context(), c.Param("id"), room.BotParams{
		DisplayName: req.DisplayName,
		Tone:        req.Tone,
		Difficulty:  req.Difficulty,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, gin.H{"bot": p})
}

// UpdateBot 修改机器人
// PATCH /api/v1/rooms/:id/bots/:botId
func (h *RoomHandler) UpdateBot(c *gin.Context) {
	var req BotPatchRequest
	if !h.bind(c, &req) {
		return
	}

	p, err := h.service.UpdateBot(c.Request.Context(), c.Param("id"), c.Param("botId"), room.BotUpdate{
		DisplayName: req.DisplayName,
		Tone:        req.Tone,
		Difficulty:  req.Difficulty,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, gin.H{"bot": p})
}

// RemoveBot 移除机器人
// DELETE /api/v1/rooms/:id/bots/:botId
func (h *RoomHandler) RemoveBot(c *gin.Context) {
	if err := h.service.RemoveBot(c.Request.Context(), c.Param("id"), c.Param("botId")); err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, nil)
}

// JoinBotSlot 接替机器人座位
// POST /api/v1/rooms/:id/join_bot_slot
func (h *RoomHandler) JoinBotSlot(c *gin.Context) {
	var req JoinBotSlotRequest
	if !h.bind(c, &req) {
		return
	}

	playerID, err := h.service.JoinBotSlot(c.Request.Context(), c.Param("id"), req.BotID, req.params())
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, gin.H{"player_id": playerID})
}

// RecommendedRooms 有机器人座位可以接替的房间
// GET /api/v1/recommended_rooms
func (h *RoomHandler) RecommendedRooms(c *gin.Context) {
	rooms := h.service.RoomsWithBotSlots(c.Request.Context())
	if rooms == nil {
		rooms = []room.RecommendedRoom{}
	}
	response.Success(c, gin.H{"rooms": rooms})
}

// ============== 代管 ==============

// Takeover 手动代管
// POST /api/v1/rooms/:id/takeover/:playerId
func (h *RoomHandler) Takeover(c *gin.Context) {
	if err := h.service.TakeoverPlayer(c.Request.Context(), c.Param("id"), c.Param("playerId")); err != nil {
		h.fail(c, err)
		return
	}
	h.state(c, "")
}

// ReleaseTakeover 结束代管
// DELETE /api/v1/rooms/:id/takeover/:playerId
func (h *RoomHandler) ReleaseTakeover(c *gin.Context) {
	if err := h.service.ReleaseTakeover(c.Request.Context(), c.Param("id"), c.Param("playerId")); err != nil {
		h.fail(c, err)
		return
	}
	h.state(c, "")
}

// ============== 辅助函数 ==============

// act 操作成功时返回操作者视角的房间状态
func (h *RoomHandler) act(c *gin.Context, err error) {
	if err != nil {
		h.fail(c, err)
		return
	}
	playerID, _ := c.Get(ctxPlayerID)
	id, _ := playerID.(string)
	h.state(c, id)
}

func (h *RoomHandler) state(c *gin.Context, playerID string) {
	st, err := h.service.GetRoomState(c.Request.Context(), c.Param("id"), playerID)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, st)
}

// ctxPlayerID 请求体中的操作者，用于返回该玩家视角的状态
const ctxPlayerID = "daifugo.player_id"

type playerScoped interface {
	actor() string
}

func (r PlayRequest) actor() string       { return r.PlayerID }
func (r PlayerOnlyRequest) actor() string { return r.PlayerID }
func (r CardRequest) actor() string       { return r.PlayerID }
func (r GiveRequest) actor() string       { return r.PlayerID }
func (r SwapRequest) actor() string       { return r.PlayerID }
func (r TakeRequest) actor() string       { return r.PlayerID }
func (r SubmitGiveRequest) actor() string { return r.PlayerID }

// bind 解析必填的 JSON 请求体
func (h *RoomHandler) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.ErrorWithMsg(c, appErrors.CodeInvalidParams, err.Error())
		return false
	}
	if p, ok := req.(playerScoped); ok {
		c.Set(ctxPlayerID, p.actor())
	}
	return true
}

// bindOptional 请求体可以为空
func (h *RoomHandler) bindOptional(c *gin.Context, req any) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	return h.bind(c, req)
}

func (h *RoomHandler) parseCard(c *gin.Context, s string) (card.Card, bool) {
	cd, err := card.Parse(s)
	if err != nil {
		response.ErrorWithMsg(c, appErrors.CodeInvalidCard, err.Error())
		return card.Card{}, false
	}
	return cd, true
}

func (h *RoomHandler) parseCards(c *gin.Context, items []string) ([]card.Card, bool) {
	if len(items) == 0 {
		response.ErrorWithMsg(c, appErrors.CodeInvalidParams, "cards required")
		return nil, false
	}
	cards, err := card.ParseAll(items)
	if err != nil {
		response.ErrorWithMsg(c, appErrors.CodeInvalidCard, err.Error())
		return nil, false
	}
	return cards, true
}

// fail 输出错误响应，非业务错误记录日志
func (h *RoomHandler) fail(c *gin.Context, err error) {
	appErr := toAppError(err)
	if appErr.Code == appErrors.CodeServerError {
		h.logger.Error("Room request failed", "path", c.FullPath(), "roomId", c.Param("id"), "error", err)
	}
	response.ErrorWithData(c, appErr, errorContext(err))
}
