// Package notify 分红结算通知
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/blues/memberadmin/internal/config"
	"github.com/blues/memberadmin/internal/logger"
	"github.com/blues/memberadmin/internal/settlement"
	"github.com/shopspring/decimal"
)

// ErrNotDelivered 通知接口返回失败
var ErrNotDelivered = errors.New("notification not delivered")

// Notifier 外部消息通道
type Notifier interface {
	SendDividendNotification(ctx context.Context, channelID string, netProfit, valuePerShare decimal.Decimal) (bool, error)
}

// FormatDividendMessage 分红通知正文
func FormatDividendMessage(netProfit, valuePerShare decimal.Decimal) string {
	var b strings.Builder
	b.WriteString("分红结算通知\n")
	fmt.Fprintf(&b, "周期净利润: %s\n", settlement.FormatAmount(netProfit))
	fmt.Fprintf(&b, "每股分红: %s\n", settlement.FormatAmount(valuePerShare))
	fmt.Fprintf(&b, "每半股分红: %s", settlement.FormatAmount(valuePerShare.Div(decimal.NewFromInt(2))))
	return b.String()
}

// TelegramNotifier 通过 bot sendMessage 接口发送
type TelegramNotifier struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewTelegramNotifier 创建 bot 通知器
func NewTelegramNotifier(baseURL, token string, timeout time.Duration) *TelegramNotifier {
	return &TelegramNotifier{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: timeout},
	}
}

type sendMessageRequest struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

func (n *TelegramNotifier) SendDividendNotification(ctx context.Context, channelID string, netProfit, valuePerShare decimal.Decimal) (bool, error) {
	if channelID == "" {
		return false, errors.New("channel id is empty")
	}

	body, err := json.Marshal(sendMessageRequest{ChatID: channelID, Text: FormatDividendMessage(netProfit, valuePerShare)})
	if err != nil {
		return false, err
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return false, fmt.Errorf("read response: %w", err)
	}

	var out sendMessageResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return false, fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode/100 != 2 || !out.OK {
		logger.Warn("Dividend notification rejected: status=%d description=%s", resp.StatusCode, out.Description)
		return false, nil
	}
	return true, nil
}

// LogNotifier 未配置 bot token 时只写日志
type LogNotifier struct{}

func (LogNotifier) SendDividendNotification(_ context.Context, channelID string, netProfit, valuePerShare decimal.Decimal) (bool, error) {
	logger.Info("Dividend notification for channel %q:\n%s", channelID, FormatDividendMessage(netProfit, valuePerShare))
	return true, nil
}

// New 按配置选择通知器
func New(cfg config.NotifyConfig) Notifier {
	if cfg.BotToken == "" {
		return LogNotifier{}
	}
	return NewTelegramNotifier(cfg.BaseURL, cfg.BotToken, time.Duration(cfg.Timeout)*time.Second)
}
