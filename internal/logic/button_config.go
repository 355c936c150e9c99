package logic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/blues/memberadmin/internal/model"
	"gorm.io/gorm"
)

// Button 控制台自定义快捷按钮
type Button struct {
	ID      string `json:"id" validate:"required,max=32"`
	Label   string `json:"label" validate:"required,max=32"`
	Action  string `json:"action" validate:"required,max=255"`
	Color   string `json:"color" validate:"omitempty,max=16"`
	Order   int    `json:"order"`
	Enabled bool   `json:"enabled"`
}

// ButtonConfig 按钮配置, 每次保存版本号加一
type ButtonConfig struct {
	Version int      `json:"version"`
	Buttons []Button `json:"buttons" validate:"max=50,dive"`
}

// DefaultButtonConfig 未保存过配置时使用
func DefaultButtonConfig() ButtonConfig {
	return ButtonConfig{
		Version: 0,
		Buttons: []Button{
			{ID: "new-member", Label: "新增会员", Action: "/members/new", Color: "blue", Order: 1, Enabled: true},
			{ID: "new-transaction", Label: "记一笔", Action: "/transactions/new", Color: "green", Order: 2, Enabled: true},
			{ID: "daily-ledger", Label: "录入日账", Action: "/ledgers/new", Color: "orange", Order: 3, Enabled: true},
			{ID: "settle", Label: "分红结算", Action: "/settlements", Color: "red", Order: 4, Enabled: true},
		},
	}
}

// Validate 标签非空, ID 唯一
func (c ButtonConfig) Validate() error {
	if err := validateStruct(c); err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(c.Buttons))
	for _, b := range c.Buttons {
		if _, ok := seen[b.ID]; ok {
			return invalid("buttons", "duplicate id %q", b.ID)
		}
		seen[b.ID] = struct{}{}
	}
	return nil
}

// ButtonConfigPort 按钮配置的存取
type ButtonConfigPort interface {
	// Load 没有保存过时返回 DefaultButtonConfig
	Load(ctx context.Context) (ButtonConfig, error)
	Save(ctx context.Context, cfg ButtonConfig) error
}

// SettingButtonStore 保存在 system_settings 的 custom_buttons 行
type SettingButtonStore struct {
	settings *SettingLogic
}

func NewSettingButtonStore(db *gorm.DB) *SettingButtonStore {
	return &SettingButtonStore{settings: NewSettingLogic(db)}
}

func (s *SettingButtonStore) Load(ctx context.Context) (ButtonConfig, error) {
	raw, err := s.settings.Get(ctx, model.SettingCustomButtons)
	if errors.Is(err, ErrNotFound) || (err == nil && raw == "") {
		return DefaultButtonConfig(), nil
	}
	if err != nil {
		return ButtonConfig{}, err
	}
	var cfg ButtonConfig
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return ButtonConfig{}, fmt.Errorf("decode button config: %w", err)
	}
	return cfg, nil
}

func (s *SettingButtonStore) Save(ctx context.Context, cfg ButtonConfig) error {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode button config: %w", err)
	}
	_, err = s.settings.put(ctx, model.SettingCustomButtons, string(raw))
	return err
}

// FileButtonStore 保存在本地 JSON 文件
type FileButtonStore struct {
	path string
	mu   sync.Mutex
}

func NewFileButtonStore(path string) *FileButtonStore {
	return &FileButtonStore{path: path}
}

func (s *FileButtonStore) Load(_ context.Context) (ButtonConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultButtonConfig(), nil
	}
	if err != nil {
		return ButtonConfig{}, fmt.Errorf("read button config %s: %w", s.path, err)
	}
	var cfg ButtonConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return ButtonConfig{}, fmt.Errorf("decode button config %s: %w", s.path, err)
	}
	return cfg, nil
}

func (s *FileButtonStore) Save(_ context.Context, cfg ButtonConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode button config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create button config dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write button config: %w", err)
	}
	return os.Rename(tmp, s.path)
}

// ButtonLogic 自定义按钮业务逻辑
type ButtonLogic struct {
	store ButtonConfigPort
}

// NewButtonLogic 创建按钮业务逻辑
func NewButtonLogic(store ButtonConfigPort) *ButtonLogic {
	return &ButtonLogic{store: store}
}

// Get 当前按钮配置
func (b *ButtonLogic) Get(ctx context.Context) (ButtonConfig, error) {
	return b.store.Load(ctx)
}

// Update 校验后按 order 排序保存, 返回保存后的配置
func (b *ButtonLogic) Update(ctx context.Context, cfg ButtonConfig) (ButtonConfig, error) {
	if err := cfg.Validate(); err != nil {
		return ButtonConfig{}, err
	}

	current, err := b.store.Load(ctx)
	if err != nil {
		return ButtonConfig{}, err
	}

	buttons := make([]Button, len(cfg.Buttons))
	copy(buttons, cfg.Buttons)
	sort.SliceStable(buttons, func(i, j int) bool { return buttons[i].Order < buttons[j].Order })

	next := ButtonConfig{Version: current.Version + 1, Buttons: buttons}
	if err := b.store.Save(ctx, next); err != nil {
		return ButtonConfig{}, err
	}
	return next, nil
}
