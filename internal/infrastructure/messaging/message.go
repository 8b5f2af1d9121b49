// Package messaging 通过 Redis Stream 发布向导事件
package messaging

import (
	"encoding/json"
	"time"
)

// 事件类型
const (
	TypeWizardCompleted = "wizard.completed"
)

// Message 消息结构
type Message struct {
	ID        string            `json:"id"`
	Type      string            `json:"type"`
	SessionID string            `json:"session_id"`
	Payload   json.RawMessage   `json:"payload"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// NewMessage 创建新消息
func NewMessage(id, msgType, sessionID string, payload any) (*Message, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{
		ID:        id,
		Type:      msgType,
		SessionID: sessionID,
		Payload:   payloadBytes,
		Metadata:  make(map[string]string),
		CreatedAt: time.Now().UTC(),
	}, nil
}

// SetMetadata 设置元数据
func (m *Message) SetMetadata(key, value string) {
	if m.Metadata == nil {
		m.Metadata = make(map[string]string)
	}
	m.Metadata[key] = value
}

// UnmarshalPayload 解析消息载荷
func (m *Message) UnmarshalPayload(v any) error {
	return json.Unmarshal(m.Payload, v)
}

// WizardCompletedPayload 完成事件只携带摘要，不含生成的代码正文
type WizardCompletedPayload struct {
	TeamName      string   `json:"team_name"`
	TechStack     []string `json:"tech_stack"`
	Roles         []string `json:"roles"`
	Structure     string   `json:"structure"`
	Conventions   []string `json:"conventions"`
	BackendFiles  int      `json:"backend_files"`
	FrontendFiles int      `json:"frontend_files"`
}
