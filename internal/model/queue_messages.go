package model

// ProfileSyncMessage 资料草稿落库消息，尽力而为：失败只记日志，不阻断导航
type ProfileSyncMessage struct {
	Fields       map[string]interface{} `json:"fields"`
	MessageID    string                 `json:"message_id"`
	SessionID    string                 `json:"session_id"`
	UserPublicID int64                  `json:"user_public_id"`
	OccurredAt   string                 `json:"occurred_at"`
}

// OnboardingCompletedMessage 入驻完成事件，入驻收尾时发布一次
type OnboardingCompletedMessage struct {
	MessageID    string `json:"message_id"`
	SessionID    string `json:"session_id"`
	UserPublicID int64  `json:"user_public_id"`
	Role         string `json:"role"`
	Secondary    bool   `json:"secondary"`
	Destination  string `json:"destination"`
	OccurredAt   string `json:"occurred_at"`
}

// OnboardingReminderMessage 停滞会话提醒消息（延迟投递）
type OnboardingReminderMessage struct {
	MessageID    string `json:"message_id"`
	SessionID    string `json:"session_id"`
	PhoneHash    string `json:"phone_hash"`
	Step         string `json:"step"`
	DelaySeconds int    `json:"delay_seconds"`
	ScheduledAt  string `json:"scheduled_at"`
}
