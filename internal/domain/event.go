package domain

// Stage 流水线阶段
type Stage string

const (
	StageIdle       Stage = "idle"
	StageSearching  Stage = "searching"
	StageAnalyzing  Stage = "analyzing"
	StageGenerating Stage = "generating"
	StageDone       Stage = "done"
	StageError      Stage = "error"
)

// EventType 事件类型
type EventType string

const (
	EventStage      EventType = "stage"
	EventTotalCount EventType = "total_count"
	EventResult     EventType = "result"
	EventError      EventType = "error"
	EventEnd        EventType = "end"
)

// Event 推送给调用方的一条消息，序列化后即为 SSE 的 data 部分
type Event struct {
	Type       EventType   `json:"type"`
	Stage      Stage       `json:"stage,omitempty"`
	TotalCount *int        `json:"total_count,omitempty"`
	Result     *RepoResult `json:"result,omitempty"`
	Message    string      `json:"message,omitempty"`
}

// IsTerminal end / error 之后不会再有任何事件
func (e Event) IsTerminal() bool {
	return e.Type == EventEnd || e.Type == EventError
}

func StageEvent(s Stage) Event {
	return Event{Type: EventStage, Stage: s}
}

func TotalCountEvent(n int) Event {
	return Event{Type: EventTotalCount, TotalCount: &n}
}

func ResultEvent(r *RepoResult) Event {
	return Event{Type: EventResult, Result: r}
}

func ErrorEvent(msg string) Event {
	if msg == "" {
		msg = "unknown error"
	}
	return Event{Type: EventError, Message: msg}
}

func EndEvent() Event {
	return Event{Type: EventEnd}
}
