package resource

// AlertLevel classifies an alert for presentation.
type AlertLevel int

const (
	AlertInfo AlertLevel = iota
	AlertSuccess
	AlertWarning
	AlertError
)

// Alert is a queued notification or confirmation prompt. When Action is
// set the alert is a confirmation: the UI must invoke Action only on
// explicit user confirmation and discard it otherwise. Exactly one alert
// is pending at a time; enqueueing a new one overwrites it.
type Alert struct {
	Level       AlertLevel
	Title       string
	Text        string
	ConfirmText string
	CancelText  string
	Action      func()
}

// Effects is the global UI coordinator: one shared modal flag, one shared
// loading indicator, one pending alert. The loading indicator is reference
// counted so overlapping operations keep it visible until the last one
// finishes.
type Effects interface {
	BeginLoading()
	EndLoading()
	OpenModal()
	CloseModal()
	Notify(Alert)
}

// AuditEntry describes one completed mutation for the operation history.
type AuditEntry struct {
	Entity    string
	Operation string
	RecordID  *int64
	Outcome   string
	Detail    string
	RequestID string
}

// Recorder persists audit entries. Implementations must not block the
// caller on failure; recording is best effort.
type Recorder interface {
	Record(AuditEntry)
}

// NopEffects is an Effects implementation that does nothing, for tests and
// headless use.
type NopEffects struct{}

func (NopEffects) BeginLoading() {}
func (NopEffects) EndLoading()   {}
func (NopEffects) OpenModal()    {}
func (NopEffects) CloseModal()   {}
func (NopEffects) Notify(Alert)  {}
