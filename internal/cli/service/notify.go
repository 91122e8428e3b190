package service

// Level - важность уведомления пользователю.
type Level int

const (
	LevelSuccess Level = iota
	LevelInfo
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelInfo:
		return "info"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	}
	return "unknown"
}

// Notice - одно сообщение пользователю.
type Notice struct {
	Level Level
	Title string
	Text  string
}

// Notifier показывает уведомления пользователю.
type Notifier interface {
	Notify(Notice)
}

// NotifierFunc адаптирует функцию к Notifier.
type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

// Discard отбрасывает все уведомления.
var Discard Notifier = NotifierFunc(func(Notice) {})
