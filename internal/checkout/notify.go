package checkout

import "go.uber.org/zap"

type NotifyKind string

const (
	NotifySuccess NotifyKind = "success"
	NotifyInfo    NotifyKind = "info"
	NotifyWarning NotifyKind = "warning"
	NotifyError   NotifyKind = "error"
)

// Notifier remplace les alertes du front : le workflow signale ce qui
// s'est passé sans savoir comment c'est affiché.
type Notifier interface {
	Notify(kind NotifyKind, title, message string)
}

type NotifierFunc func(kind NotifyKind, title, message string)

func (f NotifierFunc) Notify(kind NotifyKind, title, message string) {
	f(kind, title, message)
}

type nopNotifier struct{}

func (nopNotifier) Notify(NotifyKind, string, string) {}

// LogNotifier écrit les notifications dans les logs.
type LogNotifier struct {
	Logger *zap.Logger
}

func (n LogNotifier) Notify(kind NotifyKind, title, message string) {
	if n.Logger == nil {
		return
	}
	fields := []zap.Field{
		zap.String("kind", string(kind)),
		zap.String("title", title),
		zap.String("message", message),
	}
	switch kind {
	case NotifyError:
		n.Logger.Error("🔔 notification", fields...)
	case NotifyWarning:
		n.Logger.Warn("🔔 notification", fields...)
	default:
		n.Logger.Info("🔔 notification", fields...)
	}
}
