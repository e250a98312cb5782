package notify

import (
	"github.com/gen2brain/beeep"

	"tally/internal/platform/logging"
)

// Notifier delivers a short desktop message.
type Notifier interface {
	Notify(title, message string) error
}

// Desktop sends notifications through the OS notification service.
type Desktop struct {
	AppName string
}

func (d Desktop) Notify(title, message string) error {
	if d.AppName != "" {
		beeep.AppName = d.AppName
	}
	if err := beeep.Notify(title, message, ""); err != nil {
		logging.Logger.Warn("desktop notification failed", "error", err)
		return err
	}
	return nil
}

// Noop drops every notification. Used when notifications are disabled.
type Noop struct{}

func (Noop) Notify(string, string) error { return nil }
