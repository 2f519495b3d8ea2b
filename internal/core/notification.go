package core

import "fmt"

type Variant string

const (
	VariantDefault     Variant = "default"
	VariantDestructive Variant = "destructive"
)

// Notification is the transient confirmation shown after an action.
// Every successful mutation yields exactly one; a rejected draft yields a
// single destructive one instead.
type Notification struct {
	Title       string
	Description string
	Variant     Variant
}

func Notify(title, description string) Notification {
	return Notification{Title: title, Description: description, Variant: VariantDefault}
}

func NotifyError(description string) Notification {
	return Notification{Title: "Error", Description: description, Variant: VariantDestructive}
}

// NotificationFor turns a failed operation into its error notification.
func NotificationFor(err error) Notification {
	return NotifyError(UserMessage(err))
}

func (n Notification) IsError() bool {
	return n.Variant == VariantDestructive
}

func (n Notification) String() string {
	return fmt.Sprintf("%s: %s", n.Title, n.Description)
}
