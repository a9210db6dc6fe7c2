package core

import (
	"fmt"
	"log"
	"time"
)

var (
	EmptyMessage           = ""
	ChangesSavedMessage    = "changes saved"
	NothingToPasteMessage  = "Nothing to paste"
	NothingSelectedMessage = "Nothing selected"
)

func undoMessage(age time.Duration) string {
	return fmt.Sprintf("Undid change (%d seconds old)", int(age.Seconds()))
}

func redoMessage(age time.Duration) string {
	return fmt.Sprintf("Redid change (%d seconds old)", int(age.Seconds()))
}

func pasteMessage(chars int) string {
	return fmt.Sprintf("Pasted text from clipboard (%d chars)", chars)
}

func copyMessage(chars int) string {
	return fmt.Sprintf("Copied selection to clipboard (%d chars)", chars)
}

func cutMessage(chars int) string {
	return fmt.Sprintf("Cut selection to clipboard (%d chars)", chars)
}

func (b *Buffer) DispatchMessage(args ...string) {
	id := args[0]
	value := id
	if len(args) > 1 {
		value = args[1]
	}
	select {
	case b.updateSignal <- MessageSignal{id, value}:
	default:
		log.Println("Channel is full, unable to send message signal")
	}
}
