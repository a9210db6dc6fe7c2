package adapter_bubbletea

import "github.com/atotto/clipboard"

// clipboardImpl backs the buffer clipboard with the system one.
type clipboardImpl struct{}

func (c *clipboardImpl) Write(text string) error {
	return clipboard.WriteAll(text)
}

func (c *clipboardImpl) Read() (string, error) {
	return clipboard.ReadAll()
}
