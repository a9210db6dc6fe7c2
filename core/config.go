package core

import (
	"io"
	"log"
)

// Config holds the buffer options.
type Config struct {
	// TabSpaceCount is the indent width; 0 indents with a tab character.
	TabSpaceCount int
	// ViewportHeight is the number of visible lines, used for scrolling and
	// as the PageUp/PageDown step.
	ViewportHeight int
	ReadOnly       bool
	// SignalBufferSize is the capacity of the update signal channel.
	SignalBufferSize int
	// Logger receives debug output. Nil discards it.
	Logger *log.Logger
}

func DefaultConfig() Config {
	return Config{
		TabSpaceCount:    4,
		ViewportHeight:   24,
		SignalBufferSize: 100,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.TabSpaceCount < 0 {
		c.TabSpaceCount = def.TabSpaceCount
	}
	if c.ViewportHeight <= 0 {
		c.ViewportHeight = def.ViewportHeight
	}
	if c.SignalBufferSize <= 0 {
		c.SignalBufferSize = def.SignalBufferSize
	}
	if c.Logger == nil {
		c.Logger = log.New(io.Discard, "", 0)
	}
	return c
}

// indentUnit is the text inserted for one level of indentation.
func (c Config) indentUnit() string {
	if c.TabSpaceCount == 0 {
		return "\t"
	}
	unit := make([]rune, c.TabSpaceCount)
	for i := range unit {
		unit[i] = ' '
	}
	return string(unit)
}
