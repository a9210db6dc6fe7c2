package adapter_bubbletea

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/ionut-t/textcore/core"
)

var ctrlRunes = map[tea.KeyType]rune{
	tea.KeyCtrlA: 'a',
	tea.KeyCtrlB: 'b',
	tea.KeyCtrlC: 'c',
	tea.KeyCtrlL: 'l',
	tea.KeyCtrlN: 'n',
	tea.KeyCtrlP: 'p',
	tea.KeyCtrlS: 's',
	tea.KeyCtrlV: 'v',
	tea.KeyCtrlX: 'x',
	tea.KeyCtrlY: 'y',
	tea.KeyCtrlZ: 'z',
}

var specialKeys = map[tea.KeyType]core.KeyEvent{
	tea.KeyEnter:     {Key: core.KeyEnter},
	tea.KeySpace:     {Key: core.KeySpace, Rune: ' '},
	tea.KeyEsc:       {Key: core.KeyEscape},
	tea.KeyBackspace: {Key: core.KeyBackspace},
	tea.KeyTab:       {Key: core.KeyTab},
	tea.KeyShiftTab:  {Key: core.KeyTab, Modifiers: core.ModShift},
	tea.KeyDelete:    {Key: core.KeyDelete},
	tea.KeyInsert:    {Key: core.KeyInsert},

	tea.KeyUp:     {Key: core.KeyUp},
	tea.KeyDown:   {Key: core.KeyDown},
	tea.KeyLeft:   {Key: core.KeyLeft},
	tea.KeyRight:  {Key: core.KeyRight},
	tea.KeyHome:   {Key: core.KeyHome},
	tea.KeyEnd:    {Key: core.KeyEnd},
	tea.KeyPgUp:   {Key: core.KeyPageUp},
	tea.KeyPgDown: {Key: core.KeyPageDown},

	tea.KeyShiftUp:    {Key: core.KeyUp, Modifiers: core.ModShift},
	tea.KeyShiftDown:  {Key: core.KeyDown, Modifiers: core.ModShift},
	tea.KeyShiftLeft:  {Key: core.KeyLeft, Modifiers: core.ModShift},
	tea.KeyShiftRight: {Key: core.KeyRight, Modifiers: core.ModShift},
	tea.KeyShiftHome:  {Key: core.KeyHome, Modifiers: core.ModShift},
	tea.KeyShiftEnd:   {Key: core.KeyEnd, Modifiers: core.ModShift},

	tea.KeyCtrlLeft:  {Key: core.KeyLeft, Modifiers: core.ModCtrl},
	tea.KeyCtrlRight: {Key: core.KeyRight, Modifiers: core.ModCtrl},
	tea.KeyCtrlHome:  {Key: core.KeyHome, Modifiers: core.ModCtrl},
	tea.KeyCtrlEnd:   {Key: core.KeyEnd, Modifiers: core.ModCtrl},

	tea.KeyCtrlShiftLeft:  {Key: core.KeyLeft, Modifiers: core.ModCtrl | core.ModShift},
	tea.KeyCtrlShiftRight: {Key: core.KeyRight, Modifiers: core.ModCtrl | core.ModShift},
	tea.KeyCtrlShiftHome:  {Key: core.KeyHome, Modifiers: core.ModCtrl | core.ModShift},
	tea.KeyCtrlShiftEnd:   {Key: core.KeyEnd, Modifiers: core.ModCtrl | core.ModShift},
}

// convertBubbleKey maps a bubbletea key to a core key event.
func convertBubbleKey(msg tea.KeyMsg) core.KeyEvent {
	var key core.KeyEvent

	if r, ok := ctrlRunes[msg.Type]; ok {
		key = core.KeyEvent{Rune: r, Modifiers: core.ModCtrl}
	} else if special, ok := specialKeys[msg.Type]; ok {
		key = special
	} else if msg.Type == tea.KeyRunes && len(msg.Runes) > 0 {
		key.Rune = msg.Runes[0]
	}

	if msg.Alt {
		key.Modifiers |= core.ModAlt
	}

	return key
}
