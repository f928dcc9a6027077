// Package input turns key presses into grid clicks and transport commands.
package input

import (
	"fmt"

	"github.com/eiannone/keyboard"
)

type Action uint8

const (
	None Action = iota
	Click
	Start
	Pause
	Quit
	SeekBack
	SeekForward
	VolumeUp
	VolumeDown
)

type Event struct {
	Action       Action
	GridX, GridY int
}

// Keymap binds one key to each cell, row by row. Cells past the end of the
// keys have no binding.
type Keymap struct {
	size  int
	keys  []rune
	cells map[rune]int
}

func NewKeymap(keys string, gridSize int) *Keymap {
	m := &Keymap{size: gridSize, cells: map[rune]int{}}
	for i, r := range []rune(keys) {
		if i >= gridSize*gridSize {
			break
		}
		m.keys = append(m.keys, r)
		m.cells[r] = i
	}
	return m
}

// Key is the label for a cell.
func (m *Keymap) Key(x, y int) (rune, bool) {
	i := y*m.size + x
	if x < 0 || x >= m.size || i < 0 || i >= len(m.keys) {
		return 0, false
	}
	return m.keys[i], true
}

// Unbound counts cells without a key.
func (m *Keymap) Unbound() int {
	return m.size*m.size - len(m.keys)
}

func (m *Keymap) Translate(key keyboard.KeyEvent) Event {
	switch key.Key {
	case keyboard.KeyEsc, keyboard.KeyCtrlC:
		return Event{Action: Quit}
	case keyboard.KeySpace:
		return Event{Action: Pause}
	case keyboard.KeyEnter:
		return Event{Action: Start}
	case keyboard.KeyArrowLeft:
		return Event{Action: SeekBack}
	case keyboard.KeyArrowRight:
		return Event{Action: SeekForward}
	case keyboard.KeyArrowUp:
		return Event{Action: VolumeUp}
	case keyboard.KeyArrowDown:
		return Event{Action: VolumeDown}
	}
	if i, ok := m.cells[key.Rune]; ok && key.Rune != 0 {
		return Event{Action: Click, GridX: i % m.size, GridY: i / m.size}
	}
	return Event{}
}

// Drain translates the key presses buffered so far without blocking.
func (m *Keymap) Drain(keys <-chan keyboard.KeyEvent) []Event {
	events := []Event{}
	for i := len(keys); i > 0; i-- {
		key := <-keys
		if nil != key.Err {
			continue
		}
		if e := m.Translate(key); e.Action != None {
			events = append(events, e)
		}
	}
	return events
}

// Open starts reading the keyboard. The returned func releases it.
func Open(bufferSize int) (<-chan keyboard.KeyEvent, func() error, error) {
	keys, err := keyboard.GetKeys(bufferSize)
	if nil != err {
		return nil, nil, fmt.Errorf("unable to open keyboard: %w", err)
	}
	return keys, keyboard.Close, nil
}
