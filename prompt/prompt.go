// Package prompt implements the single-line editor behind the
// reader's open, find and goto prompts.
package prompt

// Editor is a single-line text editor with a cursor. Positions index
// runes, not bytes, so history entries with multibyte text edit
// cleanly.
type Editor struct {
	text   []rune
	cursor int
}

func New() *Editor {
	return &Editor{}
}

func (e *Editor) Text() string {
	return string(e.text)
}

func (e *Editor) Cursor() int {
	return e.cursor
}

func (e *Editor) Len() int {
	return len(e.text)
}

// Clear resets the editor to empty.
func (e *Editor) Clear() {
	e.text = e.text[:0]
	e.cursor = 0
}

// Set replaces the text and puts the cursor at the end.
func (e *Editor) Set(s string) {
	e.text = []rune(s)
	e.cursor = len(e.text)
}

// Insert adds a rune at the cursor position.
func (e *Editor) Insert(r rune) {
	e.text = append(e.text, 0)
	copy(e.text[e.cursor+1:], e.text[e.cursor:])
	e.text[e.cursor] = r
	e.cursor++
}

// InsertString adds a string at the cursor position.
func (e *Editor) InsertString(s string) {
	for _, r := range s {
		e.Insert(r)
	}
}

// Backspace removes the rune before the cursor. Reports whether
// anything was removed.
func (e *Editor) Backspace() bool {
	if e.cursor == 0 {
		return false
	}
	e.text = append(e.text[:e.cursor-1], e.text[e.cursor:]...)
	e.cursor--
	return true
}

// Delete removes the rune at the cursor. Reports whether anything was
// removed.
func (e *Editor) Delete() bool {
	if e.cursor >= len(e.text) {
		return false
	}
	e.text = append(e.text[:e.cursor], e.text[e.cursor+1:]...)
	return true
}

func (e *Editor) Left() {
	if e.cursor > 0 {
		e.cursor--
	}
}

func (e *Editor) Right() {
	if e.cursor < len(e.text) {
		e.cursor++
	}
}

func (e *Editor) Home() {
	e.cursor = 0
}

func (e *Editor) End() {
	e.cursor = len(e.text)
}

// KillToEnd removes everything from the cursor to the end.
func (e *Editor) KillToEnd() {
	e.text = e.text[:e.cursor]
}

// KillToStart removes everything before the cursor.
func (e *Editor) KillToStart() {
	e.text = append(e.text[:0], e.text[e.cursor:]...)
	e.cursor = 0
}

// prevWord finds the start of the word before the cursor. Words are
// runs of non-spaces.
func (e *Editor) prevWord() int {
	i := e.cursor
	for i > 0 && e.text[i-1] == ' ' {
		i--
	}
	for i > 0 && e.text[i-1] != ' ' {
		i--
	}
	return i
}

// WordLeft moves the cursor to the start of the previous word.
func (e *Editor) WordLeft() {
	e.cursor = e.prevWord()
}

// WordRight moves the cursor past the end of the current word.
func (e *Editor) WordRight() {
	i := e.cursor
	for i < len(e.text) && e.text[i] != ' ' {
		i++
	}
	for i < len(e.text) && e.text[i] == ' ' {
		i++
	}
	e.cursor = i
}

// DeleteWordBack removes from the start of the previous word to the
// cursor.
func (e *Editor) DeleteWordBack() {
	start := e.prevWord()
	e.text = append(e.text[:start], e.text[e.cursor:]...)
	e.cursor = start
}

// RuneAtCursor returns the rune under the cursor, or a space when the
// cursor sits past the end. Used for drawing a block cursor.
func (e *Editor) RuneAtCursor() rune {
	if e.cursor >= len(e.text) {
		return ' '
	}
	return e.text[e.cursor]
}
