package render

import (
	"github.com/gdamore/tcell/v2"
)

// Action is a host command decoded from terminal input
type Action uint8

const (
	ActionNone Action = iota
	ActionTogglePause
	ActionReset
	ActionTogglePheromones
	ActionResize
	ActionQuit
)

func (a Action) String() string {
	switch a {
	case ActionTogglePause:
		return "toggle_pause"
	case ActionReset:
		return "reset"
	case ActionTogglePheromones:
		return "toggle_pheromones"
	case ActionResize:
		return "resize"
	case ActionQuit:
		return "quit"
	default:
		return "none"
	}
}

// Decode maps a tcell event to an action
// space pauses or resumes, r resets, p toggles pheromones, q Esc and Ctrl-C quit
func Decode(ev tcell.Event) Action {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		return ActionResize
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return ActionQuit
		case tcell.KeyRune:
			switch ev.Rune() {
			case ' ':
				return ActionTogglePause
			case 'r', 'R':
				return ActionReset
			case 'p', 'P':
				return ActionTogglePheromones
			case 'q', 'Q':
				return ActionQuit
			}
		}
	}
	return ActionNone
}
