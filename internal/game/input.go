package game

import "github.com/gdamore/tcell/v2"

// Action represents a player-requested game action.
type Action uint8

const (
	ActionNone Action = iota
	ActionAttack
	ActionHeal
	ActionSprint
	ActionStudy
	ActionRearm
	ActionSave
	ActionForget
	ActionQuit
)

// keyToAction maps a tcell key event to a game action.
func keyToAction(ev *tcell.EventKey) Action {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return ActionQuit
	case tcell.KeyEnter:
		return ActionAttack
	}

	switch ev.Rune() {
	case 'a', 'A', ' ':
		return ActionAttack
	case 'h', 'H':
		return ActionHeal
	case 's', 'S':
		return ActionSprint
	case 'x', 'X':
		return ActionStudy
	case 'r', 'R':
		return ActionRearm
	case 'p', 'P':
		return ActionSave
	case 'f', 'F':
		return ActionForget
	case 'q', 'Q':
		return ActionQuit
	}
	return ActionNone
}
