package ui

type screen int

const (
	Gallery screen = iota
	Preview
	UploadConfirm
	FileSelect
	Settings
	Initializing
	FatalError
)

func (s screen) String() string {
	switch s {
	case Gallery:
		return "Gallery"
	case Preview:
		return "Preview"
	case UploadConfirm:
		return "UploadConfirm"
	case FileSelect:
		return "FileSelect"
	case Settings:
		return "Settings"
	case Initializing:
		return "Initializing"
	case FatalError:
		return "FatalError"
	default:
		return "Unknown"
	}
}

// stack is a simple struct for keeping track of the screen we are currently on & the ones that came before it.
// The gallery is always at the bottom, so an empty stack is the gallery.
type stack struct {
	s []screen
}

func (s *stack) Peek() screen {
	if len(s.s) == 0 {
		return Gallery
	}
	return s.s[len(s.s)-1]
}

func (s *stack) Pop() screen {
	if len(s.s) == 0 {
		return Gallery
	}
	rm := s.s[len(s.s)-1]
	s.s = s.s[:len(s.s)-1]
	return rm
}

func (s *stack) Push(v screen) {
	s.s = append(s.s, v)
}

func (s *stack) Clear() {
	s.s = make([]screen, 0)
}
