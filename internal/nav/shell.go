package nav

import "errors"

// Screen is the visible view of the mobile shell.
type Screen string

const (
	ScreenList   Screen = "list"
	ScreenDetail Screen = "detail"
	ScreenChat   Screen = "chat"
)

// Tab is the bottom-navigation tab.
type Tab string

const (
	TabHome         Tab = "home"
	TabDocuments    Tab = "documents"
	TabAppointments Tab = "appointments"
	TabProfile      Tab = "profile"
)

var (
	ErrUnknownTab      = errors.New("nav: unknown tab")
	ErrNoDocument      = errors.New("nav: no document selected")
	ErrWrongScreen     = errors.New("nav: action not available on this screen")
	ErrEmptyDocumentID = errors.New("nav: document id is empty")
)

// Shell routes user actions to screen transitions. It carries no
// business logic; callers react to the transitions it reports.
type Shell struct {
	Screen           Screen `json:"screen"`
	Tab              Tab    `json:"tab"`
	ActiveDocumentID string `json:"active_document_id,omitempty"`
}

func NewShell() *Shell {
	return &Shell{Screen: ScreenList, Tab: TabHome}
}

// SelectDocument moves from the list to the document detail view.
func (s *Shell) SelectDocument(docID string) error {
	if docID == "" {
		return ErrEmptyDocumentID
	}
	if s.Screen != ScreenList {
		return ErrWrongScreen
	}
	s.ActiveDocumentID = docID
	s.Screen = ScreenDetail
	return nil
}

// OpenChat enters the chat view for the active document.
func (s *Shell) OpenChat() error {
	if s.Screen != ScreenDetail {
		return ErrWrongScreen
	}
	if s.ActiveDocumentID == "" {
		return ErrNoDocument
	}
	s.Screen = ScreenChat
	return nil
}

// Back steps one screen up. It reports whether a chat view was left,
// so the caller can discard the conversation.
func (s *Shell) Back() (closedChat bool) {
	switch s.Screen {
	case ScreenChat:
		s.Screen = ScreenDetail
		return true
	case ScreenDetail:
		s.Screen = ScreenList
		s.ActiveDocumentID = ""
		return false
	case ScreenList:
		return false
	}
	return false
}

// SwitchTab always resets to the list view and clears the active
// document. It reports whether a chat view was left.
func (s *Shell) SwitchTab(t Tab) (closedChat bool, err error) {
	switch t {
	case TabHome, TabDocuments, TabAppointments, TabProfile:
	default:
		return false, ErrUnknownTab
	}
	closedChat = s.Screen == ScreenChat
	s.Tab = t
	s.Screen = ScreenList
	s.ActiveDocumentID = ""
	return closedChat, nil
}
