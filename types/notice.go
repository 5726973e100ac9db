package types

import "strconv"

type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
)

// NoticeDismissAfterMs is how long the dashboard keeps a toast on screen.
const NoticeDismissAfterMs = 4000

// Notice is a toast the dashboard shows after an action.
type Notice struct {
	Level          NoticeLevel `json:"level"`
	Message        string      `json:"message"`
	DismissAfterMs int         `json:"dismiss_after_ms"`
}

func Success(message string) Notice {
	return Notice{Level: NoticeSuccess, Message: message, DismissAfterMs: NoticeDismissAfterMs}
}

func Failure(message string) Notice {
	return Notice{Level: NoticeError, Message: message, DismissAfterMs: NoticeDismissAfterMs}
}

func itoa(n int64) string { return strconv.FormatInt(n, 10) }
