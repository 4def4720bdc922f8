package services

import "time"

type NoticeType string

const (
	NoticeSuccess NoticeType = "success"
	NoticeInfo    NoticeType = "info"
	NoticeError   NoticeType = "error"
)

// NoticeDuration is how long a notice stays on screen.
const NoticeDuration = 2000 * time.Millisecond

// Notice is the transient outcome message shown after a mutation.
type Notice struct {
	Type     NoticeType
	Message  string
	Duration time.Duration
}

var (
	NoticeAdded   = Notice{Type: NoticeSuccess, Message: "Transaction added.", Duration: NoticeDuration}
	NoticeUpdated = Notice{Type: NoticeSuccess, Message: "Transaction updated.", Duration: NoticeDuration}
	NoticeDeleted = Notice{Type: NoticeInfo, Message: "Transaction deleted.", Duration: NoticeDuration}
)

// ErrorNotice wraps a failure message in a notice.
func ErrorNotice(msg string) Notice {
	return Notice{Type: NoticeError, Message: msg, Duration: NoticeDuration}
}
