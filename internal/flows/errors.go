package flows

import "errors"

// ErrSendFailed wraps outbound delivery failures returned by Route. The
// FlowResponse returned alongside it is still valid and should be recorded.
var ErrSendFailed = errors.New("flows: reply delivery failed")
