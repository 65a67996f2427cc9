package contracts

// Channel actions carried in ChannelPayload.Action.
const (
	ChannelActionMessage = "message"
	ChannelActionJoin    = "join"
	ChannelActionLeave   = "leave"
	ChannelActionList    = "list"
)

// Presence statuses carried in PresencePayload.Status.
const (
	PresenceOnline  = "online"
	PresenceOffline = "offline"
	PresenceAway    = "away"
	PresenceBusy    = "busy"
)

// Protocol error codes. The enumeration is stable; new codes may be
// appended but existing values never change.
const (
	CodeInvalidMessage       = 1000
	CodeAuthenticationFailed = 1001
	CodeUnauthorized         = 1002
	CodeMudNotFound          = 1003
	CodeUserNotFound         = 1004
	CodeChannelNotFound      = 1005
	CodeRateLimited          = 1006
	CodeInternalError        = 1007
	CodeProtocolError        = 1008
	CodeUnsupportedVersion   = 1009
	CodeMessageTooLarge      = 1010
)

// TellPayload is the payload for direct user-to-user messages.
type TellPayload struct {
	Message   string `json:"message"`
	Formatted string `json:"formatted,omitempty"`
}

// EmotePayload is the payload for emote and emoteto messages.
type EmotePayload struct {
	Action    string `json:"action"`
	Target    string `json:"target,omitempty"`
	Formatted string `json:"formatted,omitempty"`
}

// ChannelPayload is the payload for channel messages and membership
// changes.
type ChannelPayload struct {
	Channel   string `json:"channel"`
	Message   string `json:"message"`
	Action    string `json:"action"`
	Formatted string `json:"formatted,omitempty"`
}

// WhoPayload is the payload for who requests and responses.
type WhoPayload struct {
	Users   []UserInfo `json:"users,omitempty"`
	Request bool       `json:"request,omitempty"`
}

// FingerPayload is the payload for finger requests and responses.
type FingerPayload struct {
	User    string    `json:"user"`
	Info    *UserInfo `json:"info,omitempty"`
	Request bool      `json:"request,omitempty"`
}

// LocatePayload is the payload for locate requests and responses.
type LocatePayload struct {
	User      string         `json:"user"`
	Locations []UserLocation `json:"locations,omitempty"`
	Request   bool           `json:"request,omitempty"`
}

// PresencePayload announces a user's presence state.
type PresencePayload struct {
	Status   string `json:"status"`
	Activity string `json:"activity,omitempty"`
	Location string `json:"location,omitempty"`
}

// AuthPayload carries gateway authentication credentials.
type AuthPayload struct {
	Token     string `json:"token,omitempty"`
	MudName   string `json:"mudName,omitempty"`
	Challenge string `json:"challenge,omitempty"`
	Response  string `json:"response,omitempty"`
}

// PingPayload carries the millisecond timestamp echoed by pong.
type PingPayload struct {
	Timestamp int64 `json:"timestamp"`
}

// ErrorPayload reports a protocol-level error from a peer or the
// gateway.
type ErrorPayload struct {
	Code    int                    `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// UserInfo describes a user in who and finger responses.
type UserInfo struct {
	Username    string `json:"username"`
	DisplayName string `json:"displayName,omitempty"`
	IdleTime    int    `json:"idleTime,omitempty"`
	Location    string `json:"location,omitempty"`
	Level       int    `json:"level,omitempty"`
	Race        string `json:"race,omitempty"`
	ClassName   string `json:"className,omitempty"`
	Guild       string `json:"guild,omitempty"`
	LastLogin   string `json:"lastLogin,omitempty"`
	Email       string `json:"email,omitempty"`
	RealName    string `json:"realName,omitempty"`
	Plan        string `json:"plan,omitempty"`
}

// UserLocation is one hit in a locate response.
type UserLocation struct {
	Mud    string `json:"mud"`
	Room   string `json:"room,omitempty"`
	Area   string `json:"area,omitempty"`
	Online bool   `json:"online"`
}
