package protocol

// Protocol constants
const (
	MagicNumber uint16 = 0xCAFE

	// Message types
	MsgJobRequest   byte = 0x01
	MsgPayoutSample byte = 0x02
	MsgControl      byte = 0x03

	HeaderSize = 8

	// RequestQueue is the shared work queue every worker consumes from
	RequestQueue = "pricing:requests"

	replyChannelPrefix = "pricing:result"
)
