package protocol

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"

	"gitlab.com/mcpricing.net/internal/domain"
	"gitlab.com/mcpricing.net/internal/static/errs"
)

// EncodeFrame prepends the message header to payload
func EncodeFrame(msgType byte, payload []byte) []byte {
	frame := make([]byte, HeaderSize+len(payload))
	binary.BigEndian.PutUint16(frame[0:2], MagicNumber)
	frame[2] = msgType
	frame[3] = 0 // Reserved
	binary.BigEndian.PutUint32(frame[4:8], uint32(len(payload)))
	copy(frame[HeaderSize:], payload)
	return frame
}

// DecodeFrame splits a frame into its message type and payload
func DecodeFrame(frame []byte) (byte, []byte, error) {
	if len(frame) < HeaderSize {
		return 0, nil, fmt.Errorf("frame too short: %d bytes", len(frame))
	}

	magic := binary.BigEndian.Uint16(frame[0:2])
	if magic != MagicNumber {
		return 0, nil, fmt.Errorf("invalid magic number: %x", magic)
	}

	msgType := frame[2]
	payloadLen := binary.BigEndian.Uint32(frame[4:8])
	if uint64(len(frame)-HeaderSize) != uint64(payloadLen) {
		return 0, nil, fmt.Errorf("payload length mismatch: header says %d, got %d", payloadLen, len(frame)-HeaderSize)
	}

	return msgType, frame[HeaderSize:], nil
}

func EncodeJobRequest(req domain.JobRequest) ([]byte, error) {
	payload, err := json.Marshal(NewJobRequestData(req))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal job request: %w", err)
	}
	return EncodeFrame(MsgJobRequest, payload), nil
}

// DecodeJobRequest parses a job request payload (without header)
func DecodeJobRequest(payload []byte) (domain.JobRequest, error) {
	var data JobRequestData
	if err := json.Unmarshal(payload, &data); err != nil {
		return domain.JobRequest{}, fmt.Errorf("%w: %v", errs.ErrMalformedRequest, err)
	}
	if data.ReplyChannel == "" {
		return domain.JobRequest{}, fmt.Errorf("%w: missing reply channel", errs.ErrMalformedRequest)
	}

	req := data.JobRequest()
	if err := req.Option.Validate(); err != nil {
		return domain.JobRequest{}, fmt.Errorf("%w: %v", errs.ErrMalformedRequest, err)
	}
	return req, nil
}

// EncodePayoutSample writes the IEEE-754 bits of the payout so it round-trips exactly
func EncodePayoutSample(sample domain.PayoutSample) []byte {
	payload := make([]byte, 8)
	binary.BigEndian.PutUint64(payload, math.Float64bits(sample.Value))
	return EncodeFrame(MsgPayoutSample, payload)
}

func DecodePayoutSample(frame []byte) (domain.PayoutSample, error) {
	msgType, payload, err := DecodeFrame(frame)
	if err != nil {
		return domain.PayoutSample{}, err
	}
	if msgType != MsgPayoutSample {
		return domain.PayoutSample{}, fmt.Errorf("%w: expected payout sample, got %#x", errs.ErrUnknownMessageType, msgType)
	}
	if len(payload) != 8 {
		return domain.PayoutSample{}, fmt.Errorf("invalid payout payload length: %d", len(payload))
	}
	return domain.PayoutSample{Value: math.Float64frombits(binary.BigEndian.Uint64(payload))}, nil
}

func EncodeControl(msg domain.ControlMessage) ([]byte, error) {
	payload, err := json.Marshal(ControlData{Tag: msg.Tag})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal control message: %w", err)
	}
	return EncodeFrame(MsgControl, payload), nil
}

// DecodeControl parses a control message payload (without header)
func DecodeControl(payload []byte) (domain.ControlMessage, error) {
	var data ControlData
	if err := json.Unmarshal(payload, &data); err != nil {
		return domain.ControlMessage{}, fmt.Errorf("failed to parse control message: %w", err)
	}
	return domain.ControlMessage{Tag: data.Tag}, nil
}
