package protocol

import (
	"fmt"

	"gitlab.com/mcpricing.net/internal/domain"
)

// Protocol data structures
type (
	// JobRequestData is the wire form of a job request
	JobRequestData struct {
		InterestRate float64 `json:"interestRate"`
		Volatility   float64 `json:"volatility"`
		StrikePrice  float64 `json:"strikePrice"`
		Duration     int     `json:"duration"`
		InitialPrice float64 `json:"initialPrice"`
		OptionName   string  `json:"optionName"`
		PayOutType   string  `json:"payOutType"`
		ReplyChannel string  `json:"replyChannel"`
	}

	// ControlData is the wire form of a control message
	ControlData struct {
		Tag string `json:"tag"`
	}
)

func NewJobRequestData(req domain.JobRequest) JobRequestData {
	return JobRequestData{
		InterestRate: req.Option.InterestRate,
		Volatility:   req.Option.Volatility,
		StrikePrice:  req.Option.StrikePrice,
		Duration:     req.Option.Duration,
		InitialPrice: req.Option.InitialPrice,
		OptionName:   req.Option.Name,
		PayOutType:   string(req.Option.PayoutType),
		ReplyChannel: req.ReplyChannel,
	}
}

// JobRequest converts the wire form back into a domain request
func (d JobRequestData) JobRequest() domain.JobRequest {
	return domain.JobRequest{
		Option: domain.OptionSpec{
			Name:         d.OptionName,
			PayoutType:   domain.PayoutType(d.PayOutType),
			InterestRate: d.InterestRate,
			Volatility:   d.Volatility,
			StrikePrice:  d.StrikePrice,
			Duration:     d.Duration,
			InitialPrice: d.InitialPrice,
		},
		ReplyChannel: d.ReplyChannel,
	}
}

// ReplyChannelName derives the reply channel of a job from the identity of
// the job owner and the option being priced
func ReplyChannelName(ownerID string, option domain.OptionSpec) string {
	return fmt.Sprintf("%s:%s:%s:%s", replyChannelPrefix, ownerID, option.Name, option.PayoutType)
}
