package services

import (
	"errors"

	"psylink/internal/config"
	"psylink/internal/money"
	"psylink/internal/sign"
)

var ErrMissingName = errors.New("missing product name")

type PrepareInput struct {
	Name       string
	Money      float64
	OutTradeNo string
	Param      string
}

type PrepareResult struct {
	SubmitURL string            `json:"submitUrl"`
	Params    map[string]string `json:"params"`
}

// Prepare builds the signed parameter set the browser submits to the
// gateway. Notify and return URLs come from server configuration only
// and are re-checked here: a misconfigured or non-HTTPS URL hard-fails
// the call instead of producing a request the gateway would accept.
func (s *PaymentService) Prepare(in PrepareInput) (*PrepareResult, error) {
	if in.Name == "" {
		return nil, ErrMissingName
	}
	if in.OutTradeNo == "" {
		return nil, ErrMissingOutTradeNo
	}
	if _, err := money.Cents(in.Money); err != nil {
		return nil, err
	}
	for _, raw := range []string{s.NotifyURL, s.ReturnURL} {
		if err := config.RequireHTTPS(raw); err != nil {
			return nil, err
		}
	}

	params := map[string]string{
		"name":         in.Name,
		"money":        money.Format(in.Money),
		"type":         "alipay",
		"out_trade_no": in.OutTradeNo,
		"notify_url":   s.NotifyURL,
		"pid":          s.PID,
		"param":        in.Param,
		"return_url":   s.ReturnURL,
		"sign_type":    "MD5",
	}
	params["sign"] = sign.Sign(params, s.Key)

	return &PrepareResult{
		SubmitURL: s.Gateway + "/submit.php",
		Params:    params,
	}, nil
}
