package notification

import (
	"context"
	"fmt"

	"estate-api/pkg/utils"

	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"
)

type messageCreator interface {
	CreateMessage(params *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error)
}

type TwilioSender struct {
	api  messageCreator
	from string
	log  *zap.Logger
}

func NewTwilioSender(cfg utils.SMSConfig, log *zap.Logger) *TwilioSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	return &TwilioSender{
		api:  client.Api,
		from: cfg.From,
		log:  log.With(zap.String("sms", "twilio")),
	}
}

func (s *TwilioSender) Send(ctx context.Context, to, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	params := &openapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.from)
	params.SetBody(body)

	resp, err := s.api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("twilio create message to %s: %w", to, err)
	}

	if resp != nil && resp.Sid != nil {
		s.log.Debug("SMS queued", zap.String("sid", *resp.Sid), zap.String("to", to))
	}
	return nil
}
