package mail

import (
	"fmt"

	"campus_rentals/internal/domain"
)

type Config struct {
	Transport string // smtp|api
	AppURL    string
	SMTP      SMTPConfig
	API       APIConfig
}

// New returns the configured transport. A missing or incomplete transport
// configuration is an error; callers treat it as fatal for the batch.
func New(cfg Config) (domain.Mailer, error) {
	var (
		m   domain.Mailer
		err error
	)
	switch cfg.Transport {
	case "smtp", "":
		var s *SMTPMailer
		if s, err = NewSMTP(cfg.SMTP, cfg.AppURL); err == nil {
			m = s
		}
	case "api":
		var a *APIMailer
		if a, err = NewAPI(cfg.API, cfg.AppURL); err == nil {
			m = a
		}
	default:
		err = fmt.Errorf("mail: unknown transport %q", cfg.Transport)
	}
	// never hand back a typed nil inside the interface
	if err != nil {
		return nil, err
	}
	return m, nil
}
