package mailer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Astemirdum/lending-service/lending/internal/delivery"
	"github.com/Astemirdum/lending-service/lending/internal/model"
	cb "github.com/Astemirdum/lending-service/pkg/circuit_breaker"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Config struct {
	URL     string        `envconfig:"MAILER_URL" yaml:"url"`
	Token   string        `envconfig:"MAILER_TOKEN" yaml:"token"`
	Timeout time.Duration `envconfig:"MAILER_TIMEOUT" default:"10s" yaml:"timeout"`
	RPS     float64       `envconfig:"MAILER_RPS" default:"5" yaml:"rps"`
}

type Email struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

func Render(s model.TeacherSummary) Email {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", s.TeacherName)
	fmt.Fprintf(&b, "You have %d overdue book assignment(s):\n\n", len(s.OverdueStudents))
	for _, st := range s.OverdueStudents {
		fmt.Fprintf(&b, "- %s: %q, due %s (%d day(s) overdue)\n",
			st.StudentName, st.BookTitle, st.ReturnDue.Format(time.DateOnly), st.DaysOverdue)
	}
	return Email{
		To:      s.TeacherEmail,
		Subject: fmt.Sprintf("Overdue books: %d student(s)", len(s.OverdueStudents)),
		Body:    b.String(),
	}
}

// HTTPSender posts rendered emails to a mail gateway. Client errors are permanent; server
// errors, transport errors and an open breaker are worth another attempt.
type HTTPSender struct {
	log     *zap.Logger
	client  *http.Client
	cfg     Config
	breaker cb.CircuitBreaker
	limiter *rate.Limiter
}

func NewHTTPSender(cfg Config, breaker cb.CircuitBreaker, log *zap.Logger) *HTTPSender {
	limit := rate.Inf
	if cfg.RPS > 0 {
		limit = rate.Limit(cfg.RPS)
	}
	return &HTTPSender{
		log:     log.Named("mailer"),
		client:  &http.Client{Timeout: cfg.Timeout},
		cfg:     cfg,
		breaker: breaker,
		limiter: rate.NewLimiter(limit, 1),
	}
}

var _ delivery.Sender = (*HTTPSender)(nil)

func (s *HTTPSender) Send(ctx context.Context, summary model.TeacherSummary) error {
	if summary.TeacherEmail == "" {
		return delivery.Permanent(errors.New("teacher has no email"))
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}

	var status int
	err := s.breaker.Call(func() error {
		code, err := s.post(ctx, Render(summary))
		status = code
		if err != nil {
			return err
		}
		if code >= http.StatusInternalServerError {
			return fmt.Errorf("mail gateway: %d", code)
		}
		return nil
	})
	if err != nil {
		s.log.Warn("send", zap.Error(err), zap.String("breaker", s.breaker.State().String()))
		return err
	}
	if status >= http.StatusBadRequest {
		return delivery.Permanent(fmt.Errorf("mail gateway rejected message: %d", status))
	}
	return nil
}

func (s *HTTPSender) post(ctx context.Context, email Email) (int, error) {
	data, err := json.Marshal(email)
	if err != nil {
		return 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.URL, bytes.NewReader(data))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.Token)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

// LogSender writes emails to the log instead of sending them.
type LogSender struct {
	log *zap.Logger
}

func NewLogSender(log *zap.Logger) *LogSender {
	return &LogSender{log: log.Named("mailer")}
}

func (s *LogSender) Send(_ context.Context, summary model.TeacherSummary) error {
	email := Render(summary)
	s.log.Info("email",
		zap.String("to", email.To),
		zap.String("subject", email.Subject),
		zap.String("body", email.Body))
	return nil
}
