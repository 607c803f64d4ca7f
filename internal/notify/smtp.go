package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       []string
}

// SMTPNotifier renders notices as HTML email and sends them over SMTP.
type SMTPNotifier struct {
	cfg SMTPConfig
}

func NewSMTP(cfg SMTPConfig) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg}
}

func (p *SMTPNotifier) Success(ctx context.Context, n SuccessNotice) error {
	subject := fmt.Sprintf("Churn Prediction - Success (%s)", n.SnapshotDate)
	return p.send(ctx, subject, successBody(n))
}

func (p *SMTPNotifier) Failure(ctx context.Context, n FailureNotice) error {
	subject := fmt.Sprintf("Churn Prediction - Failure (Step: %s)", n.Step)
	return p.send(ctx, subject, failureBody(n))
}

func (p *SMTPNotifier) send(ctx context.Context, subject, htmlBody string) error {
	_ = ctx
	auth := smtp.PlainAuth("", p.cfg.Username, p.cfg.Password, p.cfg.Host)
	addr := fmt.Sprintf("%s:%d", p.cfg.Host, p.cfg.Port)

	mime := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n\n"
	msg := []byte(fmt.Sprintf("To: %s\r\nSubject: %s\r\n%s\r\n%s",
		strings.Join(p.cfg.To, ", "), subject, mime, htmlBody))

	return smtp.SendMail(addr, auth, p.cfg.From, p.cfg.To, msg)
}

func successBody(n SuccessNotice) string {
	var b strings.Builder
	b.WriteString("<h3>Churn scoring run completed</h3>")
	fmt.Fprintf(&b, "<p>Snapshot date: <b>%s</b><br>Rows scored: <b>%d</b><br>Duration: %.1fs</p>",
		n.SnapshotDate, n.RowCount, n.DurationSeconds)

	b.WriteString("<p>Risk distribution:<ul>")
	for _, band := range []string{"A - High Risk", "B - Medium Risk", "C - Low Risk"} {
		fmt.Fprintf(&b, "<li>%s: %d</li>", band, n.RiskDistribution[band])
	}
	b.WriteString("</ul></p>")

	if n.MeanRisk != nil && n.MedianRisk != nil {
		fmt.Fprintf(&b, "<p>Mean risk: %.1f%%, median risk: %.1f%%</p>", *n.MeanRisk*100, *n.MedianRisk*100)
	}

	if len(n.TopReasons) > 0 {
		b.WriteString("<p>Top churn reasons:<ol>")
		for _, rc := range n.TopReasons {
			fmt.Fprintf(&b, "<li>%s (%d)</li>", rc.Reason, rc.Count)
		}
		b.WriteString("</ol></p>")
	}
	return b.String()
}

func failureBody(n FailureNotice) string {
	var b strings.Builder
	b.WriteString("<h3>Churn scoring run failed</h3>")
	fmt.Fprintf(&b, "<p>Step: <b>%s</b><br>Error type: %s</p>", n.Step, n.ErrorType)
	fmt.Fprintf(&b, "<pre>%s</pre>", n.ErrorMessage)
	return b.String()
}
