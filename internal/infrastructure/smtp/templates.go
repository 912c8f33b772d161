package smtp

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"text/template"
	"time"
)

const otpSubject = "Verify Your Email"

var (
	otpText = template.Must(template.New("otp_text").Parse(
		"Enter {{.Code}} in the app to verify your email address.\n\nThis code expires in {{.Expiry}}.\n"))
	otpHTML = htmltemplate.Must(htmltemplate.New("otp_html").Parse(
		"<p>Enter <b>{{.Code}}</b> in the app to verify your email address.</p>" +
			"<p>This code <b>expires in {{.Expiry}}</b>.</p>"))
)

// OTPMessage renders the verification email carrying the plaintext code.
func OTPMessage(to, code string, ttl time.Duration) (Message, error) {
	data := struct {
		Code   string
		Expiry string
	}{Code: code, Expiry: humanizeTTL(ttl)}

	var text, html bytes.Buffer
	if err := otpText.Execute(&text, data); err != nil {
		return Message{}, fmt.Errorf("render otp text: %w", err)
	}
	if err := otpHTML.Execute(&html, data); err != nil {
		return Message{}, fmt.Errorf("render otp html: %w", err)
	}
	return Message{To: to, Subject: otpSubject, Text: text.String(), HTML: html.String()}, nil
}

// humanizeTTL prints whole hours or minutes ("1 hour", "30 minutes").
func humanizeTTL(d time.Duration) string {
	switch {
	case d >= time.Hour && d%time.Hour == 0:
		return plural(int(d/time.Hour), "hour")
	case d >= time.Minute:
		return plural(int(d/time.Minute), "minute")
	default:
		return plural(int(d/time.Second), "second")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
