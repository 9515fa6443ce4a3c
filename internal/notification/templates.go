package notification

import (
	"bytes"
	"fmt"
	"html/template"
	"math"
	"strings"
	"time"
)

var templates = template.Must(template.New("mail").Parse(`
{{define "verify"}}<h2>Hello, <span style="color: crimson">{{.FirstName}}</span></h2>
<p>Thanks for creating an account with us. Please click the link below to verify your email address. The link expires in {{.ExpiresIn}}.</p>
<a href="{{.Link}}" target="_blank" style="background-color: crimson; color: white; padding: 10px 20px; border-radius: 5px; text-decoration: none;">Verify Email</a>{{end}}

{{define "resend"}}<h2>Hello, <span style="color: crimson">{{.FirstName}}</span></h2>
<p>A new verification link has been generated for you. The link expires in {{.ExpiresIn}}.</p>
<a href="{{.Link}}" target="_blank" style="background-color: crimson; color: white; padding: 10px 20px; border-radius: 5px; text-decoration: none;">Verify Email</a>{{end}}

{{define "welcome"}}<h2>Dear, <span style="color: crimson">{{.FirstName}}</span></h2>
<p>Welcome aboard! Your email address is confirmed and you are now part of the Brints Estate community.</p>
<ul>
<li>Explore our <a href="{{.Link}}" target="_blank">website</a> to find your dream home.</li>
<li>Check out our <a href="{{.Link}}/properties" target="_blank">listings</a>.</li>
</ul>
<p>If you have any questions, just reply to this email.</p>
<p>The Brints Estate Team</p>{{end}}

{{define "reset"}}<h2>Hello, <span style="color: crimson">{{.FirstName}}</span></h2>
<p>We received a request to reset your password. The link expires in {{.ExpiresIn}}. If you did not ask for this you can ignore this email.</p>
<a href="{{.Link}}" target="_blank" style="background-color: crimson; color: white; padding: 10px 20px; border-radius: 5px; text-decoration: none;">Reset Password</a>{{end}}
`))

type mailData struct {
	FirstName string
	Link      string
	ExpiresIn string
}

func render(name string, data mailData) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s template: %w", name, err)
	}
	return buf.String(), nil
}

func otpMessage(otp string, ttl time.Duration) string {
	return fmt.Sprintf("Your Brints Estate verification code is %s. It expires in %s.", otp, humanize(ttl))
}

func firstName(fullName string) string {
	if f := strings.Fields(fullName); len(f) > 0 {
		return f[0]
	}
	return "there"
}

// humanize renders a positive duration in whole minutes.
func humanize(d time.Duration) string {
	minutes := int(math.Ceil(d.Minutes()))
	if minutes <= 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", minutes)
}
