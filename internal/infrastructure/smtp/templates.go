package smtp

import (
	"strings"
	"text/template"

	"github.com/vanishmail/internal/otp"
)

var signupOTPTmpl = template.Must(template.New("signup_otp").Parse(
	`Welcome to vanishmail!

Your confirmation code is {{.Code}}.

It expires in {{.TTLMinutes}} minutes. If you did not request an account, ignore this email.
`))

var resetOTPTmpl = template.Must(template.New("reset_otp").Parse(
	`Your vanishmail password reset code is {{.Code}}.

It expires in {{.TTLMinutes}} minutes. If you did not request a reset, ignore this email.
`))

type otpData struct {
	Code       string
	TTLMinutes int
}

func renderSignupOTP(code string) (string, error) {
	return render(signupOTPTmpl, code)
}

func renderResetOTP(code string) (string, error) {
	return render(resetOTPTmpl, code)
}

func render(t *template.Template, code string) (string, error) {
	var b strings.Builder
	err := t.Execute(&b, otpData{Code: code, TTLMinutes: int(otp.DefaultTTL.Minutes())})
	if err != nil {
		return "", err
	}
	return b.String(), nil
}
