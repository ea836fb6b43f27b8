package mail

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

type Template string

const (
	TemplateVerification  Template = "verification"
	TemplatePasswordReset Template = "password_reset"
)

var subjects = map[Template]string{
	TemplateVerification:  "Verification Code",
	TemplatePasswordReset: "Password Reset Code",
}

// CodeData is the context for the code carrying templates.
type CodeData struct {
	Code      string
	ExpiresIn time.Duration
}

type message struct {
	Subject string
	Body    string
}

// templates is parsed once; each entry is layout + its content block.
var templates = mustParse()

func mustParse() map[Template]*template.Template {
	out := make(map[Template]*template.Template, len(subjects))
	for name := range subjects {
		t := template.Must(template.ParseFS(templateFS, "templates/layout.html", "templates/"+string(name)+".html"))
		out[name] = t
	}
	return out
}

func render(name Template, data CodeData) (message, error) {
	t, ok := templates[name]
	if !ok {
		return message{}, fmt.Errorf("unknown template %q", name)
	}
	subject := subjects[name]
	var buf bytes.Buffer
	err := t.ExecuteTemplate(&buf, "layout", struct {
		Subject   string
		Code      string
		ExpiresIn time.Duration
	}{subject, data.Code, data.ExpiresIn})
	if err != nil {
		return message{}, fmt.Errorf("render %s: %w", name, err)
	}
	return message{Subject: subject, Body: buf.String()}, nil
}
