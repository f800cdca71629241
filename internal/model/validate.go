package model

import (
	"errors"
	"net/url"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	MaxHoursPerEntry  = 24.0
	MaxTicketKeyLen   = 64
	MaxTicketURLLen   = 512
	MaxProjectNameLen = 200
)

func (p Project) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required.Error("project name is required"),
			validation.Length(1, MaxProjectNameLen)),
	)
}

func (e TimeEntry) Validate() error {
	hasURL := e.TicketURL != nil && *e.TicketURL != ""
	return validation.ValidateStruct(&e,
		validation.Field(&e.ProjectID, validation.Required.Error("select a project")),
		validation.Field(&e.HoursWorked,
			validation.Required.Error("hours must be greater than 0"),
			validation.Min(0.0).Exclusive().Error("hours must be greater than 0"),
			validation.Max(MaxHoursPerEntry).Error("hours must be at most 24")),
		validation.Field(&e.WorkDate, validation.Required),
		validation.Field(&e.TicketKey, validation.Length(0, MaxTicketKeyLen),
			validation.When(hasURL, validation.Required.Error("a ticket key is required when a ticket url is set"))),
		validation.Field(&e.TicketURL, validation.Length(0, MaxTicketURLLen), validation.By(absoluteHTTP)),
	)
}

func absoluteHTTP(value any) error {
	s, ok := value.(*string)
	if !ok || s == nil || *s == "" {
		return nil
	}
	if !isAbsoluteHTTP(*s) {
		return errors.New("must be an absolute http or https url")
	}
	return nil
}

// NormalizeTicketURL returns nil when raw cannot be made into an absolute
// http(s) URL. A protocol-relative "//host" gets https.
func NormalizeTicketURL(raw string) *string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	if strings.HasPrefix(s, "//") {
		s = "https:" + s
	}
	if isAbsoluteHTTP(s) {
		return &s
	}
	if withScheme := "https://" + s; isAbsoluteHTTP(withScheme) {
		return &withScheme
	}
	return nil
}

func isAbsoluteHTTP(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
