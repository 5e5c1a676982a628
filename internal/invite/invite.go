// Package invite composes e-mail invitations for a scheduled meeting:
// a subject, a plain-text body, and an ICS calendar attachment. Delivery
// is left to the caller.
package invite

import (
	"fmt"
	"strings"
	"time"

	"github.com/timelyapp/timely/internal/model"
)

const (
	prodID    = "-//Timely//Timely Client//EN"
	uidDomain = "timely.app"
	icsStamp  = "20060102T150405Z"
)

// Invitation is a composed invite ready to hand to a mail transport.
type Invitation struct {
	Subject  string
	Body     string
	ICS      string
	Filename string
}

// Compose builds the invitation for meeting. The link may be nil for
// meetings without a remote join URL; location then falls back to the
// platform label.
func Compose(m model.Meeting, link *model.MeetingLink, organizer string) Invitation {
	location := string(m.Platform)
	if link != nil && link.JoinURL != "" {
		location = link.JoinURL
	}

	var body strings.Builder
	fmt.Fprintf(&body, "You are invited to %q.\n\n", m.Title)
	fmt.Fprintf(&body, "When: %s (%d minutes)\n", m.StartTime.UTC().Format(time.RFC1123), m.DurationMinutes)
	fmt.Fprintf(&body, "Where: %s\n", location)
	if link != nil && link.Password != "" {
		fmt.Fprintf(&body, "Passcode: %s\n", link.Password)
	}
	if organizer != "" {
		fmt.Fprintf(&body, "\nOrganized by %s.\n", organizer)
	}

	return Invitation{
		Subject:  "Invitation: " + m.Title,
		Body:     body.String(),
		ICS:      renderICS(m, location, organizer),
		Filename: "invite.ics",
	}
}

func renderICS(m model.Meeting, location, organizer string) string {
	start := m.StartTime.UTC()
	end := m.EndTime().UTC()

	description := fmt.Sprintf("Scheduled via Timely by %s.", organizer)
	if organizer == "" {
		description = "Scheduled via Timely."
	}

	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:" + prodID,
		"METHOD:REQUEST",
		"BEGIN:VEVENT",
		fmt.Sprintf("UID:%s@%s", m.ID, uidDomain),
		"DTSTAMP:" + time.Now().UTC().Format(icsStamp),
		"DTSTART:" + start.Format(icsStamp),
		"DTEND:" + end.Format(icsStamp),
		"SUMMARY:" + escapeText(m.Title),
		"DESCRIPTION:" + escapeText(description),
		"LOCATION:" + escapeText(location),
		"STATUS:CONFIRMED",
		"SEQUENCE:0",
		"END:VEVENT",
		"END:VCALENDAR",
	}
	return strings.Join(lines, "\r\n") + "\r\n"
}

// escapeText applies RFC 5545 text escaping.
func escapeText(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		";", `\;`,
		",", `\,`,
		"\n", `\n`,
	)
	return r.Replace(s)
}
