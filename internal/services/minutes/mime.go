package minutes

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const mimeBoundary = "__WORKPAL_BOUNDARY__"

// meetingDatePattern matches Japanese and slash date notations, e.g.
// 2026年8月29日 or 2026/8/29.
var meetingDatePattern = regexp.MustCompile(`(\d{4})[年/]\s*(\d{1,2})\s*[月/]\s*(\d{1,2})\s*日?`)

// extractMeetingDate pulls the first date out of the document text as
// YYYYMMDD, falling back to the given day when none is found.
func extractMeetingDate(text string, fallback time.Time) string {
	match := meetingDatePattern.FindStringSubmatch(text)
	if match == nil {
		return fallback.Format("20060102")
	}
	year, _ := strconv.Atoi(match[1])
	month, _ := strconv.Atoi(match[2])
	day, _ := strconv.Atoi(match[3])
	return fmt.Sprintf("%04d%02d%02d", year, month, day)
}

// encodeSubject wraps a UTF-8 subject in RFC 2047 base64 form.
func encodeSubject(subject string) string {
	return fmt.Sprintf("=?utf-8?B?%s?=", base64.StdEncoding.EncodeToString([]byte(subject)))
}

// buildRawMessage assembles a multipart/mixed Gmail message with a
// base64 text body and one attachment, returned base64url encoded
// without padding as the drafts API expects.
func buildRawMessage(to []string, subject, body, attachmentName, contentType string, attachment []byte) string {
	lines := []string{
		fmt.Sprintf("To: %s", strings.Join(to, ", ")),
		fmt.Sprintf("Subject: %s", encodeSubject(subject)),
		"MIME-Version: 1.0",
		fmt.Sprintf("Content-Type: multipart/mixed; boundary=%q", mimeBoundary),
		"",
		fmt.Sprintf("--%s", mimeBoundary),
		`Content-Type: text/plain; charset="UTF-8"`,
		"Content-Transfer-Encoding: base64",
		"",
		base64.StdEncoding.EncodeToString([]byte(body)),
		"",
		fmt.Sprintf("--%s", mimeBoundary),
		fmt.Sprintf("Content-Type: %s", contentType),
		"Content-Transfer-Encoding: base64",
		fmt.Sprintf("Content-Disposition: attachment; filename=%q", attachmentName),
		"",
		base64.StdEncoding.EncodeToString(attachment),
		"",
		fmt.Sprintf("--%s--", mimeBoundary),
	}
	message := strings.Join(lines, "\r\n")
	return base64.RawURLEncoding.EncodeToString([]byte(message))
}
