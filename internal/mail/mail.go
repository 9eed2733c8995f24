// Package mail turns raw inbound messages into the plain-text form the
// triage workflow reads: HTML bodies flattened to text, quoted replies
// trimmed, whitespace collapsed, and the sender address validated.
package mail

import (
	"errors"
	"fmt"
	netmail "net/mail"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	ErrInvalidSender = errors.New("invalid sender address")
	ErrEmptyBody     = errors.New("message body is empty")
	ErrInvalidHTML   = errors.New("invalid html body")
)

// Inbound is a message as received from the mailbox or submission API.
// ContentType selects HTML handling; when empty the body is sniffed.
type Inbound struct {
	Sender      string `json:"sender"`
	Subject     string `json:"subject"`
	Body        string `json:"body"`
	ContentType string `json:"content_type,omitempty"`
}

// Message is a normalized inbound message.
type Message struct {
	Sender  string
	Subject string
	Body    string
}

var (
	htmlSniff    = regexp.MustCompile(`(?i)<(html|body|p|div|br|table|span)\b`)
	quoteHeader  = regexp.MustCompile(`(?i)^(on .+ wrote:|-{2,}\s*original message\s*-{2,})$`)
	spaceRun     = regexp.MustCompile(`[ \t\f\v\x{00a0}]+`)
	replyPrefix  = regexp.MustCompile(`(?i)^\s*((re|fw|fwd|aw)\s*:\s*)+`)
	blockElement = "p, div, li, tr, h1, h2, h3, h4, h5, h6, blockquote, pre, table"
)

// Normalize validates the sender and produces the plain-text body and
// subject. A body that is empty after normalization is rejected.
func Normalize(in Inbound) (Message, error) {
	sender, err := ParseSender(in.Sender)
	if err != nil {
		return Message{}, err
	}

	body := in.Body
	if isHTML(in) {
		if body, err = HTMLToText(body); err != nil {
			return Message{}, err
		}
	}

	body = Collapse(TrimQuoted(body))
	if body == "" {
		return Message{}, ErrEmptyBody
	}

	return Message{
		Sender:  sender,
		Subject: CleanSubject(in.Subject),
		Body:    body,
	}, nil
}

// ParseSender validates an RFC 5322 address and returns the bare address
// in lowercase.
func ParseSender(s string) (string, error) {
	addr, err := netmail.ParseAddress(strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidSender, s)
	}
	return strings.ToLower(addr.Address), nil
}

// CleanSubject removes leading reply and forward markers and collapses
// whitespace.
func CleanSubject(s string) string {
	s = replyPrefix.ReplaceAllString(s, "")
	return strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
}

// HTMLToText flattens an HTML body. Scripts, styles, and quoted reply
// blocks are dropped; block elements and <br> become line breaks.
func HTMLToText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidHTML, err)
	}

	doc.Find("head, script, style, blockquote, .gmail_quote, #divRplyFwdMsg").Remove()
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find(blockElement).Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	return doc.Find("body").Text(), nil
}

// TrimQuoted cuts the body at the first quoted-reply marker: a line that
// starts with ">" or a reply header such as "On ... wrote:".
func TrimQuoted(body string) string {
	lines := strings.Split(strings.ReplaceAll(body, "\r\n", "\n"), "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, ">") || quoteHeader.MatchString(trimmed) {
			return strings.Join(lines[:i], "\n")
		}
	}
	return strings.Join(lines, "\n")
}

// Collapse squeezes runs of spaces within lines, trims every line, and
// keeps at most one blank line between paragraphs.
func Collapse(body string) string {
	var out []string
	blank := false
	for line := range strings.SplitSeq(body, "\n") {
		line = strings.TrimSpace(spaceRun.ReplaceAllString(line, " "))
		if line == "" {
			blank = len(out) > 0
			continue
		}
		if blank {
			out = append(out, "")
			blank = false
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

func isHTML(in Inbound) bool {
	if ct := strings.ToLower(in.ContentType); ct != "" {
		return strings.HasPrefix(ct, "text/html")
	}
	return htmlSniff.MatchString(in.Body)
}
