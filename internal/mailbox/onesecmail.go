package mailbox

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/handiism/bandcamper/internal/http"
)

// DefaultOneSecMailAPI is the public 1secmail endpoint.
const DefaultOneSecMailAPI = "https://www.1secmail.com/api/v1/"

// OneSecMail is a Provider backed by the 1secmail HTTP API.
type OneSecMail struct {
	client *http.Client
	api    string
}

// NewOneSecMail creates a provider. An empty api uses DefaultOneSecMailAPI.
func NewOneSecMail(client *http.Client, api string) *OneSecMail {
	if api == "" {
		api = DefaultOneSecMailAPI
	}
	return &OneSecMail{client: client, api: api}
}

// Generate creates a random mailbox.
func (p *OneSecMail) Generate(ctx context.Context) (Mailbox, error) {
	resp, err := p.client.Get(ctx, p.api, http.WithParams(url.Values{
		"action": {"genRandomMailbox"},
		"count":  {"1"},
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to generate mailbox: %w", err)
	}

	address := gjson.GetBytes(resp.Body, "0").String()
	login, domain, ok := strings.Cut(address, "@")
	if !ok || login == "" || domain == "" {
		return nil, fmt.Errorf("unexpected mailbox address %q", address)
	}

	return &oneSecMailbox{
		provider: p,
		login:    login,
		domain:   domain,
		read:     make(map[int64]Message),
	}, nil
}

type oneSecMailbox struct {
	provider *OneSecMail
	login    string
	domain   string

	// read caches full messages by id; bodies never change once delivered.
	read map[int64]Message
}

func (m *oneSecMailbox) Address() string {
	return m.login + "@" + m.domain
}

func (m *oneSecMailbox) Messages(ctx context.Context, validators ...Validator) ([]Message, error) {
	resp, err := m.provider.client.Get(ctx, m.provider.api, http.WithParams(url.Values{
		"action": {"getMessages"},
		"login":  {m.login},
		"domain": {m.domain},
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	var out []Message
	for _, item := range gjson.ParseBytes(resp.Body).Array() {
		header := Message{
			ID:      item.Get("id").Int(),
			From:    item.Get("from").String(),
			Subject: item.Get("subject").String(),
		}
		if !accept(header, validators) {
			continue
		}

		msg, err := m.readMessage(ctx, header.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, msg)
	}
	return out, nil
}

func (m *oneSecMailbox) readMessage(ctx context.Context, id int64) (Message, error) {
	if msg, ok := m.read[id]; ok {
		return msg, nil
	}

	resp, err := m.provider.client.Get(ctx, m.provider.api, http.WithParams(url.Values{
		"action": {"readMessage"},
		"login":  {m.login},
		"domain": {m.domain},
		"id":     {strconv.FormatInt(id, 10)},
	}))
	if err != nil {
		return Message{}, fmt.Errorf("failed to read message %d: %w", id, err)
	}

	body := gjson.ParseBytes(resp.Body)
	msg := Message{
		ID:       id,
		From:     body.Get("from").String(),
		Subject:  body.Get("subject").String(),
		HTMLBody: body.Get("htmlBody").String(),
	}
	if msg.HTMLBody == "" {
		msg.HTMLBody = body.Get("body").String()
	}
	m.read[id] = msg
	return msg, nil
}
