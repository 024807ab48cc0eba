package mail

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"

	"github.com/manifold-app/backend/config"
)

type mockMailClient struct {
	mu       sync.Mutex
	sendFunc func(messages ...*mail.Msg) error
	calls    int
	sent     chan struct{}
}

func (m *mockMailClient) DialAndSend(messages ...*mail.Msg) error {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.sent != nil {
		defer func() { m.sent <- struct{}{} }()
	}
	if m.sendFunc != nil {
		return m.sendFunc(messages...)
	}
	return nil
}

func (m *mockMailClient) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func getTestMailConfig() *config.MailConfig {
	return &config.MailConfig{
		Host:        "localhost",
		Port:        587,
		Encryption:  "starttls",
		FromAddress: "noreply@example.com",
		FromName:    "Manifold",
	}
}

func writeTestTemplate(t *testing.T, dir, filename, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, filename), []byte(content), 0644))
}

func TestNewServiceWithClient(t *testing.T) {
	t.Run("valid configuration", func(t *testing.T) {
		service, err := NewServiceWithClient(getTestMailConfig(), nil, &mockMailClient{})
		require.NoError(t, err)
		assert.NotNil(t, service)
	})

	t.Run("missing from address", func(t *testing.T) {
		cfg := getTestMailConfig()
		cfg.FromAddress = ""

		service, err := NewServiceWithClient(cfg, nil, &mockMailClient{})
		require.Error(t, err)
		assert.Nil(t, service)
		assert.Contains(t, err.Error(), "MAIL_FROM_ADDRESS is required")
	})

	t.Run("missing templates directory is not an error", func(t *testing.T) {
		cfg := getTestMailConfig()
		cfg.TemplatesDir = "/non/existent/path"

		service, err := NewServiceWithClient(cfg, nil, &mockMailClient{})
		require.NoError(t, err)
		assert.Nil(t, service.htmlTemplates)
		assert.Nil(t, service.textTemplates)
	})
}

func TestService_SendTemplate(t *testing.T) {
	tempDir := t.TempDir()
	writeTestTemplate(t, tempDir, "verify_email.html", `<p>Hello {{.Name}}, visit {{.Link}}</p>`)
	writeTestTemplate(t, tempDir, "verify_email.txt", `Hello {{.Name}}, visit {{.Link}}`)

	cfg := getTestMailConfig()
	cfg.TemplatesDir = tempDir

	t.Run("renders and sends", func(t *testing.T) {
		client := &mockMailClient{}
		service, err := NewServiceWithClient(cfg, nil, client)
		require.NoError(t, err)

		err = service.SendTemplate("verify_email", []string{"user@example.com"}, "Verify your email",
			map[string]any{"Name": "Ada", "Link": "http://localhost:3000/verify?token=abc"})
		require.NoError(t, err)
		assert.Equal(t, 1, client.callCount())
	})

	t.Run("unknown template", func(t *testing.T) {
		client := &mockMailClient{}
		service, err := NewServiceWithClient(cfg, nil, client)
		require.NoError(t, err)

		err = service.SendTemplate("nonexistent", []string{"user@example.com"}, "Subject", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "template 'nonexistent' not found")
		assert.Zero(t, client.callCount())
	})

	t.Run("invalid recipient", func(t *testing.T) {
		client := &mockMailClient{}
		service, err := NewServiceWithClient(cfg, nil, client)
		require.NoError(t, err)

		err = service.SendTemplate("verify_email", []string{"not-an-address"}, "Subject", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to set TO addresses")
	})
}

func TestService_SendTemplateAsync(t *testing.T) {
	tempDir := t.TempDir()
	writeTestTemplate(t, tempDir, "verify_email.txt", `Visit {{.Link}}`)

	cfg := getTestMailConfig()
	cfg.TemplatesDir = tempDir

	t.Run("delivers in the background", func(t *testing.T) {
		client := &mockMailClient{sent: make(chan struct{}, 1)}
		service, err := NewServiceWithClient(cfg, nil, client)
		require.NoError(t, err)

		service.SendTemplateAsync("verify_email", []string{"user@example.com"}, "Verify",
			map[string]any{"Link": "http://localhost:3000/verify?token=abc"})

		select {
		case <-client.sent:
		case <-time.After(time.Second):
			t.Fatal("async send never reached the client")
		}
	})

	t.Run("swallows delivery errors", func(t *testing.T) {
		client := &mockMailClient{
			sent:     make(chan struct{}, 1),
			sendFunc: func(...*mail.Msg) error { return assert.AnError },
		}
		service, err := NewServiceWithClient(cfg, nil, client)
		require.NoError(t, err)

		service.SendTemplateAsync("verify_email", []string{"user@example.com"}, "Verify", nil)

		select {
		case <-client.sent:
		case <-time.After(time.Second):
			t.Fatal("async send never reached the client")
		}
	})
}

func TestService_SendPlain(t *testing.T) {
	client := &mockMailClient{}
	service, err := NewServiceWithClient(getTestMailConfig(), nil, client)
	require.NoError(t, err)

	require.NoError(t, service.SendPlain([]string{"user@example.com"}, "Subject", "body"))
	assert.Equal(t, 1, client.callCount())
}

func TestService_SendHTML(t *testing.T) {
	client := &mockMailClient{}
	service, err := NewServiceWithClient(getTestMailConfig(), nil, client)
	require.NoError(t, err)

	require.NoError(t, service.SendHTML([]string{"user@example.com"}, "Subject", "<h1>hi</h1>"))
	assert.Equal(t, 1, client.callCount())
}

func TestGoMailClient_ImplementsMailClient(t *testing.T) {
	var _ MailClient = &GoMailClient{}
}
