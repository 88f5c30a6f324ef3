package handlers

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	jesterwebui "github.com/MegaGrindStone/jester-web-ui"
	"github.com/MegaGrindStone/jester-web-ui/internal/models"
	"github.com/MegaGrindStone/jester-web-ui/internal/session"
	"github.com/google/uuid"
	"github.com/tmaxmax/go-sse"
)

// LLM represents a completion client adapter. It performs one outbound call per invocation and
// returns the generated text, or an error when the upstream call fails or returns no usable
// content. Implementations must be safe to invoke repeatedly across turns and sessions.
type LLM interface {
	GenerateReply(
		ctx context.Context,
		messages []models.Message,
		model string,
		temperature float32,
		maxTokens int,
	) (string, error)
}

// Store defines the interface for managing conversation histories. Each session's history is an
// ordered, append-only sequence, cleared wholesale on user request.
type Store interface {
	Messages(ctx context.Context, sessionID string) ([]models.Message, error)
	AddMessage(ctx context.Context, sessionID string, message models.Message) (string, error)
	ClearMessages(ctx context.Context, sessionID string) error
}

// Main handles the core functionality of the chat application, managing server-sent events,
// HTML templates, and interactions between the LLM and Store components.
type Main struct {
	sseSrv    *sse.Server
	templates *template.Template

	llm      LLM
	store    Store
	sessions *session.Registry

	logger *slog.Logger
}

const (
	sessionCookieName = "jester_session"

	errLoggerKey = "err"
)

// NewMain creates a new Main instance with the provided LLM and Store implementations. It
// initializes the SSE server with default configurations and parses the required HTML templates
// from the embedded filesystem. Each SSE client is subscribed to its own session topic based on
// the session cookie it carries.
func NewMain(llm LLM, store Store, logger *slog.Logger) (Main, error) {
	// We parse templates from three distinct directories to separate layout, pages, and partial views
	tmpl, err := template.ParseFS(
		jesterwebui.TemplateFS,
		"templates/layout/*.html",
		"templates/pages/*.html",
		"templates/partials/*.html",
	)
	if err != nil {
		return Main{}, err
	}

	return Main{
		sseSrv: &sse.Server{
			OnSession: func(s *sse.Session) (sse.Subscription, bool) {
				topics := []string{sse.DefaultTopic}

				// We subscribe the client to its session topic so completed turns and clears
				// reach every open tab of the same session
				if c, err := s.Req.Cookie(sessionCookieName); err == nil && c.Value != "" {
					topics = append(topics, sessionTopic(c.Value))
				}

				return sse.Subscription{
					Client:      s,
					LastEventID: s.LastEventID,
					Topics:      topics,
				}, true
			},
		},
		templates: tmpl,
		llm:       llm,
		store:     store,
		sessions:  session.NewRegistry(),
		logger:    logger.With(slog.String("module", "handlers")),
	}, nil
}

func sessionTopic(sessionID string) string {
	return fmt.Sprintf("session-%s", sessionID)
}

// sessionState resolves the session state for the request, minting a new session cookie when the
// request doesn't carry one yet.
func (m Main) sessionState(w http.ResponseWriter, r *http.Request) *session.State {
	if c, err := r.Cookie(sessionCookieName); err == nil && c.Value != "" {
		return m.sessions.Get(c.Value)
	}

	id := uuid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return m.sessions.Get(id)
}

// HandleSSE serves the server-sent events endpoint clients subscribe to for session updates.
func (m Main) HandleSSE(w http.ResponseWriter, r *http.Request) {
	m.sseSrv.ServeHTTP(w, r)
}

// Shutdown gracefully terminates the Main instance's SSE server. It broadcasts a close message to
// all connected clients and waits up to 5 seconds for connections to terminate. After the timeout,
// any remaining connections are forcefully closed.
func (m Main) Shutdown(ctx context.Context) error {
	e := &sse.Message{Type: sse.Type("closeChat")}
	// We create a close event that complies with SSE spec requiring data
	e.AppendData("bye")

	// We ignore the error here since we're shutting down anyway
	_ = m.sseSrv.Publish(e)

	ctx, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()

	return m.sseSrv.Shutdown(ctx)
}
