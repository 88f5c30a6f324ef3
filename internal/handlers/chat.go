package handlers

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/MegaGrindStone/jester-web-ui/internal/models"
	"github.com/MegaGrindStone/jester-web-ui/internal/prompt"
	"github.com/MegaGrindStone/jester-web-ui/internal/services"
	"github.com/MegaGrindStone/jester-web-ui/internal/session"
	"github.com/google/uuid"
	"github.com/tmaxmax/go-sse"
)

type message struct {
	ID        string
	Role      string
	Content   template.HTML
	Timestamp time.Time
}

// SSE event types for real-time updates.
var (
	messagesSSEType  = sse.Type("messages")
	clearChatSSEType = sse.Type("clearChat")
)

// turn is the outcome of one processed user input. The assistant message is zero when the
// completion call failed.
type turn struct {
	user      models.Message
	assistant models.Message
}

// sendUserMessage runs the turn-processing sequence: append the user message, build the full
// message list from the session's current settings and history, and invoke the completion client.
// On success the reply is appended as an assistant message. On failure the error is returned
// without appending anything; the user message stays in history. Empty input is a no-op, not an
// error: no state is mutated and no outbound call is made.
func (m Main) sendUserMessage(ctx context.Context, st *session.State, text string) (turn, error) {
	var t turn
	if text == "" {
		return t, nil
	}

	um := models.Message{
		ID:        uuid.New().String(),
		Role:      models.RoleUser,
		Content:   text,
		Timestamp: time.Now(),
	}
	userMsgID, err := m.store.AddMessage(ctx, st.ID(), um)
	if err != nil {
		return t, fmt.Errorf("failed to add user message: %w", err)
	}
	um.ID = userMsgID
	t.user = um

	history, err := m.store.Messages(ctx, st.ID())
	if err != nil {
		return t, fmt.Errorf("failed to get messages: %w", err)
	}

	// The system message is synthesized from the current settings on every turn; it is never
	// stored in history, so settings changes only affect future turns
	settings := st.Settings()
	systemPrompt := prompt.BuildSystemPrompt(settings.Style, settings.Safety, settings.Audience, settings.Length)
	messages := prompt.BuildMessages(systemPrompt, history)

	reply, err := m.llm.GenerateReply(ctx, messages, settings.Model, settings.Temperature, settings.MaxTokens)
	if err != nil {
		return t, err
	}

	am := models.Message{
		ID:        uuid.New().String(),
		Role:      models.RoleAssistant,
		Content:   reply,
		Timestamp: time.Now(),
	}
	aiMsgID, err := m.store.AddMessage(ctx, st.ID(), am)
	if err != nil {
		return t, fmt.Errorf("failed to add assistant message: %w", err)
	}
	am.ID = aiMsgID
	t.assistant = am

	return t, nil
}

// HandleChats processes one chat turn through an HTTP POST request. It accepts the user input
// through the "message" form field, blocks until the completion call returns, and responds with
// the rendered user and assistant message partials. A provider failure renders an inline error
// for that turn instead; the session remains usable for subsequent turns.
func (m Main) HandleChats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		m.logger.Error("Method not allowed", slog.String("method", r.Method))
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	st := m.sessionState(w, r)
	m.processTurn(w, r, st, r.FormValue("message"))
}

// HandleSuggest queues a quick-suggestion prompt in the session's pending slot and immediately
// consumes it as the next turn. The take-and-clear semantics guarantee a given pending prompt is
// delivered exactly once even across repeated refresh cycles.
func (m Main) HandleSuggest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		m.logger.Error("Method not allowed", slog.String("method", r.Method))
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	p := r.FormValue("prompt")
	if p != prompt.RandomPrompt && !slices.Contains(prompt.QuickSuggestions, p) {
		m.logger.Error("Unknown suggestion prompt", slog.String("prompt", p))
		http.Error(w, "Unknown suggestion prompt", http.StatusBadRequest)
		return
	}

	st := m.sessionState(w, r)
	st.SetPending(p)
	m.processTurn(w, r, st, st.TakePending())
}

func (m Main) processTurn(w http.ResponseWriter, r *http.Request, st *session.State, text string) {
	if text == "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	t, err := m.sendUserMessage(r.Context(), st, text)
	if err != nil {
		var perr *services.ProviderError
		if !errors.As(err, &perr) {
			m.logger.Error("Failed to process turn", slog.String(errLoggerKey, err.Error()))
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		// The turn is abandoned: the user message stays, no assistant message is appended,
		// and the failure is shown inline
		m.logger.Error("Error from llm provider", slog.String(errLoggerKey, err.Error()))

		var sb strings.Builder
		if err := m.renderMessage(&sb, t.user); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if err := m.templates.ExecuteTemplate(&sb, "error_message", perr.Error()); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		m.publishMessages(st.ID(), sb.String())
		fmt.Fprint(w, sb.String())
		return
	}

	var sb strings.Builder
	if err := m.renderMessage(&sb, t.user); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if err := m.renderMessage(&sb, t.assistant); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	m.publishMessages(st.ID(), sb.String())
	fmt.Fprint(w, sb.String())
}

// HandleClear replaces the session's history with an empty sequence and broadcasts the clear to
// every open tab of the session.
func (m Main) HandleClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		m.logger.Error("Method not allowed", slog.String("method", r.Method))
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	st := m.sessionState(w, r)
	if err := m.store.ClearMessages(r.Context(), st.ID()); err != nil {
		m.logger.Error("Failed to clear messages", slog.String(errLoggerKey, err.Error()))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	msg := sse.Message{Type: clearChatSSEType}
	msg.AppendData("clear")
	if err := m.sseSrv.Publish(&msg, sessionTopic(st.ID())); err != nil {
		m.logger.Error("Failed to publish clear event", slog.String(errLoggerKey, err.Error()))
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleSettings updates the session's configuration selection from the sidebar form. Values
// outside the enumerated option sets are ignored and the sliders are clamped to their bounds, so
// a malformed selection can never reach the prompt builder.
func (m Main) HandleSettings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		m.logger.Error("Method not allowed", slog.String("method", r.Method))
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	st := m.sessionState(w, r)
	settings := st.Settings()

	if v := r.FormValue("model"); slices.Contains(prompt.Models, v) {
		settings.Model = v
	}
	if v := r.FormValue("style"); slices.Contains(prompt.Styles, v) {
		settings.Style = v
	}
	if v := r.FormValue("safety"); slices.Contains(prompt.Safeties, v) {
		settings.Safety = v
	}
	if v := r.FormValue("audience"); slices.Contains(prompt.Audiences, v) {
		settings.Audience = v
	}
	if v := r.FormValue("length"); slices.Contains(prompt.Lengths, v) {
		settings.Length = v
	}
	if v, err := strconv.ParseFloat(r.FormValue("temperature"), 32); err == nil {
		settings.Temperature = min(max(float32(v), prompt.TemperatureMin), prompt.TemperatureMax)
	}
	if v, err := strconv.Atoi(r.FormValue("max_tokens")); err == nil {
		settings.MaxTokens = min(max(v, prompt.MaxTokensMin), prompt.MaxTokensMax)
	}

	st.SetSettings(settings)
	w.WriteHeader(http.StatusNoContent)
}

func messageView(msg models.Message) (message, error) {
	var content template.HTML
	switch msg.Role {
	case models.RoleAssistant:
		rendered, err := models.RenderMarkdown(msg.Content)
		if err != nil {
			return message{}, fmt.Errorf("failed to render markdown: %w", err)
		}
		content = template.HTML(rendered)
	default:
		content = template.HTML(template.HTMLEscapeString(msg.Content))
	}

	return message{
		ID:        msg.ID,
		Role:      string(msg.Role),
		Content:   content,
		Timestamp: msg.Timestamp,
	}, nil
}

func (m Main) renderMessage(w io.Writer, msg models.Message) error {
	view, err := messageView(msg)
	if err != nil {
		return err
	}

	tmplName := "ai_message"
	if msg.Role == models.RoleUser {
		tmplName = "user_message"
	}

	if err := m.templates.ExecuteTemplate(w, tmplName, view); err != nil {
		return fmt.Errorf("failed to execute %s template: %w", tmplName, err)
	}
	return nil
}

func (m Main) publishMessages(sessionID, html string) {
	msg := sse.Message{Type: messagesSSEType}
	msg.AppendData(html)
	if err := m.sseSrv.Publish(&msg, sessionTopic(sessionID)); err != nil {
		m.logger.Error("Failed to publish messages", slog.String(errLoggerKey, err.Error()))
	}
}
