package handlers

import (
	"log/slog"
	"net/http"

	"github.com/MegaGrindStone/jester-web-ui/internal/prompt"
)

type homePageData struct {
	Messages []message
	Settings settingsView

	Models    []string
	Styles    []string
	Safeties  []string
	Audiences []string
	Lengths   []string

	QuickSuggestions []string
	RandomPrompt     string
}

type settingsView struct {
	Model    string
	Style    string
	Safety   string
	Audience string
	Length   string

	Temperature float32
	MaxTokens   int
}

// HandleHome renders the home page: the session's message list, the input form, and the sidebar
// controls reflecting the session's current configuration selection. The session cookie is set on
// the first visit.
func (m Main) HandleHome(w http.ResponseWriter, r *http.Request) {
	st := m.sessionState(w, r)

	messages, err := m.store.Messages(r.Context(), st.ID())
	if err != nil {
		m.logger.Error("Failed to get messages", slog.String(errLoggerKey, err.Error()))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	msgs := make([]message, len(messages))
	for i := range messages {
		msgs[i], err = messageView(messages[i])
		if err != nil {
			m.logger.Error("Failed to render message", slog.String(errLoggerKey, err.Error()))
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}

	settings := st.Settings()
	data := homePageData{
		Messages: msgs,
		Settings: settingsView{
			Model:       settings.Model,
			Style:       settings.Style,
			Safety:      settings.Safety,
			Audience:    settings.Audience,
			Length:      settings.Length,
			Temperature: settings.Temperature,
			MaxTokens:   settings.MaxTokens,
		},
		Models:           prompt.Models,
		Styles:           prompt.Styles,
		Safeties:         prompt.Safeties,
		Audiences:        prompt.Audiences,
		Lengths:          prompt.Lengths,
		QuickSuggestions: prompt.QuickSuggestions,
		RandomPrompt:     prompt.RandomPrompt,
	}

	if err := m.templates.ExecuteTemplate(w, "home.html", data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
