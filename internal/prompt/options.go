package prompt

import "github.com/MegaGrindStone/jester-web-ui/internal/models"

// Option sets for the sidebar controls. Every configuration value the UI can submit is drawn from
// one of these lists, so the prompt builder never sees a value outside its domain.
var (
	Models = []string{
		"gpt-4",
		"gpt-3.5-turbo",
	}

	Styles = []string{
		"One-liner",
		"Pun",
		"Dad joke",
		"Observational",
		"Wordplay",
		"Knock-knock",
		"Light roast (kind, no insults)",
		"Absurdist",
	}

	Safeties = []string{
		"Family-friendly",
		"Edgy but respectful (no slurs, no insults, no hate)",
	}

	Audiences = []string{
		"General",
		"Kids",
		"Techies",
		"Science lovers",
		"Movie fans",
	}

	Lengths = []string{
		"Short (1-2 lines)",
		"Medium (3-6 lines)",
	}
)

// Bounds for the two sampling sliders.
const (
	TemperatureMin float32 = 0.0
	TemperatureMax float32 = 1.5

	MaxTokensMin = 64
	MaxTokensMax = 400
)

// QuickSuggestions are the fixed prompts behind the quick-suggestion buttons under the message list.
var QuickSuggestions = []string{
	"Tell a clean one-liner about programmers.",
	"Make a witty pun about coffee.",
	"Gently roast my procrastination (keep it kind).",
	"A kids-friendly dinosaur joke, please.",
}

// RandomPrompt is the prompt queued by the "Tell me something random" sidebar button.
const RandomPrompt = "Surprise me with a fresh, original joke."

// DefaultSettings returns the configuration selection a new session starts with.
func DefaultSettings() models.Settings {
	return models.Settings{
		Model:       Models[0],
		Style:       Styles[0],
		Safety:      Safeties[0],
		Audience:    Audiences[0],
		Length:      Lengths[0],
		Temperature: 0.8,
		MaxTokens:   200,
	}
}
