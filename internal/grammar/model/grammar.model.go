package model

// GrammarMatch is one issue found in the submitted text. Offset and Length
// count UTF-16 code units, as the editor does.
type GrammarMatch struct {
	Message      string   `json:"message"`
	Offset       int      `json:"offset"`
	Length       int      `json:"length"`
	Replacements []string `json:"replacements"`
}

type GrammarResponse struct {
	Matches []GrammarMatch `json:"matches"`
}

type CheckRequest struct {
	Text string `json:"text" validate:"max=200000"`
}
