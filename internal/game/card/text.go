package card

// Kind tags exchange-game content.
type Kind string

const (
	Question Kind = "question"
	Answer   Kind = "answer"
)

func (k Kind) Valid() bool {
	return k == Question || k == Answer
}

// TextCard is a prompt or an answer in the card-exchange game.
type TextCard struct {
	ID   string `json:"id"`
	Text string `json:"text"`
	Kind Kind   `json:"kind"`
}

func (c TextCard) String() string { return c.Text }

// IndexOf returns the position of the card with id in cards, or -1.
func IndexOf(cards []TextCard, id string) int {
	for i, c := range cards {
		if c.ID == id {
			return i
		}
	}
	return -1
}
