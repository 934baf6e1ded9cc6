package content

import (
	"context"
	"fmt"
	"math/rand"

	"DegensAgainstDecency/internal/game/card"
)

// Builtin serves the bundled corpus. Generate returns a shuffled slice of it.
type Builtin struct {
	rnd *rand.Rand
}

func NewBuiltin(seed int64) *Builtin {
	return &Builtin{rnd: rand.New(rand.NewSource(seed))}
}

func (b *Builtin) Generate(_ context.Context, kind card.Kind, count int) ([]card.TextCard, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown content kind %q", kind)
	}
	cards := b.Fallback(kind)
	b.rnd.Shuffle(len(cards), func(i, j int) { cards[i], cards[j] = cards[j], cards[i] })
	if count > 0 && count < len(cards) {
		cards = cards[:count]
	}
	return cards, nil
}

func (b *Builtin) Fallback(kind card.Kind) []card.TextCard {
	texts := fallbackAnswers
	prefix := "a"
	if kind == card.Question {
		texts = fallbackQuestions
		prefix = "q"
	}
	out := make([]card.TextCard, len(texts))
	for i, t := range texts {
		out[i] = card.TextCard{ID: fmt.Sprintf("%s-%03d", prefix, i+1), Text: t, Kind: kind}
	}
	return out
}

var fallbackQuestions = []string{
	"What's the worst thing to say at a job interview?",
	"What's the secret ingredient in grandma's famous recipe?",
	"What got me banned from the group chat?",
	"What's hiding in the back of the office fridge?",
	"The real reason the wedding was called off: ____.",
	"What's the best excuse for being three hours late?",
	"My therapist says I need to stop ____.",
	"What ruined family game night forever?",
	"The new reality show everyone is secretly watching: ____.",
	"What would a pirate keep in a safety deposit box?",
	"What's the worst possible superpower?",
	"What did the landlord find during the inspection?",
	"The town festival is now dedicated to ____.",
	"What's the most suspicious thing to buy at 3 a.m.?",
	"What did the fortune cookie actually say?",
	"What's my retirement plan?",
	"What's the first rule of the neighborhood watch?",
	"The museum's newest exhibit: ____.",
	"What do cats think about all day?",
	"What's the worst thing to find in your soup?",
	"What's the real reason dinosaurs went extinct?",
	"The band broke up because of ____.",
	"What's the weirdest thing a coworker has microwaved?",
	"The school play got cancelled after ____.",
}

var fallbackAnswers = []string{
	"A suspiciously large jar of mayonnaise.",
	"Interpretive dance.",
	"My ex's playlist.",
	"A haunted spreadsheet.",
	"Forty raccoons in a trench coat.",
	"Unlimited breadsticks.",
	"Crying in the parking lot.",
	"A motivational poster about failure.",
	"Aggressive jazz flute.",
	"An unpaid internship.",
	"A timeshare presentation.",
	"Grandpa's conspiracy theories.",
	"Pineapple on everything.",
	"A single wet sock.",
	"Reply-all.",
	"The Wi-Fi password.",
	"An emotional support iguana.",
	"Cargo shorts with infinite pockets.",
	"A strongly worded letter.",
	"Competitive napping.",
	"Glitter. So much glitter.",
	"A tiny hat for a large dog.",
	"Expired coupons.",
	"The group project nobody did.",
	"Karaoke at 9 a.m.",
	"A mime who won't stop talking.",
	"Socks with sandals.",
	"Three pigeons and a dream.",
	"An unskippable ad.",
	"Microwaved fish.",
	"A printer that smells fear.",
	"Mandatory fun.",
	"The last slice of pizza.",
	"A LinkedIn influencer.",
	"Lukewarm gas station sushi.",
	"A surprise tax audit.",
	"Dad's new podcast.",
	"An escape room with no exit.",
	"The ghost of customer service past.",
	"A goat with a grudge.",
	"Spontaneous yodeling.",
	"A self-help book about self-help books.",
	"Overdue library fines.",
	"Accidentally liking a photo from 2012.",
	"A clown's day off.",
	"The sound of dial-up internet.",
	"A very confident toddler.",
	"Decaf.",
	"A mysterious rash.",
	"Buying crypto at the peak.",
	"The neighbor's rooster.",
	"Mom's Facebook comments.",
	"A gym membership I never use.",
	"Stepping on a LEGO.",
	"A motivational speech from a goldfish.",
	"Being left on read.",
	"A kazoo solo.",
	"Pants that are just for show.",
	"A sandwich with trust issues.",
	"The printer jam of destiny.",
}
