package manager

import (
	"errors"
	"fmt"

	"DegensAgainstDecency/internal/content"
	"DegensAgainstDecency/internal/game/confession"
	"DegensAgainstDecency/internal/game/exchange"
	"DegensAgainstDecency/internal/game/session"
	"DegensAgainstDecency/internal/game/stud"
)

var ErrUnknownKind = errors.New("unknown game kind")

// Engines builds a fresh round engine per table.
type Engines struct {
	Exchange   exchange.Config
	Confession confession.Config
	Stud       stud.Config
	Content    content.Source
}

func DefaultEngines(src content.Source) Engines {
	return Engines{
		Exchange:   exchange.DefaultConfig(),
		Confession: confession.DefaultConfig(),
		Stud:       stud.DefaultConfig(),
		Content:    src,
	}
}

func (e Engines) New(kind session.Kind) (session.RoundEngine, error) {
	switch kind {
	case session.KindExchange:
		if e.Content == nil {
			return nil, fmt.Errorf("exchange: no content source")
		}
		return exchange.New(e.Exchange, e.Content), nil
	case session.KindConfession:
		return confession.New(e.Confession), nil
	case session.KindStud:
		return stud.New(e.Stud), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

// Validate reports whether a table of size players can host kind.
func (e Engines) Validate(game string, size int) error {
	eng, err := e.New(session.Kind(game))
	if err != nil {
		return err
	}
	if size < eng.MinPlayers() || size < session.MinCapacity || size > session.MaxCapacity {
		return fmt.Errorf("%s needs %d-%d players, got %d", game, max(eng.MinPlayers(), session.MinCapacity), session.MaxCapacity, size)
	}
	return nil
}
