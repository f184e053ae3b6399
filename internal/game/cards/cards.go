// Package cards provides the 52-card deck shared by the card games.
package cards

import (
	"strings"

	"casino-bot/internal/game"
	"casino-bot/internal/model"
)

// Ranks and suits.
const (
	Ace   int8 = 1
	Jack  int8 = 11
	Queen int8 = 12
	King  int8 = 13

	Clubs    int8 = 0
	Diamonds int8 = 1
	Hearts   int8 = 2
	Spades   int8 = 3
)

var (
	rankNames = [...]string{"", "A", "2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K"}
	suitNames = [...]string{"♣", "♦", "♥", "♠"}
)

// NewDeck returns an ordered 52-card deck.
func NewDeck() []model.Card {
	deck := make([]model.Card, 0, 52)
	for s := Clubs; s <= Spades; s++ {
		for r := Ace; r <= King; r++ {
			deck = append(deck, model.Card{Rank: r, Suit: s})
		}
	}
	return deck
}

// Shuffled returns a freshly shuffled deck.
func Shuffled(rng game.Rand) []model.Card {
	deck := NewDeck()
	for i := len(deck) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		deck[i], deck[j] = deck[j], deck[i]
	}
	return deck
}

// Draw takes the top card. It panics on an empty deck, which cannot happen
// with the hand sizes the games use.
func Draw(deck *[]model.Card) model.Card {
	c := (*deck)[0]
	*deck = (*deck)[1:]
	return c
}

// String renders a card such as "A♠".
func String(c model.Card) string {
	if c.Rank < Ace || c.Rank > King || c.Suit < Clubs || c.Suit > Spades {
		return "??"
	}
	return rankNames[c.Rank] + suitNames[c.Suit]
}

// Hand renders cards separated by spaces.
func Hand(cs []model.Card) string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = String(c)
	}
	return strings.Join(parts, " ")
}
