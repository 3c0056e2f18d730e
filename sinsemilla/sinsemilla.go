package sinsemilla

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/logger"
	"github.com/consensys/gnark/std/lookup/logderivlookup"

	"github.com/parazyd/halo2-gadgets/ecc"
	"github.com/parazyd/halo2-gadgets/rangecheck"
)

// DefaultMaxWords bounds the total message length of a single hash unless
// overridden with [WithMaxWords].
const DefaultMaxWords = 64

type config struct {
	maxWords int
}

// Option configures a [Chip].
type Option func(*config) error

// WithMaxWords overrides the maximum total number of words a single hash
// accepts.
func WithMaxWords(n int) Option {
	return func(cfg *config) error {
		if n < 1 {
			return fmt.Errorf("max words must be positive, got %d", n)
		}
		cfg.maxWords = n
		return nil
	}
}

// Chip hashes messages by curve-point accumulation. The word width is taken
// from the shared range checker, so message decomposition reuses the same
// lookup table as every other range check in the circuit; the 2^k word
// generators live in two extra lookup tables (x and y columns) built once per
// chip.
type Chip struct {
	api      frontend.API
	curve    *ecc.Chip
	rc       *rangecheck.Checker
	wordBits int
	maxWords int
	xS, yS   logderivlookup.Table
}

// New returns a Chip hashing k-bit words, where k is the range checker's
// window width. The word generator tables are derived natively (cached across
// chips) and embedded as lookup tables.
func New(api frontend.API, curve *ecc.Chip, rc *rangecheck.Checker, opts ...Option) (*Chip, error) {
	if curve == nil {
		return nil, errors.New("nil curve chip")
	}
	if rc == nil {
		return nil, errors.New("nil range checker")
	}
	cfg := config{maxWords: DefaultMaxWords}
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	k := rc.WindowWidth()
	table, err := STable(k)
	if err != nil {
		return nil, fmt.Errorf("derive word generators: %w", err)
	}

	log := logger.Logger().With().Str("gadget", "sinsemilla").Logger()
	log.Debug().Int("wordBits", k).Int("generators", len(table)).Msg("embedding word generator tables")

	h := &Chip{
		api:      api,
		curve:    curve,
		rc:       rc,
		wordBits: k,
		maxWords: cfg.maxWords,
		xS:       logderivlookup.New(api),
		yS:       logderivlookup.New(api),
	}
	for i := range table {
		h.xS.Insert(table[i].X.BigInt(new(big.Int)))
		h.yS.Insert(table[i].Y.BigInt(new(big.Int)))
	}
	return h, nil
}

// API returns the underlying frontend API.
func (h *Chip) API() frontend.API {
	return h.api
}

// RangeChecker returns the shared range checker.
func (h *Chip) RangeChecker() *rangecheck.Checker {
	return h.rc
}

// WordBits returns the word width in bits.
func (h *Chip) WordBits() int {
	return h.wordBits
}

// MaxWords returns the maximum total message length in words.
func (h *Chip) MaxWords() int {
	return h.maxWords
}

// MessagePiece is a contiguous span of message words packed into a single
// field element, least-significant word first. Pieces let callers hash values
// they already hold as field elements without bit-blasting them first.
type MessagePiece struct {
	Val      frontend.Variable
	NumWords int
}

// NewMessagePiece wraps val as a span of numWords words. The word count must
// keep the packed value injective: numWords * WordBits has to stay below the
// field bit length, so no two word sequences pack to the same element.
func (h *Chip) NewMessagePiece(val frontend.Variable, numWords int) (MessagePiece, error) {
	if numWords < 1 {
		return MessagePiece{}, errors.New("message piece needs at least one word")
	}
	if numWords*h.wordBits >= h.api.Compiler().FieldBitLen() {
		return MessagePiece{}, fmt.Errorf("%d words of %d bits do not pack injectively into one field element", numWords, h.wordBits)
	}
	return MessagePiece{Val: val, NumWords: numWords}, nil
}

// HashToPoint hashes the concatenated pieces within the given domain and
// returns the final accumulator point. Each piece is window-decomposed by the
// shared range checker, which simultaneously proves the piece's packed value
// matches its word count; the words then index the generator tables and fold
// into the accumulator with incomplete additions. Driving an incomplete
// addition onto a degenerate pair requires a discrete-log relation between
// the hashed-to-curve generators.
func (h *Chip) HashToPoint(domain string, pieces ...MessagePiece) (ecc.NonIdentityPoint, error) {
	if len(pieces) == 0 {
		return ecc.NonIdentityPoint{}, errors.New("empty message")
	}
	total := 0
	for _, p := range pieces {
		total += p.NumWords
	}
	if total > h.maxWords {
		return ecc.NonIdentityPoint{}, fmt.Errorf("message of %d words exceeds the chip maximum %d", total, h.maxWords)
	}

	words := make([]frontend.Variable, 0, total)
	for i, p := range pieces {
		rs, err := h.rc.Decompose(p.Val, p.NumWords)
		if err != nil {
			return ecc.NonIdentityPoint{}, fmt.Errorf("piece %d: %w", i, err)
		}
		words = append(words, rs.Windows...)
	}

	xs := h.xS.Lookup(words...)
	ys := h.yS.Lookup(words...)

	q, err := QPoint(domain)
	if err != nil {
		return ecc.NonIdentityPoint{}, fmt.Errorf("derive domain seed: %w", err)
	}
	acc := h.curve.Constant(q)
	for i := range words {
		s := ecc.NonIdentityPoint{X: xs[i], Y: ys[i]}
		t := h.curve.AddIncomplete(acc, s)
		acc = h.curve.AddIncomplete(t, acc)
	}
	return acc, nil
}

// Hash returns the x-coordinate of [Chip.HashToPoint].
func (h *Chip) Hash(domain string, pieces ...MessagePiece) (frontend.Variable, error) {
	p, err := h.HashToPoint(domain, pieces...)
	if err != nil {
		return nil, err
	}
	return p.X, nil
}
