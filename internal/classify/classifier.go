// Package classify decides which ticket variant an OCR transcript holds.
package classify

import (
	"log/slog"
	"strings"

	"github.com/guestlist-ops/ticket-reconciler/internal/entity"
)

// Vocabulary sets. Hits are counted per distinct keyword, not per occurrence.
var (
	// nonTicketWords short-circuits obvious invoices/receipts, but only when
	// no ticket-domain marker is present at all.
	nonTicketWords = []string{"invoice", "bill", "receipt", "buyer", "seller", "gstin", "tea store"}
	ticketWords    = []string{"pnr", "train no", "passenger", "booking"}

	flightWords = []string{
		"indigo", "6e", "flight", "terminal", "check-in", "boarding pass",
		"cleartrip", "makemytrip", "booking confirmed",
	}
	trainWords = []string{
		"irctc", "electronic reservation", "train no", "coach", "berth",
		"quota", "vananchal", "kriya yoga", "vande bharat", "booking id : tk",
		"pnr :", "passenger status", "current status",
	}
)

// flightMinScore is the asymmetric threshold: flight vocabulary overlaps
// generic travel/e-commerce text, train vocabulary does not, so a single
// flight hit is never enough.
const flightMinScore = 2

// Classifier scores a lowercase view of the transcript against keyword sets.
type Classifier struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{logger: logger}
}

// Classify is pure: it never modifies the transcript and has no side
// effects beyond logging the two scores.
func (c *Classifier) Classify(transcript string) entity.Mode {
	t := strings.ToLower(transcript)

	if containsAny(t, nonTicketWords) && !containsAny(t, ticketWords) {
		return entity.ModeUnknown
	}

	flightScore := countHits(t, flightWords)
	trainScore := countHits(t, trainWords)

	c.logger.Debug("classify.scores", "flight", flightScore, "train", trainScore)

	switch {
	case flightScore > trainScore && flightScore >= flightMinScore:
		return entity.ModeFlight
	case trainScore > 0:
		return entity.ModeTrain
	default:
		return entity.ModeUnknown
	}
}

func containsAny(t string, words []string) bool {
	for _, w := range words {
		if strings.Contains(t, w) {
			return true
		}
	}
	return false
}

func countHits(t string, words []string) int {
	n := 0
	for _, w := range words {
		if strings.Contains(t, w) {
			n++
		}
	}
	return n
}
