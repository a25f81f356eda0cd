package domain

import "errors"

var (
	// ErrMissingSentimentData reports an article without a matching prediction.
	ErrMissingSentimentData = errors.New("missing sentiment data")
	// ErrInvalidSentimentLabel reports a label outside POSITIVE/NEGATIVE/NEUTRAL.
	ErrInvalidSentimentLabel = errors.New("invalid sentiment label")
	// ErrUnknownRankingStrategy reports an unrecognized strategy selector.
	ErrUnknownRankingStrategy = errors.New("unknown ranking strategy")
	// ErrDuplicateArticle reports two articles sharing one ID in a batch.
	ErrDuplicateArticle = errors.New("duplicate article")
	// ErrQueryNotAllowed reports a news query outside the configured allow list.
	ErrQueryNotAllowed = errors.New("query not allowed")
)
