package index

import (
	"fmt"

	"github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/internal/corpus"
	apperrors "github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/pkg/errors"
)

// Build constructs the index for variant v. workers bounds SPIMI frequency
// counting and is ignored by the naive builder.
func Build(v Variant, docs []corpus.Document, workers int) (Index, error) {
	switch v {
	case Naive:
		return BuildNaive(docs), nil
	case SPIMI:
		return BuildSPIMI(docs, workers), nil
	default:
		return nil, fmt.Errorf("%w: %s", apperrors.ErrUnsupportedVariant, v)
	}
}
