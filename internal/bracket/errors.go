package bracket

import "errors"

// Operation errors. The engine validates its inputs instead of silently
// ignoring bad refs or winners; callers map these onto their own responses.
var (
	ErrNoSeeds         = errors.New("no seeds provided")
	ErrNotEnoughSeeds  = errors.New("not enough teams for this format")
	ErrInvalidFormat   = errors.New("unknown bracket format")
	ErrInvalidMatchRef = errors.New("malformed match id")
	ErrInvalidSide     = errors.New("slot side must be a or b")
	ErrMatchNotFound   = errors.New("match not found in bracket")
	ErrMatchNotReady   = errors.New("match does not have both teams yet")
	ErrInvalidWinner   = errors.New("winner is not part of this match")
)
