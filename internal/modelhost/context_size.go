package modelhost

import (
	"fmt"

	pcerrors "github.com/bradylowe/paranoid-coder/internal/errors"
)

// Power-of-2 context window bounds and the chars-per-token estimate used to
// size num_ctx for a generate call, ported 1:1 from the model host's context
// sizing contract.
const (
	contextMin                   = 1 << 14 // 16384
	contextMax                   = 1 << 17 // 131072
	charsPerToken                = 3
	responseTokensSmall          = 2048
	responseTokensLarge          = 4096
	responseTokensSmallThreshold = 16384
)

// ContextSize computes the num_ctx to request for prompt: the smallest
// power-of-two context window in [2^14, 2^17] that fits the estimated
// prompt tokens plus a reserved response budget. Returns ContextOverflow if
// even the maximum window isn't enough.
func ContextSize(prompt string) (int, error) {
	estimatedTokens := len(prompt) / charsPerToken

	responseTokens := responseTokensSmall
	if estimatedTokens >= responseTokensSmallThreshold {
		responseTokens = responseTokensLarge
	}
	total := estimatedTokens + responseTokens

	switch {
	case total <= contextMin:
		return contextMin, nil
	case total <= 1<<15:
		return 1 << 15, nil
	case total <= 1<<16:
		return 1 << 16, nil
	case total <= contextMax:
		return contextMax, nil
	default:
		return 0, pcerrors.New(pcerrors.ContextOverflow,
			fmt.Sprintf("estimated tokens (%d) exceeds maximum context (%d)", total, contextMax)).
			WithRemedy("shorten the file or split it before summarizing")
	}
}
