package summarizer

import "github.com/bradylowe/paranoid-coder/internal/config"

// contextChanger is the store method ContextChanged adapts.
// *store.DB satisfies this directly.
type contextChanger interface {
	ContextChanged(path string, callersThreshold, calleesThreshold int, currentImportsHash string) (bool, error)
}

// smartInvalidator bridges store.DB's multi-argument ContextChanged to
// hashutil.SmartInvalidator's single-argument contract, closing over the
// configured thresholds and the current file's computed imports hash so
// NeedsSummarization can call it with just a path.
type smartInvalidator struct {
	store              contextChanger
	cfg                config.InvalidationConfig
	currentImportsHash string
}

func newSmartInvalidator(store contextChanger, cfg config.InvalidationConfig, currentImportsHash string) *smartInvalidator {
	importsHash := currentImportsHash
	if !cfg.ReSummarizeOnImportsChange {
		// An empty hash makes store.ContextChanged's imports-hash comparison a
		// no-op (both sides must be non-empty to trigger), so the
		// configuration gate lives here rather than inside the store.
		importsHash = ""
	}
	return &smartInvalidator{store: store, cfg: cfg, currentImportsHash: importsHash}
}

// ContextChanged implements hashutil.SmartInvalidator.
func (s *smartInvalidator) ContextChanged(path string) (bool, error) {
	return s.store.ContextChanged(path, s.cfg.CallersThreshold, s.cfg.CalleesThreshold, s.currentImportsHash)
}
