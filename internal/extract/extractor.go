package extract

// Extractor turns raw page markup into a signal set. Implementations must be
// deterministic and free of side effects so analyses can run concurrently.
type Extractor interface {
	// Extract parses body fetched from pageURL and returns its signals.
	Extract(body []byte, pageURL string) Signals
}

// SignalExtractor is the default Extractor backed by Parse and Extract.
type SignalExtractor struct {
	Options Options
}

func (e SignalExtractor) Extract(body []byte, pageURL string) Signals {
	return FromHTML(body, pageURL, e.Options)
}
