package ports

import "context"

// Capture is one in-flight speech capture attempt.
type Capture interface {
	// Results delivers recognized transcripts. It is closed when the capture ends.
	Results() <-chan string

	// Stop ends the capture early. Results is closed afterwards.
	Stop()
}

// Recognizer starts speech captures.
// Implementations that cannot capture on this runtime return domain.ErrSpeechUnsupported.
type Recognizer interface {
	Start(ctx context.Context) (Capture, error)
}
