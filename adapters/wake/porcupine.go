package wake

import (
	"encoding/binary"
	"fmt"

	porcupine "github.com/Picovoice/porcupine/binding/go"
	"go.uber.org/zap"

	"github.com/emberhome/ember/domain/repositories"
)

// Porcupine wraps the Picovoice keyword engine. It only ever says yes
// or no, so detections are reported as a final hypothesis carrying the
// configured phrase.
type Porcupine struct {
	engine porcupine.Porcupine
	phrase string
	logger *zap.Logger

	// Porcupine consumes fixed 512-sample frames; leftover samples
	// carry over between Accept calls.
	pending []int16
}

// NewPorcupine builds the engine from a custom keyword file, or the
// built-in "jarvis" keyword when keywordPath is empty.
func NewPorcupine(accessKey, keywordPath, phrase string, logger *zap.Logger) (*Porcupine, error) {
	engine := porcupine.Porcupine{AccessKey: accessKey}
	if keywordPath != "" {
		engine.KeywordPaths = []string{keywordPath}
	} else {
		engine.BuiltInKeywords = []porcupine.BuiltInKeyword{porcupine.JARVIS}
	}

	if err := engine.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize porcupine: %w", err)
	}
	logger.Info("Porcupine keyword engine ready", zap.String("phrase", phrase))

	return &Porcupine{
		engine: engine,
		phrase: phrase,
		logger: logger,
	}, nil
}

// Accept implements repositories.WakeRecognizer.
func (p *Porcupine) Accept(frame []byte) (repositories.Hypothesis, error) {
	for i := 0; i+1 < len(frame); i += 2 {
		p.pending = append(p.pending, int16(binary.LittleEndian.Uint16(frame[i:])))
	}

	detected := false
	for len(p.pending) >= porcupine.FrameLength {
		chunk := p.pending[:porcupine.FrameLength]
		p.pending = p.pending[porcupine.FrameLength:]

		keywordIndex, err := p.engine.Process(chunk)
		if err != nil {
			return repositories.Hypothesis{}, err
		}
		if keywordIndex >= 0 {
			detected = true
		}
	}

	if !detected {
		return repositories.Hypothesis{}, nil
	}
	return repositories.Hypothesis{Text: p.phrase, Final: true}, nil
}

func (p *Porcupine) Close() error {
	return p.engine.Delete()
}
