// Package wake provides the wake phrase recognizers: a Vosk streaming
// recognizer and a Porcupine keyword engine.
package wake

import (
	"encoding/json"
	"fmt"

	vosk "github.com/alphacep/vosk-api/go"
	"go.uber.org/zap"

	"github.com/emberhome/ember/domain/repositories"
)

// Vosk emits streaming hypotheses from a local Vosk model. Partial
// hypotheses let the segmenter fire mid-phrase instead of waiting for
// an endpoint.
type Vosk struct {
	model      *vosk.VoskModel
	recognizer *vosk.VoskRecognizer
	logger     *zap.Logger
}

type voskResult struct {
	Text string `json:"text"`
}

type voskPartial struct {
	Partial string `json:"partial"`
}

func NewVosk(modelPath string, sampleRate int, logger *zap.Logger) (*Vosk, error) {
	logger.Info("Loading Vosk model", zap.String("path", modelPath))

	model, err := vosk.NewModel(modelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load Vosk model from %s: %w", modelPath, err)
	}

	recognizer, err := vosk.NewRecognizer(model, float64(sampleRate))
	if err != nil {
		model.Free()
		return nil, fmt.Errorf("failed to create Vosk recognizer: %w", err)
	}

	return &Vosk{
		model:      model,
		recognizer: recognizer,
		logger:     logger,
	}, nil
}

// Accept implements repositories.WakeRecognizer.
func (v *Vosk) Accept(frame []byte) (repositories.Hypothesis, error) {
	state := v.recognizer.AcceptWaveform(frame)
	if state == -1 {
		return repositories.Hypothesis{}, fmt.Errorf("vosk failed to process audio frame")
	}

	if state == 1 {
		var res voskResult
		if err := json.Unmarshal([]byte(v.recognizer.Result()), &res); err != nil {
			return repositories.Hypothesis{}, err
		}
		return repositories.Hypothesis{Text: res.Text, Final: true}, nil
	}

	var partial voskPartial
	if err := json.Unmarshal([]byte(v.recognizer.PartialResult()), &partial); err != nil {
		return repositories.Hypothesis{}, err
	}
	return repositories.Hypothesis{Text: partial.Partial, Final: false}, nil
}

func (v *Vosk) Close() error {
	v.recognizer.Free()
	v.model.Free()
	return nil
}
