package repositories

import "context"

// WeatherService answers weather questions for an optional place. An
// empty place means "where the server is".
type WeatherService interface {
	Current(ctx context.Context, place string) (string, error)
}

// AnswerService resolves open question-word queries into a short spoken
// answer.
type AnswerService interface {
	Answer(ctx context.Context, question string) (string, error)
}

// AppLauncher starts a locally installed application matched from a
// spoken title, returning the sentence to speak back.
type AppLauncher interface {
	Launch(query string) (string, error)
}
